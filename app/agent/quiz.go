package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"studyrag/types"
)

const (
	quizTextLimit   = 3000
	quizMinTextLen  = 100
	quizTemperature = 0.7
	quizMaxTokens   = 2000

	quizSystemPrompt = "You are a helpful assistant that generates educational quiz questions in JSON format."
)

const quizPromptTemplate = `You are an expert educator creating a quiz from study material.

Based on the following text from a student's coursebook, generate a quiz with:
- %d Multiple Choice Questions (MCQ)
- %d Short Answer Questions (SAQ)
- %d Long Answer Questions (LAQ)

Text Content:
%s

IMPORTANT: Return ONLY valid JSON in this exact format, with no additional text:
{
  "questions": [
    {
      "type": "MCQ",
      "question": "What is the main concept discussed?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctAnswer": "Option A",
      "explanation": "This is correct because..."
    },
    {
      "type": "SAQ",
      "question": "Explain the concept briefly.",
      "options": [],
      "correctAnswer": "Brief answer here",
      "explanation": "Detailed explanation"
    },
    {
      "type": "LAQ",
      "question": "Discuss in detail.",
      "options": [],
      "correctAnswer": "Detailed answer in 2-3 sentences",
      "explanation": "Complete explanation"
    }
  ]
}

Rules:
- MCQ must have exactly 4 options
- Questions should test understanding, not just recall
- Explanations should be educational and clear
- Ensure questions are unambiguous
- Return ONLY the JSON object, no markdown formatting`

// QuizPrompt renders the generation prompt for text.
func QuizPrompt(text string, counts types.QuestionCounts) string {
	return fmt.Sprintf(quizPromptTemplate, counts.MCQ, counts.SAQ, counts.LAQ, text)
}

// GenerateQuiz asks the LLM for questions about doc and keeps the valid ones.
func (a *Agent) GenerateQuiz(ctx context.Context, doc *types.Document, counts types.QuestionCounts) ([]types.Question, error) {
	if !a.Configured() {
		return nil, types.ErrUnavailable
	}
	text := types.FirstRunes(doc.TextContent, quizTextLimit)
	if len(strings.TrimSpace(text)) < quizMinTextLen {
		return nil, fmt.Errorf("%w: PDF does not contain enough text content for quiz generation", types.ErrValidation)
	}

	raw, err := a.completer.Complete(ctx, Prompt{
		System:      quizSystemPrompt,
		Messages:    []types.ChatMessage{{Role: types.RoleUser, Content: QuizPrompt(text, counts)}},
		Model:       a.quizModel,
		Temperature: quizTemperature,
		MaxTokens:   quizMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	questions, dropped, err := ParseQuestions(raw)
	if err != nil {
		a.log.Warn("quiz response is not valid JSON", "doc", doc.ID, "error", err)
		return nil, fmt.Errorf("%w: failed to parse quiz: %v", types.ErrProvider, err)
	}
	if dropped > 0 {
		a.log.Warn("dropped invalid quiz questions", "doc", doc.ID, "dropped", dropped, "kept", len(questions))
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no valid questions generated", types.ErrProvider)
	}
	return questions, nil
}

var fence = regexp.MustCompile("```(?:json)?\\n?")

// StripFences removes markdown code fences around a JSON answer.
func StripFences(s string) string {
	return strings.TrimSpace(fence.ReplaceAllString(strings.TrimSpace(s), ""))
}

type rawQuestion struct {
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// ParseQuestions decodes an LLM quiz answer. It returns the valid questions
// with fresh ids and the number of questions that were dropped.
func ParseQuestions(raw string) ([]types.Question, int, error) {
	var payload struct {
		Questions []rawQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(StripFences(raw)), &payload); err != nil {
		return nil, 0, err
	}

	valid := lo.FilterMap(payload.Questions, func(rq rawQuestion, _ int) (types.Question, bool) {
		q := types.Question{
			ID:            uuid.New(),
			Kind:          types.QuestionKind(strings.ToUpper(strings.TrimSpace(rq.Type))),
			Prompt:        strings.TrimSpace(rq.Question),
			Options:       lo.Map(rq.Options, func(o string, _ int) string { return strings.TrimSpace(o) }),
			CorrectAnswer: strings.TrimSpace(rq.CorrectAnswer),
			Explanation:   strings.TrimSpace(rq.Explanation),
		}
		if q.Options == nil {
			q.Options = []string{}
		}
		return q, ValidQuestion(q)
	})
	return valid, len(payload.Questions) - len(valid), nil
}

// ValidQuestion reports whether q has a known kind, a prompt and an answer,
// and for MCQ exactly four options containing the answer.
func ValidQuestion(q types.Question) bool {
	if !q.Kind.Valid() || q.Prompt == "" || q.CorrectAnswer == "" {
		return false
	}
	if q.Kind == types.KindMCQ {
		return len(q.Options) == 4 && slices.Contains(q.Options, q.CorrectAnswer)
	}
	return true
}
