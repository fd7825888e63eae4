package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyrag/logger"
	"studyrag/types"
)

type fakeCompleter struct {
	answer string
	err    error
	got    []Prompt
}

func (f *fakeCompleter) Complete(_ context.Context, p Prompt) (string, error) {
	f.got = append(f.got, p)
	return f.answer, f.err
}

const quizAnswer = "```json\n" + `{
  "questions": [
    {"type": "MCQ", "question": "Q1", "options": ["A","B","C","D"], "correctAnswer": "B", "explanation": "because"},
    {"type": "MCQ", "question": "Q2", "options": ["A","B","C"], "correctAnswer": "A", "explanation": ""},
    {"type": "MCQ", "question": "Q3", "options": ["A","B","C","D"], "correctAnswer": "E", "explanation": ""},
    {"type": "saq", "question": "Q4", "correctAnswer": "short", "explanation": "x"},
    {"type": "ESSAY", "question": "Q5", "options": [], "correctAnswer": "long", "explanation": ""},
    {"type": "LAQ", "question": "  ", "options": [], "correctAnswer": "long", "explanation": ""}
  ]
}` + "\n```"

func TestParseQuestions(t *testing.T) {
	qs, dropped, err := ParseQuestions(quizAnswer)
	require.NoError(t, err)
	assert.Equal(t, 4, dropped)
	require.Len(t, qs, 2)

	assert.Equal(t, types.KindMCQ, qs[0].Kind)
	assert.Equal(t, "B", qs[0].CorrectAnswer)
	assert.Equal(t, types.KindSAQ, qs[1].Kind)
	assert.Equal(t, []string{}, qs[1].Options)
	assert.NotEqual(t, qs[0].ID, qs[1].ID)
}

func TestParseQuestionsInvalidJSON(t *testing.T) {
	_, _, err := ParseQuestions("Sure! Here is your quiz:")
	assert.Error(t, err)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripFences(` {"a":1} `))
}

func TestValidQuestion(t *testing.T) {
	ok := types.Question{Kind: types.KindMCQ, Prompt: "p", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "c"}
	assert.True(t, ValidQuestion(ok))

	noAnswer := ok
	noAnswer.CorrectAnswer = ""
	assert.False(t, ValidQuestion(noAnswer))

	laq := types.Question{Kind: types.KindLAQ, Prompt: "p", CorrectAnswer: "a"}
	assert.True(t, ValidQuestion(laq))
}

func longText() string {
	return strings.Repeat("Cells divide through mitosis and meiosis. ", 100)
}

func TestGenerateQuiz(t *testing.T) {
	fc := &fakeCompleter{answer: quizAnswer}
	a := New(logger.Nop(), fc, "chat-model", "quiz-model")
	doc := &types.Document{Name: "bio.pdf", TextContent: longText()}

	qs, err := a.GenerateQuiz(context.Background(), doc, types.QuestionCounts{MCQ: 1, SAQ: 1})
	require.NoError(t, err)
	assert.Len(t, qs, 2)

	require.Len(t, fc.got, 1)
	p := fc.got[0]
	assert.Equal(t, "quiz-model", p.Model)
	assert.Equal(t, 0.7, p.Temperature)
	assert.Equal(t, 2000, p.MaxTokens)
	require.Len(t, p.Messages, 1)
	assert.Contains(t, p.Messages[0].Content, "- 1 Multiple Choice Questions (MCQ)")
	assert.Contains(t, p.Messages[0].Content, "- 0 Long Answer Questions (LAQ)")
	assert.Contains(t, p.Messages[0].Content, doc.TextContent[:3000])
	assert.NotContains(t, p.Messages[0].Content, doc.TextContent[:3001])
}

func TestGenerateQuizShortText(t *testing.T) {
	fc := &fakeCompleter{answer: quizAnswer}
	a := New(logger.Nop(), fc, "", "")
	_, err := a.GenerateQuiz(context.Background(), &types.Document{TextContent: "too short"}, types.DefaultQuestionCounts)
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Empty(t, fc.got)
}

func TestGenerateQuizNoValidQuestions(t *testing.T) {
	a := New(logger.Nop(), &fakeCompleter{answer: `{"questions": []}`}, "", "")
	_, err := a.GenerateQuiz(context.Background(), &types.Document{TextContent: longText()}, types.DefaultQuestionCounts)
	assert.ErrorIs(t, err, types.ErrProvider)

	a = New(logger.Nop(), &fakeCompleter{answer: "not json"}, "", "")
	_, err = a.GenerateQuiz(context.Background(), &types.Document{TextContent: longText()}, types.DefaultQuestionCounts)
	assert.ErrorIs(t, err, types.ErrProvider)
}

func TestAgentNotConfigured(t *testing.T) {
	a := New(logger.Nop(), nil, "", "")
	_, err := a.Reply(context.Background(), "sys", nil)
	assert.ErrorIs(t, err, types.ErrUnavailable)
	_, err = a.GenerateQuiz(context.Background(), &types.Document{TextContent: longText()}, types.DefaultQuestionCounts)
	assert.ErrorIs(t, err, types.ErrUnavailable)
}

func TestReply(t *testing.T) {
	fc := &fakeCompleter{answer: "Mitosis has four phases."}
	a := New(logger.Nop(), fc, "chat-model", "quiz-model")
	history := []types.ChatMessage{{Role: types.RoleUser, Content: "phases?"}}

	got, err := a.Reply(context.Background(), "system prompt", history)
	require.NoError(t, err)
	assert.Equal(t, "Mitosis has four phases.", got)
	require.Len(t, fc.got, 1)
	assert.Equal(t, "system prompt", fc.got[0].System)
	assert.Equal(t, "chat-model", fc.got[0].Model)
	assert.Equal(t, 1000, fc.got[0].MaxTokens)

	fc.err = errors.New("upstream 500")
	_, err = a.Reply(context.Background(), "system prompt", history)
	assert.Error(t, err)
}

func TestToMessageContent(t *testing.T) {
	msgs := toMessageContent(Prompt{
		System: "sys",
		Messages: []types.ChatMessage{
			{Role: types.RoleUser, Content: "q"},
			{Role: types.RoleAssistant, Content: "a"},
		},
	})
	require.Len(t, msgs, 3)
	assert.Equal(t, "system", string(msgs[0].Role))
	assert.Equal(t, "human", string(msgs[1].Role))
	assert.Equal(t, "ai", string(msgs[2].Role))
}
