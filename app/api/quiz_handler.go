package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"studyrag/logger"
	"studyrag/quiz"
	"studyrag/store"
	"studyrag/types"
)

const attemptsLimit = 50

type QuizWriter interface {
	GenerateQuiz(ctx context.Context, doc *types.Document, counts types.QuestionCounts) ([]types.Question, error)
}

type QuizHandler struct {
	log    *logger.Logger
	docs   store.DocumentStorer
	store  store.QuizStorer
	writer QuizWriter
}

func NewQuizHandler(log *logger.Logger, docs store.DocumentStorer, st store.QuizStorer, writer QuizWriter) *QuizHandler {
	return &QuizHandler{log: log, docs: docs, store: st, writer: writer}
}

type publicQuestion struct {
	ID       uuid.UUID          `json:"id"`
	Kind     types.QuestionKind `json:"type"`
	Question string             `json:"question"`
	Options  []string           `json:"options"`
}

type publicQuiz struct {
	ID        uuid.UUID        `json:"id"`
	DocID     uuid.UUID        `json:"pdfId"`
	DocName   string           `json:"pdfName"`
	Questions []publicQuestion `json:"questions"`
	CreatedAt time.Time        `json:"createdAt"`
}

// hideAnswers strips correct answers and explanations.
func hideAnswers(q *types.Quiz) publicQuiz {
	return publicQuiz{
		ID:      q.ID,
		DocID:   q.DocID,
		DocName: q.DocName,
		Questions: lo.Map(q.Questions, func(qq types.Question, _ int) publicQuestion {
			return publicQuestion{ID: qq.ID, Kind: qq.Kind, Question: qq.Prompt, Options: qq.Options}
		}),
		CreatedAt: q.CreatedAt,
	}
}

func (h *QuizHandler) HandleGenerate(c *fiber.Ctx) error {
	var params types.GenerateQuizParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	doc, err := h.docs.GetDocumentByID(c.UserContext(), uuid.MustParse(params.PdfID))
	if err != nil {
		return err
	}
	questions, err := h.writer.GenerateQuiz(c.UserContext(), doc, params.Counts())
	if err != nil {
		return err
	}

	q := &types.Quiz{
		ID:        uuid.New(),
		DocID:     doc.ID,
		DocName:   doc.Name,
		Questions: questions,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.CreateQuiz(c.UserContext(), q); err != nil {
		return err
	}
	h.log.Info("quiz generated", "quiz", q.ID, "doc", doc.ID, "questions", len(questions))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Quiz generated successfully",
		"quiz":    hideAnswers(q),
	})
}

func (h *QuizHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	q, err := h.store.GetQuizByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(hideAnswers(q))
}

func (h *QuizHandler) HandleList(c *fiber.Ctx) error {
	docID, err := optionalID(c.Query("pdfId"))
	if err != nil {
		return err
	}
	quizzes, err := h.store.ListQuizzes(c.UserContext(), docID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"quizzes": lo.Map(quizzes, func(q types.Quiz, _ int) publicQuiz { return hideAnswers(&q) })})
}

type questionResult struct {
	QuestionID    uuid.UUID          `json:"questionId"`
	Question      string             `json:"question"`
	Kind          types.QuestionKind `json:"type"`
	Options       []string           `json:"options"`
	UserAnswer    string             `json:"userAnswer"`
	CorrectAnswer string             `json:"correctAnswer"`
	Explanation   string             `json:"explanation"`
	IsCorrect     bool               `json:"isCorrect"`
}

func (h *QuizHandler) HandleSubmit(c *fiber.Ctx) error {
	var params types.SubmitQuizParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}
	sub, err := quiz.ParseSubmission(params.Answers)
	if err != nil {
		return err
	}

	q, err := h.store.GetQuizByID(c.UserContext(), uuid.MustParse(params.QuizID))
	if err != nil {
		return err
	}

	answers := sub.Resolve(q)
	res := quiz.Score(answers)
	attempt := &types.QuizAttempt{
		ID:             uuid.New(),
		QuizID:         q.ID,
		DocID:          q.DocID,
		DocName:        q.DocName,
		Answers:        res.Records,
		Score:          res.Correct,
		TotalQuestions: res.Total,
		Percentage:     res.Percentage,
		CompletedAt:    time.Now().UTC(),
	}
	if err := h.store.CreateAttempt(c.UserContext(), attempt); err != nil {
		return err
	}
	h.log.Info("quiz submitted", "quiz", q.ID, "attempt", attempt.ID, "score", res.Correct, "total", res.Total)

	results := make([]questionResult, len(answers))
	for i, a := range answers {
		results[i] = questionResult{
			QuestionID:    a.Question.ID,
			Question:      a.Question.Prompt,
			Kind:          a.Question.Kind,
			Options:       a.Question.Options,
			UserAnswer:    a.Value,
			CorrectAnswer: a.Question.CorrectAnswer,
			Explanation:   a.Question.Explanation,
			IsCorrect:     res.Records[i].IsCorrect,
		}
	}

	return c.JSON(fiber.Map{
		"message": "Quiz submitted successfully",
		"result": fiber.Map{
			"attemptId":      attempt.ID,
			"score":          res.Correct,
			"totalQuestions": res.Total,
			"percentage":     res.Percentage,
			"results":        results,
		},
	})
}

func (h *QuizHandler) HandleAttempts(c *fiber.Ctx) error {
	docID, err := optionalID(c.Query("pdfId"))
	if err != nil {
		return err
	}
	attempts, err := h.store.ListAttempts(c.UserContext(), store.AttemptFilter{DocID: docID, Limit: attemptsLimit})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"attempts": attempts})
}

func (h *QuizHandler) HandleProgress(c *fiber.Ctx) error {
	ctx := c.UserContext()
	attempts, err := h.store.ListAttempts(ctx, store.AttemptFilter{})
	if err != nil {
		return err
	}
	stats := quiz.ComputeStats(attempts, func(id uuid.UUID) (*types.Quiz, bool) {
		q, err := h.store.GetQuizByID(ctx, id)
		if err != nil {
			return nil, false
		}
		return q, true
	})
	return c.JSON(stats)
}

func optionalID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, ErrInvalidID()
	}
	return &id, nil
}
