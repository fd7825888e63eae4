package quiz

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyrag/types"
)

func mcq(correct string) types.Question {
	return types.Question{
		ID:            uuid.New(),
		Kind:          types.KindMCQ,
		Prompt:        "pick " + correct,
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: correct,
	}
}

func threeMCQ() *types.Quiz {
	return &types.Quiz{ID: uuid.New(), DocID: uuid.New(), Questions: []types.Question{mcq("A"), mcq("B"), mcq("C")}}
}

func TestScoreTwoOfThree(t *testing.T) {
	q := threeMCQ()
	sub := Submission{ByIndex: map[int]string{0: "A", 1: "D", 2: "C"}}

	res := Score(sub.Resolve(q))
	assert.Equal(t, 2, res.Correct)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 67, res.Percentage)
	require.Len(t, res.Records, 3)
	assert.False(t, res.Records[1].IsCorrect)
	assert.Equal(t, types.KindMCQ, res.Records[1].Kind)
	assert.Equal(t, "B", res.Records[1].CorrectAnswer)
}

func TestScoreAllCorrect(t *testing.T) {
	q := threeMCQ()
	sub := Submission{ByQuestionID: map[uuid.UUID]string{
		q.Questions[0].ID: " a ",
		q.Questions[1].ID: "b",
		q.Questions[2].ID: "C\n",
	}}
	res := Score(sub.Resolve(q))
	assert.Equal(t, 3, res.Correct)
	assert.Equal(t, 100, res.Percentage)
}

func TestScoreEmpty(t *testing.T) {
	res := Score(nil)
	assert.Zero(t, res.Total)
	assert.Zero(t, res.Percentage)
	assert.NotNil(t, res.Records)
}

func TestResolveSkipsUnknownQuestions(t *testing.T) {
	q := threeMCQ()
	sub := Submission{ByQuestionID: map[uuid.UUID]string{
		q.Questions[2].ID: "C",
		uuid.New():        "A",
	}}
	answers := sub.Resolve(q)
	require.Len(t, answers, 1)
	res := Score(answers)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 100, res.Percentage)

	byIndex := Submission{ByIndex: map[int]string{1: "B", 7: "A"}}
	assert.Len(t, byIndex.Resolve(q), 1)
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("  Photosynthesis ", "photosynthesis"))
	assert.False(t, Matches("photo synthesis", "photosynthesis"))
	assert.True(t, Matches("", "  "))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 0))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 50, Percent(1, 2))
	assert.Equal(t, 100, Percent(4, 4))
}

func TestParseSubmission(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()

	for _, tc := range []struct {
		name    string
		raw     string
		byID    map[uuid.UUID]string
		byIndex map[int]string
	}{
		{
			name: "pairs",
			raw:  fmt.Sprintf(`[{"questionId":%q,"answer":"A"},{"questionId":%q,"userAnswer":"x"}]`, id1, id2),
			byID: map[uuid.UUID]string{id1: "A", id2: "x"},
		},
		{
			name: "object by id",
			raw:  fmt.Sprintf(`{%q:"A",%q:null}`, id1, id2),
			byID: map[uuid.UUID]string{id1: "A", id2: ""},
		},
		{
			name:    "object by index",
			raw:     `{"0":"A","2":"C"}`,
			byIndex: map[int]string{0: "A", 2: "C"},
		},
		{
			name:    "positional list",
			raw:     `["A", "B", 3, true]`,
			byIndex: map[int]string{0: "A", 1: "B", 2: "3", 3: "true"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sub, err := ParseSubmission(json.RawMessage(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.byID, sub.ByQuestionID)
			assert.Equal(t, tc.byIndex, sub.ByIndex)
		})
	}
}

func TestParseSubmissionRejects(t *testing.T) {
	for _, raw := range []string{
		``,
		`null`,
		`[]`,
		`{}`,
		`"A"`,
		`{"zero":"A"}`,
		`{"-1":"A"}`,
		fmt.Sprintf(`{"0":"A",%q:"B"}`, uuid.New()),
		`[{"questionId":"nope","answer":"A"}]`,
		`["A", {"x":1}]`,
		`[["nested"]]`,
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseSubmission(json.RawMessage(raw))
			assert.ErrorIs(t, err, types.ErrValidation)
		})
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, nil)
	assert.Zero(t, stats.TotalAttempts)
	assert.Zero(t, stats.AverageScore)
	assert.Empty(t, stats.RecentAttempts)
	assert.NotNil(t, stats.RecentAttempts)
	for _, k := range types.QuestionKinds {
		assert.Equal(t, types.KindStats{}, stats.PerformanceByType[k])
	}
}

func TestComputeStats(t *testing.T) {
	saq := types.Question{ID: uuid.New(), Kind: types.KindSAQ, CorrectAnswer: "x"}
	legacyQuiz := &types.Quiz{ID: uuid.New(), Questions: []types.Question{saq}}

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	attempts := []types.QuizAttempt{
		{
			ID: uuid.New(), QuizID: uuid.New(), DocName: "a.pdf", Score: 2, TotalQuestions: 3, Percentage: 67,
			CompletedAt: base,
			Answers: []types.AnswerRecord{
				{Kind: types.KindMCQ, IsCorrect: true},
				{Kind: types.KindMCQ, IsCorrect: false},
				{Kind: types.KindLAQ, IsCorrect: true},
			},
		},
		{
			ID: uuid.New(), QuizID: legacyQuiz.ID, DocName: "b.pdf", Score: 0, TotalQuestions: 1, Percentage: 0,
			CompletedAt: base.Add(time.Hour),
			Answers:     []types.AnswerRecord{{QuestionID: saq.ID, IsCorrect: false}},
		},
	}
	lookups := 0
	stats := ComputeStats(attempts, func(id uuid.UUID) (*types.Quiz, bool) {
		lookups++
		if id == legacyQuiz.ID {
			return legacyQuiz, true
		}
		return nil, false
	})

	assert.Equal(t, 2, stats.TotalAttempts)
	assert.Equal(t, 50, stats.AverageScore)
	assert.Equal(t, 2, stats.CorrectAnswers)
	assert.Equal(t, 2, stats.IncorrectAnswers)
	assert.Equal(t, 4, stats.CorrectAnswers+stats.IncorrectAnswers)

	assert.Equal(t, types.KindStats{Correct: 1, Total: 2, Percentage: 50}, stats.PerformanceByType[types.KindMCQ])
	assert.Equal(t, types.KindStats{Correct: 0, Total: 1, Percentage: 0}, stats.PerformanceByType[types.KindSAQ])
	assert.Equal(t, types.KindStats{Correct: 1, Total: 1, Percentage: 100}, stats.PerformanceByType[types.KindLAQ])
	assert.Equal(t, 1, lookups)

	require.Len(t, stats.RecentAttempts, 2)
	assert.Equal(t, "b.pdf", stats.RecentAttempts[0].DocName)
}

func TestComputeStatsRecentLimit(t *testing.T) {
	base := time.Now()
	var attempts []types.QuizAttempt
	for i := 0; i < 15; i++ {
		attempts = append(attempts, types.QuizAttempt{
			ID: uuid.New(), Score: 1, TotalQuestions: 2, CompletedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	stats := ComputeStats(attempts, nil)
	require.Len(t, stats.RecentAttempts, 10)
	assert.Equal(t, attempts[14].ID, stats.RecentAttempts[0].ID)
	assert.Equal(t, attempts[5].ID, stats.RecentAttempts[9].ID)
	assert.Equal(t, 50, stats.AverageScore)
	assert.Equal(t, 15, stats.CorrectAnswers)
	assert.Equal(t, 15, stats.IncorrectAnswers)
}
