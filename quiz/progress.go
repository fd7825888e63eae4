package quiz

import (
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"studyrag/types"
)

const recentAttemptsLimit = 10

// QuizLookup finds the quiz an attempt was taken against. It is consulted only
// for answer records that predate the stored question kind.
type QuizLookup func(id uuid.UUID) (*types.Quiz, bool)

// ComputeStats aggregates attempts into the progress summary.
func ComputeStats(attempts []types.QuizAttempt, lookup QuizLookup) types.ProgressStats {
	stats := types.ProgressStats{
		TotalAttempts:     len(attempts),
		PerformanceByType: make(map[types.QuestionKind]types.KindStats, len(types.QuestionKinds)),
		RecentAttempts:    []types.RecentAttempt{},
	}
	for _, k := range types.QuestionKinds {
		stats.PerformanceByType[k] = types.KindStats{}
	}
	if len(attempts) == 0 {
		return stats
	}

	score := lo.SumBy(attempts, func(a types.QuizAttempt) int { return a.Score })
	total := lo.SumBy(attempts, func(a types.QuizAttempt) int { return a.TotalQuestions })
	stats.AverageScore = Percent(score, total)
	stats.CorrectAnswers = score
	stats.IncorrectAnswers = total - score

	cache := map[uuid.UUID]*types.Quiz{}
	quizFor := func(id uuid.UUID) *types.Quiz {
		if q, ok := cache[id]; ok {
			return q
		}
		var q *types.Quiz
		if lookup != nil {
			if found, ok := lookup(id); ok {
				q = found
			}
		}
		cache[id] = q
		return q
	}

	for _, a := range attempts {
		for _, rec := range a.Answers {
			kind := rec.Kind
			if kind == "" {
				if q := quizFor(a.QuizID); q != nil {
					if question, ok := q.Question(rec.QuestionID); ok {
						kind = question.Kind
					}
				}
			}
			ks, ok := stats.PerformanceByType[kind]
			if !ok {
				continue
			}
			ks.Total++
			if rec.IsCorrect {
				ks.Correct++
			}
			stats.PerformanceByType[kind] = ks
		}
	}
	for k, ks := range stats.PerformanceByType {
		ks.Percentage = Percent(ks.Correct, ks.Total)
		stats.PerformanceByType[k] = ks
	}

	sorted := slices.Clone(attempts)
	slices.SortStableFunc(sorted, func(a, b types.QuizAttempt) int { return b.CompletedAt.Compare(a.CompletedAt) })
	if len(sorted) > recentAttemptsLimit {
		sorted = sorted[:recentAttemptsLimit]
	}
	stats.RecentAttempts = lo.Map(sorted, func(a types.QuizAttempt, _ int) types.RecentAttempt {
		return types.RecentAttempt{
			ID:             a.ID,
			DocName:        a.DocName,
			Score:          a.Score,
			TotalQuestions: a.TotalQuestions,
			Percentage:     a.Percentage,
			CompletedAt:    a.CompletedAt,
		}
	})
	return stats
}
