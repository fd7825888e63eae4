package quiz

import (
	"math"
	"strings"

	"studyrag/types"
)

type Result struct {
	Records    []types.AnswerRecord
	Correct    int
	Total      int
	Percentage int
}

// Percent is round(100*part/whole), or 0 when whole is 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}

// Matches compares answers ignoring case and surrounding whitespace.
func Matches(submitted, correct string) bool {
	return strings.ToLower(strings.TrimSpace(submitted)) == strings.ToLower(strings.TrimSpace(correct))
}

// Score grades resolved answers. Total is the number of answers that matched a
// question of the quiz.
func Score(answers []Answer) Result {
	res := Result{Records: make([]types.AnswerRecord, 0, len(answers))}
	for _, a := range answers {
		ok := Matches(a.Value, a.Question.CorrectAnswer)
		if ok {
			res.Correct++
		}
		res.Records = append(res.Records, types.AnswerRecord{
			QuestionID:    a.Question.ID,
			Kind:          a.Question.Kind,
			UserAnswer:    a.Value,
			CorrectAnswer: a.Question.CorrectAnswer,
			IsCorrect:     ok,
		})
	}
	res.Total = len(answers)
	res.Percentage = Percent(res.Correct, res.Total)
	return res
}
