package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"studyrag/types"
)

// Submission is the answer set of one quiz attempt, addressed either by
// question id or by question position. Exactly one of the fields is set.
type Submission struct {
	ByQuestionID map[uuid.UUID]string
	ByIndex      map[int]string
}

// Answer is a submitted answer resolved against a quiz.
type Answer struct {
	Question types.Question
	Value    string
}

func (s Submission) Len() int {
	return len(s.ByQuestionID) + len(s.ByIndex)
}

// Resolve maps the submission onto quiz questions in quiz order. Answers that
// address no question of the quiz are dropped.
func (s Submission) Resolve(q *types.Quiz) []Answer {
	out := make([]Answer, 0, s.Len())
	for i, question := range q.Questions {
		var (
			v  string
			ok bool
		)
		if s.ByQuestionID != nil {
			v, ok = s.ByQuestionID[question.ID]
		} else {
			v, ok = s.ByIndex[i]
		}
		if ok {
			out = append(out, Answer{Question: question, Value: v})
		}
	}
	return out
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: answers: %s", types.ErrValidation, fmt.Sprintf(format, args...))
}

// ParseSubmission accepts
//
//	[{"questionId": "...", "answer": "..."}, ...]
//	{"<question id>": "...", ...}
//	{"0": "...", "1": "...", ...}
//	["...", "...", ...]
func ParseSubmission(raw json.RawMessage) (Submission, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Submission{}, invalid("no answers submitted")
	}

	var (
		sub Submission
		err error
	)
	switch raw[0] {
	case '[':
		sub, err = parseList(raw)
	case '{':
		sub, err = parseObject(raw)
	default:
		return Submission{}, invalid("expected an array or an object")
	}
	if err != nil {
		return Submission{}, err
	}
	if sub.Len() == 0 {
		return Submission{}, invalid("no answers submitted")
	}
	return sub, nil
}

type pairAnswer struct {
	QuestionID string  `json:"questionId"`
	Answer     *string `json:"answer"`
	UserAnswer *string `json:"userAnswer"`
}

func parseList(raw json.RawMessage) (Submission, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return Submission{}, invalid("%v", err)
	}
	if len(items) == 0 {
		return Submission{}, nil
	}

	if first := bytes.TrimSpace(items[0]); len(first) > 0 && first[0] == '{' {
		byID := make(map[uuid.UUID]string, len(items))
		for i, item := range items {
			var p pairAnswer
			if err := json.Unmarshal(item, &p); err != nil {
				return Submission{}, invalid("item %d: %v", i, err)
			}
			id, err := uuid.Parse(p.QuestionID)
			if err != nil {
				return Submission{}, invalid("item %d: invalid questionId %q", i, p.QuestionID)
			}
			switch {
			case p.Answer != nil:
				byID[id] = *p.Answer
			case p.UserAnswer != nil:
				byID[id] = *p.UserAnswer
			default:
				byID[id] = ""
			}
		}
		return Submission{ByQuestionID: byID}, nil
	}

	byIndex := make(map[int]string, len(items))
	for i, item := range items {
		v, err := answerValue(item)
		if err != nil {
			return Submission{}, invalid("item %d: %v", i, err)
		}
		byIndex[i] = v
	}
	return Submission{ByIndex: byIndex}, nil
}

func parseObject(raw json.RawMessage) (Submission, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Submission{}, invalid("%v", err)
	}

	byID := make(map[uuid.UUID]string, len(obj))
	byIndex := make(map[int]string, len(obj))
	for key, val := range obj {
		v, err := answerValue(val)
		if err != nil {
			return Submission{}, invalid("%s: %v", key, err)
		}
		if id, err := uuid.Parse(key); err == nil {
			byID[id] = v
			continue
		}
		if idx, err := strconv.Atoi(key); err == nil && idx >= 0 {
			byIndex[idx] = v
			continue
		}
		return Submission{}, invalid("key %q is neither a question id nor an index", key)
	}

	switch {
	case len(byID) > 0 && len(byIndex) > 0:
		return Submission{}, invalid("mixed question ids and indexes")
	case len(byIndex) > 0:
		return Submission{ByIndex: byIndex}, nil
	}
	return Submission{ByQuestionID: byID}, nil
}

// answerValue accepts strings, numbers and booleans; null is an empty answer.
func answerValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	switch v.(type) {
	case float64, bool:
		return string(raw), nil
	}
	return "", fmt.Errorf("answer must be a string")
}
