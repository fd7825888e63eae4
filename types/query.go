package types

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

var validate = newValidator()

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func validateStruct(params any) map[string]string {
	if err := validate.Struct(params); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			return map[string]string{"request": err.Error()}
		}
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

type QuestionCounts struct {
	MCQ int `json:"MCQ" validate:"min=0,max=10"`
	SAQ int `json:"SAQ" validate:"min=0,max=10"`
	LAQ int `json:"LAQ" validate:"min=0,max=10"`
}

var DefaultQuestionCounts = QuestionCounts{MCQ: 3, SAQ: 2, LAQ: 1}

func (c QuestionCounts) Total() int {
	return c.MCQ + c.SAQ + c.LAQ
}

type GenerateQuizParams struct {
	PdfID         string          `json:"pdfId" validate:"required,uuid"`
	QuestionTypes *QuestionCounts `json:"questionTypes"`
}

// Counts returns the requested question counts, or the defaults when none were sent.
func (params *GenerateQuizParams) Counts() QuestionCounts {
	if params.QuestionTypes == nil {
		return DefaultQuestionCounts
	}
	return *params.QuestionTypes
}

func (params *GenerateQuizParams) Validate() map[string]string {
	errors := validateStruct(params)
	if params.QuestionTypes != nil && params.QuestionTypes.Total() == 0 {
		if errors == nil {
			errors = make(map[string]string)
		}
		errors["questionTypes"] = "at least one question is required"
	}
	return errors
}

type SubmitQuizParams struct {
	QuizID  string          `json:"quizId" validate:"required,uuid"`
	Answers json.RawMessage `json:"answers" validate:"required"`
}

func (params *SubmitQuizParams) Validate() map[string]string {
	return validateStruct(params)
}

type CreateChatParams struct {
	Title   string  `json:"title" validate:"max=200"`
	PdfID   *string `json:"pdfId" validate:"omitempty,uuid"`
	PdfName *string `json:"pdfName" validate:"omitempty,max=255"`
}

func (params *CreateChatParams) Validate() map[string]string {
	return validateStruct(params)
}

type MessageParams struct {
	Message string `json:"message" validate:"required,max=8000"`
}

func (params *MessageParams) Validate() map[string]string {
	if strings.TrimSpace(params.Message) == "" {
		return map[string]string{"message": "failed on 'required' tag"}
	}
	return validateStruct(params)
}
