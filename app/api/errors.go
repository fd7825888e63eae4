package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"studyrag/logger"
	"studyrag/types"
)

const (
	KindNotFound    = "not_found"
	KindValidation  = "validation"
	KindProvider    = "external_provider"
	KindUnavailable = "unavailable"
	KindInternal    = "internal"
	KindHTTP        = "http"
)

// NewErrorHandler maps handler errors to {kind, error} JSON responses.
func NewErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			apiErr   Error
			valErr   ValidationError
			fiberErr *fiber.Error
		)
		switch {
		case errors.As(err, &apiErr):
		case errors.As(err, &valErr):
			return c.Status(valErr.Status).JSON(valErr)
		case errors.Is(err, types.ErrNotFound):
			apiErr = NewError(fiber.StatusNotFound, KindNotFound, err.Error())
		case errors.Is(err, types.ErrValidation):
			apiErr = NewError(fiber.StatusBadRequest, KindValidation, err.Error())
		case errors.Is(err, types.ErrProvider):
			apiErr = NewError(fiber.StatusBadGateway, KindProvider, err.Error())
		case errors.Is(err, types.ErrUnavailable):
			apiErr = NewError(fiber.StatusServiceUnavailable, KindUnavailable, "the required external service is not configured")
		case errors.As(err, &fiberErr):
			apiErr = NewError(fiberErr.Code, kindForStatus(fiberErr.Code), fiberErr.Message)
		default:
			apiErr = NewError(fiber.StatusInternalServerError, KindInternal, "internal server error")
		}

		if apiErr.Code >= fiber.StatusInternalServerError {
			log.Error("request failed", "method", c.Method(), "path", c.Path(), "status", apiErr.Code, "error", err)
		} else {
			log.Debug("request rejected", "method", c.Method(), "path", c.Path(), "status", apiErr.Code, "error", err)
		}
		return c.Status(apiErr.Code).JSON(apiErr)
	}
}

func kindForStatus(code int) string {
	switch {
	case code == fiber.StatusNotFound:
		return KindNotFound
	case code >= fiber.StatusInternalServerError:
		return KindInternal
	}
	return KindHTTP
}

type Error struct {
	Code    int    `json:"-"`
	Kind    string `json:"kind"`
	Message string `json:"error"`
}

type ValidationError struct {
	Status  int               `json:"-"`
	Kind    string            `json:"kind"`
	Message string            `json:"error"`
	Errors  map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status:  fiber.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "validation failed",
		Errors:  errors,
	}
}

// Error implements the Error interface
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, kind, msg string) Error {
	return Error{
		Code:    code,
		Kind:    kind,
		Message: msg,
	}
}

func ErrBadRequest() Error {
	return NewError(fiber.StatusBadRequest, KindValidation, "invalid JSON request")
}

func ErrInvalidID() Error {
	return NewError(fiber.StatusBadRequest, KindValidation, "invalid id given")
}

func ErrNotFound[T any](arg T, resource string) Error {
	return NewError(fiber.StatusNotFound, KindNotFound, fmt.Sprintf("%s with %v not found", resource, arg))
}
