package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyrag/logger"
	"studyrag/types"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{"api error", ErrInvalidID(), fiber.StatusBadRequest, KindValidation},
		{"not found", fmt.Errorf("quiz x: %w", types.ErrNotFound), fiber.StatusNotFound, KindNotFound},
		{"validation", fmt.Errorf("%w: empty", types.ErrValidation), fiber.StatusBadRequest, KindValidation},
		{"provider", fmt.Errorf("%w: timeout", types.ErrProvider), fiber.StatusBadGateway, KindProvider},
		{"unavailable", types.ErrUnavailable, fiber.StatusServiceUnavailable, KindUnavailable},
		{"fiber error", fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed, KindHTTP},
		{"fiber not found", fiber.ErrNotFound, fiber.StatusNotFound, KindNotFound},
		{"unknown", errors.New("disk on fire"), fiber.StatusInternalServerError, KindInternal},
		{"struct validation", NewValidationError(map[string]string{"quizId": "failed on 'required' tag"}), fiber.StatusUnprocessableEntity, KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(logger.Nop())})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.code, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.kind, body["kind"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestErrorHandlerHidesInternalDetails(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(logger.Nop())})
	app.Get("/", func(c *fiber.Ctx) error { return errors.New("password=hunter2") })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body Error
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "internal server error", body.Message)
}

func TestChatPreviewHelpers(t *testing.T) {
	assert.Equal(t, "No messages yet", lastMessagePreview(nil))
}
