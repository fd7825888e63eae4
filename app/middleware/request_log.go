package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"studyrag/logger"
)

// RequestLog logs method, path, status and duration of every request outside skipPrefix.
func RequestLog(log *logger.Logger, skipPrefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if skipPrefix != "" && strings.HasPrefix(path, skipPrefix) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		log.Info("request",
			"method", c.Method(),
			"path", path,
			"status", status,
			"duration", time.Since(start),
		)
		return err
	}
}
