package api

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
)

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}

// queryInt parses an integer query parameter, returning fallback when absent.
func queryInt(c fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key, "")
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
