package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"engagedash/internal/middleware"
	"engagedash/internal/validation"
)

// SetTheme stores the visitor's light/dark preference in the session.
func SetTheme(c fiber.Ctx) error {
	theme := c.FormValue("theme")
	if ok, msg := validation.ValidateTheme(theme); !ok {
		if isHTMX(c) {
			return htmxError(c, msg)
		}
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session unavailable")
	}
	sess.Set(middleware.KeyTheme, theme)

	if isHTMX(c) {
		c.Set("HX-Refresh", "true")
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Redirect().To("/")
}
