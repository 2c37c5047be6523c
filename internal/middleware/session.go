package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
)

// Session keys and locals set by SessionState.
const (
	KeyTheme          = "theme"
	KeySessionStarted = "session_started"

	DefaultTheme = "light"
)

// SessionState loads the visitor's theme and session start time from the
// session into locals. A new session records its start time. Must run after
// the session middleware.
func SessionState(c fiber.Ctx) error {
	theme := DefaultTheme
	started := time.Now().UTC()

	if sess := session.FromContext(c); sess != nil {
		if t, ok := sess.Get(KeyTheme).(string); ok && t != "" {
			theme = t
		}
		raw, _ := sess.Get(KeySessionStarted).(string)
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			started = ts
		} else {
			sess.Set(KeySessionStarted, started.Format(time.RFC3339))
		}
	}

	c.Locals(KeyTheme, theme)
	c.Locals(KeySessionStarted, started)
	return c.Next()
}

// Theme returns the theme SessionState stored for this request.
func Theme(c fiber.Ctx) string {
	if t, ok := c.Locals(KeyTheme).(string); ok {
		return t
	}
	return DefaultTheme
}

// SessionStarted returns when the visitor's session began, or the zero time
// when SessionState did not run.
func SessionStarted(c fiber.Ctx) time.Time {
	t, _ := c.Locals(KeySessionStarted).(time.Time)
	return t
}
