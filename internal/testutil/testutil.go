// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/gofiber/template/html/v3"

	"engagedash/internal/engine"
	"engagedash/internal/features"
	"engagedash/internal/middleware"
)

// root returns the repository root, located relative to this file.
func root() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}

// ViewsDir returns the absolute path of the HTML templates.
func ViewsDir() string {
	return filepath.Join(root(), "views")
}

// StaticDir returns the absolute path of the static assets.
func StaticDir() string {
	return filepath.Join(root(), "static")
}

// DatasetPath and ModelPath point at the small engine fixtures.
func DatasetPath() string {
	return filepath.Join(root(), "internal", "engine", "testdata", "posts.csv")
}

func ModelPath() string {
	return filepath.Join(root(), "internal", "engine", "testdata", "model.json")
}

// Engine loads the fixture engine and closes it when the test ends.
func Engine(t *testing.T) *engine.Engine {
	t.Helper()

	eng, err := engine.Load(context.Background(), engine.Options{
		DatasetPath: DatasetPath(),
		ModelPath:   ModelPath(),
		Pipeline:    features.DefaultPipeline(),
	})
	if err != nil {
		t.Fatalf("failed to load test engine: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng
}

// NewApp creates a Fiber app with the real views, layout and session state
// middleware, for handler tests that cannot import the server package.
func NewApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		Views:       html.New(ViewsDir(), ".html"),
		ViewsLayout: "layouts/main",
	})
	sessionMiddleware, _ := session.NewWithStore(session.Config{
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	app.Use(sessionMiddleware)
	app.Use(middleware.SessionState)
	return app
}
