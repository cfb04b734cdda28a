package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(New(cfg))
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/watchers", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestAuth(t *testing.T) {
	app := setupApp(Config{ApiKey: "secret", Skip: []string{"/health"}})

	tests := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{"Missing key", "/watchers", "", fiber.StatusUnauthorized},
		{"Wrong key", "/watchers", "nope", fiber.StatusUnauthorized},
		{"Header key", "/watchers", "secret", fiber.StatusOK},
		{"Query key", "/watchers?api_key=secret", "", fiber.StatusOK},
		{"Skipped path", "/health", "", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set(HeaderName, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAuth_Disabled(t *testing.T) {
	app := setupApp(Config{})
	resp, err := app.Test(httptest.NewRequest("GET", "/watchers", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
