package logger

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"Debug console", Config{Level: "debug", Format: "console"}, false},
		{"Info json", Config{Level: "info", Format: "json"}, false},
		{"Warn default format", Config{Level: "warn"}, false},
		{"Empty level", Config{}, false},
		{"Invalid level", Config{Level: "loud"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, l)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collator.log")
	l, err := New(&Config{Level: "info", Output: path})
	require.NoError(t, err)

	l.Info("written to file")
	require.NoError(t, l.Sync())
	assert.FileExists(t, path)
}

func TestWithRayID(t *testing.T) {
	base, err := New(&Config{Level: "info"})
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Same(t, base, WithRayID(base, c))

		c.Locals("ray_id", "abc")
		assert.NotSame(t, base, WithRayID(base, c))
		return nil
	})

	_, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
}
