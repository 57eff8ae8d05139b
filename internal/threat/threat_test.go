package threat

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pynezz/scriptshield/internal/util"
)

func init() {
	util.SetLevel(util.LevelSilent)
}

func titles(ms []Match) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Title)
	}
	return out
}

func TestDetector_Builtin(t *testing.T) {
	d, err := New("")
	require.NoError(t, err)
	assert.Len(t, d.Titles(), 5)

	ctx := context.Background()

	matches, err := d.Inspect(ctx, Event{Method: "GET", Path: "/api/status", UserAgent: "Mozilla/5.0", Status: 200})
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = d.Inspect(ctx, Event{Method: "GET", Path: "/api/status", UserAgent: "sqlmap/1.7", Status: 200})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Security scanner user agent", matches[0].Title)
	assert.Equal(t, "high", matches[0].Severity())
	assert.Equal(t, "threat", matches[0].Kind())

	matches, err = d.Inspect(ctx, Event{Method: "POST", Path: "/api/auth/verify-key", Status: 401})
	require.NoError(t, err)
	assert.Equal(t, []string{"Failed API key authentication"}, titles(matches))
	assert.Equal(t, "warning", matches[0].Kind())

	matches, err = d.Inspect(ctx, Event{Method: "POST", Path: "/api/auth/verify-key", Status: 200})
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = d.Inspect(ctx, Event{Method: "GET", Path: "/static/../../etc/passwd", Status: 404})
	require.NoError(t, err)
	assert.Contains(t, titles(matches), "Path traversal attempt")
}

func TestDetector_ExtraDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beta.yml"), []byte(`
title: Beta loader requested
id: 11111111-2222-3333-4444-555555555555
logsource:
  category: webserver
detection:
  selection:
    query|contains: 'version=beta'
  condition: selection
level: informational
`), 0o644))

	d, err := New(dir)
	require.NoError(t, err)
	assert.Len(t, d.Titles(), 6)

	matches, err := d.Inspect(context.Background(), Event{Path: "/api/script", Query: "version=beta", Status: 200})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "low", matches[0].Severity())
}

func TestDetector_MissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestMiddleware_RecordsWithoutBlocking(t *testing.T) {
	d, err := New("")
	require.NoError(t, err)

	var recorded []Match
	rec := RecorderFunc(func(_ context.Context, m Match, ev Event) error {
		recorded = append(recorded, m)
		assert.Equal(t, fiber.StatusUnauthorized, ev.Status)
		return nil
	})

	app := fiber.New()
	app.Use(Middleware(d, rec))
	app.Post("/api/auth", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid API key")
	})

	req := httptest.NewRequest(fiber.MethodPost, "/api/auth", nil)
	req.Header.Set(fiber.HeaderUserAgent, "sqlmap/1.7")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.ElementsMatch(t, []string{"Security scanner user agent", "Failed API key authentication"}, titles(recorded))
}
