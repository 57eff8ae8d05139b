package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pynezz/scriptshield/internal/ratelimit"
	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/internal/util/cryptoutils"
	"github.com/pynezz/scriptshield/pkg/model"
)

func init() {
	util.SetLevel(util.LevelSilent)
}

func echoApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.SendString("subject=" + Subject(c))
	})
	app.Get("/", handlers...)
	return app
}

func body(t *testing.T, app *fiber.App, req *httptestRequest) (int, string) {
	t.Helper()
	r := httptest.NewRequest(req.method, req.target, nil)
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}
	resp, err := app.Test(r)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

type httptestRequest struct {
	method  string
	target  string
	headers map[string]string
}

func get(headers map[string]string) *httptestRequest {
	return &httptestRequest{method: fiber.MethodGet, target: "/", headers: headers}
}

func TestAuthenticate(t *testing.T) {
	app := echoApp(Authenticate("sk_"))

	code, msg := body(t, app, get(nil))
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, "API key required", msg)

	code, msg = body(t, app, get(map[string]string{HeaderAPIKey: "pk_live_abc"}))
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, "Invalid API key", msg)

	code, msg = body(t, app, get(map[string]string{HeaderAPIKey: "sk_anything"}))
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "subject="+cryptoutils.KeyOwnerID("sk_anything"), msg)
	assert.NotContains(t, msg, "sk_anything")
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret", "scriptshield", time.Hour, 24*time.Hour).
		WithClock(func() time.Time { return now })

	p := Principal{ID: "user_1", Tier: "premium", Permissions: []string{"script_access"}, HWID: "ABCD"}
	token, exp, err := issuer.Issue(p)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, p, claims.Principal())
	assert.Equal(t, "scriptshield", claims.Issuer)

	_, err = issuer.VerifyRefresh(token)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	refresh, _, err := issuer.IssueRefresh(p)
	require.NoError(t, err)
	_, err = issuer.VerifyRefresh(refresh)
	assert.NoError(t, err)
}

func TestTokenIssuer_RejectsExpiredAndForeign(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret", "scriptshield", time.Minute, time.Hour).
		WithClock(func() time.Time { return now })

	token, _, err := issuer.Issue(Principal{ID: "u"})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = issuer.Verify(token)
	assert.Error(t, err)

	other := NewTokenIssuer("other-secret", "scriptshield", time.Hour, time.Hour)
	foreign, _, err := other.Issue(Principal{ID: "u"})
	require.NoError(t, err)
	_, err = issuer.Verify(foreign)
	assert.Error(t, err)
}

func TestBouncer(t *testing.T) {
	issuer := NewTokenIssuer("secret", "scriptshield", time.Hour, time.Hour)
	app := echoApp(Bouncer(issuer))

	code, _ := body(t, app, get(nil))
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = body(t, app, get(map[string]string{fiber.HeaderAuthorization: "Bearer nope"}))
	assert.Equal(t, fiber.StatusUnauthorized, code)

	token, _, err := issuer.Issue(Principal{ID: "user_42"})
	require.NoError(t, err)
	code, msg := body(t, app, get(map[string]string{fiber.HeaderAuthorization: "Bearer " + token}))
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "subject=user_42", msg)
}

func TestBearerOrKey(t *testing.T) {
	issuer := NewTokenIssuer("secret", "scriptshield", time.Hour, time.Hour)
	app := echoApp(BearerOrKey(issuer, "sk_"))

	code, msg := body(t, app, get(map[string]string{HeaderAPIKey: "sk_test_key"}))
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "subject="+cryptoutils.KeyOwnerID("sk_test_key"), msg)

	// a bad bearer token is not rescued by a valid key
	code, _ = body(t, app, get(map[string]string{
		fiber.HeaderAuthorization: "Bearer broken",
		HeaderAPIKey:              "sk_test_key",
	}))
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestRateLimit(t *testing.T) {
	l := ratelimit.New(2, time.Minute)
	app := echoApp(RateLimit(l, ByIP("api_")))

	for i := 0; i < 2; i++ {
		code, _ := body(t, app, get(nil))
		require.Equal(t, fiber.StatusOK, code)
	}

	r := httptest.NewRequest(fiber.MethodGet, "/", nil)
	resp, err := app.Test(r)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
}

func TestRateLimit_EmptyKeySkips(t *testing.T) {
	l := ratelimit.New(0, time.Minute)
	app := echoApp(RateLimit(l, func(*fiber.Ctx) string { return "" }))

	code, _ := body(t, app, get(nil))
	assert.Equal(t, fiber.StatusOK, code)
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(model.CORSConfig{
		AllowOrigins: "*",
		AllowMethods: "GET,POST",
		AllowHeaders: "Content-Type,X-API-Key",
	}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	r := httptest.NewRequest(fiber.MethodOptions, "/", nil)
	r.Header.Set(fiber.HeaderOrigin, "https://example.com")
	r.Header.Set(fiber.HeaderAccessControlRequestMethod, fiber.MethodGet)
	resp, err := app.Test(r)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlAllowMethods), "POST")

	r = httptest.NewRequest(fiber.MethodGet, "/", nil)
	r.Header.Set(fiber.HeaderOrigin, "https://example.com")
	resp, err = app.Test(r)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}
