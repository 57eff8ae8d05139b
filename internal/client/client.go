// Package client talks to the ScriptShield API the way the site's pages do:
// session headers on every request, short lived response caching and a
// local rate limit in front of the chattier endpoints.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pynezz/scriptshield/internal/cache"
	"github.com/pynezz/scriptshield/internal/ratelimit"
	"github.com/pynezz/scriptshield/internal/session"
	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/internal/util/cryptoutils"
	"github.com/pynezz/scriptshield/pkg/version"
)

const (
	DefaultTimeout = 10 * time.Second
	Platform       = "cli"
)

// Cache lifetimes per endpoint.
const (
	verifyTTL   = 30 * time.Second
	scriptTTL   = time.Minute
	versionsTTL = 5 * time.Minute
	statusTTL   = 30 * time.Second
)

type Client struct {
	baseURL string
	session *session.Session
	timeout time.Duration

	responses *cache.Cache[[]byte]
	scripts   *cache.Cache[Script]

	verifyLimit *ratelimit.Limiter
	scriptLimit *ratelimit.Limiter

	now func() time.Time
}

// New returns a client for baseURL, e.g. http://localhost:3001/api.
func New(baseURL string, sess *session.Session) *Client {
	if sess == nil {
		sess = session.New(session.NewMemoryStorage())
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		session:     sess,
		timeout:     DefaultTimeout,
		responses:   cache.New[[]byte](cache.DefaultTTL),
		scripts:     cache.New[Script](scriptTTL),
		verifyLimit: ratelimit.New(5, time.Minute),
		scriptLimit: ratelimit.New(20, time.Minute),
		now:         time.Now,
	}
}

func (c *Client) WithTimeout(d time.Duration) *Client {
	c.timeout = d
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Session() *session.Session {
	return c.session
}

// RequestID returns req_<unix ms>_<9 random characters>.
func RequestID() string {
	suffix, err := cryptoutils.GenerateRandomString(5)
	if err != nil {
		suffix = "0000000000"
	}
	return fmt.Sprintf("req_%d_%s", util.UnixMilliTimestamp(), suffix[:9])
}

type response struct {
	status int
	body   []byte
	header map[string]string
}

func agentFor(method, target string) *fiber.Agent {
	switch method {
	case fiber.MethodPost:
		return fiber.Post(target)
	case fiber.MethodPut:
		return fiber.Put(target)
	case fiber.MethodDelete:
		return fiber.Delete(target)
	default:
		return fiber.Get(target)
	}
}

// send performs a request with the session headers attached. Only
// transport failures are returned as errors.
func (c *Client) send(method, path string, query url.Values, body interface{}) (*response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	a := agentFor(method, target)
	for k, v := range c.session.AuthHeaders() {
		a.Set(k, v)
	}
	a.Set("X-Client-Version", version.ClientVersion)
	a.Set("X-Platform", Platform)
	a.Set(fiber.HeaderXRequestID, RequestID())
	if body != nil {
		a.JSON(body)
	}
	if c.timeout > 0 {
		a.Timeout(c.timeout)
	}

	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	a.SetResponse(resp)

	status, data, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s %s: %w", method, path, errors.Join(errs...))
	}

	r := &response{status: status, body: data, header: make(map[string]string)}
	resp.Header.VisitAll(func(k, v []byte) {
		r.header[string(k)] = string(v)
	})
	return r, nil
}

// check turns error statuses and error bodies into an APIError.
func check(r *response) error {
	if r.status < 200 || r.status >= 300 {
		return failure(r.status, r.body)
	}
	if apiErr := embeddedError(r.status, r.body); apiErr != nil {
		return apiErr
	}
	return nil
}

// call sends a request and decodes the JSON response into out.
func (c *Client) call(method, path string, query url.Values, body, out interface{}) error {
	r, err := c.send(method, path, query, body)
	if err != nil {
		return err
	}
	if err := check(r); err != nil {
		return err
	}
	return decode(r.body, out)
}

// cached is call for GETs whose bodies may be reused for ttl.
func (c *Client) cached(key string, ttl time.Duration, path string, query url.Values, out interface{}) error {
	if data, ok := c.responses.Get(key); ok {
		return decode(data, out)
	}

	r, err := c.send(fiber.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := check(r); err != nil {
		return err
	}
	if err := decode(r.body, out); err != nil {
		return err
	}
	c.responses.SetTTL(key, r.body, ttl)
	return nil
}

func decode(data []byte, out interface{}) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// limit applies a local limiter before the request is sent.
func limit(l *ratelimit.Limiter, key string) error {
	if err := l.Check(key); err != nil {
		return newAPIError("Rate limit exceeded", 429, CodeRateLimited)
	}
	return nil
}

// ClearCache drops cached responses and local rate limit state.
func (c *Client) ClearCache() {
	c.responses.Clear()
	c.scripts.Clear()
	c.verifyLimit.Clear()
	c.scriptLimit.Clear()
}

// ClearAuth forgets the token and API key and clears the cache.
func (c *Client) ClearAuth() error {
	err := errors.Join(c.session.RemoveToken(), c.session.RemoveAPIKey())
	c.ClearCache()
	return err
}

// WebSocketURL returns the live status feed address for token.
func (c *Client) WebSocketURL(token string) (string, error) {
	if token == "" {
		return "", ErrTokenRequired
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}
