package client

import (
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pynezz/scriptshield/internal/mock"
	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/pkg/model"
)

/************************** Auth **************************/

// VerifyAPIKey exchanges apiKey for a token pair. Successful answers are
// cached for 30 seconds per key and hwid.
func (c *Client) VerifyAPIKey(apiKey, hwid string) (*model.AuthResponse, error) {
	key := "auth_verify_" + apiKey + "_" + hwid
	if data, ok := c.responses.Get(key); ok {
		var out model.AuthResponse
		return &out, decode(data, &out)
	}

	if err := limit(c.verifyLimit, "auth_verify_"+apiKey); err != nil {
		return nil, err
	}

	r, err := c.send(fiber.MethodPost, "/auth", nil, model.AuthRequest{APIKey: apiKey, HWID: hwid})
	if err != nil {
		return nil, err
	}
	if err := check(r); err != nil {
		return nil, err
	}

	var out model.AuthResponse
	if err := decode(r.body, &out); err != nil {
		return nil, err
	}
	c.responses.SetTTL(key, r.body, verifyTTL)
	return &out, nil
}

func (c *Client) GenerateToken(apiKey, hwid string) (*model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.call(fiber.MethodPost, "/auth/token", nil, model.AuthRequest{APIKey: apiKey, HWID: hwid}, &out)
	return &out, err
}

func (c *Client) CheckWhitelist(apiKey, ip string) (*model.WhitelistResponse, error) {
	var out model.WhitelistResponse
	err := c.call(fiber.MethodPost, "/auth/whitelist", nil, model.WhitelistRequest{APIKey: apiKey, IP: ip}, &out)
	return &out, err
}

func (c *Client) RefreshToken(refreshToken string) (*model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.call(fiber.MethodPost, "/auth/refresh", nil, model.RefreshRequest{RefreshToken: refreshToken}, &out)
	return &out, err
}

// Login verifies apiKey and stores the resulting session.
func (c *Client) Login(apiKey, hwid string) (*model.AuthResponse, error) {
	out, err := c.VerifyAPIKey(apiKey, hwid)
	if err != nil {
		return nil, err
	}
	if err := c.session.SetToken(out.Token); err != nil {
		return nil, err
	}
	if err := c.session.SetAPIKey(apiKey); err != nil {
		return nil, err
	}
	if out.User != nil {
		if err := c.session.SetUserData(out.User); err != nil {
			return nil, err
		}
	}
	return out, nil
}

/************************** Loader **************************/

// Script is a served loader text with the metadata from its headers.
type Script struct {
	Version     string
	Body        string
	Checksum    string
	GeneratedAt string
}

type ScriptOptions struct {
	Obfuscation string
	Format      string
}

// GetScript fetches the loader text for version. Results are cached for a
// minute and limited to 20 fetches per minute per version.
func (c *Client) GetScript(version string, opts ScriptOptions) (Script, error) {
	if version == "" {
		version = "stable"
	}
	key := "script_" + version + "_" + opts.Obfuscation + "_" + opts.Format
	if s, ok := c.scripts.Get(key); ok {
		return s, nil
	}

	if err := limit(c.scriptLimit, "script_get_"+version); err != nil {
		return Script{}, err
	}

	q := url.Values{"version": {version}}
	if opts.Obfuscation != "" {
		q.Set("obfuscation", opts.Obfuscation)
	}
	if opts.Format != "" {
		q.Set("format", opts.Format)
	}

	r, err := c.send(fiber.MethodGet, "/script", q, nil)
	if err != nil {
		return Script{}, err
	}
	if r.status < 200 || r.status >= 300 {
		return Script{}, failure(r.status, r.body)
	}

	s := Script{
		Version:     r.header["X-Script-Version"],
		Body:        string(r.body),
		Checksum:    r.header["X-Script-Checksum"],
		GeneratedAt: r.header["X-Generated-At"],
	}
	c.scripts.Set(key, s)
	return s, nil
}

// GetLoaderScript fetches the key protected loader text.
func (c *Client) GetLoaderScript(version string) (string, error) {
	r, err := c.send(fiber.MethodGet, "/loader/script/"+url.PathEscape(version), nil, nil)
	if err != nil {
		return "", err
	}
	if r.status < 200 || r.status >= 300 {
		return "", failure(r.status, r.body)
	}
	return string(r.body), nil
}

func (c *Client) GetChecksum(version string) (*model.ChecksumResponse, error) {
	var out model.ChecksumResponse
	err := c.call(fiber.MethodGet, "/script/checksum/"+url.PathEscape(version), nil, nil, &out)
	return &out, err
}

func (c *Client) TrackUsage(req model.TrackRequest) (*model.TrackResponse, error) {
	if req.Timestamp == "" {
		req.Timestamp = util.ISOTimestamp(c.now())
	}
	var out model.TrackResponse
	err := c.call(fiber.MethodPost, "/script/track", nil, req, &out)
	return &out, err
}

func (c *Client) GetVersions() (*model.VersionsResponse, error) {
	var out model.VersionsResponse
	err := c.cached("script_versions", versionsTTL, "/script/versions", nil, &out)
	return &out, err
}

/************************** Status **************************/

// GetSystemStatus never fails: when the API cannot be reached the fallback
// status is returned instead.
func (c *Client) GetSystemStatus() mock.SystemStatus {
	var out mock.SystemStatus
	if err := c.cached("system_status", statusTTL, "/status", nil, &out); err != nil {
		util.PrintDebug("status fetch failed: " + err.Error())
		return mock.FallbackStatus(c.now())
	}
	return out
}

func (c *Client) GetStats(period string) (*mock.Stats, error) {
	if period == "" {
		period = "24h"
	}
	var out mock.Stats
	err := c.call(fiber.MethodGet, "/status/stats", url.Values{"period": {period}}, nil, &out)
	return &out, err
}

func (c *Client) GetProtectionStatus() (*model.ProtectionResponse, error) {
	var out model.ProtectionResponse
	err := c.call(fiber.MethodGet, "/status/protection", nil, nil, &out)
	return &out, err
}

// PingResult is the outcome of Ping. Latency is 9999ms when the request
// did not complete.
type PingResult struct {
	Success   bool
	Latency   time.Duration
	Timestamp string
	Err       string
}

// Ping measures a round trip to /status/ping. It never returns an error.
func (c *Client) Ping() PingResult {
	start := c.now()
	r, err := c.send(fiber.MethodGet, "/status/ping", nil, nil)
	if err != nil {
		return PingResult{
			Latency:   9999 * time.Millisecond,
			Timestamp: util.ISOTimestamp(c.now()),
			Err:       err.Error(),
		}
	}
	return PingResult{
		Success:   r.status >= 200 && r.status < 300,
		Latency:   c.now().Sub(start),
		Timestamp: util.ISOTimestamp(c.now()),
	}
}

/************************** User **************************/

func (c *Client) GetDashboard() (*model.DashboardResponse, error) {
	var out model.DashboardResponse
	err := c.call(fiber.MethodGet, "/user/dashboard", nil, nil, &out)
	return &out, err
}

func (c *Client) GetAPIKeys() (*model.KeysResponse, error) {
	var out model.KeysResponse
	err := c.call(fiber.MethodGet, "/user/keys", nil, nil, &out)
	return &out, err
}

func (c *Client) GenerateAPIKey(name string, permissions []string) (*model.GenerateKeyResponse, error) {
	if permissions == nil {
		permissions = []string{}
	}
	var out model.GenerateKeyResponse
	err := c.call(fiber.MethodPost, "/user/keys/generate", nil, model.GenerateKeyRequest{Name: name, Permissions: permissions}, &out)
	return &out, err
}

func (c *Client) RevokeAPIKey(id uint) (*model.RevokeResponse, error) {
	var out model.RevokeResponse
	err := c.call(fiber.MethodDelete, "/user/keys/"+strconv.FormatUint(uint64(id), 10), nil, nil, &out)
	return &out, err
}

// LogFilter narrows GetLogs. Dates are YYYY-MM-DD.
type LogFilter struct {
	Type      string
	StartDate string
	EndDate   string
}

func (c *Client) GetLogs(page, limit int, f LogFilter) (*model.LogsResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	q := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}

	var out model.LogsResponse
	err := c.call(fiber.MethodGet, "/user/logs", q, nil, &out)
	return &out, err
}

func (c *Client) UpdateSettings(settings map[string]string) (*model.SettingsResponse, error) {
	var out model.SettingsResponse
	err := c.call(fiber.MethodPut, "/user/settings", nil, settings, &out)
	return &out, err
}

/************************** Analytics **************************/

func (c *Client) GetUsage(period, granularity string) ([]mock.UsageRow, error) {
	if period == "" {
		period = "30d"
	}
	if granularity == "" {
		granularity = "day"
	}
	var out []mock.UsageRow
	err := c.call(fiber.MethodGet, "/analytics/usage", url.Values{"period": {period}, "granularity": {granularity}}, nil, &out)
	return out, err
}

func (c *Client) GetThreats(period string) (*model.ThreatsResponse, error) {
	if period == "" {
		period = "7d"
	}
	var out model.ThreatsResponse
	err := c.call(fiber.MethodGet, "/analytics/threats", url.Values{"period": {period}}, nil, &out)
	return &out, err
}

func (c *Client) GetUptime(period string) (*model.UptimeResponse, error) {
	if period == "" {
		period = "30d"
	}
	var out model.UptimeResponse
	err := c.call(fiber.MethodGet, "/analytics/uptime", url.Values{"period": {period}}, nil, &out)
	return &out, err
}

func (c *Client) GetTopUsers(limit int, period string) (*model.TopUsersResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	if period == "" {
		period = "7d"
	}
	var out model.TopUsersResponse
	err := c.call(fiber.MethodGet, "/analytics/top-users", url.Values{"limit": {strconv.Itoa(limit)}, "period": {period}}, nil, &out)
	return &out, err
}

/************************** Health **************************/

type Health struct {
	API       string `json:"api"`
	Auth      string `json:"auth"`
	Timestamp string `json:"timestamp"`
}

// HealthCheck pings the API and probes the auth route with a dummy key.
// Auth counts as healthy when the server answered at all, a rejection
// included.
func (c *Client) HealthCheck() Health {
	h := Health{API: "unhealthy", Auth: "unhealthy"}

	if p := c.Ping(); p.Success {
		h.API = "healthy"
	}

	r, err := c.send(fiber.MethodPost, "/auth", nil, model.AuthRequest{APIKey: "test"})
	if err == nil && r.status < 500 {
		h.Auth = "healthy"
	}

	h.Timestamp = util.ISOTimestamp(c.now())
	return h
}
