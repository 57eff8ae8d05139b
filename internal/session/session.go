// Package session keeps the client side auth state: the bearer token, the
// API key and cached user data. The API key is only base64 encoded and the
// token is decoded without checking its signature; the server is the one
// that verifies.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/internal/util/cryptoutils"
)

// Storage keys.
const (
	TokenKey    = "scriptshield_token"
	APIKeyKey   = "scriptshield_api_key"
	UserDataKey = "scriptshield_user_data"

	rateLimitPrefix = "rate_limit_"
)

// Client side limiter settings.
const (
	RateLimitWindow = time.Minute
	RateLimitMax    = 10
)

var (
	ErrNoToken    = errors.New("no token stored")
	ErrNoUserData = errors.New("no user data stored")
)

var apiKeyFormat = regexp.MustCompile(`^sk_(live|test|dev)_[a-zA-Z0-9]{24}$`)

type Session struct {
	store Storage
	now   func() time.Time
}

func New(store Storage) *Session {
	return &Session{store: store, now: time.Now}
}

// WithClock replaces the time source.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

func (s *Session) SetToken(token string) error {
	return s.store.Set(TokenKey, token)
}

// Token returns the stored token or "".
func (s *Session) Token() string {
	t, _ := s.store.Get(TokenKey)
	return t
}

func (s *Session) RemoveToken() error {
	return s.store.Remove(TokenKey)
}

// SetAPIKey stores the key base64 encoded.
func (s *Session) SetAPIKey(key string) error {
	return s.store.Set(APIKeyKey, cryptoutils.EncodeAPIKey(key))
}

// APIKey returns the decoded key, or "" when missing or corrupt.
func (s *Session) APIKey() string {
	encoded, ok := s.store.Get(APIKeyKey)
	if !ok || encoded == "" {
		return ""
	}
	key, err := cryptoutils.DecodeAPIKey(encoded)
	if err != nil {
		util.PrintWarning("stored api key is corrupt: " + err.Error())
		return ""
	}
	return key
}

func (s *Session) RemoveAPIKey() error {
	return s.store.Remove(APIKeyKey)
}

// SetUserData stores v as JSON.
func (s *Session) SetUserData(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode user data: %w", err)
	}
	return s.store.Set(UserDataKey, string(data))
}

// UserData decodes the stored JSON into out.
func (s *Session) UserData(out interface{}) error {
	data, ok := s.store.Get(UserDataKey)
	if !ok || data == "" {
		return ErrNoUserData
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("decode user data: %w", err)
	}
	return nil
}

func (s *Session) RemoveUserData() error {
	return s.store.Remove(UserDataKey)
}

// Claims decodes the stored token payload without verifying the signature.
func (s *Session) Claims() (jwt.MapClaims, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNoToken
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateSession reports whether a token is stored and not expired.
// An expired or undecodable token clears all auth state.
func (s *Session) ValidateSession() bool {
	claims, err := s.Claims()
	if errors.Is(err, ErrNoToken) {
		return false
	}
	if err != nil {
		util.PrintDebug("token validation failed: " + err.Error())
		s.clear()
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		util.PrintDebug("token validation failed: " + err.Error())
		s.clear()
		return false
	}
	if exp != nil && exp.Unix() < s.now().Unix() {
		s.clear()
		return false
	}
	return true
}

// ClearAuth removes token, API key and user data.
func (s *Session) ClearAuth() error {
	return errors.Join(s.RemoveToken(), s.RemoveAPIKey(), s.RemoveUserData())
}

func (s *Session) clear() {
	if err := s.ClearAuth(); err != nil {
		util.PrintWarning("clear auth: " + err.Error())
	}
}

// IsAuthenticated requires a valid session and a stored API key.
func (s *Session) IsAuthenticated() bool {
	return s.ValidateSession() && s.APIKey() != ""
}

// AuthHeaders returns the headers every API request carries.
func (s *Session) AuthHeaders() map[string]string {
	headers := map[string]string{"Content-Type": "application/json"}
	if token := s.Token(); token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	if key := s.APIKey(); key != "" {
		headers["X-API-Key"] = key
	}
	return headers
}

// CheckRateLimit admits at most RateLimitMax calls per endpoint inside
// RateLimitWindow. The timestamps live in the storage so they survive
// restarts of the CLI.
func (s *Session) CheckRateLimit(endpoint string) bool {
	key := rateLimitPrefix + endpoint
	now := s.now().UnixMilli()

	var hits []int64
	if raw, ok := s.store.Get(key); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &hits); err != nil {
			hits = nil
		}
	}

	valid := hits[:0]
	for _, h := range hits {
		if now-h < RateLimitWindow.Milliseconds() {
			valid = append(valid, h)
		}
	}
	if len(valid) >= RateLimitMax {
		return false
	}

	valid = append(valid, now)
	if len(valid) > RateLimitMax {
		valid = valid[len(valid)-RateLimitMax:]
	}
	data, _ := json.Marshal(valid)
	if err := s.store.Set(key, string(data)); err != nil {
		util.PrintWarning("persist rate limit: " + err.Error())
	}
	return true
}

// Logout clears the session.
func (s *Session) Logout() error {
	return s.ClearAuth()
}

var sanitizer = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// SanitizeInput escapes the characters used for markup injection.
func SanitizeInput(input string) string {
	return sanitizer.Replace(input)
}

// ValidateAPIKeyFormat matches sk_live_, sk_test_ or sk_dev_ followed by
// 24 alphanumerics.
func ValidateAPIKeyFormat(key string) bool {
	return apiKeyFormat.MatchString(key)
}

// HWID fingerprints the given components.
func HWID(components ...string) string {
	return cryptoutils.FingerprintHWID(components...)
}

// MachineComponents are the host properties folded into the CLI's HWID.
func MachineComponents() []string {
	host, _ := os.Hostname()
	lang := os.Getenv("LANG")
	_, offset := time.Now().Zone()
	return []string{
		"scriptshield-cli/" + runtime.Version(),
		runtime.GOOS + "/" + runtime.GOARCH,
		host,
		lang,
		fmt.Sprint(-offset / 60),
	}
}
