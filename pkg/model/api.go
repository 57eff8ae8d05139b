package model

// Request and response bodies of the /api routes, shared by the server
// handlers and the Go client.

import (
	"github.com/pynezz/scriptshield/internal/loader"
	"github.com/pynezz/scriptshield/internal/mock"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type AuthRequest struct {
	APIKey string `json:"apiKey"`
	HWID   string `json:"hwid,omitempty"`
}

type AuthUser struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Tier        string   `json:"tier"`
	Permissions []string `json:"permissions,omitempty"`
	Whitelisted bool     `json:"whitelisted,omitempty"`
}

// AuthResponse answers /api/auth, /api/auth/token and /api/auth/refresh.
// Expires is in unix milliseconds.
type AuthResponse struct {
	Authenticated bool      `json:"authenticated"`
	Token         string    `json:"token,omitempty"`
	RefreshToken  string    `json:"refreshToken,omitempty"`
	User          *AuthUser `json:"user,omitempty"`
	Expires       int64     `json:"expires,omitempty"`
	Error         string    `json:"error,omitempty"`
}

type WhitelistRequest struct {
	APIKey string `json:"apiKey"`
	IP     string `json:"ip,omitempty"`
}

type WhitelistResponse struct {
	Whitelisted bool   `json:"whitelisted"`
	IP          string `json:"ip"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type VersionsResponse struct {
	Versions []loader.Release `json:"versions"`
	Levels   []loader.Level   `json:"levels"`
	Default  string           `json:"default"`
}

type ChecksumResponse struct {
	Version   string `json:"version"`
	Checksum  string `json:"checksum"`
	Algorithm string `json:"algorithm"`
}

// TrackRequest reports a script load. Timestamp is ISO 8601 and optional.
type TrackRequest struct {
	ScriptID  string `json:"scriptId"`
	UserID    string `json:"userId"`
	Version   string `json:"version,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type TrackResponse struct {
	Success bool `json:"success"`
	Tracked bool `json:"tracked"`
}

type PingResponse struct {
	Pong      bool   `json:"pong"`
	Timestamp string `json:"timestamp"`
}

type ProtectionResponse struct {
	AllActive bool                 `json:"allActive"`
	Layers    []loader.LayerStatus `json:"layers"`
	Timestamp string               `json:"timestamp"`
}

type DashboardResponse struct {
	QuickStats []mock.QuickStat   `json:"quickStats"`
	Activities []mock.Activity    `json:"recentActivities"`
	Usage      []mock.UsageRow    `json:"usage"`
	Threats    []mock.ThreatSlice `json:"threats"`
	Tracked24h int64              `json:"tracked24h"`
}

// APIKeyView is a stored key as shown to its owner.
type APIKeyView struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Key         string   `json:"key"`
	Permissions []string `json:"permissions"`
	RateLimit   string   `json:"rateLimit"`
	Created     string   `json:"created"`
	LastUsed    string   `json:"lastUsed,omitempty"`
}

type KeysResponse struct {
	Keys []APIKeyView `json:"keys"`
}

type GenerateKeyRequest struct {
	Name        string   `json:"name"`
	Environment string   `json:"environment,omitempty"`
	Permissions []string `json:"permissions"`
}

// GenerateKeyResponse carries the only copy of the plain key.
type GenerateKeyResponse struct {
	APIKey string     `json:"apiKey"`
	Key    APIKeyView `json:"key"`
}

type RevokeResponse struct {
	Revoked bool `json:"revoked"`
	ID      uint `json:"id"`
}

type LogEntry struct {
	ID          uint   `json:"id"`
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	IP          string `json:"ip"`
	Time        string `json:"time"`
}

type LogsResponse struct {
	Logs  []LogEntry `json:"logs"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Total int64      `json:"total"`
}

type SettingsResponse struct {
	Updated  bool              `json:"updated"`
	Settings map[string]string `json:"settings"`
}

type ThreatsResponse struct {
	Period    string             `json:"period"`
	Breakdown []mock.ThreatSlice `json:"breakdown"`
	Total     int                `json:"total"`
}

type UptimeResponse struct {
	Period string           `json:"period"`
	Days   []mock.UptimeRow `json:"days"`
}

type TopUsersResponse struct {
	Period string         `json:"period"`
	Users  []mock.TopUser `json:"users"`
}

// StatusFrame is one message on the /ws feed.
type StatusFrame struct {
	Type   string            `json:"type"`
	Status mock.SystemStatus `json:"status"`
}
