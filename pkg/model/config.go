package model

// This is the pkg/model/config.go file, which contains the configuration model for ScriptShield.
// The model is loaded from the YAML file and then overridden from the environment.

import "time"

// Config represents the top-level configuration structure for ScriptShield.
type Config struct {
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Database  DatabaseConfig  `yaml:"database" envPrefix:"DATABASE_"`
	Auth      AuthConfig      `yaml:"auth" envPrefix:"AUTH_"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	CORS      CORSConfig      `yaml:"cors" envPrefix:"CORS_"`
	Threats   ThreatConfig    `yaml:"threats" envPrefix:"THREATS_"`
	Client    ClientConfig    `yaml:"client" envPrefix:"CLIENT_"`
}

// ServerConfig defines network-related configuration settings.
type ServerConfig struct {
	AppName      string `yaml:"app_name" env:"APP_NAME"`
	Host         string `yaml:"host" env:"HOST"`
	Port         int    `yaml:"port" env:"PORT"`
	ReadTimeout  int    `yaml:"read_timeout,omitempty" env:"READ_TIMEOUT"`   // seconds
	WriteTimeout int    `yaml:"write_timeout,omitempty" env:"WRITE_TIMEOUT"` // seconds

	// StatusInterval is how often the websocket feed pushes a status snapshot.
	StatusInterval time.Duration `yaml:"status_interval" env:"STATUS_INTERVAL"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" env:"PATH"`
	Seed bool   `yaml:"seed" env:"SEED"`
}

// AuthConfig controls the mock authentication flow.
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	Issuer     string        `yaml:"issuer" env:"ISSUER"`
	TokenTTL   time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env:"REFRESH_TTL"`
	KeyPrefix  string        `yaml:"key_prefix" env:"KEY_PREFIX"`
}

// RateLimitConfig holds the sliding window settings. Api applies to every
// /api route per client IP, Auth and Script are keyed by API key and script
// version respectively.
type RateLimitConfig struct {
	APIMax       int           `yaml:"api_max" env:"API_MAX"`
	APIWindow    time.Duration `yaml:"api_window" env:"API_WINDOW"`
	AuthMax      int           `yaml:"auth_max" env:"AUTH_MAX"`
	AuthWindow   time.Duration `yaml:"auth_window" env:"AUTH_WINDOW"`
	ScriptMax    int           `yaml:"script_max" env:"SCRIPT_MAX"`
	ScriptWindow time.Duration `yaml:"script_window" env:"SCRIPT_WINDOW"`
}

type CORSConfig struct {
	AllowOrigins     string `yaml:"allow_origins" env:"ALLOW_ORIGINS"`
	AllowMethods     string `yaml:"allow_methods" env:"ALLOW_METHODS"`
	AllowHeaders     string `yaml:"allow_headers" env:"ALLOW_HEADERS"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"ALLOW_CREDENTIALS"`
}

// ThreatConfig toggles the sigma based request inspection.
type ThreatConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	RulesDir string `yaml:"rules_dir" env:"RULES_DIR"`
}

type ClientConfig struct {
	BaseURL     string `yaml:"base_url" env:"BASE_URL"`
	SessionFile string `yaml:"session_file" env:"SESSION_FILE"`
}
