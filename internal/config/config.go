package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/pynezz/scriptshield/internal/fs"
	"github.com/pynezz/scriptshield/internal/fswatcher"
	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/pkg/model"
)

// DefaultPath is used when no --config flag is given. A missing file at
// this path is not an error.
const DefaultPath = "config.yaml"

// EnvPrefix is prepended to every environment override, e.g.
// SCRIPTSHIELD_AUTH_JWT_SECRET.
const EnvPrefix = "SCRIPTSHIELD_"

const (
	defaultMethods = "GET,OPTIONS,PATCH,DELETE,POST,PUT"
	defaultHeaders = "X-CSRF-Token, X-Requested-With, Accept, Accept-Version, Content-Length, Content-MD5, " +
		"Content-Type, Date, X-Api-Version, X-API-Key, Authorization, X-Request-ID, X-Client-Version, X-Platform"
)

// Default returns the configuration the site shipped with.
func Default() *model.Config {
	return &model.Config{
		Server: model.ServerConfig{
			AppName:        "ScriptShield",
			Host:           "0.0.0.0",
			Port:           3001,
			ReadTimeout:    10,
			WriteTimeout:   10,
			StatusInterval: 5 * time.Second,
		},
		Database: model.DatabaseConfig{
			Path: "data/scriptshield.db",
			Seed: true,
		},
		Auth: model.AuthConfig{
			JWTSecret:  "change-me",
			Issuer:     "scriptshield",
			TokenTTL:   time.Hour,
			RefreshTTL: 7 * 24 * time.Hour,
			KeyPrefix:  "sk_",
		},
		RateLimit: model.RateLimitConfig{
			APIMax:       100,
			APIWindow:    15 * time.Minute,
			AuthMax:      5,
			AuthWindow:   time.Minute,
			ScriptMax:    20,
			ScriptWindow: time.Minute,
		},
		CORS: model.CORSConfig{
			AllowOrigins: "*",
			AllowMethods: defaultMethods,
			AllowHeaders: defaultHeaders,
		},
		Threats: model.ThreatConfig{
			Enabled: true,
		},
		Client: model.ClientConfig{
			BaseURL:     "http://localhost:3001/api",
			SessionFile: ".scriptshield/session.yaml",
		},
	}
}

// LoadConfig loads the configuration from the given path on top of the
// defaults, then applies environment overrides and validates the result.
func LoadConfig(path string) (*model.Config, error) {
	cfg := Default()

	file, err := fs.GetFile(path)
	switch {
	case err == nil:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		util.PrintSuccess(fmt.Sprintf("Loaded configuration file: %s", path))
	case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
		util.PrintWarning("No configuration file found, using defaults")
	default:
		util.PrintErrorf("Failed to load configuration file: %s", path)
		return nil, err
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from SCRIPTSHIELD_* variables. A bare PORT is
// honoured as well, as hosting platforms set it.
func ApplyEnv(cfg *model.Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if p, ok := os.LookupEnv("PORT"); ok && p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("parse env: PORT=%q is not a number", p)
		}
		cfg.Server.Port = port
	}
	return nil
}

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Validate checks that cfg can start a server.
func Validate(cfg *model.Config) error {
	var problems []string

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", cfg.Server.Port))
	}
	if cfg.Server.ReadTimeout < 0 || cfg.Server.WriteTimeout < 0 {
		problems = append(problems, "server timeouts must not be negative")
	}
	if cfg.Auth.JWTSecret == "" {
		problems = append(problems, "auth.jwt_secret is required")
	}
	if cfg.Auth.TokenTTL <= 0 {
		problems = append(problems, "auth.token_ttl must be positive")
	}
	if cfg.Auth.KeyPrefix == "" {
		problems = append(problems, "auth.key_prefix is required")
	}

	rl := cfg.RateLimit
	for name, pair := range map[string]struct {
		max    int
		window time.Duration
	}{
		"api":    {rl.APIMax, rl.APIWindow},
		"auth":   {rl.AuthMax, rl.AuthWindow},
		"script": {rl.ScriptMax, rl.ScriptWindow},
	} {
		if pair.max <= 0 || pair.window <= 0 {
			problems = append(problems, fmt.Sprintf("rate_limit.%s needs a positive max and window", name))
		}
	}

	if cfg.CORS.AllowCredentials && strings.Contains(cfg.CORS.AllowOrigins, "*") {
		problems = append(problems, "cors.allow_credentials cannot be combined with a wildcard origin")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// WriteConfig writes cfg as YAML to path.
func WriteConfig(cfg *model.Config, path string) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := fs.EnsureParentDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return err
	}
	util.PrintSuccess("Wrote configuration file: " + path)
	return nil
}

// Watch reloads path on every write and passes the new configuration to
// onReload. Invalid edits are logged and skipped.
func Watch(ctx context.Context, path string, onReload func(*model.Config)) error {
	return fswatcher.Watch(ctx, path, func() {
		cfg, err := LoadConfig(path)
		if err != nil {
			util.PrintErrorf("Ignoring configuration change: %v", err)
			return
		}
		util.PrintInfo("Configuration reloaded from " + path)
		onReload(cfg)
	})
}
