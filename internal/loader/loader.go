// Package loader serves the canned Lua loader scripts.
package loader

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Shopify/go-lua"

	"github.com/pynezz/scriptshield/pkg/version"
)

//go:embed scripts
var scripts embed.FS

var (
	ErrUnknownLevel = errors.New("unknown obfuscation level")
	ErrInvalidLua   = errors.New("script does not parse as lua")
)

const (
	Stable = "stable"
	Beta   = "beta"

	DefaultName = "ScriptShield Loader"
)

// Release describes one entry of the script catalogue.
type Release struct {
	ID            string `json:"id"`
	Version       string `json:"version"`
	SecurityLevel string `json:"securityLevel"`
	Experimental  bool   `json:"experimental"`
	API           string `json:"api"`
}

var releases = []Release{
	{ID: Stable, Version: "2.0.1", SecurityLevel: "MAXIMUM", API: "https://api.scriptshield.com/v1"},
	{ID: Beta, Version: "2.1.0-beta", SecurityLevel: "EXTREME", Experimental: true, API: "https://beta-api.scriptshield.com/v1"},
}

// Versions lists the catalogue, stable first.
func Versions() []Release {
	out := make([]Release, len(releases))
	copy(out, releases)
	return out
}

// Resolve maps any requested version to a catalogue id. Unknown and empty
// versions resolve to stable.
func Resolve(v string) string {
	for _, r := range releases {
		if r.ID == v {
			return v
		}
	}
	return Stable
}

// Script is a rendered loader.
type Script struct {
	Version     string    `json:"version"`
	Obfuscation string    `json:"obfuscation,omitempty"`
	Body        string    `json:"body"`
	Checksum    string    `json:"checksum"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Lookup returns the canned script for version, falling back to stable.
func Lookup(v string) (Script, error) {
	id := Resolve(v)
	body, err := scripts.ReadFile("scripts/" + id + ".lua")
	if err != nil {
		return Script{}, err
	}
	return newScript(id, "", string(body)), nil
}

func newScript(id, level, body string) Script {
	return Script{
		Version:     id,
		Obfuscation: level,
		Body:        body,
		Checksum:    Checksum(body),
		GeneratedAt: time.Now().UTC(),
	}
}

// Options control Render.
type Options struct {
	Version     string
	Obfuscation string
	Name        string
}

var loaderTemplate = template.Must(template.ParseFS(scripts, "scripts/loader.lua.tmpl"))

// Render produces the full loader shown on the Loader page, with the
// obfuscation level written into SecurityLevel.
func Render(opts Options) (Script, error) {
	level := opts.Obfuscation
	if level == "" {
		level = DefaultLevel
	}
	if _, ok := LevelByID(level); !ok {
		return Script{}, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}

	name := cleanName(opts.Name)

	var buf bytes.Buffer
	err := loaderTemplate.Execute(&buf, struct {
		Name          string
		ClientVersion string
		SecurityLevel string
	}{
		Name:          name,
		ClientVersion: version.ClientVersion,
		SecurityLevel: strings.ToUpper(level),
	})
	if err != nil {
		return Script{}, err
	}

	body := buf.String()
	if err := Validate(body); err != nil {
		return Script{}, err
	}
	return newScript(Resolve(opts.Version), level, body), nil
}

const maxNameRunes = 64

// cleanName keeps the script name on its comment line.
func cleanName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r < 0x20 {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName
	}
	if r := []rune(name); len(r) > maxNameRunes {
		name = strings.TrimSpace(string(r[:maxNameRunes]))
	}
	return name
}

// Checksum is the hex SHA-256 of body.
func Checksum(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// Validate compiles body with a Lua 5.2 parser without running it.
func Validate(body string) error {
	l := lua.NewState()
	if err := lua.LoadString(l, body); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLua, err)
	}
	return nil
}
