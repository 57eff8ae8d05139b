package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pynezz/scriptshield/internal/config"
	"github.com/pynezz/scriptshield/internal/database/stores"
	"github.com/pynezz/scriptshield/internal/session"
	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/pkg/model"
)

func init() {
	util.SetLevel(util.LevelSilent)
}

// writeConfig writes a default config pointing at a temporary database.
func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(dir, "cli.db")
	cfg.Database.Seed = false
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.WriteConfig(cfg, path))
	return path, cfg.Database.Path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "silent"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Client version: 2.0.1")
}

func TestKeygen(t *testing.T) {
	path, dbPath := writeConfig(t)

	out, err := execute(t, "keygen", "--config", path, "--env", "test", "--name", "ci", "--owner", "user_1")
	require.NoError(t, err)

	key := strings.TrimSpace(out)
	assert.True(t, session.ValidateAPIKeyFormat(key), key)
	assert.True(t, strings.HasPrefix(key, "sk_test_"))

	st, err := stores.Open(model.DatabaseConfig{Path: dbPath})
	require.NoError(t, err)
	defer st.Close()

	found, err := st.LookupKey(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "ci", found.Name)
	assert.Equal(t, "user_1", found.Owner)
}

func TestKeygen_RejectsEnv(t *testing.T) {
	path, _ := writeConfig(t)
	_, err := execute(t, "keygen", "--config", path, "--env", "prod")
	assert.ErrorContains(t, err, "invalid environment")
}

func TestConfigCheck(t *testing.T) {
	path, dbPath := writeConfig(t)

	out, err := execute(t, "config", "check", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "listen:   0.0.0.0:3001")
	assert.Contains(t, out, dbPath)
	assert.True(t, strings.HasPrefix(out, "╭"), out)
	assert.Contains(t, out, "threats:")

	_, err = execute(t, "config", "check", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.yaml")

	_, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.Server.Port)

	_, err = execute(t, "config", "init", "--config", path)
	assert.ErrorContains(t, err, "already exists")
}

func TestScan(t *testing.T) {
	path, dbPath := writeConfig(t)

	logPath := filepath.Join(t.TempDir(), "access.log")
	line := `{"time_local":"22/Apr/2024:16:53:00 +0000","remote_addr":"91.90.40.176","remote_user":"","request":"GET /.git/config HTTP/1.1","status": "404","body_bytes_sent":"0","request_time":"0.001","http_referrer":"","http_user_agent":"Nmap Scripting Engine","request_body":""}`
	require.NoError(t, os.WriteFile(logPath, []byte(line+"\n"), 0o600))

	out, err := execute(t, "scan", "--config", path, "--dry-run", logPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 lines, 0 skipped, 2 hits")

	st, err := stores.Open(model.DatabaseConfig{Path: dbPath})
	require.NoError(t, err)
	_, total, err := st.Logs(context.Background(), stores.LogQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	require.NoError(t, st.Close())

	_, err = execute(t, "scan", "--config", path, logPath)
	require.NoError(t, err)

	st, err = stores.Open(model.DatabaseConfig{Path: dbPath})
	require.NoError(t, err)
	defer st.Close()
	events, total, err := st.Logs(context.Background(), stores.LogQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "91.90.40.176", events[0].IP)
	assert.Equal(t, 2024, events[0].OccurredAt.Year())

	_, err = execute(t, "scan", "--config", path)
	assert.Error(t, err)
}
