package stores

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pynezz/scriptshield/internal/database"
	"github.com/pynezz/scriptshield/internal/database/models"
	"github.com/pynezz/scriptshield/internal/threat"
	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/pkg/model"
)

func init() {
	util.SetLevel(util.LevelSilent)
}

func openTest(t *testing.T, seed bool) *Stores {
	t.Helper()
	s, err := Open(model.DatabaseConfig{Path: filepath.Join(t.TempDir(), "scriptshield.db"), Seed: seed})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSeed_Idempotent(t *testing.T) {
	s := openTest(t, true)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx))

	users, err := s.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 5)

	keys, err := s.Keys(ctx, "someone")
	require.NoError(t, err)
	assert.Len(t, keys, 3)

	events, total, err := s.Logs(ctx, LogQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Equal(t, "Brute force attack detected", events[0].Description)
}

func TestKeys_CreateLookupRevoke(t *testing.T) {
	s := openTest(t, true)
	ctx := context.Background()

	plain, key, err := s.CreateKey(ctx, "user_1", "CI", "test", []string{"script_access"})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^sk_test_[A-Za-z0-9]{24}$`), plain)
	assert.Equal(t, "sk_test_************"+plain[len(plain)-4:], key.Masked)
	assert.NotContains(t, key.Hash, plain)
	assert.Equal(t, []string{"script_access"}, key.PermissionList())

	mine, err := s.Keys(ctx, "user_1")
	require.NoError(t, err)
	assert.Len(t, mine, 4)

	theirs, err := s.Keys(ctx, "user_2")
	require.NoError(t, err)
	assert.Len(t, theirs, 3)

	found, err := s.LookupKey(ctx, plain)
	require.NoError(t, err)
	assert.Equal(t, key.ID, found.ID)
	assert.NotNil(t, found.LastUsed)

	_, err = s.LookupKey(ctx, "sk_test_notarealkeynotarealkey00")
	assert.ErrorIs(t, err, database.ErrNotFound)

	assert.ErrorIs(t, s.RevokeKey(ctx, "user_2", key.ID), database.ErrNotFound)
	require.NoError(t, s.RevokeKey(ctx, "user_1", key.ID))
	assert.ErrorIs(t, s.RevokeKey(ctx, "user_1", key.ID), database.ErrNotFound)

	// demo keys belong to nobody
	assert.ErrorIs(t, s.RevokeKey(ctx, SeedOwner, 1), database.ErrNotFound)
}

func TestSettings_Upsert(t *testing.T) {
	s := openTest(t, false)
	ctx := context.Background()

	require.NoError(t, s.SaveSettings(ctx, "user_1", map[string]string{"theme": "dark", "alerts": "on"}))
	require.NoError(t, s.SaveSettings(ctx, "user_1", map[string]string{"theme": "light"}))
	require.NoError(t, s.SaveSettings(ctx, "user_2", map[string]string{"theme": "dark"}))

	got, err := s.Settings(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"theme": "light", "alerts": "on"}, got)
}

func TestUsageAndThreats(t *testing.T) {
	now := time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC)
	s := openTest(t, false).WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, s.RecordUsage(ctx, models.UsageEvent{ScriptID: "loader", UserID: "u1", Version: "stable"}))
	require.NoError(t, s.RecordUsage(ctx, models.UsageEvent{ScriptID: "loader", Timestamp: now.Add(-48 * time.Hour)}))

	n, err := s.UsageCount(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, s.RecordThreat(ctx,
		threat.Match{Title: "Security scanner user agent", Level: "high", RuleID: "r1"},
		threat.Event{IP: "203.0.113.9", Path: "/api/status"}))

	events, total, err := s.Logs(ctx, LogQuery{Page: 1, Limit: 5, Type: "threat", From: now.Add(-time.Hour)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "high", events[0].Severity)
	assert.Equal(t, "/api/status", events[0].Path)
}

func TestOpen_LogsFollowLevel(t *testing.T) {
	var out bytes.Buffer
	util.SetOutput(&out)
	t.Cleanup(func() {
		util.SetOutput(os.Stdout)
		util.SetLevel(util.LevelSilent)
	})

	util.SetLevel(util.LevelInfo)
	openTest(t, true)
	assert.Contains(t, out.String(), "Seeding demo data")

	out.Reset()
	util.SetLevel(util.LevelSilent)
	openTest(t, true)
	assert.Empty(t, out.String())
}
