package mock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 2, 20, 14, 30, 0, 0, time.UTC)

func newTestGenerator() *Generator {
	return New(1).WithClock(func() time.Time { return fixedNow })
}

func TestSystemStatus(t *testing.T) {
	s := newTestGenerator().SystemStatus()

	assert.True(t, s.Online)
	assert.Equal(t, "99.99%", s.Uptime)
	assert.Equal(t, 1427, s.ActiveUsers)
	assert.Equal(t, 12456, s.ThreatsBlocked)
	assert.Equal(t, "24ms", s.ResponseTime)
	assert.Equal(t, "2024-02-20T14:30:00.000Z", s.Timestamp)
	assert.False(t, s.IsFallback)
}

func TestFallbackStatus(t *testing.T) {
	s := FallbackStatus(fixedNow)

	assert.False(t, s.Online)
	assert.Equal(t, "0%", s.Uptime)
	assert.Equal(t, "999ms", s.ResponseTime)
	assert.True(t, s.IsFallback)
}

func TestUsageSeries(t *testing.T) {
	rows := newTestGenerator().UsageSeries(LegacyUsageStart, 30)
	require.Len(t, rows, 30)

	assert.Equal(t, "2024-01-01", rows[0].Date)
	assert.Equal(t, "2024-01-30", rows[29].Date)
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.Requests, 500)
		assert.Less(t, r.Requests, 1500)
		assert.GreaterOrEqual(t, r.Scripts, 200)
		assert.Less(t, r.Scripts, 700)
		assert.GreaterOrEqual(t, r.Threats, 0)
		assert.Less(t, r.Threats, 50)
	}
}

func TestUsageSeries_SameSeedSameData(t *testing.T) {
	a := New(7).UsageSeries(LegacyUsageStart, 5)
	b := New(7).UsageSeries(LegacyUsageStart, 5)
	assert.Equal(t, a, b)
}

func TestHourlyHistory(t *testing.T) {
	rows := newTestGenerator().HourlyHistory()
	require.Len(t, rows, 24)

	assert.Equal(t, "15:00", rows[0].Time)
	assert.Equal(t, "14:00", rows[23].Time)
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.Users, 1000)
		assert.Less(t, r.Users, 1200)
	}
}

func TestStats(t *testing.T) {
	s := newTestGenerator().Stats("24h")

	assert.Equal(t, "24h", s.Period)
	assert.Len(t, s.History, 24)

	total := 0
	for _, r := range s.History {
		total += r.Requests
	}
	assert.Equal(t, total, s.TotalRequests)
	assert.GreaterOrEqual(t, s.AverageUsers, 1000)
}

func TestTopUsers_Ordered(t *testing.T) {
	users := newTestGenerator().TopUsers(10)
	require.Len(t, users, 10)

	for i := 1; i < len(users); i++ {
		assert.Equal(t, i+1, users[i].Rank)
		assert.LessOrEqual(t, users[i].Requests, users[i-1].Requests)
	}
}

func TestUptimeSeries(t *testing.T) {
	rows := newTestGenerator().UptimeSeries(7)
	require.Len(t, rows, 7)

	assert.Equal(t, "2024-02-20", rows[6].Date)
	assert.Equal(t, "2024-02-14", rows[0].Date)
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.Uptime, 99.90)
		assert.LessOrEqual(t, r.Uptime, 100.0)
	}
}

func TestThreatBreakdown(t *testing.T) {
	total := 0
	for _, s := range ThreatBreakdown() {
		total += s.Value
	}
	assert.Equal(t, 100, total)
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{"24h", 24 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"30d", 30 * 24 * time.Hour, false},
		{"d", 0, true},
		{"0d", 0, true},
		{"5w", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, 1, PeriodDays(24*time.Hour))
	assert.Equal(t, 1, PeriodDays(time.Hour))
	assert.Equal(t, 7, PeriodDays(7*24*time.Hour))
}
