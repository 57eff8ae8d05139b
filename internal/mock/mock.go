// Package mock produces the demo figures shown on the site. None of the
// numbers mean anything; only their shape is stable.
package mock

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pynezz/scriptshield/internal/util"
)

// SystemStatus is the payload of /api/status.
type SystemStatus struct {
	Online         bool   `json:"online"`
	Uptime         string `json:"uptime"`
	ActiveUsers    int    `json:"activeUsers"`
	ThreatsBlocked int    `json:"threatsBlocked"`
	ResponseTime   string `json:"responseTime"`
	TotalScripts   int    `json:"totalScripts,omitempty"`
	MemoryUsage    string `json:"memoryUsage,omitempty"`
	CPULoad        string `json:"cpuLoad,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
	IsFallback     bool   `json:"isFallback,omitempty"`
}

type UsageRow struct {
	Date     string `json:"date"`
	Requests int    `json:"requests"`
	Scripts  int    `json:"scripts"`
	Threats  int    `json:"threats"`
}

type HourlyRow struct {
	Time     string `json:"time"`
	Requests int    `json:"requests"`
	Threats  int    `json:"threats"`
	Users    int    `json:"users"`
}

type ThreatSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

type Activity struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Time        string `json:"time"`
	Status      string `json:"status"`
}

type Event struct {
	ID      int    `json:"id"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

type QuickStat struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Change string `json:"change"`
}

type UptimeRow struct {
	Date   string  `json:"date"`
	Uptime float64 `json:"uptime"`
}

type TopUser struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"userId"`
	Tier     string `json:"tier"`
	Requests int    `json:"requests"`
}

// Stats is the payload of /api/status/stats.
type Stats struct {
	Period         string      `json:"period"`
	TotalRequests  int         `json:"totalRequests"`
	TotalThreats   int         `json:"totalThreats"`
	AverageUsers   int         `json:"averageUsers"`
	History        []HourlyRow `json:"history"`
	GeneratedAtISO string      `json:"generatedAt"`
}

// Generator wraps a random source. The zero value is not usable; use New.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// New returns a generator seeded with seed. Equal seeds give equal output.
func New(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed)), now: time.Now}
}

// WithClock replaces the time source.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// between returns an int in [min, max).
func (g *Generator) between(min, max int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return min + g.rnd.Intn(max-min)
}

// SystemStatus returns the fixed headline status of the service.
func (g *Generator) SystemStatus() SystemStatus {
	return SystemStatus{
		Online:         true,
		Uptime:         "99.99%",
		ActiveUsers:    1427,
		ThreatsBlocked: 12456,
		ResponseTime:   "24ms",
		TotalScripts:   28451,
		MemoryUsage:    "42%",
		CPULoad:        "18%",
		Timestamp:      util.ISOTimestamp(g.now()),
	}
}

// FallbackStatus is what clients show when the status endpoint is unreachable.
func FallbackStatus(now time.Time) SystemStatus {
	return SystemStatus{
		Online:         false,
		Uptime:         "0%",
		ActiveUsers:    0,
		ThreatsBlocked: 0,
		ResponseTime:   "999ms",
		Timestamp:      util.ISOTimestamp(now),
		IsFallback:     true,
	}
}

// LegacyUsageStart is the first day of the usage series the analytics
// endpoint has always returned.
var LegacyUsageStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// UsageSeries returns one row per day starting at start.
func (g *Generator) UsageSeries(start time.Time, days int) []UsageRow {
	rows := make([]UsageRow, 0, days)
	for i := 0; i < days; i++ {
		rows = append(rows, UsageRow{
			Date:     start.AddDate(0, 0, i).Format("2006-01-02"),
			Requests: g.between(500, 1500),
			Scripts:  g.between(200, 700),
			Threats:  g.between(0, 50),
		})
	}
	return rows
}

// HourlyHistory returns the last 24 hours ending at the current hour, oldest first.
func (g *Generator) HourlyHistory() []HourlyRow {
	now := g.now()
	rows := make([]HourlyRow, 0, 24)
	for i := 23; i >= 0; i-- {
		hour := now.Add(-time.Duration(i) * time.Hour)
		rows = append(rows, HourlyRow{
			Time:     fmt.Sprintf("%02d:00", hour.Hour()),
			Requests: g.between(500, 1500),
			Threats:  g.between(0, 50),
			Users:    g.between(1000, 1200),
		})
	}
	return rows
}

// Stats summarises HourlyHistory for the given period label.
func (g *Generator) Stats(period string) Stats {
	history := g.HourlyHistory()
	s := Stats{Period: period, History: history, GeneratedAtISO: util.ISOTimestamp(g.now())}
	users := 0
	for _, row := range history {
		s.TotalRequests += row.Requests
		s.TotalThreats += row.Threats
		users += row.Users
	}
	s.AverageUsers = users / len(history)
	return s
}

// ThreatBreakdown is the pie chart on the dashboard.
func ThreatBreakdown() []ThreatSlice {
	return []ThreatSlice{
		{Name: "Debug Attempts", Value: 45, Color: "#ff3366"},
		{Name: "Tampering", Value: 28, Color: "#ffaa00"},
		{Name: "Memory Scans", Value: 18, Color: "#00d9ff"},
		{Name: "Hook Attempts", Value: 9, Color: "#b026ff"},
	}
}

func RecentActivities() []Activity {
	return []Activity{
		{ID: 1, Type: "script_load", Description: "Protected script loaded", Time: "2 minutes ago", Status: "success"},
		{ID: 2, Type: "api_key", Description: "API key regenerated", Time: "1 hour ago", Status: "info"},
		{ID: 3, Type: "threat_blocked", Description: "Debugger detected and blocked", Time: "3 hours ago", Status: "warning"},
		{ID: 4, Type: "script_load", Description: "Batch script execution", Time: "5 hours ago", Status: "success"},
		{ID: 5, Type: "whitelist", Description: "New IP whitelisted", Time: "1 day ago", Status: "info"},
	}
}

// RecentEvents feeds the status board on the Loader page.
func RecentEvents() []Event {
	return []Event{
		{ID: 1, Type: "success", Message: "System backup completed", Time: "2 min ago"},
		{ID: 2, Type: "info", Message: "API rate limit increased", Time: "15 min ago"},
		{ID: 3, Type: "warning", Message: "High load detected on server US-West", Time: "1 hour ago"},
		{ID: 4, Type: "success", Message: "Security patch v2.0.1 deployed", Time: "3 hours ago"},
		{ID: 5, Type: "info", Message: "New user registered", Time: "5 hours ago"},
	}
}

func QuickStats() []QuickStat {
	return []QuickStat{
		{Label: "Total Scripts Loaded", Value: util.FormatThousands(12847), Change: "+12%"},
		{Label: "Active Sessions", Value: "142", Change: "+5%"},
		{Label: "Threats Blocked", Value: "456", Change: "-8%"},
		{Label: "Uptime", Value: "99.99%", Change: "0%"},
	}
}

// UptimeSeries returns daily uptime percentages ending today, between
// 99.90 and 100.
func (g *Generator) UptimeSeries(days int) []UptimeRow {
	today := g.now().UTC().Truncate(24 * time.Hour)
	rows := make([]UptimeRow, 0, days)
	for i := days - 1; i >= 0; i-- {
		rows = append(rows, UptimeRow{
			Date:   today.AddDate(0, 0, -i).Format("2006-01-02"),
			Uptime: float64(9990+g.between(0, 11)) / 100,
		})
	}
	return rows
}

var tiers = []string{"enterprise", "premium", "basic"}

// TopUsers returns limit users ordered by request count, highest first.
func (g *Generator) TopUsers(limit int) []TopUser {
	users := make([]TopUser, 0, limit)
	requests := g.between(10000, 15000)
	for i := 0; i < limit; i++ {
		users = append(users, TopUser{
			Rank:     i + 1,
			UserID:   fmt.Sprintf("user_%d", g.between(100, 999)),
			Tier:     tiers[g.between(0, len(tiers))],
			Requests: requests,
		})
		requests -= g.between(100, 1000)
		if requests < 0 {
			requests = 0
		}
	}
	return users
}

// ParsePeriod accepts "<n>h" and "<n>d" labels such as 24h, 7d or 30d.
func ParsePeriod(period string) (time.Duration, error) {
	if len(period) < 2 {
		return 0, fmt.Errorf("invalid period %q", period)
	}
	unit := period[len(period)-1]
	n, err := strconv.Atoi(strings.TrimSpace(period[:len(period)-1]))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid period %q", period)
	}
	switch unit {
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid period %q", period)
	}
}

// PeriodDays rounds a period up to whole days, at least one.
func PeriodDays(d time.Duration) int {
	days := int((d + 24*time.Hour - 1) / (24 * time.Hour))
	if days < 1 {
		return 1
	}
	return days
}
