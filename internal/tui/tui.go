package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/pynezz/scriptshield/internal/client"
	"github.com/pynezz/scriptshield/internal/mock"
	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/pkg/model"
	"github.com/pynezz/scriptshield/pkg/version"
)

type HeaderStruct struct {
	Color   string
	Version string
	Content string
}

var Header = &HeaderStruct{
	Color:   util.Cyan,
	Version: version.ClientVersion,
	Content: AsciiArt(),
}

func AsciiArt() string {
	return `
 ___         _      _   ___ _    _     _    _
/ __| __ _ _(_)_ __| |_/ __| |_ (_)___| |__| |
\__ \/ _| '_| | '_ \  _\__ \ ' \| / -_) / _' |
|___/\__|_| |_| .__/\__|___/_||_|_\___|_\__,_|
              |_|                      v%s`
}

// ColorHeader should be used in conjunction with the util package for proper formatting
func (h *HeaderStruct) ColorHeader(color string) string {
	return util.ColorF(color, h.Content, h.Version)
}

func (h *HeaderStruct) PrintHeader() {
	if h.Color != "" {
		fmt.Println(h.ColorHeader(h.Color))
	} else {
		fmt.Printf(h.Content+"\n", h.Version)
	}
}

// Source is what the monitor polls.
type Source interface {
	GetSystemStatus() mock.SystemStatus
	GetStats(period string) (*mock.Stats, error)
	GetThreats(period string) (*model.ThreatsResponse, error)
	Ping() client.PingResult
}

var _ Source = (*client.Client)(nil)

// Snapshot is one poll of the source.
type Snapshot struct {
	At      time.Time
	Status  mock.SystemStatus
	Stats   *mock.Stats
	Threats *model.ThreatsResponse
	Ping    client.PingResult
	Errors  []string
}

// Collect polls every endpoint once. Failures are kept in Errors.
func Collect(src Source, period string) Snapshot {
	s := Snapshot{At: time.Now(), Status: src.GetSystemStatus(), Ping: src.Ping()}

	stats, err := src.GetStats(period)
	if err != nil {
		s.Errors = append(s.Errors, "stats: "+err.Error())
	} else {
		s.Stats = stats
	}

	threats, err := src.GetThreats("7d")
	if err != nil {
		s.Errors = append(s.Errors, "threats: "+err.Error())
	} else {
		s.Threats = threats
	}
	return s
}

// StatusText renders the status panel.
func StatusText(s Snapshot) string {
	var b strings.Builder
	state := "[ONLINE](fg:green)"
	if !s.Status.Online {
		state = "[OFFLINE](fg:red)"
	}
	if s.Status.IsFallback {
		state += " [fallback](fg:yellow)"
	}
	fmt.Fprintf(&b, "State:     %s\n", state)
	fmt.Fprintf(&b, "Uptime:    %s\n", s.Status.Uptime)
	fmt.Fprintf(&b, "Users:     %s\n", util.FormatThousands(int64(s.Status.ActiveUsers)))
	fmt.Fprintf(&b, "Blocked:   %s\n", util.FormatThousands(int64(s.Status.ThreatsBlocked)))
	fmt.Fprintf(&b, "Response:  %s\n", s.Status.ResponseTime)
	if s.Ping.Success {
		fmt.Fprintf(&b, "Ping:      %dms\n", s.Ping.Latency.Milliseconds())
	} else {
		fmt.Fprintf(&b, "Ping:      [failed](fg:red)\n")
	}
	fmt.Fprintf(&b, "Updated:   %s", s.At.Format("15:04:05"))
	return b.String()
}

// Series returns the request and threat lines of the stats history.
func Series(s *mock.Stats) (requests, threats []float64) {
	if s == nil {
		return nil, nil
	}
	for _, row := range s.History {
		requests = append(requests, float64(row.Requests))
		threats = append(threats, float64(row.Threats))
	}
	return requests, threats
}

type Monitor struct {
	src      Source
	period   string
	interval time.Duration

	status  *widgets.Paragraph
	traffic *widgets.Plot
	threats *widgets.BarChart
	log     *widgets.List
}

func NewMonitor(src Source, period string, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if period == "" {
		period = "24h"
	}
	return &Monitor{src: src, period: period, interval: interval}
}

func (m *Monitor) layout() {
	m.status = widgets.NewParagraph()
	m.status.Title = "System Status"
	m.status.BorderStyle.Fg = ui.ColorCyan
	m.status.SetRect(0, 0, 40, 10)

	m.traffic = widgets.NewPlot()
	m.traffic.Title = "Requests / Threats (" + m.period + ")"
	m.traffic.LineColors = []ui.Color{ui.ColorCyan, ui.ColorRed}
	m.traffic.AxesColor = ui.ColorWhite
	m.traffic.SetRect(40, 0, 100, 14)

	m.threats = widgets.NewBarChart()
	m.threats.Title = "Threat Breakdown (%)"
	m.threats.BarWidth = 8
	m.threats.BarColors = []ui.Color{ui.ColorRed, ui.ColorYellow, ui.ColorCyan, ui.ColorMagenta}
	m.threats.SetRect(0, 10, 40, 24)

	m.log = widgets.NewList()
	m.log.Title = "Errors"
	m.log.TextStyle.Fg = ui.ColorYellow
	m.log.SetRect(40, 14, 100, 24)
}

func (m *Monitor) update(s Snapshot) {
	m.status.Text = StatusText(s)

	requests, threats := Series(s.Stats)
	// the plot panics on series shorter than two points
	if len(requests) > 1 {
		m.traffic.Data = [][]float64{requests, threats}
	}

	if s.Threats != nil {
		m.threats.Data = m.threats.Data[:0]
		m.threats.Labels = m.threats.Labels[:0]
		for _, t := range s.Threats.Breakdown {
			m.threats.Data = append(m.threats.Data, float64(t.Value))
			m.threats.Labels = append(m.threats.Labels, barLabel(t.Name))
		}
	}

	if len(s.Errors) == 0 {
		m.log.Rows = []string{"[none](fg:green)"}
	} else {
		m.log.Rows = s.Errors
	}
}

// barLabel shortens a breakdown name to its first word.
func barLabel(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return "?"
}

func (m *Monitor) draw() {
	items := []ui.Drawable{m.status, m.log}
	if len(m.traffic.Data) > 0 {
		items = append(items, m.traffic)
	}
	if len(m.threats.Data) > 0 {
		items = append(items, m.threats)
	}
	ui.Render(items...)
}

// Run draws the dashboard and refreshes it every interval until q, Ctrl-C
// or ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	Header.PrintHeader()
	if err := ui.Init(); err != nil {
		return fmt.Errorf("failed to initialize termui: %w", err)
	}
	defer ui.Close()

	m.layout()
	m.update(Collect(m.src, m.period))
	m.draw()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	events := ui.PollEvents()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-events:
			if e.Type == ui.KeyboardEvent && (e.ID == "q" || e.ID == "<C-c>") {
				return nil
			}
			if e.ID == "<Resize>" {
				ui.Clear()
				m.draw()
			}
		case <-ticker.C:
			m.update(Collect(m.src, m.period))
			m.draw()
		}
	}
}
