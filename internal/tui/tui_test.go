package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pynezz/scriptshield/internal/client"
	"github.com/pynezz/scriptshield/internal/mock"
	"github.com/pynezz/scriptshield/pkg/model"
)

type fakeSource struct {
	status    mock.SystemStatus
	statsErr  error
	threatErr error
	ping      client.PingResult
	breakdown []mock.ThreatSlice
}

func (f *fakeSource) GetSystemStatus() mock.SystemStatus { return f.status }

func (f *fakeSource) GetStats(period string) (*mock.Stats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	st := mock.New(3).Stats(period)
	return &st, nil
}

func (f *fakeSource) GetThreats(period string) (*model.ThreatsResponse, error) {
	if f.threatErr != nil {
		return nil, f.threatErr
	}
	breakdown := f.breakdown
	if breakdown == nil {
		breakdown = mock.ThreatBreakdown()
	}
	return &model.ThreatsResponse{Period: period, Breakdown: breakdown, Total: 100}, nil
}

func (f *fakeSource) Ping() client.PingResult { return f.ping }

func TestCollect(t *testing.T) {
	src := &fakeSource{
		status: mock.New(1).SystemStatus(),
		ping:   client.PingResult{Success: true, Latency: 12 * time.Millisecond},
	}

	s := Collect(src, "24h")
	require.NotNil(t, s.Stats)
	require.NotNil(t, s.Threats)
	assert.Empty(t, s.Errors)

	req, thr := Series(s.Stats)
	assert.Len(t, req, 24)
	assert.Len(t, thr, 24)
}

func TestCollect_KeepsErrors(t *testing.T) {
	src := &fakeSource{
		status:    mock.FallbackStatus(time.Now()),
		statsErr:  errors.New("boom"),
		threatErr: errors.New("API key required"),
	}

	s := Collect(src, "24h")
	assert.Nil(t, s.Stats)
	assert.Nil(t, s.Threats)
	assert.Equal(t, []string{"stats: boom", "threats: API key required"}, s.Errors)

	req, thr := Series(s.Stats)
	assert.Nil(t, req)
	assert.Nil(t, thr)
}

func TestStatusText(t *testing.T) {
	s := Snapshot{
		At:     time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		Status: mock.New(1).SystemStatus(),
		Ping:   client.PingResult{Success: true, Latency: 42 * time.Millisecond},
	}
	text := StatusText(s)
	assert.Contains(t, text, "ONLINE")
	assert.Contains(t, text, "12,456")
	assert.Contains(t, text, "42ms")
	assert.Contains(t, text, "09:30:00")

	s.Status = mock.FallbackStatus(s.At)
	s.Ping = client.PingResult{}
	text = StatusText(s)
	assert.Contains(t, text, "OFFLINE")
	assert.Contains(t, text, "fallback")
	assert.Contains(t, text, "failed")
}

func TestMonitorUpdate(t *testing.T) {
	m := NewMonitor(&fakeSource{}, "", 0)
	assert.Equal(t, "24h", m.period)
	assert.Equal(t, 5*time.Second, m.interval)

	m.layout()
	src := &fakeSource{status: mock.New(1).SystemStatus()}
	m.update(Collect(src, m.period))

	assert.Len(t, m.traffic.Data, 2)
	assert.Equal(t, []string{"Debug", "Tampering", "Memory", "Hook"}, m.threats.Labels)
	assert.Equal(t, []string{"[none](fg:green)"}, m.log.Rows)
}

func TestMonitorUpdate_BlankThreatName(t *testing.T) {
	m := NewMonitor(&fakeSource{}, "24h", time.Second)
	m.layout()

	src := &fakeSource{breakdown: []mock.ThreatSlice{{Name: "", Value: 3}, {Name: "  ", Value: 1}, {Name: "Hook Attempts", Value: 2}}}
	assert.NotPanics(t, func() { m.update(Collect(src, m.period)) })
	assert.Equal(t, []string{"?", "?", "Hook"}, m.threats.Labels)
	assert.Equal(t, []float64{3, 1, 2}, m.threats.Data)
}
