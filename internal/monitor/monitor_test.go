package monitor

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/pulpwatch/internal/alert"
	"github.com/luki/pulpwatch/internal/replay"
	"github.com/luki/pulpwatch/internal/sensor"
	"github.com/luki/pulpwatch/internal/session"
)

func newTestModel(temps ...float64) Model {
	rs := make([]sensor.Reading, len(temps))
	for i, v := range temps {
		rs[i] = sensor.Reading{Index: i + 1, Temp: v}
	}
	feed := replay.NewFeed(rs, replay.DefaultInterval)
	return New(feed, session.DefaultConfig(), "Date_NTC.xlsx", nil)
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestTicksIngestRows(t *testing.T) {
	m := newTestModel(30, 31, 33, 34, 35)
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 60})

	for i := 0; i < 5; i++ {
		m = step(t, m, tickMsg(time.Now()))
	}
	snap := m.Snapshot()
	if snap.Tick != 5 {
		t.Fatalf("tick: got %d, want 5", snap.Tick)
	}
	want := alert.State{TemperatureOver: true, PulpRisk: true, Tool: alert.ToolOn}
	if snap.Alert != want {
		t.Errorf("alert: got %+v, want %+v", snap.Alert, want)
	}

	view := m.View()
	for _, s := range []string{"PULPWATCH", "TEMPERATURE", "pulp chamber", "Tool ON"} {
		if !strings.Contains(view, s) {
			t.Errorf("view missing %q", s)
		}
	}

	m = step(t, m, tickMsg(time.Now()))
	if !m.done {
		t.Error("feed exhausted: expected done")
	}
	if !strings.Contains(m.View(), "FINISHED") {
		t.Error("view should show FINISHED")
	}
}

func TestPauseAndRestart(t *testing.T) {
	m := newTestModel(30, 31, 32)
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m = step(t, m, tickMsg(time.Now()))
	if m.Snapshot().Tick != 0 {
		t.Errorf("paused model ingested a tick")
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m = step(t, m, tickMsg(time.Now()))
	m = step(t, m, tickMsg(time.Now()))
	if m.Snapshot().Tick != 2 {
		t.Fatalf("tick: got %d, want 2", m.Snapshot().Tick)
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if !m.Snapshot().Empty() || m.feed.Pos() != 0 {
		t.Errorf("restart should clear the session and rewind the feed")
	}
}

func TestViewBeforeSize(t *testing.T) {
	m := newTestModel(30)
	if got := m.View(); !strings.Contains(got, "Initializing") {
		t.Errorf("View before size: got %q", got)
	}
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	if !strings.Contains(m.View(), "Waiting for sensor data") {
		t.Error("expected waiting message before first tick")
	}
}
