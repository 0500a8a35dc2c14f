package chart

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/pulpwatch/internal/alert"
	"github.com/luki/pulpwatch/internal/detect"
	"github.com/luki/pulpwatch/internal/sensor"
	"github.com/luki/pulpwatch/internal/series"
	"github.com/luki/pulpwatch/internal/session"
)

var tempTh = Thresholds{Warn: 32, Crit: 35, HasWarn: true, HasCrit: true}

func TestSparkline(t *testing.T) {
	values := []float64{30, 31, 32, 33, 34, 35, 36, 31, 30}
	shaded := detect.Detect(values, 32)
	result := RenderSparkline(values, 20, 28, 38, tempTh, shaded)
	if len(result) == 0 {
		t.Error("sparkline should not be empty")
	}
	if w := lipgloss.Width(result); w != 20 {
		t.Errorf("sparkline width: got %d, want 20", w)
	}
	t.Logf("Sparkline: %s", result)
}

func TestSparklineTrimsToWidth(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = float64(30 + i%8)
	}
	result := RenderSparkline(values, 10, 28, 40, tempTh, detect.Detect(values, 32))
	if w := lipgloss.Width(result); w != 10 {
		t.Errorf("width: got %d, want 10", w)
	}
}

func TestSparklineMinuteTicks(t *testing.T) {
	base := time.Date(2026, 2, 21, 14, 0, 50, 0, time.Local)
	var pts []series.Point
	for i := 0; i < 20; i++ {
		pts = append(pts, series.Point{
			Value: float64(30 + i%5),
			Time:  base.Add(time.Duration(i) * time.Second),
		})
	}

	result := RenderSparklinePoints(pts, 20, 28, 36, tempTh, nil)
	if !strings.Contains(result, "│") {
		t.Error("expected minute tick mark in sparkline")
	}

	timeline := RenderTimeline(pts, 20)
	if !strings.Contains(timeline, "14:01") {
		t.Errorf("expected 14:01 label in timeline, got %q", timeline)
	}
}

func TestLevelColor(t *testing.T) {
	tests := []struct {
		v    float64
		want lipgloss.Color
	}{
		{20, colorOk},
		{31, colorNear},
		{32, colorNear},
		{32.5, colorOver},
		{35, colorCrit},
	}
	for _, tt := range tests {
		if got := LevelColor(tt.v, tempTh); got != tt.want {
			t.Errorf("LevelColor(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
	if got := LevelColor(2000, Thresholds{}); got != colorOk {
		t.Errorf("no thresholds: got %v", got)
	}
}

func TestRange(t *testing.T) {
	lo, hi := Range(series.Stats{Min: 28, Peak: 30}, tempTh, 2)
	if lo != 26 || hi != 37 {
		t.Errorf("Range: got %v..%v, want 26..37", lo, hi)
	}
	lo, hi = Range(series.Stats{}, Thresholds{}, 0)
	if hi <= lo {
		t.Errorf("degenerate range not widened: %v..%v", lo, hi)
	}
}

func TestRenderMarkers(t *testing.T) {
	ivs := []detect.Interval{{Start: 1, End: 2, Peak: 34}}
	got := RenderMarkers(5, ivs, 10)
	// 5 samples right-aligned in 10 columns: index 2 lands at column 7.
	plain := []rune(stripANSI(got))
	if len(plain) != 10 || plain[7] != '▼' {
		t.Errorf("marker row: got %q", string(plain))
	}
	if RenderMarkers(5, nil, 10) != "" {
		t.Error("no intervals should render nothing")
	}
	// Intervals scrolled out of the visible window are skipped.
	if s := stripANSI(RenderMarkers(30, []detect.Interval{{Start: 0, End: 3, Peak: 40}}, 10)); strings.ContainsRune(s, '▼') {
		t.Errorf("hidden interval rendered: %q", s)
	}
}

func TestRenderPanelAndBanners(t *testing.T) {
	s := session.New(session.DefaultConfig())
	var snap session.Snapshot
	for _, v := range []float64{30, 31, 33, 34, 35.5} {
		snap, _ = s.Ingest(sensor.Reading{Temp: v})
	}

	th := ChannelThresholds(sensor.Temperature, alert.DefaultLimits())
	panel := RenderPanel(snap.Temp, th, 80)
	if !strings.Contains(panel, "TEMPERATURE") {
		t.Error("panel missing title")
	}
	if !strings.Contains(panel, "▼") {
		t.Error("panel missing peak marker")
	}

	banners := RenderBanners(snap, 80)
	joined := strings.Join(banners, "\n")
	for _, want := range []string{"pulp chamber", "High temperature", "Tool ON"} {
		if !strings.Contains(joined, want) {
			t.Errorf("banners missing %q:\n%s", want, joined)
		}
	}
	if strings.Contains(joined, "High pressure") {
		t.Error("unexpected pressure banner")
	}

	if got := RenderBanners(session.New(session.DefaultConfig()).Snapshot(), 80); len(got) != 0 {
		t.Errorf("empty snapshot should render no banners, got %d", len(got))
	}
}

func stripANSI(s string) string {
	var sb strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
