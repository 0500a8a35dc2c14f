// Package chart provides sparkline rendering with color-coded limits,
// shaded over-limit intervals, peak markers, minute tick marks, timeline
// labels and limit scale bars.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/pulpwatch/internal/detect"
	"github.com/luki/pulpwatch/internal/series"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

var (
	colorOk     = lipgloss.Color("78")  // soft green
	colorNear   = lipgloss.Color("220") // yellow
	colorOver   = lipgloss.Color("208") // orange
	colorCrit   = lipgloss.Color("196") // red
	colorShade  = lipgloss.Color("52")
	colorTick   = lipgloss.Color("239")
	colorDim    = lipgloss.Color("236")
	colorMarker = lipgloss.Color("226")
)

// Thresholds are the two levels a channel is coloured against. A value is
// over Warn when strictly greater, and at Crit when greater or equal.
type Thresholds struct {
	Warn    float64
	Crit    float64
	HasWarn bool
	HasCrit bool
}

func (th Thresholds) near() float64 {
	return th.Warn - math.Abs(th.Warn)*0.05
}

// LevelColor returns the color for a value given its thresholds.
func LevelColor(v float64, th Thresholds) lipgloss.Color {
	switch {
	case th.HasCrit && v >= th.Crit:
		return colorCrit
	case th.HasWarn && v > th.Warn:
		return colorOver
	case th.HasWarn && v >= th.near():
		return colorNear
	default:
		return colorOk
	}
}

// Range returns a vertical range around the window stats that always
// includes the thresholds, padded by pad.
func Range(st series.Stats, th Thresholds, pad float64) (float64, float64) {
	lo, hi := st.Min-pad, st.Peak+pad
	if th.HasWarn && th.Warn+pad > hi {
		hi = th.Warn + pad
	}
	if th.HasCrit && th.Crit+pad > hi {
		hi = th.Crit + pad
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// RenderSparkline renders a sparkline for bare values (no timestamps).
func RenderSparkline(values []float64, width int, rangeMin, rangeMax float64, th Thresholds, shaded []detect.Interval) string {
	if width <= 0 {
		return ""
	}
	pts := make([]series.Point, len(values))
	for i, v := range values {
		pts[i] = series.Point{Value: v}
	}
	return RenderSparklinePoints(pts, width, rangeMin, rangeMax, th, shaded)
}

// RenderSparklinePoints renders the last width points. Cells inside a
// shaded interval get a dark red background; interval indices refer to the
// full points slice. A subtle pipe is drawn at each minute boundary.
func RenderSparklinePoints(points []series.Point, width int, rangeMin, rangeMax float64, th Thresholds, shaded []detect.Interval) string {
	if width <= 0 {
		return ""
	}

	if len(points) == 0 {
		dim := lipgloss.NewStyle().Foreground(colorDim)
		return dim.Render(strings.Repeat("╌", width))
	}

	offset := 0
	if len(points) > width {
		offset = len(points) - width
		points = points[offset:]
	}

	padLen := width - len(points)
	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder

	dim := lipgloss.NewStyle().Foreground(colorDim)
	for i := 0; i < padLen; i++ {
		sb.WriteString(dim.Render("╌"))
	}

	tickStyle := lipgloss.NewStyle().Foreground(colorTick)
	k := 0

	for i, p := range points {
		idx := offset + i
		for k < len(shaded) && shaded[k].End < idx {
			k++
		}
		inShade := k < len(shaded) && shaded[k].Contains(idx)

		norm := (p.Value - rangeMin) / span
		norm = math.Max(0, math.Min(1, norm))

		level := int(norm * 7)
		if level > 7 {
			level = 7
		}

		var style lipgloss.Style
		var ch string
		if isMinuteTick(points, i) {
			style, ch = tickStyle, "│"
		} else {
			style = lipgloss.NewStyle().Foreground(LevelColor(p.Value, th))
			if th.HasCrit && p.Value >= th.Crit {
				style = style.Bold(true)
			}
			ch = string(sparkBlocks[level])
		}
		if inShade {
			style = style.Background(colorShade)
		}
		sb.WriteString(style.Render(ch))
	}

	return sb.String()
}

func isMinuteTick(points []series.Point, i int) bool {
	p := points[i]
	if p.Time.IsZero() {
		return false
	}
	if i == 0 || points[i-1].Time.IsZero() {
		return p.Time.Second() == 0
	}
	return p.Time.Minute() != points[i-1].Time.Minute()
}

// RenderMarkers renders the annotation row above a sparkline: a marker at
// the last sample of each interval followed by the interval peak, when it
// fits. n is the length of the full series the intervals index into.
func RenderMarkers(n int, intervals []detect.Interval, width int) string {
	if width <= 0 || len(intervals) == 0 {
		return ""
	}

	offset := 0
	if n > width {
		offset = n - width
		n = width
	}
	padLen := width - n

	line := make([]rune, width)
	for i := range line {
		line[i] = ' '
	}

	lastEnd := -1
	for _, iv := range intervals {
		pos := padLen + iv.End - offset
		if pos < 0 || pos >= width || pos <= lastEnd {
			continue
		}
		line[pos] = '▼'
		lastEnd = pos
		label := []rune(fmt.Sprintf("%.1f", iv.Peak))
		if pos+1+len(label) > width {
			continue
		}
		copy(line[pos+1:], label)
		lastEnd = pos + len(label)
	}

	return lipgloss.NewStyle().Foreground(colorMarker).Render(string(line))
}

// RenderTimeline renders the time labels under the sparkline, showing
// HH:MM at each minute tick position.
func RenderTimeline(points []series.Point, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	padLen := width - len(points)

	line := make([]rune, width)
	for i := range line {
		line[i] = ' '
	}

	type tick struct {
		pos   int
		label string
	}
	var ticks []tick

	for i, p := range points {
		if isMinuteTick(points, i) {
			ticks = append(ticks, tick{pos: padLen + i, label: p.Time.Format("15:04")})
		}
	}

	lastEnd := -1
	for _, t := range ticks {
		start := t.pos - 2
		if start < 0 {
			start = 0
		}
		end := start + len(t.label)
		if end > width {
			continue
		}
		if start <= lastEnd+1 {
			continue
		}
		for j, ch := range t.label {
			line[start+j] = ch
		}
		lastEnd = end
	}

	return lipgloss.NewStyle().Foreground(colorTick).Render(string(line))
}

// RenderThresholdScale renders a scale bar showing the current value
// against the thresholds.
func RenderThresholdScale(current, rangeMin, rangeMax float64, th Thresholds, width int) string {
	if width <= 0 {
		return ""
	}

	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}
	posOf := func(v float64) int {
		return int(float64(width-1) * (v - rangeMin) / span)
	}

	warnPos, critPos := -1, -1
	if th.HasWarn && th.Warn > rangeMin {
		warnPos = posOf(th.Warn)
	}
	if th.HasCrit && th.Crit > rangeMin {
		critPos = posOf(th.Crit)
	}

	curPos := posOf(current)
	if curPos < 0 {
		curPos = 0
	}
	if curPos >= width {
		curPos = width - 1
	}

	var sb strings.Builder
	for i := 0; i < width; i++ {
		switch i {
		case curPos:
			style := lipgloss.NewStyle().Foreground(LevelColor(current, th)).Bold(true)
			sb.WriteString(style.Render("◆"))
		case critPos:
			sb.WriteString(lipgloss.NewStyle().Foreground(colorCrit).Render("▪"))
		case warnPos:
			sb.WriteString(lipgloss.NewStyle().Foreground(colorNear).Render("▪"))
		default:
			sb.WriteString(lipgloss.NewStyle().Foreground(colorDim).Render("·"))
		}
	}

	return sb.String()
}

// RenderValue renders a value and unit with color coding.
func RenderValue(v float64, unit string, th Thresholds) string {
	s := fmt.Sprintf("%7.2f %s", v, unit)
	style := lipgloss.NewStyle().Foreground(LevelColor(v, th))
	if th.HasCrit && v >= th.Crit {
		style = style.Bold(true)
	}
	return style.Render(s)
}
