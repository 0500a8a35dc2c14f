package chart

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/pulpwatch/internal/alert"
	"github.com/luki/pulpwatch/internal/sensor"
	"github.com/luki/pulpwatch/internal/session"
)

var (
	colorBorder = lipgloss.Color("62")
	colorTitle  = lipgloss.Color("147")
	colorLabel  = lipgloss.Color("243")
	colorValue  = lipgloss.Color("250")
)

// ChannelThresholds maps alert limits onto the coloring thresholds of a
// channel: temperature warns above its limit and is critical from the
// pulp-chamber limit, pressure only warns.
func ChannelThresholds(ch sensor.Channel, l alert.Limits) Thresholds {
	switch ch {
	case sensor.Temperature:
		return Thresholds{Warn: l.Temp, Crit: l.PulpTemp, HasWarn: true, HasCrit: true}
	case sensor.Pressure:
		return Thresholds{Warn: l.Press, HasWarn: true}
	default:
		return Thresholds{}
	}
}

// RenderPanel renders one channel: title line, peak markers, sparkline
// with shaded intervals, timeline and a limit scale.
func RenderPanel(v session.ChannelView, th Thresholds, totalWidth int) string {
	innerWidth := totalWidth - 4
	if innerWidth < 30 {
		innerWidth = 30
	}
	chartWidth := innerWidth - 2
	if chartWidth > 240 {
		chartWidth = 240
	}

	dimS := lipgloss.NewStyle().Foreground(colorLabel)
	valS := lipgloss.NewStyle().Foreground(colorValue)
	frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
	frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")

	var rows []string

	title := lipgloss.NewStyle().Bold(true).Foreground(colorTitle).Render(channelTitle(v.Channel))
	head := title
	if len(v.Points) > 0 {
		head += "  " + RenderValue(v.Latest, v.Channel.Unit(), th)
	}
	head += dimS.Render(fmt.Sprintf("  limit %.1f", v.Limit))
	if len(v.Points) > 0 {
		head += dimS.Render("  avg") + valS.Render(fmt.Sprintf("%8.2f", v.Stats.Avg)) +
			dimS.Render(" lo") + valS.Render(fmt.Sprintf("%8.2f", v.Stats.Min)) +
			dimS.Render(" pk") + valS.Render(fmt.Sprintf("%8.2f", v.Stats.Peak))
	}
	if n := len(v.Intervals); n > 0 {
		head += lipgloss.NewStyle().Foreground(colorOver).Render(fmt.Sprintf("  %d over-limit run(s)", n))
	}
	rows = append(rows, head)

	pad := 2.0
	if v.Channel == sensor.Pressure {
		pad = 10
	}
	rangeMin, rangeMax := Range(v.Stats, th, pad)

	if markers := RenderMarkers(len(v.Points), v.Intervals, chartWidth); markers != "" {
		rows = append(rows, " "+markers)
	}
	rows = append(rows, frameL+RenderSparklinePoints(v.Points, chartWidth, rangeMin, rangeMax, th, v.Intervals)+frameR)

	if timeline := RenderTimeline(v.Points, chartWidth); strings.TrimSpace(timeline) != "" {
		rows = append(rows, " "+timeline)
	}
	if len(v.Points) > 0 {
		rows = append(rows, " "+RenderThresholdScale(v.Latest, rangeMin, rangeMax, th, chartWidth))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(totalWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func channelTitle(ch sensor.Channel) string {
	switch ch {
	case sensor.Temperature:
		return "TEMPERATURE"
	case sensor.Pressure:
		return "PRESSURE"
	default:
		return strings.ToUpper(string(ch))
	}
}

// RenderBanners renders one banner per active alert plus the tool state.
// Nothing is returned for a quiet snapshot with unknown tool state.
func RenderBanners(snap session.Snapshot, width int) []string {
	banner := func(bg lipgloss.Color, msg string) string {
		return lipgloss.NewStyle().
			Background(bg).
			Foreground(lipgloss.Color("231")).
			Bold(true).
			Width(width).
			Padding(0, 1).
			Render(msg)
	}

	var out []string
	st := snap.Alert
	if st.PulpRisk {
		out = append(out, banner(lipgloss.Color("124"),
			fmt.Sprintf("⚠ ALERT: possible pulp chamber penetration! Temperature %.2f °C rising fast", snap.Temp.Latest)))
	}
	if st.TemperatureOver {
		out = append(out, banner(lipgloss.Color("88"),
			fmt.Sprintf("⚠ High temperature: %.2f °C", snap.Temp.Latest)))
	}
	if st.PressureOver {
		out = append(out, banner(lipgloss.Color("166"),
			fmt.Sprintf("⚠ High pressure: %.2f hPa", snap.Press.Latest)))
	}

	switch st.Tool {
	case alert.ToolOn:
		out = append(out, lipgloss.NewStyle().Foreground(colorOk).Bold(true).Padding(0, 1).
			Render("● Tool ON: temperature rising"))
	case alert.ToolOff:
		out = append(out, lipgloss.NewStyle().Foreground(colorCrit).Bold(true).Padding(0, 1).
			Render("● Tool OFF: temperature falling"))
	}
	return out
}
