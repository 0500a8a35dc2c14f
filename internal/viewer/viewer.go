// Package viewer implements the offline review TUI: the whole dataset is
// replayed through a session up front and the user scrubs tick by tick,
// seeing the charts and alerts exactly as the live dashboard showed them.
package viewer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/pulpwatch/internal/alert"
	"github.com/luki/pulpwatch/internal/chart"
	"github.com/luki/pulpwatch/internal/sensor"
	"github.com/luki/pulpwatch/internal/session"
)

// Run launches the review TUI.
func Run(readings []sensor.Reading, cfg session.Config, interval time.Duration, source string) error {
	m := initModel(readings, cfg, interval, source)
	if len(m.accepted) == 0 {
		return fmt.Errorf("no usable rows in %s", source)
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorCursor   = lipgloss.Color("214")
	colorOver     = lipgloss.Color("208")
	colorCrit     = lipgloss.Color("196")
)

// ── Model ────────────────────────────────────────────────────────────

type model struct {
	cfg      session.Config
	source   string
	accepted []sensor.Reading // rows the session accepted, in order
	states   []alert.State    // alert state after each accepted row
	dropped  int
	cursor   int // index into accepted
	scroll   int
	width    int
	height   int
	snap     session.Snapshot
}

func initModel(readings []sensor.Reading, cfg session.Config, interval time.Duration, source string) model {
	m := model{cfg: cfg, source: source}

	// Elapsed replay time, so timeline labels read as mm:ss into the run.
	base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	s := session.New(cfg)
	for i, r := range readings {
		r.Time = base.Add(time.Duration(i) * interval)
		snap, ok := s.Ingest(r)
		if !ok {
			continue
		}
		m.accepted = append(m.accepted, r)
		m.states = append(m.states, snap.Alert)
	}
	m.dropped = s.Dropped()

	if len(m.accepted) > 0 {
		m.seek(len(m.accepted) - 1)
	}
	return m
}

// seek rebuilds the snapshot at tick i. Only the last MaxPoints accepted
// rows influence a snapshot, so replaying that window reproduces it.
func (m *model) seek(i int) {
	if i < 0 {
		i = 0
	}
	if i >= len(m.accepted) {
		i = len(m.accepted) - 1
	}
	m.cursor = i

	start := i - m.cfg.MaxPoints + 1
	if start < 0 {
		start = 0
	}
	s := session.New(m.cfg)
	for _, r := range m.accepted[start : i+1] {
		m.snap, _ = s.Ingest(r)
	}
}

func (m model) alerting(i int) bool {
	st := m.states[i]
	return st.TemperatureOver || st.PressureOver || st.PulpRisk
}

// nextAlert returns the next tick after from where an alert is raised
// following a quiet tick, or -1.
func (m model) nextAlert(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(m.states); i += dir {
		if m.alerting(i) && (i == 0 || !m.alerting(i-1)) {
			return i
		}
	}
	return -1
}

// ── Init / Update ────────────────────────────────────────────────────

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "left", "h":
			m.seek(m.cursor - 1)
		case "right", "l":
			m.seek(m.cursor + 1)
		case "shift+left", "H":
			m.seek(m.cursor - 60)
		case "shift+right", "L":
			m.seek(m.cursor + 60)
		case "home":
			m.seek(0)
		case "end":
			m.seek(len(m.accepted) - 1)
		case "n":
			if i := m.nextAlert(m.cursor, 1); i >= 0 {
				m.seek(i)
			}
		case "N":
			if i := m.nextAlert(m.cursor, -1); i >= 0 {
				m.seek(i)
			}

		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		case "down", "j":
			m.scroll++
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// ── View ─────────────────────────────────────────────────────────────

func (m model) View() string {
	if m.width == 0 {
		return "  Loading..."
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string

	sections = append(sections, m.renderTitle(contentWidth))

	if len(m.accepted) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(2, 0).
			Align(lipgloss.Center).
			Width(contentWidth).
			Render("No usable rows in this dataset.")
		sections = append(sections, empty)
	} else {
		sections = append(sections, m.renderCursorInfo(contentWidth))
		sections = append(sections, chart.RenderBanners(m.snap, contentWidth)...)
		limits := m.cfg.Limits
		sections = append(sections, chart.RenderPanel(m.snap.Temp, chart.ChannelThresholds(sensor.Temperature, limits), contentWidth))
		if m.snap.HasPress {
			sections = append(sections, chart.RenderPanel(m.snap.Press, chart.ChannelThresholds(sensor.Pressure, limits), contentWidth))
		}
	}

	sections = append(sections, m.renderFooter(contentWidth))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	lines := strings.Split(content, "\n")
	visibleLines := m.height
	if visibleLines < 5 {
		visibleLines = 5
	}
	maxScroll := len(lines) - visibleLines
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.scroll > maxScroll {
		m.scroll = maxScroll
	}

	start := m.scroll
	end := start + visibleLines
	if end > len(lines) {
		end = len(lines)
	}

	return strings.Join(lines[start:end], "\n")
}

func (m model) renderTitle(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("PULPWATCH REVIEW")

	src := lipgloss.NewStyle().
		Foreground(colorCursor).
		Bold(true).
		Render(filepath.Base(m.source))

	info := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(fmt.Sprintf("  %d ticks, %d dropped", len(m.accepted), m.dropped))

	right := src + info

	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + filler + right)
}

func (m model) renderCursorInfo(width int) string {
	r := m.accepted[m.cursor]
	ts := lipgloss.NewStyle().
		Foreground(colorCursor).
		Bold(true).
		Render(r.Time.Format("15:04:05"))

	pos := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(fmt.Sprintf("  %d/%d  row %d", m.cursor+1, len(m.accepted), r.Index))

	barWidth := width - 40
	if barWidth < 10 {
		barWidth = 10
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		Render("  " + ts + pos + "  " + m.renderScrubber(barWidth))
}

// renderScrubber draws the whole run as a bar; slots where an alert was
// raised are colored, pulp-chamber risk in red.
func (m model) renderScrubber(width int) string {
	n := len(m.states)
	if n == 0 || width <= 0 {
		return ""
	}

	pos := 0
	if n > 1 {
		pos = m.cursor * (width - 1) / (n - 1)
	}
	if pos >= width {
		pos = width - 1
	}

	var sb strings.Builder
	dimS := lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	overS := lipgloss.NewStyle().Foreground(colorOver)
	critS := lipgloss.NewStyle().Foreground(colorCrit)
	curS := lipgloss.NewStyle().Foreground(colorCursor).Bold(true)

	for i := 0; i < width; i++ {
		if i == pos {
			sb.WriteString(curS.Render("◆"))
			continue
		}
		lo, hi := 0, 0
		if width > 1 {
			lo = i * n / width
			hi = (i + 1) * n / width
		}
		if hi <= lo {
			hi = lo + 1
		}
		if hi > n {
			hi = n
		}
		var pulp, over bool
		for _, st := range m.states[lo:hi] {
			pulp = pulp || st.PulpRisk
			over = over || st.TemperatureOver || st.PressureOver
		}
		switch {
		case pulp:
			sb.WriteString(critS.Render("━"))
		case over:
			sb.WriteString(overS.Render("━"))
		default:
			sb.WriteString(dimS.Render("─"))
		}
	}

	return sb.String()
}

func (m model) renderFooter(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	keyS := lipgloss.NewStyle().Foreground(colorLabel)

	keys := dimS.Render("q") + keyS.Render(":quit") +
		dimS.Render("  h/l") + keyS.Render(":scrub") +
		dimS.Render("  H/L") + keyS.Render(":skip 60") +
		dimS.Render("  n/N") + keyS.Render(":next/prev alert") +
		dimS.Render("  home/end") + keyS.Render(":jump") +
		dimS.Render("  j/k") + keyS.Render(":scroll")

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(keys)
}
