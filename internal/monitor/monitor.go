// Package monitor implements the live replay dashboard TUI using
// BubbleTea: each tick pulls one row from the replay feed, ingests it into
// the session and redraws the charts and alert banners.
package monitor

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/pulpwatch/internal/chart"
	"github.com/luki/pulpwatch/internal/logging"
	"github.com/luki/pulpwatch/internal/replay"
	"github.com/luki/pulpwatch/internal/sensor"
	"github.com/luki/pulpwatch/internal/session"
)

const minInterval = 10 * time.Millisecond

// ── Messages ─────────────────────────────────────────────────────────

type tickMsg time.Time

// ── Model ────────────────────────────────────────────────────────────

// Model is the BubbleTea model for the live dashboard.
type Model struct {
	cfg       session.Config
	sess      *session.Session
	feed      *replay.Feed
	snap      session.Snapshot
	source    string
	log       *slog.Logger
	width     int
	height    int
	scroll    int
	lastTick  time.Time
	startTime time.Time
	paused    bool
	done      bool
}

// New creates the dashboard model for a feed. source is shown in the title
// bar.
func New(feed *replay.Feed, cfg session.Config, source string, log *slog.Logger) Model {
	if log == nil {
		log = logging.Discard()
	}
	m := Model{
		cfg:       cfg,
		feed:      feed,
		source:    source,
		log:       log,
		startTime: time.Now(),
	}
	m.sess = session.New(cfg, session.WithLogger(log))
	m.snap = m.sess.Snapshot()
	return m
}

// Run starts the dashboard on the alt screen and blocks until it exits.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Snapshot returns the last rendered session snapshot.
func (m Model) Snapshot() session.Snapshot {
	return m.snap
}

// ── Commands ─────────────────────────────────────────────────────────

func (m Model) tickCmd() tea.Cmd {
	d := m.feed.Interval()
	if d < minInterval {
		d = minInterval
	}
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	m.log.Info("monitor started", "session", m.sess.ID().String(), "rows", m.feed.Len(), "source", m.source)
	return m.tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.log.Info("monitor stopped", "ticks", m.snap.Tick, "dropped", m.sess.Dropped())
			return m, tea.Quit
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		case "down", "j":
			m.scroll++
		case "home":
			m.scroll = 0
		case " ", "p":
			m.paused = !m.paused
		case "r":
			m.feed.Reset()
			m.sess = session.New(m.cfg, session.WithLogger(m.log))
			m.snap = m.sess.Snapshot()
			m.paused = false
			if m.done {
				m.done = false
				return m, m.tickCmd()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if m.done {
			return m, nil
		}
		if m.paused {
			return m, m.tickCmd()
		}
		m.ingest()
		if m.done {
			return m, nil
		}
		return m, m.tickCmd()
	}

	return m, nil
}

func (m *Model) ingest() {
	r, ok := m.feed.Next()
	if !ok {
		m.done = true
		m.log.Info("replay finished", "ticks", m.snap.Tick, "dropped", m.sess.Dropped())
		return
	}
	m.lastTick = r.Time
	prev := m.snap.Alert
	snap, accepted := m.sess.Ingest(r)
	if !accepted {
		return
	}
	m.snap = snap
	if snap.Alert != prev {
		m.log.Info("alert state", "tick", snap.Tick, "temp", snap.Temp.Latest, "alert", snap.Alert.String())
	}
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorDim      = lipgloss.Color("240")
	colorLabel    = lipgloss.Color("252")
	colorFooterBg = lipgloss.Color("235")
	colorOk       = lipgloss.Color("78")
	colorWarn     = lipgloss.Color("220")
	colorHigh     = lipgloss.Color("208")
	colorCrit     = lipgloss.Color("196")
	colorShade    = lipgloss.Color("52")
)

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string

	sections = append(sections, m.renderTitleBar(contentWidth))
	sections = append(sections, chart.RenderBanners(m.snap, contentWidth)...)

	if m.snap.Empty() {
		waiting := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(contentWidth).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("Waiting for sensor data...")
		sections = append(sections, waiting)
	} else {
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

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("PULPWATCH")

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	var statusParts []string

	if m.source != "" {
		statusParts = append(statusParts, dimS.Render(filepath.Base(m.source)))
	}
	statusParts = append(statusParts, dimS.Render(fmt.Sprintf("row %d/%d", m.feed.Pos(), m.feed.Len())))
	if d := m.sess.Dropped(); d > 0 {
		statusParts = append(statusParts, lipgloss.NewStyle().Foreground(colorWarn).Render(fmt.Sprintf("%d dropped", d)))
	}
	statusParts = append(statusParts, dimS.Render(fmt.Sprintf("up %s", fmtDuration(time.Since(m.startTime)))))

	if !m.lastTick.IsZero() {
		statusParts = append(statusParts, dimS.Render(m.lastTick.Format("15:04:05")))
	}

	switch {
	case m.done:
		statusParts = append(statusParts, lipgloss.NewStyle().Foreground(colorOk).Bold(true).Render("FINISHED"))
	case m.paused:
		statusParts = append(statusParts, lipgloss.NewStyle().Foreground(colorCrit).Bold(true).Render("PAUSED"))
	}

	sep := dimS.Render(" │ ")
	right := strings.Join(statusParts, sep)

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

func (m Model) renderFooter(width int) string {
	okS := lipgloss.NewStyle().Foreground(colorOk).Render("██")
	warnS := lipgloss.NewStyle().Foreground(colorWarn).Render("██")
	highS := lipgloss.NewStyle().Foreground(colorHigh).Render("██")
	critS := lipgloss.NewStyle().Foreground(colorCrit).Render("██")
	shadeS := lipgloss.NewStyle().Background(colorShade).Render("  ")
	peakS := lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Render("▼")

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	keyS := lipgloss.NewStyle().Foreground(colorLabel)
	legend := okS + dimS.Render(" ok ") +
		warnS + dimS.Render(" near ") +
		highS + dimS.Render(" over ") +
		critS + dimS.Render(" pulp ") +
		shadeS + dimS.Render(" run ") +
		peakS + dimS.Render(" peak")

	keys := dimS.Render("q") + keyS.Render(":quit") +
		dimS.Render("  p") + keyS.Render(":pause") +
		dimS.Render("  r") + keyS.Render(":restart") +
		dimS.Render("  j/k") + keyS.Render(":scroll")

	gap := width - lipgloss.Width(legend) - lipgloss.Width(keys) - 4
	if gap < 1 {
		gap = 1
	}
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(legend + filler + keys)
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
