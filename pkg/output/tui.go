package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/alex-ilgayev/socsim/pkg/event"
	"github.com/alex-ilgayev/socsim/pkg/simulation"
	"github.com/alex-ilgayev/socsim/pkg/version"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const refreshInterval = 250 * time.Millisecond

// SessionView is the part of a simulation session the TUI needs.
type SessionView interface {
	Snapshot() simulation.Snapshot
	RequestNarrative(label string) bool
}

// TUIDisplay handles the TUI output using Bubbletea
type TUIDisplay struct {
	program *tea.Program
	model   *model
}

// model is the Bubbletea model for the TUI
type model struct {
	session SessionView
	snap    simulation.Snapshot
	width   int
	height  int
	paused  bool
	notice  string
}

type tickMsg time.Time

// NewTUIDisplay creates a new TUI display handler
func NewTUIDisplay(session SessionView) *TUIDisplay {
	m := newModel(session)
	return &TUIDisplay{
		model:   m,
		program: tea.NewProgram(m, tea.WithAltScreen()),
	}
}

func newModel(session SessionView) *model {
	return &model{
		session: session,
		snap:    session.Snapshot(),
		width:   80,
		height:  24,
	}
}

// Run starts the TUI and blocks until the user quits
func (d *TUIDisplay) Run() error {
	// Ensure terminal is properly restored even on panic/crash
	defer func() {
		if r := recover(); r != nil {
			d.program.ReleaseTerminal()
			panic(r)
		}
	}()

	_, err := d.program.Run()
	return err
}

// Quit asks the program to exit.
func (d *TUIDisplay) Quit() {
	d.program.Quit()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the Bubbletea model
func (m *model) Init() tea.Cmd {
	return tick()
}

// Update handles Bubbletea messages and key presses
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if !m.paused {
			m.snap = m.session.Snapshot()
		}
		return m, tick()
	}

	return m, nil
}

func (m *model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "r":
		label := ""
		if len(m.snap.Alerts) > 0 {
			label = m.snap.Alerts[0].Label
		}
		if m.session.RequestNarrative(label) {
			m.notice = ""
		} else {
			m.notice = phrasesFor(m.snap.Lang).Busy
		}
		return m, nil

	case "p", " ":
		m.paused = !m.paused
		if !m.paused {
			m.snap = m.session.Snapshot()
		}
		return m, nil
	}

	return m, nil
}

var (
	tuiTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	tuiDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E"))
	tuiSepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4E4E4E"))
	tuiKeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7FF"))
	tuiAttackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	tuiMitigStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD787"))
	tuiAIStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	tuiLocalStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
	tuiNoticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))

	tuiSeverityStyles = map[event.Severity]lipgloss.Style{
		event.SeverityBaseline: lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD7FF")),
		event.SeverityElevated: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")),
		event.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8700")),
		event.SeverityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
	}
)

// View renders the dashboard
func (m *model) View() string {
	p := phrasesFor(m.snap.Lang)
	var b strings.Builder

	b.WriteString(m.renderHeader(p))
	b.WriteString("\n")
	b.WriteString(tuiSepStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")
	b.WriteString(m.renderTelemetry(p))
	b.WriteString("\n")
	b.WriteString(tuiSepStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")
	b.WriteString(m.renderAlerts(p))
	b.WriteString(tuiSepStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")
	b.WriteString(m.renderNarrative(p))
	b.WriteString(tuiSepStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(p))

	return b.String()
}

func (m *model) renderHeader(p phrases) string {
	title := "SOCSIM"
	if len(version.Version) > 0 {
		title += " " + version.Version
	}

	status := tuiAIStyle.Render("● LIVE")
	if m.paused {
		status = tuiLocalStyle.Render("❚❚ PAUSED")
	} else if !m.snap.Running {
		status = tuiDimStyle.Render("■ STOPPED")
	}

	left := tuiTitleStyle.Render(title) + " " + tuiDimStyle.Render(p.Subtitle)
	line := left + "  " + status + "  " + tuiDimStyle.Render(strings.ToUpper(string(m.snap.Lang)))
	return truncateANSI(line, m.width)
}

const sparkRunes = "▁▂▃▄▅▆▇█"

// sparkline maps values in [0,100] onto block characters.
func sparkline(values []int) string {
	runes := []rune(sparkRunes)
	var b strings.Builder
	for _, v := range values {
		idx := v * (len(runes) - 1) / 100
		if idx < 0 {
			idx = 0
		}
		if idx >= len(runes) {
			idx = len(runes) - 1
		}
		b.WriteRune(runes[idx])
	}
	return b.String()
}

func (m *model) renderTelemetry(p phrases) string {
	points := m.snap.Telemetry
	if len(points) == 0 {
		return tuiDimStyle.Render(p.Waiting) + "\n"
	}

	attacks := make([]int, len(points))
	mitigated := make([]int, len(points))
	for i, pt := range points {
		attacks[i] = pt.Attacks
		mitigated[i] = pt.Mitigated
	}
	last := points[len(points)-1]

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s %s\n",
		padStringRight(p.Attacks, 10),
		tuiAttackStyle.Render(sparkline(attacks)),
		tuiAttackStyle.Render(fmt.Sprintf("%3d", last.Attacks)),
	))
	b.WriteString(fmt.Sprintf("%s %s %s",
		padStringRight(p.Mitigated, 10),
		tuiMitigStyle.Render(sparkline(mitigated)),
		tuiMitigStyle.Render(fmt.Sprintf("%3d", last.Mitigated)),
	))
	return b.String()
}

func (m *model) renderAlerts(p phrases) string {
	if len(m.snap.Alerts) == 0 {
		return tuiDimStyle.Render(p.Waiting) + "\n"
	}

	var b strings.Builder
	for _, a := range m.snap.Alerts {
		style, ok := tuiSeverityStyles[a.Severity]
		if !ok {
			style = tuiDimStyle
		}
		line := style.Render(a.DisplayText) + " " + tuiDimStyle.Render(fmt.Sprintf("(%d)", a.Score))
		b.WriteString(truncateANSI(line, m.width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *model) renderNarrative(p phrases) string {
	ev := m.snap.Narrative
	if ev == nil {
		if m.snap.Fetching {
			return tuiDimStyle.Render("...") + "\n"
		}
		return tuiDimStyle.Render(p.Waiting) + "\n"
	}

	badgeStyle := tuiAIStyle
	if ev.Source == event.NarrativeSourceSimulated {
		badgeStyle = tuiLocalStyle
	}

	var b strings.Builder
	b.WriteString(badgeStyle.Render(feedBadge(p, ev.Source)))
	b.WriteString(" ")
	b.WriteString(tuiTitleStyle.Render(ev.Narrative.Title))
	if m.snap.Fetching {
		b.WriteString(tuiDimStyle.Render(" ..."))
	}
	b.WriteString("\n")

	width := m.width - 2
	fields := []struct{ name, value string }{
		{p.Details, ev.Narrative.TechnicalDetails},
		{p.Profile, ev.Narrative.AttackerProfile},
		{p.Action, ev.Narrative.RecommendedCountermeasure},
	}
	for _, f := range fields {
		b.WriteString(tuiDimStyle.Render(f.name + ":"))
		b.WriteString("\n")
		for _, line := range wrapWords(f.value, width) {
			b.WriteString("  " + line + "\n")
		}
	}
	if ev.Narrative.MitigationPriority != "" {
		b.WriteString(tuiDimStyle.Render(fmt.Sprintf("%s: %s  %s: %.0f%%",
			p.Priority, ev.Narrative.MitigationPriority, p.Confidence, ev.Narrative.ConfidenceScore)))
		b.WriteString("\n")
	}
	if ev.UserMessage != "" {
		for _, line := range wrapWords(ev.UserMessage, width) {
			b.WriteString(tuiNoticeStyle.Render(line) + "\n")
		}
	}
	return b.String()
}

func (m *model) renderFooter(p phrases) string {
	keys := []string{
		tuiKeyStyle.Render("r") + " " + tuiDimStyle.Render(p.Refresh),
		tuiKeyStyle.Render("p") + " " + tuiDimStyle.Render(p.Pause),
		tuiKeyStyle.Render("q") + " " + tuiDimStyle.Render(p.Quit),
	}
	stats := m.snap.Stats
	info := tuiDimStyle.Render(fmt.Sprintf("%s: %d  %s: %d  %s: %d",
		p.Alerts, stats.AlertsEmitted, p.Narratives, stats.NarrativeFetches, p.QuotaErrors, stats.QuotaFailures))

	line := strings.Join(keys, "  ") + "  " + info
	if m.notice != "" {
		line += "  " + tuiNoticeStyle.Render(m.notice)
	}
	return truncateANSI(line, m.width)
}

// padStringRight pads s with spaces to width columns
func padStringRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
