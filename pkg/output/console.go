package output

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alex-ilgayev/socsim/pkg/bus"
	"github.com/alex-ilgayev/socsim/pkg/event"
	"github.com/alex-ilgayev/socsim/pkg/simulation"
	"github.com/alex-ilgayev/socsim/pkg/threat"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

const consoleWidth = 80

// ConsoleDisplay handles the CLI output formatting for console output
type ConsoleDisplay struct {
	mu            sync.Mutex
	writer        io.Writer
	lang          threat.Language
	phrases       phrases
	showTelemetry bool
	eventBus      bus.EventBus
}

// NewConsoleDisplay creates a console display. When eventBus is non-nil it
// subscribes to alerts and narratives, and to telemetry when showTelemetry is set.
func NewConsoleDisplay(writer io.Writer, lang threat.Language, showTelemetry bool, eventBus bus.EventBus) (*ConsoleDisplay, error) {
	d := &ConsoleDisplay{
		writer:        writer,
		lang:          lang,
		phrases:       phrasesFor(lang),
		showTelemetry: showTelemetry,
		eventBus:      eventBus,
	}
	if eventBus == nil {
		return d, nil
	}

	if err := eventBus.Subscribe(event.EventTypeThreatAlert, d.handleEvent); err != nil {
		return nil, err
	}
	if err := eventBus.Subscribe(event.EventTypeNarrative, d.handleEvent); err != nil {
		d.Close()
		return nil, err
	}
	if showTelemetry {
		if err := eventBus.Subscribe(event.EventTypeTelemetry, d.handleEvent); err != nil {
			d.Close()
			return nil, err
		}
	}
	return d, nil
}

// Colors for different elements
var (
	timestampColor = color.New(color.FgHiBlack)
	headerColor    = color.New(color.FgWhite, color.Bold)
	labelColor     = color.New(color.FgHiBlack)
	titleColor     = color.New(color.FgHiWhite, color.Bold)
	aiFeedColor    = color.New(color.FgGreen, color.Bold)
	localFeedColor = color.New(color.FgYellow, color.Bold)
	noticeColor    = color.New(color.FgYellow)
	attacksColor   = color.New(color.FgRed)
	mitigatedColor = color.New(color.FgGreen)
	scoreColor     = color.New(color.FgHiBlack)

	severityColors = map[event.Severity]*color.Color{
		event.SeverityBaseline: color.New(color.FgCyan),
		event.SeverityElevated: color.New(color.FgYellow),
		event.SeverityHigh:     color.New(color.FgHiRed),
		event.SeverityCritical: color.New(color.FgRed, color.Bold),
	}
)

func severityColor(s event.Severity) *color.Color {
	if c, ok := severityColors[s]; ok {
		return c
	}
	return color.New(color.Reset)
}

// PrintHeader prints the socsim header
func (d *ConsoleDisplay) PrintHeader() {
	header := `
███████╗ ██████╗  ██████╗███████╗██╗███╗   ███╗
██╔════╝██╔═══██╗██╔════╝██╔════╝██║████╗ ████║
███████╗██║   ██║██║     ███████╗██║██╔████╔██║
╚════██║██║   ██║██║     ╚════██║██║██║╚██╔╝██║
███████║╚██████╔╝╚██████╗███████║██║██║ ╚═╝ ██║
╚══════╝ ╚═════╝  ╚═════╝╚══════╝╚═╝╚═╝     ╚═╝
`
	d.mu.Lock()
	defer d.mu.Unlock()

	headerColor.Fprintln(d.writer, header)
	fmt.Fprintln(d.writer, d.phrases.Subtitle)
	fmt.Fprintln(d.writer, strings.Repeat("─", consoleWidth))
}

// PrintStats prints statistics table
func (d *ConsoleDisplay) PrintStats(stats simulation.Stats) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fmt.Fprintln(d.writer, "\n"+strings.Repeat("─", consoleWidth))
	headerColor.Fprintln(d.writer, "Statistics:")

	table := tablewriter.NewWriter(d.writer)
	table.SetHeader([]string{d.phrases.Severity, d.phrases.Count})
	table.SetBorder(false)
	table.SetColumnSeparator("│")
	table.SetRowSeparator("─")
	table.SetHeaderLine(true)

	for _, s := range severityOrder {
		table.Append([]string{simulation.SeverityWord(d.lang, s), fmt.Sprintf("%d", stats.BySeverity[s])})
	}
	table.Append([]string{d.phrases.Alerts, fmt.Sprintf("%d", stats.AlertsEmitted)})
	table.Append([]string{d.phrases.Telemetry, fmt.Sprintf("%d", stats.TelemetryTicks)})
	table.Append([]string{d.phrases.Narratives, fmt.Sprintf("%d", stats.NarrativeFetches)})
	table.Append([]string{d.phrases.Failures, fmt.Sprintf("%d", stats.NarrativeFailures)})
	table.Append([]string{d.phrases.QuotaErrors, fmt.Sprintf("%d", stats.QuotaFailures)})

	table.Render()
}

// PrintInfo prints an info message
func (d *ConsoleDisplay) PrintInfo(format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.writer, format+"\n", args...)
}

func (d *ConsoleDisplay) handleEvent(e event.Event) {
	switch evt := e.(type) {
	case *event.ThreatAlert:
		d.PrintAlert(evt)
	case *event.TelemetryPoint:
		d.PrintTelemetry(evt)
	case *event.NarrativeEvent:
		d.PrintNarrative(evt)
	}
}

// PrintAlert prints one alert line colored by severity.
// Format: [display text] (score N)
func (d *ConsoleDisplay) PrintAlert(a *event.ThreatAlert) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fmt.Fprintf(d.writer, "%s %s\n",
		severityColor(a.Severity).Sprint(a.DisplayText),
		scoreColor.Sprintf("(score %d)", a.Score),
	)
}

// PrintTelemetry prints one telemetry sample.
func (d *ConsoleDisplay) PrintTelemetry(p *event.TelemetryPoint) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fmt.Fprintf(d.writer, "%s %s #%d %s %s\n",
		timestampColor.Sprint(p.Timestamp.Format("15:04:05")),
		labelColor.Sprint(strings.ToUpper(d.phrases.Telemetry)),
		p.Sequence,
		attacksColor.Sprintf("%s=%d", d.phrases.Attacks, p.Attacks),
		mitigatedColor.Sprintf("%s=%d", d.phrases.Mitigated, p.Mitigated),
	)
}

// PrintNarrative prints a narrative in a box with its feed badge.
func (d *ConsoleDisplay) PrintNarrative(ev *event.NarrativeEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	badge := feedBadge(d.phrases, ev.Source)
	if ev.Source == event.NarrativeSourceSimulated {
		badge = localFeedColor.Sprint(badge)
	} else {
		badge = aiFeedColor.Sprint(badge)
	}

	n := ev.Narrative
	fmt.Fprintln(d.writer, "┌────")
	fmt.Fprintf(d.writer, "│ %s %s\n", badge, titleColor.Sprint(n.Title))
	if ev.Label != "" {
		fmt.Fprintf(d.writer, "│ %s\n", labelColor.Sprint(ev.Label))
	}
	d.printField(d.phrases.Details, n.TechnicalDetails)
	d.printField(d.phrases.Profile, n.AttackerProfile)
	d.printField(d.phrases.Action, n.RecommendedCountermeasure)

	var meta []string
	if n.ConfidenceScore > 0 {
		meta = append(meta, fmt.Sprintf("%s: %.0f%%", d.phrases.Confidence, n.ConfidenceScore))
	}
	if n.MitigationPriority != "" {
		meta = append(meta, fmt.Sprintf("%s: %s", d.phrases.Priority, n.MitigationPriority))
	}
	if len(meta) > 0 {
		fmt.Fprintf(d.writer, "│ %s\n", labelColor.Sprint(strings.Join(meta, "  ")))
	}
	if ev.UserMessage != "" {
		for _, line := range wrapWords(ev.UserMessage, consoleWidth-2) {
			fmt.Fprintf(d.writer, "│ %s\n", noticeColor.Sprint(line))
		}
	}
	fmt.Fprintln(d.writer, "└────")
}

func (d *ConsoleDisplay) printField(name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(d.writer, "│ %s\n", labelColor.Sprint(name+":"))
	for _, line := range wrapWords(value, consoleWidth-4) {
		fmt.Fprintf(d.writer, "│   %s\n", line)
	}
}

// PrintAdvice prints an advisor assessment.
func (d *ConsoleDisplay) PrintAdvice(a event.Advice) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fmt.Fprintln(d.writer, "┌────")
	fmt.Fprintf(d.writer, "│ %s %s\n", labelColor.Sprint(d.phrases.Risk+":"), titleColor.Sprint(a.RiskLevel))
	d.printField(d.phrases.Summary, a.Summary)
	d.printList(d.phrases.Services, a.RecommendedServices)
	d.printList(d.phrases.Steps, a.ImmediateSteps)
	fmt.Fprintln(d.writer, "└────")
}

func (d *ConsoleDisplay) printList(name string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(d.writer, "│ %s\n", labelColor.Sprint(name+":"))
	for _, item := range items {
		for i, line := range wrapWords(item, consoleWidth-6) {
			prefix := "  "
			if i == 0 {
				prefix = "- "
			}
			fmt.Fprintf(d.writer, "│   %s%s\n", prefix, line)
		}
	}
}

// Close unsubscribes from the bus.
func (d *ConsoleDisplay) Close() {
	if d.eventBus == nil {
		return
	}
	d.eventBus.Unsubscribe(event.EventTypeThreatAlert, d.handleEvent)
	d.eventBus.Unsubscribe(event.EventTypeNarrative, d.handleEvent)
	d.eventBus.Unsubscribe(event.EventTypeTelemetry, d.handleEvent)
}
