package simulation

import (
	"fmt"
	"time"

	"github.com/alex-ilgayev/socsim/pkg/event"
	"github.com/alex-ilgayev/socsim/pkg/threat"
	"github.com/google/uuid"
)

// AlertGenerator synthesizes threat alerts. Each call to Next consumes,
// in order: one Float64 (emission roll), one Intn (label pick) and one
// Intn (jitter). No randomness is consumed when the catalog is empty.
type AlertGenerator struct {
	catalog     []string
	lang        threat.Language
	probability float64
	jitter      int
	rand        Rand
	newID       func() string
}

func NewAlertGenerator(cfg Config, r Rand) *AlertGenerator {
	return &AlertGenerator{
		catalog:     cfg.catalog(),
		lang:        cfg.Lang,
		probability: cfg.AlertProbability,
		jitter:      cfg.Jitter,
		rand:        r,
		newID:       uuid.NewString,
	}
}

// Next decides whether this tick emits an alert and builds it.
// It returns nil when nothing is emitted.
func (g *AlertGenerator) Next(now time.Time) *event.ThreatAlert {
	if len(g.catalog) == 0 {
		return nil
	}
	if g.rand.Float64() >= g.probability {
		return nil
	}

	label := g.catalog[g.rand.Intn(len(g.catalog))]
	score := g.Score(label)
	severity := event.Classify(score)

	return &event.ThreatAlert{
		ID:          g.newID(),
		Label:       label,
		Score:       score,
		Severity:    severity,
		Timestamp:   now,
		DisplayText: DisplayText(g.lang, now, severity, label),
	}
}

// Score returns the label's weight plus uniform jitter, clamped to [0,100].
func (g *AlertGenerator) Score(label string) int {
	jitter := 0
	if g.jitter > 0 {
		jitter = g.rand.Intn(2*g.jitter+1) - g.jitter
	}
	return clamp(threat.WeightOf(label)+jitter, 0, 100)
}

var severityWords = map[threat.Language]map[event.Severity]string{
	threat.LanguageEnglish: {
		event.SeverityBaseline: "BASELINE",
		event.SeverityElevated: "ELEVATED",
		event.SeverityHigh:     "HIGH",
		event.SeverityCritical: "CRITICAL",
	},
	threat.LanguageSpanish: {
		event.SeverityBaseline: "BASE",
		event.SeverityElevated: "ELEVADO",
		event.SeverityHigh:     "ALTO",
		event.SeverityCritical: "CRÍTICO",
	},
}

// SeverityWord is the localized, upper-case name of s.
func SeverityWord(lang threat.Language, s event.Severity) string {
	words, ok := severityWords[lang]
	if !ok {
		words = severityWords[threat.LanguageEnglish]
	}
	return words[s]
}

// DisplayText formats an alert line, e.g. "14:03:27 - CRITICAL: DDoS Anomaly".
func DisplayText(lang threat.Language, ts time.Time, s event.Severity, label string) string {
	return fmt.Sprintf("%s - %s: %s", ts.Format("15:04:05"), SeverityWord(lang, s), label)
}

// TelemetryGenerator produces the attacks/mitigated series. Each call to
// Next consumes two Intn values: attacks first, then mitigated.
type TelemetryGenerator struct {
	cfg  Config
	rand Rand
	seq  uint64
}

func NewTelemetryGenerator(cfg Config, r Rand) *TelemetryGenerator {
	return &TelemetryGenerator{cfg: cfg, rand: r}
}

// Next returns the following point. Sequence numbers start at 1.
func (g *TelemetryGenerator) Next(now time.Time) event.TelemetryPoint {
	g.seq++
	return event.TelemetryPoint{
		Sequence:  g.seq,
		Attacks:   between(g.rand, g.cfg.AttacksMin, g.cfg.AttacksMax),
		Mitigated: between(g.rand, g.cfg.MitigatedMin, g.cfg.MitigatedMax),
		Timestamp: now,
	}
}
