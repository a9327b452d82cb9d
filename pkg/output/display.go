package output

import (
	"github.com/alex-ilgayev/socsim/pkg/event"
	"github.com/alex-ilgayev/socsim/pkg/simulation"
	"github.com/alex-ilgayev/socsim/pkg/threat"
)

// OutputHandler defines the interface for different output formats
type OutputHandler interface {
	PrintHeader()
	PrintStats(stats simulation.Stats)
	PrintInfo(format string, args ...interface{})
}

// phrases holds the fixed UI strings of one language.
type phrases struct {
	Subtitle    string
	AIFeed      string
	CachedFeed  string
	LocalFeed   string
	Waiting     string
	Details     string
	Profile     string
	Action      string
	Confidence  string
	Priority    string
	Severity    string
	Count       string
	Alerts      string
	Narratives  string
	Failures    string
	QuotaErrors string
	Telemetry   string
	Attacks     string
	Mitigated   string
	Risk        string
	Summary     string
	Services    string
	Steps       string
	Refresh     string
	Quit        string
	Pause       string
	Busy        string
}

var uiPhrases = map[threat.Language]phrases{
	threat.LanguageEnglish: {
		Subtitle:    "Simulated Security Operations Center - synthetic threat feed",
		AIFeed:      "AI FEED",
		CachedFeed:  "AI FEED (cached)",
		LocalFeed:   "LOCAL FEED",
		Waiting:     "Waiting for network anomalies...",
		Details:     "Details",
		Profile:     "Attacker",
		Action:      "Countermeasure",
		Confidence:  "Confidence",
		Priority:    "Priority",
		Severity:    "Severity",
		Count:       "Count",
		Alerts:      "Alerts",
		Narratives:  "Narratives",
		Failures:    "AI failures",
		QuotaErrors: "Quota errors",
		Telemetry:   "Telemetry",
		Attacks:     "attacks",
		Mitigated:   "mitigated",
		Risk:        "Risk level",
		Summary:     "Summary",
		Services:    "Recommended services",
		Steps:       "Immediate steps",
		Refresh:     "refresh from cloud",
		Quit:        "quit",
		Pause:       "pause",
		Busy:        "a report is already being fetched",
	},
	threat.LanguageSpanish: {
		Subtitle:    "Centro de Operaciones de Seguridad simulado - feed de amenazas sintético",
		AIFeed:      "FEED IA",
		CachedFeed:  "FEED IA (caché)",
		LocalFeed:   "FEED LOCAL",
		Waiting:     "Esperando anomalías de red...",
		Details:     "Detalles",
		Profile:     "Atacante",
		Action:      "Contramedida",
		Confidence:  "Confianza",
		Priority:    "Prioridad",
		Severity:    "Severidad",
		Count:       "Cantidad",
		Alerts:      "Alertas",
		Narratives:  "Narrativas",
		Failures:    "Fallos IA",
		QuotaErrors: "Errores de cuota",
		Telemetry:   "Telemetría",
		Attacks:     "ataques",
		Mitigated:   "mitigados",
		Risk:        "Nivel de riesgo",
		Summary:     "Resumen",
		Services:    "Servicios recomendados",
		Steps:       "Pasos inmediatos",
		Refresh:     "actualizar desde la nube",
		Quit:        "salir",
		Pause:       "pausa",
		Busy:        "ya se está obteniendo un reporte",
	},
}

func phrasesFor(lang threat.Language) phrases {
	if p, ok := uiPhrases[lang]; ok {
		return p
	}
	return uiPhrases[threat.LanguageEnglish]
}

// feedBadge is the source indicator shown next to a narrative.
func feedBadge(p phrases, source event.NarrativeSource) string {
	switch source {
	case event.NarrativeSourceAI:
		return p.AIFeed
	case event.NarrativeSourceCache:
		return p.CachedFeed
	default:
		return p.LocalFeed
	}
}

// severityOrder lists severities from most to least urgent.
var severityOrder = []event.Severity{
	event.SeverityCritical,
	event.SeverityHigh,
	event.SeverityElevated,
	event.SeverityBaseline,
}
