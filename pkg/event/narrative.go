package event

import (
	"time"

	"github.com/alex-ilgayev/socsim/pkg/threat"
	"github.com/sirupsen/logrus"
)

// Priority is the mitigation urgency attached to a narrative.
type Priority string

const (
	PriorityLow       Priority = "Low"
	PriorityMedium    Priority = "Medium"
	PriorityHigh      Priority = "High"
	PriorityImmediate Priority = "Immediate"
)

// Priorities lists the accepted mitigation priorities, lowest first.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityImmediate}

// Valid reports whether p is one of the accepted priorities.
func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// Narrative is the structured flavor text describing a simulated threat.
// Field names match the JSON schema requested from the model.
type Narrative struct {
	Title                     string   `json:"title"`
	TechnicalDetails          string   `json:"technicalDetails"`
	AttackerProfile           string   `json:"attackerProfile"`
	RecommendedCountermeasure string   `json:"recommendedCountermeasure"`
	ConfidenceScore           float64  `json:"confidenceScore,omitempty"`    // 0 - 100
	MitigationPriority        Priority `json:"mitigationPriority,omitempty"` // empty when the model omitted it
}

// NarrativeSource tells where a displayed narrative came from.
type NarrativeSource string

const (
	NarrativeSourceAI        NarrativeSource = "ai"
	NarrativeSourceCache     NarrativeSource = "cache"
	NarrativeSourceSimulated NarrativeSource = "simulated"
)

// NarrativeEvent is published whenever a narrative is resolved for a label.
type NarrativeEvent struct {
	Timestamp time.Time       `json:"timestamp"`
	Label     string          `json:"label"`
	Lang      threat.Language `json:"lang"`
	Source    NarrativeSource `json:"source"`
	Narrative Narrative       `json:"narrative"`
	// Error is the fetch failure that caused a fallback, if any.
	Error string `json:"error,omitempty"`
	// ErrorKind is the failure class ("quota", "generic", ...).
	ErrorKind string `json:"error_kind,omitempty"`
	// UserMessage is a non-technical explanation suitable for display.
	UserMessage string `json:"user_message,omitempty"`
}

func (e *NarrativeEvent) Type() EventType { return EventTypeNarrative }

func (e *NarrativeEvent) LogFields() logrus.Fields {
	return logrus.Fields{
		"label":      e.Label,
		"lang":       e.Lang,
		"source":     e.Source,
		"title":      e.Narrative.Title,
		"error_kind": e.ErrorKind,
	}
}

// Advice is the security advisor's assessment of a described infrastructure.
type Advice struct {
	RiskLevel           string   `json:"riskLevel"`
	Summary             string   `json:"summary"`
	RecommendedServices []string `json:"recommendedServices"`
	ImmediateSteps      []string `json:"immediateSteps"`
}
