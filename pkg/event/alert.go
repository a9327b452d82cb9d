package event

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ThreatAlert is a synthetic detection emitted by the alert generator.
// It is immutable once published.
type ThreatAlert struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Score       int       `json:"score"` // 0 - 100
	Severity    Severity  `json:"severity"`
	Timestamp   time.Time `json:"timestamp"`
	DisplayText string    `json:"display_text"`
}

func (e *ThreatAlert) Type() EventType { return EventTypeThreatAlert }

func (e *ThreatAlert) LogFields() logrus.Fields {
	return logrus.Fields{
		"alert_id": e.ID,
		"label":    e.Label,
		"score":    e.Score,
		"severity": e.Severity,
	}
}

// TelemetryPoint is one sample of the synthetic attacks/mitigated series.
type TelemetryPoint struct {
	Sequence  uint64    `json:"sequence"`
	Attacks   int       `json:"attacks"`
	Mitigated int       `json:"mitigated"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *TelemetryPoint) Type() EventType { return EventTypeTelemetry }

func (e *TelemetryPoint) LogFields() logrus.Fields {
	return logrus.Fields{
		"sequence":  e.Sequence,
		"attacks":   e.Attacks,
		"mitigated": e.Mitigated,
	}
}
