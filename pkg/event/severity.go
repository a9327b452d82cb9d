package event

import (
	"fmt"
	"strings"
)

// Severity is the ordered tier assigned to a threat score.
type Severity uint8

const (
	SeverityBaseline Severity = iota // score < 40
	SeverityElevated                 // score [40, 70)
	SeverityHigh                     // score [70, 90)
	SeverityCritical                 // score >= 90
)

// Score thresholds. Classify is the only place they are consulted.
const (
	ElevatedThreshold = 40
	HighThreshold     = 70
	CriticalThreshold = 90
)

// Classify converts a threat score to its severity tier.
// Scores outside [0,100] fall into the nearest tier.
func Classify(score int) Severity {
	switch {
	case score >= CriticalThreshold:
		return SeverityCritical
	case score >= HighThreshold:
		return SeverityHigh
	case score >= ElevatedThreshold:
		return SeverityElevated
	default:
		return SeverityBaseline
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityBaseline:
		return "baseline"
	case SeverityElevated:
		return "elevated"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "baseline":
		*s = SeverityBaseline
	case "elevated":
		*s = SeverityElevated
	case "high":
		*s = SeverityHigh
	case "critical":
		*s = SeverityCritical
	default:
		return fmt.Errorf("unknown severity %q", string(text))
	}
	return nil
}
