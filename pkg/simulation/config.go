package simulation

import (
	"fmt"
	"time"

	"github.com/alex-ilgayev/socsim/pkg/threat"
)

// Config holds the simulation constants
type Config struct {
	// Lang selects the threat catalog and the display language
	Lang threat.Language

	// AlertInterval is the cadence of the alert generator (default: 4.5s)
	AlertInterval time.Duration

	// AlertProbability is the chance that a tick emits an alert (default: 0.15)
	AlertProbability float64

	// Jitter is the maximum absolute deviation added to a label's weight (default: 5)
	Jitter int

	// AlertCapacity is how many recent alerts are retained (default: 5)
	AlertCapacity int

	// TelemetryInterval is the cadence of the telemetry series (default: 3s)
	TelemetryInterval time.Duration

	// TelemetryCapacity is the length of the sliding window (default: 20)
	TelemetryCapacity int

	// Attack and mitigation magnitudes, inclusive ranges
	AttacksMin, AttacksMax     int
	MitigatedMin, MitigatedMax int

	// PrefillTelemetry seeds a full window at start so charts are never empty
	PrefillTelemetry bool

	// NarrativeRefresh is how old the last fetched narrative must be before
	// a new alert triggers another fetch (default: 60s)
	NarrativeRefresh time.Duration

	// Catalog overrides the threat labels for Lang when non-nil.
	// An empty, non-nil catalog disables alert emission.
	Catalog []string
}

// DefaultConfig returns the documented constants
func DefaultConfig() Config {
	return Config{
		Lang:              threat.LanguageEnglish,
		AlertInterval:     4500 * time.Millisecond,
		AlertProbability:  0.15,
		Jitter:            5,
		AlertCapacity:     5,
		TelemetryInterval: 3 * time.Second,
		TelemetryCapacity: 20,
		AttacksMin:        20,
		AttacksMax:        80,
		MitigatedMin:      25,
		MitigatedMax:      80,
		PrefillTelemetry:  true,
		NarrativeRefresh:  60 * time.Second,
	}
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch {
	case c.AlertInterval <= 0:
		return fmt.Errorf("alert interval must be positive, got %s", c.AlertInterval)
	case c.TelemetryInterval <= 0:
		return fmt.Errorf("telemetry interval must be positive, got %s", c.TelemetryInterval)
	case c.AlertProbability < 0 || c.AlertProbability > 1:
		return fmt.Errorf("alert probability must be in [0,1], got %v", c.AlertProbability)
	case c.Jitter < 0:
		return fmt.Errorf("jitter must not be negative, got %d", c.Jitter)
	case c.AlertCapacity <= 0:
		return fmt.Errorf("alert capacity must be positive, got %d", c.AlertCapacity)
	case c.TelemetryCapacity <= 0:
		return fmt.Errorf("telemetry capacity must be positive, got %d", c.TelemetryCapacity)
	case c.AttacksMin < 0 || c.AttacksMax < c.AttacksMin:
		return fmt.Errorf("invalid attacks range [%d,%d]", c.AttacksMin, c.AttacksMax)
	case c.MitigatedMin < 0 || c.MitigatedMax < c.MitigatedMin:
		return fmt.Errorf("invalid mitigated range [%d,%d]", c.MitigatedMin, c.MitigatedMax)
	}
	return nil
}

func (c Config) catalog() []string {
	if c.Catalog != nil {
		return append([]string(nil), c.Catalog...)
	}
	return threat.Catalog(c.Lang)
}
