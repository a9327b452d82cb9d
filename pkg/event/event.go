package event

type EventType uint8

const (
	// A synthetic threat alert was emitted by the alert generator.
	EventTypeThreatAlert EventType = 1
	// A telemetry point was appended to the rolling series.
	EventTypeTelemetry EventType = 2
	// A narrative was resolved for a threat label
	// (from the AI feed, the cache, or the local fallback).
	EventTypeNarrative EventType = 3
)

func (e EventType) String() string {
	switch e {
	case EventTypeThreatAlert:
		return "threat_alert"
	case EventTypeTelemetry:
		return "telemetry"
	case EventTypeNarrative:
		return "narrative"
	default:
		return "unknown"
	}
}

// AllEventTypes lists every event type published by the simulation.
var AllEventTypes = []EventType{
	EventTypeThreatAlert,
	EventTypeTelemetry,
	EventTypeNarrative,
}

// Event is the interface for all events
type Event interface {
	Type() EventType
}
