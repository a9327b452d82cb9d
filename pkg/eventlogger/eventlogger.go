package eventlogger

import (
	"github.com/alex-ilgayev/socsim/pkg/bus"
	"github.com/alex-ilgayev/socsim/pkg/event"
	"github.com/sirupsen/logrus"
)

// EventLogger subscribes to all event types and logs them using logrus
type EventLogger struct {
	eventBus bus.EventBus
}

func New(eventBus bus.EventBus) (*EventLogger, error) {
	el := &EventLogger{
		eventBus: eventBus,
	}

	for _, eventType := range event.AllEventTypes {
		if err := el.eventBus.Subscribe(eventType, el.logEvent); err != nil {
			el.Close()
			return nil, err
		}
	}

	return el, nil
}

func (el *EventLogger) logEvent(e event.Event) {
	switch evt := e.(type) {
	case *event.ThreatAlert:
		entry := logrus.WithFields(evt.LogFields())
		if evt.Severity >= event.SeverityHigh {
			entry.Debug("Threat alert")
		} else {
			entry.Trace("Threat alert")
		}

	case *event.TelemetryPoint:
		logrus.WithFields(evt.LogFields()).Trace("Telemetry point")

	case *event.NarrativeEvent:
		entry := logrus.WithFields(evt.LogFields())
		if evt.Error != "" {
			entry.WithField("error", evt.Error).Debug("Narrative resolved from local feed")
		} else {
			entry.Debug("Narrative resolved")
		}
	}
}

func (el *EventLogger) Close() {
	for _, eventType := range event.AllEventTypes {
		el.eventBus.Unsubscribe(eventType, el.logEvent)
	}
}
