package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/alex-ilgayev/socsim/pkg/bus"
	"github.com/alex-ilgayev/socsim/pkg/event"
	"github.com/alex-ilgayev/socsim/pkg/simulation"
	"github.com/sirupsen/logrus"
)

// JSONLDisplay handles JSONL output formatting
type JSONLDisplay struct {
	mu       sync.Mutex
	writer   io.Writer
	eventBus bus.EventBus
}

// record is one JSONL line.
type record struct {
	Type string      `json:"type"`
	Data event.Event `json:"data"`
}

// statsRecord is the final JSONL line with the session totals.
type statsRecord struct {
	Type string           `json:"type"`
	Data simulation.Stats `json:"data"`
}

// NewJSONLDisplay creates a JSONL writer subscribed to every event type
func NewJSONLDisplay(writer io.Writer, eventBus bus.EventBus) (*JSONLDisplay, error) {
	j := &JSONLDisplay{
		writer:   writer,
		eventBus: eventBus,
	}
	if eventBus == nil {
		return j, nil
	}

	for _, eventType := range event.AllEventTypes {
		if err := eventBus.Subscribe(eventType, j.printEvent); err != nil {
			j.Close()
			return nil, err
		}
	}
	return j, nil
}

// PrintHeader does nothing for JSONL output (no header needed)
func (j *JSONLDisplay) PrintHeader() {
	// No header for JSONL output
}

// PrintStats writes the session totals as a "stats" line
func (j *JSONLDisplay) PrintStats(stats simulation.Stats) {
	j.writeLine(statsRecord{Type: "stats", Data: stats})
}

// PrintInfo does nothing for JSONL output (info messages not applicable)
func (j *JSONLDisplay) PrintInfo(format string, args ...interface{}) {
	// No info messages for JSONL format
}

// printEvent outputs a single event in JSON format
func (j *JSONLDisplay) printEvent(e event.Event) {
	j.writeLine(record{Type: e.Type().String(), Data: e})
}

func (j *JSONLDisplay) writeLine(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).Error("failed to marshal JSONL record")
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	fmt.Fprintf(j.writer, "%s\n", string(data))
}

// Close unsubscribes from the bus.
func (j *JSONLDisplay) Close() {
	if j.eventBus == nil {
		return
	}
	for _, eventType := range event.AllEventTypes {
		j.eventBus.Unsubscribe(eventType, j.printEvent)
	}
}
