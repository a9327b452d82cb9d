package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	simtesting "github.com/alex-ilgayev/socsim/internal/testing"
	"github.com/alex-ilgayev/socsim/pkg/event"
	"github.com/alex-ilgayev/socsim/pkg/simulation"
	"github.com/alex-ilgayev/socsim/pkg/threat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLDisplay_OneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	mockBus := simtesting.NewMockBus()
	defer mockBus.Close()

	j, err := NewJSONLDisplay(&buf, mockBus)
	require.NoError(t, err)
	defer j.Close()

	mockBus.Publish(sampleAlert())
	mockBus.Publish(&event.TelemetryPoint{Sequence: 2, Attacks: 33, Mitigated: 41, Timestamp: testNow})
	mockBus.Publish(sampleNarrativeEvent(event.NarrativeSourceCache))

	var lines []map[string]any
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec), scanner.Text())
		lines = append(lines, rec)
	}
	require.Len(t, lines, 3)

	assert.Equal(t, "threat_alert", lines[0]["type"])
	alert := lines[0]["data"].(map[string]any)
	assert.Equal(t, "DDoS Anomaly", alert["label"])
	assert.Equal(t, "critical", alert["severity"])
	assert.EqualValues(t, 97, alert["score"])

	assert.Equal(t, "telemetry", lines[1]["type"])
	point := lines[1]["data"].(map[string]any)
	assert.EqualValues(t, 2, point["sequence"])
	assert.EqualValues(t, 33, point["attacks"])

	assert.Equal(t, "narrative", lines[2]["type"])
	narr := lines[2]["data"].(map[string]any)
	assert.Equal(t, "cache", narr["source"])
	assert.Equal(t, "Volumetric flood on edge", narr["narrative"].(map[string]any)["title"])
	assert.NotContains(t, narr, "error")
}

func TestJSONLDisplay_NoBus(t *testing.T) {
	var buf bytes.Buffer
	j, err := NewJSONLDisplay(&buf, nil)
	require.NoError(t, err)

	j.PrintHeader()
	j.PrintInfo("ignored %d", 1)
	j.Close()
	assert.Empty(t, buf.String())
}

func TestJSONLDisplay_PrintStats(t *testing.T) {
	var buf bytes.Buffer
	j, err := NewJSONLDisplay(&buf, nil)
	require.NoError(t, err)

	j.PrintStats(simulation.Stats{
		AlertsEmitted: 4,
		BySeverity: map[event.Severity]uint64{
			event.SeverityCritical: 3,
			event.SeverityHigh:     1,
		},
		QuotaFailures: 2,
	})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "stats", rec["type"])

	data := rec["data"].(map[string]any)
	assert.EqualValues(t, 4, data["alerts_emitted"])
	assert.EqualValues(t, 2, data["quota_failures"])
	assert.Equal(t, map[string]any{"critical": float64(3), "high": float64(1)}, data["by_severity"])
}

func TestOutputHandlers_SharedLifecycle(t *testing.T) {
	disableColor(t)
	var consoleBuf, fileBuf bytes.Buffer

	console, err := NewConsoleDisplay(&consoleBuf, threat.LanguageEnglish, false, nil)
	require.NoError(t, err)
	file, err := NewJSONLDisplay(&fileBuf, nil)
	require.NoError(t, err)

	handlers := []OutputHandler{console, file}
	for _, h := range handlers {
		h.PrintHeader()
		h.PrintInfo("Monitoring %s", "simulated network")
		h.PrintStats(simulation.Stats{AlertsEmitted: 1})
	}

	assert.Contains(t, consoleBuf.String(), "Monitoring simulated network")
	assert.Contains(t, consoleBuf.String(), "Statistics:")

	// Only the totals reach the JSONL file
	lines := strings.Split(strings.TrimSpace(fileBuf.String()), "\n")
	require.Len(t, lines, 1)
	assert.True(t, recordType(lines[0], "stats"), lines[0])
}

func recordType(line, want string) bool {
	var rec struct {
		Type string `json:"type"`
	}
	return json.Unmarshal([]byte(line), &rec) == nil && rec.Type == want
}
