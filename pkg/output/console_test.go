package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	simtesting "github.com/alex-ilgayev/socsim/internal/testing"
	"github.com/alex-ilgayev/socsim/pkg/event"
	"github.com/alex-ilgayev/socsim/pkg/simulation"
	"github.com/alex-ilgayev/socsim/pkg/threat"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 14, 3, 27, 0, time.UTC)

func disableColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func sampleAlert() *event.ThreatAlert {
	return &event.ThreatAlert{
		ID:          "a1",
		Label:       "DDoS Anomaly",
		Score:       97,
		Severity:    event.SeverityCritical,
		Timestamp:   testNow,
		DisplayText: simulation.DisplayText(threat.LanguageEnglish, testNow, event.SeverityCritical, "DDoS Anomaly"),
	}
}

func sampleNarrativeEvent(source event.NarrativeSource) *event.NarrativeEvent {
	return &event.NarrativeEvent{
		Timestamp: testNow,
		Label:     "DDoS Anomaly",
		Lang:      threat.LanguageEnglish,
		Source:    source,
		Narrative: event.Narrative{
			Title:                     "Volumetric flood on edge",
			TechnicalDetails:          "UDP amplification from open resolvers.",
			AttackerProfile:           "Botnet for hire.",
			RecommendedCountermeasure: "Enable upstream scrubbing.",
			ConfidenceScore:           87,
			MitigationPriority:        event.PriorityImmediate,
		},
	}
}

func TestConsoleDisplay_PrintAlert(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	d, err := NewConsoleDisplay(&buf, threat.LanguageEnglish, false, nil)
	require.NoError(t, err)

	d.PrintAlert(sampleAlert())

	assert.Equal(t, "14:03:27 - CRITICAL: DDoS Anomaly (score 97)\n", buf.String())
}

func TestConsoleDisplay_Subscriptions(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	mockBus := simtesting.NewMockBus()
	defer mockBus.Close()

	d, err := NewConsoleDisplay(&buf, threat.LanguageEnglish, false, mockBus)
	require.NoError(t, err)
	defer d.Close()

	mockBus.Publish(sampleAlert())
	mockBus.Publish(&event.TelemetryPoint{Sequence: 1, Attacks: 30, Mitigated: 40, Timestamp: testNow})

	out := buf.String()
	assert.Contains(t, out, "CRITICAL: DDoS Anomaly")
	assert.NotContains(t, out, "TELEMETRY", "telemetry is hidden unless requested")
}

func TestConsoleDisplay_ShowTelemetry(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	mockBus := simtesting.NewMockBus()
	defer mockBus.Close()

	d, err := NewConsoleDisplay(&buf, threat.LanguageEnglish, true, mockBus)
	require.NoError(t, err)
	defer d.Close()

	mockBus.Publish(&event.TelemetryPoint{Sequence: 4, Attacks: 30, Mitigated: 40, Timestamp: testNow})

	assert.Equal(t, "14:03:27 TELEMETRY #4 attacks=30 mitigated=40\n", buf.String())
}

func TestConsoleDisplay_PrintNarrative(t *testing.T) {
	disableColor(t)

	t.Run("ai feed", func(t *testing.T) {
		var buf bytes.Buffer
		d, err := NewConsoleDisplay(&buf, threat.LanguageEnglish, false, nil)
		require.NoError(t, err)

		d.PrintNarrative(sampleNarrativeEvent(event.NarrativeSourceAI))

		out := buf.String()
		assert.Contains(t, out, "AI FEED Volumetric flood on edge")
		assert.Contains(t, out, "Details:")
		assert.Contains(t, out, "UDP amplification from open resolvers.")
		assert.Contains(t, out, "Confidence: 87%  Priority: Immediate")
		assert.True(t, strings.HasPrefix(out, "┌"))
		assert.True(t, strings.HasSuffix(out, "└────\n"))
	})

	t.Run("local feed with notice", func(t *testing.T) {
		var buf bytes.Buffer
		d, err := NewConsoleDisplay(&buf, threat.LanguageSpanish, false, nil)
		require.NoError(t, err)

		ev := sampleNarrativeEvent(event.NarrativeSourceSimulated)
		ev.UserMessage = "Cuota agotada."
		d.PrintNarrative(ev)

		out := buf.String()
		assert.Contains(t, out, "FEED LOCAL")
		assert.Contains(t, out, "Detalles:")
		assert.Contains(t, out, "Cuota agotada.")
	})
}

func TestConsoleDisplay_PrintStats(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	d, err := NewConsoleDisplay(&buf, threat.LanguageEnglish, false, nil)
	require.NoError(t, err)

	d.PrintStats(simulation.Stats{
		AlertsEmitted: 4,
		BySeverity: map[event.Severity]uint64{
			event.SeverityCritical: 3,
			event.SeverityHigh:     1,
		},
		QuotaFailures: 2,
	})

	out := buf.String()
	assert.Contains(t, out, "Statistics:")
	for _, word := range []string{"CRITICAL", "HIGH", "ELEVATED", "BASELINE", "Alerts", "Quota errors"} {
		assert.Contains(t, out, word)
	}
}

func TestConsoleDisplay_PrintAdvice(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	d, err := NewConsoleDisplay(&buf, threat.LanguageEnglish, false, nil)
	require.NoError(t, err)

	d.PrintAdvice(event.Advice{
		RiskLevel:           "High",
		Summary:             "Public database without a firewall.",
		RecommendedServices: []string{"Managed WAF"},
		ImmediateSteps:      []string{"Close port 5432", "Rotate credentials"},
	})

	out := buf.String()
	assert.Contains(t, out, "Risk level: High")
	assert.Contains(t, out, "Public database without a firewall.")
	assert.Contains(t, out, "- Managed WAF")
	assert.Contains(t, out, "- Close port 5432")
	assert.Contains(t, out, "- Rotate credentials")
}

func TestConsoleDisplay_CloseStopsOutput(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	mockBus := simtesting.NewMockBus()
	defer mockBus.Close()

	d, err := NewConsoleDisplay(&buf, threat.LanguageEnglish, false, mockBus)
	require.NoError(t, err)
	d.Close()

	mockBus.Publish(sampleAlert())
	assert.Empty(t, buf.String())
}
