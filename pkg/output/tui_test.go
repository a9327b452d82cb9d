package output

import (
	"sync"
	"testing"

	"github.com/alex-ilgayev/socsim/pkg/event"
	"github.com/alex-ilgayev/socsim/pkg/simulation"
	"github.com/alex-ilgayev/socsim/pkg/threat"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu       sync.Mutex
	snap     simulation.Snapshot
	requests []string
	accept   bool
}

func (f *fakeSession) Snapshot() simulation.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeSession) RequestNarrative(label string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, label)
	return f.accept
}

func (f *fakeSession) set(snap simulation.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁█▄", sparkline([]int{0, 100, 50}))
	assert.Equal(t, "▁█", sparkline([]int{-5, 400}))
	assert.Empty(t, sparkline(nil))
}

func TestModel_QuitKey(t *testing.T) {
	for _, key := range []tea.KeyMsg{keyMsg("q"), {Type: tea.KeyCtrlC}} {
		m := newModel(&fakeSession{})
		_, cmd := m.Update(key)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())
	}
}

func TestModel_RefreshKey(t *testing.T) {
	t.Run("latest alert label", func(t *testing.T) {
		fs := &fakeSession{accept: true}
		fs.set(simulation.Snapshot{
			Running: true,
			Alerts:  []*event.ThreatAlert{{Label: "XSS"}, {Label: "Brute Force"}},
		})
		m := newModel(fs)

		m.Update(keyMsg("r"))

		assert.Equal(t, []string{"XSS"}, fs.requests)
		assert.Empty(t, m.notice)
	})

	t.Run("no alerts yet", func(t *testing.T) {
		fs := &fakeSession{accept: false}
		m := newModel(fs)

		m.Update(keyMsg("r"))

		assert.Equal(t, []string{""}, fs.requests)
		assert.Equal(t, "a report is already being fetched", m.notice)
	})

	t.Run("busy notice is localized", func(t *testing.T) {
		fs := &fakeSession{accept: false}
		fs.set(simulation.Snapshot{Running: true, Lang: threat.LanguageSpanish})
		m := newModel(fs)

		m.Update(keyMsg("r"))

		assert.Equal(t, "ya se está obteniendo un reporte", m.notice)
	})

	t.Run("accepted request clears the notice", func(t *testing.T) {
		fs := &fakeSession{accept: false}
		m := newModel(fs)
		m.Update(keyMsg("r"))
		require.NotEmpty(t, m.notice)

		fs.accept = true
		m.Update(keyMsg("r"))
		assert.Empty(t, m.notice)
	})
}

func TestModel_PauseFreezesSnapshot(t *testing.T) {
	fs := &fakeSession{}
	fs.set(simulation.Snapshot{Running: true, Stats: simulation.Stats{AlertsEmitted: 1}})
	m := newModel(fs)

	m.Update(keyMsg("p"))
	require.True(t, m.paused)

	fs.set(simulation.Snapshot{Running: true, Stats: simulation.Stats{AlertsEmitted: 9}})
	_, cmd := m.Update(tickMsg(testNow))
	assert.NotNil(t, cmd, "ticking continues while paused")
	assert.EqualValues(t, 1, m.snap.Stats.AlertsEmitted)

	m.Update(keyMsg("p"))
	assert.False(t, m.paused)
	assert.EqualValues(t, 9, m.snap.Stats.AlertsEmitted)
}

func TestModel_TickRefreshesSnapshot(t *testing.T) {
	fs := &fakeSession{}
	m := newModel(fs)

	fs.set(simulation.Snapshot{Running: true, Lang: threat.LanguageSpanish})
	m.Update(tickMsg(testNow))

	assert.Equal(t, threat.LanguageSpanish, m.snap.Lang)
}

func TestModel_View(t *testing.T) {
	t.Run("empty session", func(t *testing.T) {
		m := newModel(&fakeSession{})
		view := m.View()
		assert.Contains(t, view, "Waiting for network anomalies...")
		assert.Contains(t, view, "refresh from cloud")
	})

	t.Run("populated session", func(t *testing.T) {
		fs := &fakeSession{}
		ev := sampleNarrativeEvent(event.NarrativeSourceSimulated)
		ev.UserMessage = "Quota exhausted."
		fs.set(simulation.Snapshot{
			Running:   true,
			Lang:      threat.LanguageEnglish,
			Alerts:    []*event.ThreatAlert{sampleAlert()},
			Telemetry: []event.TelemetryPoint{{Sequence: 1, Attacks: 20, Mitigated: 80}},
			Narrative: ev,
		})
		m := newModel(fs)
		m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

		view := m.View()
		assert.Contains(t, view, "14:03:27 - CRITICAL: DDoS Anomaly")
		assert.Contains(t, view, "LOCAL FEED")
		assert.Contains(t, view, "Volumetric flood on edge")
		assert.Contains(t, view, "Quota exhausted.")
		assert.Contains(t, view, "▂")
		assert.Contains(t, view, "▆")
	})
}
