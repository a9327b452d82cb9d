package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alex-ilgayev/socsim/pkg/bus"
	"github.com/alex-ilgayev/socsim/pkg/event"
	"github.com/alex-ilgayev/socsim/pkg/narrative"
	"github.com/alex-ilgayev/socsim/pkg/threat"
	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

var (
	ErrAlreadyStarted = errors.New("session already started")
	ErrStopped        = errors.New("session stopped")
)

// Narrator resolves narratives for the session. *narrative.Service implements it.
type Narrator interface {
	// Narrate may serve a cached narrative and is subject to throttling.
	Narrate(ctx context.Context, label string, lang threat.Language) narrative.Outcome
	// Refresh always asks the provider.
	Refresh(ctx context.Context, label string, lang threat.Language) narrative.Outcome
}

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Stats counts what the session has done since Start.
type Stats struct {
	AlertTicks        uint64                    `json:"alert_ticks"`
	TelemetryTicks    uint64                    `json:"telemetry_ticks"`
	AlertsEmitted     uint64                    `json:"alerts_emitted"`
	BySeverity        map[event.Severity]uint64 `json:"by_severity"`
	NarrativeFetches  uint64                    `json:"narrative_fetches"`
	NarrativeFailures uint64                    `json:"narrative_failures"`
	QuotaFailures     uint64                    `json:"quota_failures"`
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Running bool
	Lang    threat.Language
	// Alerts are newest first.
	Alerts []*event.ThreatAlert
	// Telemetry is oldest first.
	Telemetry []event.TelemetryPoint
	// Narrative is the latest resolved narrative, nil until the first one.
	Narrative *event.NarrativeEvent
	// Fetching is true while a narrative request is in flight.
	Fetching bool
	Stats    Stats
}

// Session owns one simulation: its two tickers, the rolling buffers and the
// current narrative. Sessions are independent of each other and cannot be
// restarted once stopped.
type Session struct {
	cfg      Config
	bus      bus.EventBus
	narrator Narrator
	clock    clock.Clock
	rand     Rand
	metrics  *Metrics

	alertGen     *AlertGenerator
	telemetryGen *TelemetryGenerator

	mu        sync.RWMutex
	state     state
	ctx       context.Context
	cancel    context.CancelFunc
	feed      *AlertFeed
	series    *Series
	narrative *event.NarrativeEvent
	lastFetch time.Time
	stats     Stats

	fetching atomic.Bool
	loopWG   sync.WaitGroup
	fetchWG  sync.WaitGroup

	done     chan struct{}
	doneOnce sync.Once
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock, typically with clock.NewMock().
func WithClock(c clock.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithRand replaces the random source of both generators.
func WithRand(r Rand) Option {
	return func(s *Session) { s.rand = r }
}

// WithMetrics records counters on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// NewSession validates cfg and builds an idle session. eventBus and
// narrator may be nil: events are then not published, and no narratives
// are requested.
func NewSession(cfg Config, eventBus bus.EventBus, narrator Narrator, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	s := &Session{
		cfg:      cfg,
		bus:      eventBus,
		narrator: narrator,
		clock:    clock.New(),
		feed:     NewAlertFeed(cfg.AlertCapacity),
		series:   NewSeries(cfg.TelemetryCapacity),
		stats:    Stats{BySeverity: make(map[event.Severity]uint64)},
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rand == nil {
		s.rand = NewRand(s.clock.Now().UnixNano())
	} else {
		s.rand = Locked(s.rand)
	}

	s.alertGen = NewAlertGenerator(cfg, s.rand)
	s.telemetryGen = NewTelemetryGenerator(cfg, s.rand)

	return s, nil
}

// Start seeds the telemetry window (when configured) and starts both
// tickers. The session stops when ctx is cancelled or Stop is called.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateRunning:
		return ErrAlreadyStarted
	case stateStopped:
		return ErrStopped
	}

	now := s.clock.Now()
	if s.cfg.PrefillTelemetry {
		for i := s.cfg.TelemetryCapacity; i > 0; i-- {
			s.series.Append(s.telemetryGen.Next(now.Add(-time.Duration(i) * s.cfg.TelemetryInterval)))
		}
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.state = stateRunning

	alertTicker := s.clock.Ticker(s.cfg.AlertInterval)
	telemetryTicker := s.clock.Ticker(s.cfg.TelemetryInterval)

	s.loopWG.Add(1)
	go s.run(s.ctx, alertTicker, telemetryTicker)

	logrus.WithFields(logrus.Fields{
		"lang":               s.cfg.Lang,
		"alert_interval":     s.cfg.AlertInterval,
		"telemetry_interval": s.cfg.TelemetryInterval,
		"alert_probability":  s.cfg.AlertProbability,
	}).Info("Simulation session started")

	return nil
}

func (s *Session) run(ctx context.Context, alertTicker, telemetryTicker *clock.Ticker) {
	defer s.loopWG.Done()
	defer alertTicker.Stop()
	defer telemetryTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.markStopped()
			return
		case now := <-telemetryTicker.C:
			s.telemetryTick(now)
		case now := <-alertTicker.C:
			s.alertTick(now)
		}
	}
}

// markStopped handles cancellation of the parent context.
func (s *Session) markStopped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateStopped
	s.closeDone()
}

func (s *Session) closeDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

// Stop cancels both tickers and any in-flight narrative request, then waits
// for them to exit. Results that arrive afterwards are discarded. Stop is
// idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	prev := s.state
	s.state = stateStopped
	cancel := s.cancel
	s.mu.Unlock()

	if prev == stateIdle || cancel == nil {
		s.closeDone()
		return
	}

	cancel()
	s.loopWG.Wait()
	s.fetchWG.Wait()
	s.closeDone()

	if prev == stateRunning {
		logrus.Info("Simulation session stopped")
	}
}

// Done is closed once the session has been stopped or its context cancelled,
// including a Stop on a session that was never started.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) alertTick(now time.Time) {
	s.mu.Lock()
	if s.state != stateRunning {
		s.mu.Unlock()
		return
	}
	s.stats.AlertTicks++

	alert := s.alertGen.Next(now)
	if alert == nil {
		s.mu.Unlock()
		return
	}
	s.feed.Push(alert)
	s.stats.AlertsEmitted++
	s.stats.BySeverity[alert.Severity]++
	wantNarrative := s.narrative == nil || now.Sub(s.lastFetch) > s.cfg.NarrativeRefresh
	ctx := s.ctx
	s.mu.Unlock()

	s.metrics.alertEmitted(ctx, alert.Severity)
	logrus.WithFields(alert.LogFields()).Debug("Threat alert emitted")
	s.publish(alert)

	if wantNarrative {
		s.requestNarrative(alert.Label, false)
	}
}

func (s *Session) telemetryTick(now time.Time) {
	s.mu.Lock()
	if s.state != stateRunning {
		s.mu.Unlock()
		return
	}
	s.stats.TelemetryTicks++

	point := s.telemetryGen.Next(now)
	s.series.Append(point)
	ctx := s.ctx
	s.mu.Unlock()

	s.metrics.telemetryAppended(ctx)
	logrus.WithFields(point.LogFields()).Trace("Telemetry point appended")
	s.publish(&point)
}

// RequestNarrative forces a provider fetch for label, or for the newest
// alert's label when label is empty. It returns false when a request is
// already in flight or the session is not running.
func (s *Session) RequestNarrative(label string) bool {
	if label == "" {
		s.mu.RLock()
		if latest, ok := s.feed.Latest(); ok {
			label = latest.Label
		} else {
			label = threat.ManualRequestLabel
		}
		s.mu.RUnlock()
	}
	return s.requestNarrative(label, true)
}

func (s *Session) requestNarrative(label string, manual bool) bool {
	if s.narrator == nil {
		return false
	}
	if !s.fetching.CompareAndSwap(false, true) {
		logrus.WithField("label", label).Trace("Narrative request already in flight")
		return false
	}

	s.mu.Lock()
	if s.state != stateRunning {
		s.mu.Unlock()
		s.fetching.Store(false)
		return false
	}
	ctx := s.ctx
	s.fetchWG.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.fetchWG.Done()
		defer s.fetching.Store(false)

		var out narrative.Outcome
		if manual {
			out = s.narrator.Refresh(ctx, label, s.cfg.Lang)
		} else {
			out = s.narrator.Narrate(ctx, label, s.cfg.Lang)
		}
		s.applyNarrative(ctx, out)
	}()
	return true
}

func (s *Session) applyNarrative(ctx context.Context, out narrative.Outcome) {
	kind := ""
	if out.Err != nil {
		kind = narrative.KindOf(out.Err).String()
	}

	s.mu.Lock()
	if s.state != stateRunning {
		s.mu.Unlock()
		logrus.WithField("label", out.Label).Debug("Discarding narrative resolved after stop")
		return
	}

	// A throttled request leaves the current narrative in place.
	if out.Err != nil && narrative.KindOf(out.Err) == narrative.KindThrottled && s.narrative != nil {
		s.mu.Unlock()
		s.metrics.narrativeResolved(ctx, out.Source, kind)
		return
	}

	now := s.clock.Now()
	ev := out.Event(now)
	s.narrative = ev
	s.stats.NarrativeFetches++
	if out.Err == nil {
		s.lastFetch = now
	} else {
		s.stats.NarrativeFailures++
		if narrative.IsQuota(out.Err) {
			s.stats.QuotaFailures++
		}
	}
	s.mu.Unlock()

	s.metrics.narrativeResolved(ctx, out.Source, kind)
	logrus.WithFields(ev.LogFields()).Debug("Narrative updated")
	s.publish(ev)
}

func (s *Session) publish(e event.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(e)
}

// Snapshot returns a copy of the current state, safe to read while the
// session keeps running.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := s.stats
	stats.BySeverity = make(map[event.Severity]uint64, len(s.stats.BySeverity))
	for k, v := range s.stats.BySeverity {
		stats.BySeverity[k] = v
	}

	return Snapshot{
		Running:   s.state == stateRunning,
		Lang:      s.cfg.Lang,
		Alerts:    s.feed.Items(),
		Telemetry: s.series.Points(),
		Narrative: s.narrative,
		Fetching:  s.fetching.Load(),
		Stats:     stats,
	}
}
