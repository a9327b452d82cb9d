package narrative

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/alex-ilgayev/socsim/pkg/event"
	"github.com/alex-ilgayev/socsim/pkg/threat"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Fetcher produces a narrative for a threat label. *GeminiClient implements it.
type Fetcher interface {
	Fetch(ctx context.Context, label string, lang threat.Language) (event.Narrative, error)
}

// Advisor assesses an infrastructure description. *GeminiClient implements it.
type Advisor interface {
	Advise(ctx context.Context, input string, lang threat.Language) (event.Advice, error)
}

// ServiceConfig holds the fetch policy.
type ServiceConfig struct {
	// CacheTTL is how long a fetched narrative stays fresh (default: 60s)
	CacheTTL time.Duration

	// CacheSize bounds the number of cached label/language pairs (default: 64)
	CacheSize int

	// FetchTimeout bounds a whole fetch including retries (default: 15s)
	FetchTimeout time.Duration

	// MinFetchInterval is the throttle between provider calls; zero disables it (default: 30s)
	MinFetchInterval time.Duration

	// Burst is the number of calls allowed back to back (default: 1)
	Burst int
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		CacheTTL:         60 * time.Second,
		CacheSize:        64,
		FetchTimeout:     15 * time.Second,
		MinFetchInterval: 30 * time.Second,
		Burst:            1,
	}
}

// Outcome is the resolved narrative for one request. Narrative is always
// usable: on failure it holds a canned narrative and Err says why.
type Outcome struct {
	Label     string
	Lang      threat.Language
	Narrative event.Narrative
	Source    event.NarrativeSource
	Err       error
}

// Event converts the outcome to a bus event stamped with ts.
func (o Outcome) Event(ts time.Time) *event.NarrativeEvent {
	ev := &event.NarrativeEvent{
		Timestamp: ts,
		Label:     o.Label,
		Lang:      o.Lang,
		Source:    o.Source,
		Narrative: o.Narrative,
	}
	if o.Err != nil {
		ev.Error = o.Err.Error()
		ev.ErrorKind = KindOf(o.Err).String()
		ev.UserMessage = UserMessage(o.Lang, o.Err)
	}
	return ev
}

// Service resolves narratives through a freshness cache and a fetch
// throttle, falling back to canned content on any failure.
type Service struct {
	fetcher Fetcher
	advisor Advisor
	cfg     ServiceConfig
	cache   *expirable.LRU[string, event.Narrative]
	limiter *rate.Limiter
	picker  Picker
	now     func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithAdvisor enables Advise.
func WithAdvisor(a Advisor) ServiceOption {
	return func(s *Service) { s.advisor = a }
}

// WithPicker sets the source used to choose canned narratives.
func WithPicker(p Picker) ServiceOption {
	return func(s *Service) { s.picker = p }
}

// WithNow sets the time source used by the throttle.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

type pickerFunc func(int) int

func (f pickerFunc) Intn(n int) int { return f(n) }

// NewService creates a Service. A nil fetcher makes every request fall
// back to canned content.
func NewService(fetcher Fetcher, cfg ServiceConfig, opts ...ServiceOption) *Service {
	def := DefaultServiceConfig()
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = def.CacheSize
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = def.FetchTimeout
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}

	limit := rate.Inf
	if cfg.MinFetchInterval > 0 {
		limit = rate.Every(cfg.MinFetchInterval)
	}

	s := &Service{
		fetcher: fetcher,
		cfg:     cfg,
		cache:   expirable.NewLRU[string, event.Narrative](cfg.CacheSize, nil, cfg.CacheTTL),
		limiter: rate.NewLimiter(limit, cfg.Burst),
		picker:  pickerFunc(rand.Intn),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cacheKey(label string, lang threat.Language) string {
	return fmt.Sprintf("%s|%s", lang, label)
}

// Narrate returns a cached narrative when fresh, otherwise fetches one if
// the throttle allows it.
func (s *Service) Narrate(ctx context.Context, label string, lang threat.Language) Outcome {
	if n, ok := s.cache.Get(cacheKey(label, lang)); ok {
		logrus.WithFields(logrus.Fields{
			"label": label,
			"lang":  lang,
		}).Debug("Narrative served from cache")
		return Outcome{Label: label, Lang: lang, Narrative: n, Source: event.NarrativeSourceCache}
	}

	if s.fetcher != nil && !s.limiter.AllowN(s.now(), 1) {
		return s.fallback(label, lang, newError(KindThrottled, label, ErrThrottled))
	}
	return s.fetch(ctx, label, lang)
}

// Refresh fetches a new narrative, bypassing the cache and the throttle.
func (s *Service) Refresh(ctx context.Context, label string, lang threat.Language) Outcome {
	return s.fetch(ctx, label, lang)
}

func (s *Service) fetch(ctx context.Context, label string, lang threat.Language) Outcome {
	if s.fetcher == nil {
		return s.fallback(label, lang, newError(KindGeneric, label, ErrMissingAPIKey))
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.fetcher.Fetch(ctx, label, lang)
	if err != nil {
		return s.fallback(label, lang, classify(label, err))
	}

	s.cache.Add(cacheKey(label, lang), n)
	logrus.WithFields(logrus.Fields{
		"label":   label,
		"lang":    lang,
		"latency": time.Since(start),
	}).Debug("Narrative fetched")

	return Outcome{Label: label, Lang: lang, Narrative: n, Source: event.NarrativeSourceAI}
}

func (s *Service) fallback(label string, lang threat.Language, err *Error) Outcome {
	entry := logrus.WithError(err).WithFields(logrus.Fields{
		"label": label,
		"lang":  lang,
		"kind":  err.Kind,
	})
	if err.Kind == KindThrottled {
		entry.Debug("Narrative fetch throttled, using local feed")
	} else {
		entry.Warn("Narrative fetch failed, switching to local feed")
	}

	return Outcome{
		Label:     label,
		Lang:      lang,
		Narrative: Fallback(lang, s.picker),
		Source:    event.NarrativeSourceSimulated,
		Err:       err,
	}
}

// Advise forwards an infrastructure description to the advisor.
func (s *Service) Advise(ctx context.Context, input string, lang threat.Language) (event.Advice, error) {
	if s.advisor == nil {
		return event.Advice{}, newError(KindGeneric, "", ErrMissingAPIKey)
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	a, err := s.advisor.Advise(ctx, input, lang)
	if err != nil {
		return event.Advice{}, classify("", err)
	}
	return a, nil
}
