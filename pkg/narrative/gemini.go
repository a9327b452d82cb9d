package narrative

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/alex-ilgayev/socsim/pkg/event"
	"github.com/alex-ilgayev/socsim/pkg/threat"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const (
	defaultNarrativeModel = "gemini-3-flash-preview"
	defaultAdvisorModel   = "gemini-3-pro-preview"
	defaultMaxRetries     = 2
	defaultRetryDelay     = time.Second
)

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey string

	// Model generates threat narratives (default: gemini-3-flash-preview)
	Model string

	// AdvisorModel answers infrastructure questions (default: gemini-3-pro-preview)
	AdvisorModel string

	// BaseURL redirects requests to another host, used by tests
	BaseURL string

	// Timeout bounds a single HTTP request (default: 15s)
	Timeout time.Duration

	// MaxRetries is the number of retries after a server error (default: 2)
	MaxRetries int

	// RetryDelay is the first backoff; it doubles on every retry (default: 1s)
	RetryDelay time.Duration
}

// DefaultGeminiConfig returns the default client settings without an API key.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		Model:        defaultNarrativeModel,
		AdvisorModel: defaultAdvisorModel,
		Timeout:      15 * time.Second,
		MaxRetries:   defaultMaxRetries,
		RetryDelay:   defaultRetryDelay,
	}
}

// GeminiClient requests structured narratives and advice from the Gemini API.
type GeminiClient struct {
	client *genai.Client
	cfg    GeminiConfig
}

// NewGeminiClient creates a client. It fails when no API key is configured.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	def := DefaultGeminiConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.AdvisorModel == "" {
		cfg.AdvisorModel = def.AdvisorModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.BaseURL != "" {
		target, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
		}
		httpClient.Transport = &redirectTransport{target: target}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, cfg: cfg}, nil
}

var narrativeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":                     {Type: genai.TypeString},
		"technicalDetails":          {Type: genai.TypeString},
		"attackerProfile":           {Type: genai.TypeString},
		"recommendedCountermeasure": {Type: genai.TypeString},
		"confidenceScore":           {Type: genai.TypeNumber},
		"mitigationPriority": {
			Type: genai.TypeString,
			Enum: []string{"Low", "Medium", "High", "Immediate"},
		},
	},
	Required: []string{
		"title", "technicalDetails", "attackerProfile", "recommendedCountermeasure",
		"confidenceScore", "mitigationPriority",
	},
}

var adviceSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"riskLevel": {Type: genai.TypeString, Description: "Risk classification (Low, Medium, High, Critical)"},
		"summary":   {Type: genai.TypeString, Description: "Summary of the findings"},
		"recommendedServices": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Specific security services needed",
		},
		"immediateSteps": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Steps to take right now to secure the perimeter",
		},
	},
	Required: []string{"riskLevel", "summary", "recommendedServices", "immediateSteps"},
}

func narrativePrompt(label string, lang threat.Language) string {
	return fmt.Sprintf("Generate a detailed tactical threat intelligence report for: %s. Language: %s.", label, lang.Name())
}

func advicePrompt(input string, lang threat.Language) string {
	if lang == threat.LanguageSpanish {
		return "Actúa como un experto en ciberseguridad. Analiza esta infraestructura y proporciona consejos técnicos precisos en ESPAÑOL: " + input
	}
	return "Act as a senior cybersecurity consultant. Analyze this infrastructure and provide precise technical advice in ENGLISH: " + input
}

// Fetch requests a narrative for label in lang.
func (c *GeminiClient) Fetch(ctx context.Context, label string, lang threat.Language) (event.Narrative, error) {
	text, err := c.generate(ctx, c.cfg.Model, narrativePrompt(label, lang), narrativeSchema)
	if err != nil {
		return event.Narrative{}, classify(label, err)
	}
	n, err := ParseNarrative(text)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"label":    label,
			"response": truncate(text, 256),
		}).Warn("Discarding malformed narrative response")
		return event.Narrative{}, classify(label, err)
	}
	return n, nil
}

// Advise asks the advisor model to assess an infrastructure description.
func (c *GeminiClient) Advise(ctx context.Context, input string, lang threat.Language) (event.Advice, error) {
	if strings.TrimSpace(input) == "" {
		return event.Advice{}, errors.New("empty infrastructure description")
	}
	text, err := c.generate(ctx, c.cfg.AdvisorModel, advicePrompt(input, lang), adviceSchema)
	if err != nil {
		return event.Advice{}, classify("", err)
	}
	a, err := ParseAdvice(text)
	if err != nil {
		logrus.WithError(err).WithField("response", truncate(text, 256)).Warn("Discarding malformed advisor response")
		return event.Advice{}, classify("", err)
	}
	return a, nil
}

// generate performs one structured generation, retrying server errors with
// exponential backoff. Quota errors are returned immediately.
func (c *GeminiClient) generate(ctx context.Context, model, prompt string, schema *genai.Schema) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if attempt > 0 {
			backoff := c.cfg.RetryDelay * time.Duration(1<<(attempt-1))
			logrus.WithFields(logrus.Fields{
				"attempt": attempt,
				"backoff": backoff,
				"model":   model,
			}).Debug("Retrying Gemini request")

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		start := time.Now()
		result, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
		if err == nil {
			text := result.Text()
			logrus.WithFields(logrus.Fields{
				"model":   model,
				"latency": time.Since(start),
				"length":  len(text),
			}).Trace("Gemini request completed")
			if strings.TrimSpace(text) == "" {
				return "", ErrEmptyResponse
			}
			return text, nil
		}

		if isQuotaError(err) {
			return "", fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		lastErr = err
		if !isRetryable(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func apiError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}

func isQuotaError(err error) bool {
	if apiErr, ok := apiError(err); ok {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
	}
	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || quotaStatusPattern.MatchString(msg)
}

// quotaStatusPattern matches a 429 reported as an HTTP status, not any
// number that happens to contain it.
var quotaStatusPattern = regexp.MustCompile(`(?i)(\bstatus|\bcode|\bHTTP/\d(\.\d)?)[ :=]*429\b|\b429 Too Many Requests\b`)

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if apiErr, ok := apiError(err); ok {
		return apiErr.Code >= 500
	}
	// Transport failures carry no status code.
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// redirectTransport sends every request to target, keeping path and query.
type redirectTransport struct {
	target *url.URL
	next   http.RoundTripper
}

func (t *redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	req.Host = t.target.Host
	rt := t.next
	if rt == nil {
		rt = http.DefaultTransport
	}
	return rt.RoundTrip(req)
}
