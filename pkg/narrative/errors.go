package narrative

import (
	"context"
	"errors"
	"fmt"

	"github.com/alex-ilgayev/socsim/pkg/threat"
)

// Kind classifies a narrative failure.
type Kind int

const (
	// KindGeneric covers network failures, timeouts and server errors.
	KindGeneric Kind = iota
	// KindQuota means the provider refused the call for quota or rate limit reasons.
	KindQuota
	// KindMalformed means the provider answered but the payload failed validation.
	KindMalformed
	// KindThrottled means the call was not attempted because of the local fetch budget.
	KindThrottled
)

func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindQuota:
		return "quota"
	case KindMalformed:
		return "malformed"
	case KindThrottled:
		return "throttled"
	default:
		return "unknown"
	}
}

var (
	ErrQuotaExceeded     = errors.New("AI provider quota exceeded")
	ErrMalformedResponse = errors.New("malformed AI response")
	ErrEmptyResponse     = errors.New("empty response from AI provider")
	ErrThrottled         = errors.New("narrative fetch throttled")
	ErrMissingAPIKey     = errors.New("missing API key")
)

// Error is the failure returned by narrative and advice calls.
type Error struct {
	Kind  Kind
	Label string
	Err   error
}

func (e *Error) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s narrative failure for %q: %v", e.Kind, e.Label, e.Err)
	}
	return fmt.Sprintf("%s AI failure: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, label string, err error) *Error {
	return &Error{Kind: kind, Label: label, Err: err}
}

// KindOf returns the failure class of err. Errors that did not come from
// this package are generic.
func KindOf(err error) Kind {
	var nerr *Error
	if errors.As(err, &nerr) {
		return nerr.Kind
	}
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return KindQuota
	case errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrEmptyResponse):
		return KindMalformed
	case errors.Is(err, ErrThrottled):
		return KindThrottled
	}
	return KindGeneric
}

// IsQuota reports whether err is a quota or rate limit failure.
func IsQuota(err error) bool {
	return err != nil && KindOf(err) == KindQuota
}

// classify wraps err as an *Error, keeping an existing classification.
func classify(label string, err error) *Error {
	var nerr *Error
	if errors.As(err, &nerr) {
		if nerr.Label == "" && label != "" {
			return newError(nerr.Kind, label, nerr.Err)
		}
		return nerr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newError(KindGeneric, label, err)
	}
	return newError(KindOf(err), label, err)
}

var userMessages = map[threat.Language]map[Kind]string{
	threat.LanguageEnglish: {
		KindGeneric:   "The AI analysis service is unavailable right now. Showing the local intelligence feed.",
		KindQuota:     "The AI analysis quota has been reached. Showing the local intelligence feed until it resets.",
		KindMalformed: "The AI analysis returned an unreadable report. Showing the local intelligence feed.",
		KindThrottled: "AI analysis was requested too recently. Showing the latest available report.",
	},
	threat.LanguageSpanish: {
		KindGeneric:   "El servicio de análisis IA no está disponible. Mostrando el feed de inteligencia local.",
		KindQuota:     "Se alcanzó la cuota de análisis IA. Mostrando el feed de inteligencia local hasta que se restablezca.",
		KindMalformed: "El análisis IA devolvió un reporte ilegible. Mostrando el feed de inteligencia local.",
		KindThrottled: "El análisis IA se solicitó hace muy poco. Mostrando el último reporte disponible.",
	},
}

// UserMessage returns a short, non-technical explanation of err in lang,
// or "" when err is nil.
func UserMessage(lang threat.Language, err error) string {
	if err == nil {
		return ""
	}
	msgs, ok := userMessages[lang]
	if !ok {
		msgs = userMessages[threat.LanguageEnglish]
	}
	return msgs[KindOf(err)]
}
