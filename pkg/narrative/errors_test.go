package narrative

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alex-ilgayev/socsim/pkg/threat"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"plain error", errors.New("boom"), KindGeneric},
		{"quota sentinel", ErrQuotaExceeded, KindQuota},
		{"wrapped quota", fmt.Errorf("fetch: %w", ErrQuotaExceeded), KindQuota},
		{"malformed", ErrMalformedResponse, KindMalformed},
		{"empty", ErrEmptyResponse, KindMalformed},
		{"throttled", ErrThrottled, KindThrottled},
		{"typed error wins", &Error{Kind: KindGeneric, Err: ErrQuotaExceeded}, KindGeneric},
		{"wrapped typed error", fmt.Errorf("outer: %w", &Error{Kind: KindQuota, Err: errors.New("x")}), KindQuota},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsQuota(t *testing.T) {
	assert.False(t, IsQuota(nil))
	assert.True(t, IsQuota(newError(KindQuota, "XSS", errors.New("429"))))
	assert.False(t, IsQuota(newError(KindGeneric, "XSS", errors.New("500"))))
}

func TestClassify(t *testing.T) {
	err := classify("XSS", ErrQuotaExceeded)
	assert.Equal(t, KindQuota, err.Kind)
	assert.Equal(t, "XSS", err.Label)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	err = classify("XSS", context.DeadlineExceeded)
	assert.Equal(t, KindGeneric, err.Kind)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	inner := newError(KindMalformed, "", ErrMalformedResponse)
	err = classify("SQL Injection", inner)
	assert.Equal(t, KindMalformed, err.Kind)
	assert.Equal(t, "SQL Injection", err.Label)
}

func TestError_Message(t *testing.T) {
	err := newError(KindQuota, "DDoS Anomaly", ErrQuotaExceeded)
	assert.Contains(t, err.Error(), "quota")
	assert.Contains(t, err.Error(), "DDoS Anomaly")

	err = newError(KindGeneric, "", errors.New("timeout"))
	assert.Contains(t, err.Error(), "timeout")
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(threat.LanguageEnglish, nil))

	quotaEN := UserMessage(threat.LanguageEnglish, ErrQuotaExceeded)
	genericEN := UserMessage(threat.LanguageEnglish, errors.New("dial tcp"))
	assert.NotEmpty(t, quotaEN)
	assert.NotEmpty(t, genericEN)
	assert.NotEqual(t, quotaEN, genericEN, "quota failures get their own message")
	assert.NotContains(t, genericEN, "dial tcp", "messages are not technical")

	quotaES := UserMessage(threat.LanguageSpanish, ErrQuotaExceeded)
	assert.NotEqual(t, quotaEN, quotaES)
	assert.Contains(t, quotaES, "cuota")

	assert.Equal(t, quotaEN, UserMessage(threat.Language("de"), ErrQuotaExceeded))

	for _, kind := range []Kind{KindGeneric, KindQuota, KindMalformed, KindThrottled} {
		assert.NotEmpty(t, UserMessage(threat.LanguageEnglish, &Error{Kind: kind, Err: errors.New("x")}), kind.String())
		assert.NotEmpty(t, UserMessage(threat.LanguageSpanish, &Error{Kind: kind, Err: errors.New("x")}), kind.String())
	}
}
