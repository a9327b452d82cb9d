package threat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightOf_Configured(t *testing.T) {
	assert.Equal(t, 95, WeightOf("DDoS Anomaly"))
	assert.Equal(t, 12, WeightOf("Baseline Network Security"))
	assert.Equal(t, 82, WeightOf("SQL Injection"))
	assert.Equal(t, 95, WeightOf("Anomalía DDoS"))
	assert.Equal(t, NominalWeight, WeightOf(NominalLabelES))
}

func TestWeightOf_UnknownLabel(t *testing.T) {
	assert.Equal(t, DefaultWeight, WeightOf("Quantum Teleportation Exploit"))
	assert.Equal(t, DefaultWeight, WeightOf(""))
	assert.False(t, Known("Quantum Teleportation Exploit"))
}

func TestCatalog_EveryLabelWeighted(t *testing.T) {
	for _, lang := range []Language{LanguageEnglish, LanguageSpanish} {
		labels := Catalog(lang)
		require.NotEmpty(t, labels)
		for _, label := range labels {
			assert.True(t, Known(label), "label %q (%s) missing from weight table", label, lang)
			assert.InDelta(t, 50, WeightOf(label), 50)
		}
	}
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	labels := Catalog(LanguageEnglish)
	labels[0] = "tampered"
	assert.NotEqual(t, "tampered", Catalog(LanguageEnglish)[0])
}

func TestCatalog_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, Catalog(LanguageEnglish), Catalog(Language("fr")))
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in      string
		want    Language
		wantErr bool
	}{
		{"en", LanguageEnglish, false},
		{"ES", LanguageSpanish, false},
		{" spanish ", LanguageSpanish, false},
		{"english", LanguageEnglish, false},
		{"fr", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLanguage(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
