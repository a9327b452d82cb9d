package threat

import (
	"fmt"
	"strings"
)

// Language is the display language of labels and narratives.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
)

// ParseLanguage accepts "en"/"es" (case-insensitive) and a few long forms.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "eng", "english":
		return LanguageEnglish, nil
	case "es", "spa", "spanish", "español", "espanol":
		return LanguageSpanish, nil
	default:
		return "", fmt.Errorf("unsupported language %q", s)
	}
}

// Name is the language name used in model prompts.
func (l Language) Name() string {
	if l == LanguageSpanish {
		return "SPANISH"
	}
	return "ENGLISH"
}

const (
	// DefaultWeight is returned for labels missing from the weight table.
	DefaultWeight = 50
	// NominalWeight is the baseline of the "no incident" label.
	NominalWeight = 12

	NominalLabel   = "Baseline Network Security"
	NominalLabelES = "Seguridad de Red Base"

	// ManualRequestLabel is used when a narrative is requested with no alert on screen.
	ManualRequestLabel = "Manual Request"
)

// Baseline severity per threat label. Spanish labels share the
// weight of their English counterpart.
var weights = map[string]int{
	"SQL Injection":           82,
	"Brute Force":             64,
	"Unauthorized API Access": 76,
	"XSS":                     58,
	"DDoS Anomaly":            95,
	NominalLabel:              NominalWeight,

	"Inyección SQL":            82,
	"Fuerza Bruta":             64,
	"Acceso API no autorizado": 76,
	// "XSS" is the same in both languages
	"Anomalía DDoS": 95,
	NominalLabelES:  NominalWeight,
}

// Labels the alert generator picks from, per language. The nominal
// label is not part of the catalog: it never raises an alert.
var catalogs = map[Language][]string{
	LanguageEnglish: {"SQL Injection", "Brute Force", "Unauthorized API Access", "XSS", "DDoS Anomaly"},
	LanguageSpanish: {"Inyección SQL", "Fuerza Bruta", "Acceso API no autorizado", "XSS", "Anomalía DDoS"},
}

// WeightOf returns the baseline score of label, or DefaultWeight
// when the label is unknown.
func WeightOf(label string) int {
	if w, ok := weights[label]; ok {
		return w
	}
	return DefaultWeight
}

// Catalog returns a copy of the threat labels for lang.
// Unknown languages get the English catalog.
func Catalog(lang Language) []string {
	labels, ok := catalogs[lang]
	if !ok {
		labels = catalogs[LanguageEnglish]
	}
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

// Known reports whether label has an entry in the weight table.
func Known(label string) bool {
	_, ok := weights[label]
	return ok
}
