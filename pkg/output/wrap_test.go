package output

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/muesli/reflow/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	green = "\x1b[32m"
	red   = "\x1b[31m"
	reset = "\x1b[0m"
)

func assertWithinWidth(t *testing.T, lines []string, width int) {
	t.Helper()
	for i, line := range lines {
		assert.LessOrEqual(t, ansi.PrintableRuneWidth(line), width, "line %d: %q", i, line)
		assert.True(t, utf8.ValidString(line), "line %d is not valid UTF-8: %q", i, line)
	}
}

func TestWrapANSIText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		lines int
	}{
		{name: "fits", input: "hello", width: 20, lines: 1},
		{name: "plain text wraps", input: "this is a longer string that should wrap", width: 20, lines: 2},
		{name: "colored text wraps", input: green + "this is a longer green string that should wrap" + reset, width: 20, lines: 3},
		{name: "accented word counts runes not bytes", input: "CRÍTICO", width: 7, lines: 1},
		{name: "accented text wraps", input: "Anomalía DDoS en el perímetro", width: 10, lines: 3},
		{name: "zero width returns input", input: "CRÍTICO", width: 0, lines: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := wrapANSIText(tt.input, tt.width)
			require.Len(t, lines, tt.lines)
			if tt.width > 0 {
				assertWithinWidth(t, lines, tt.width)
			} else {
				assert.Equal(t, tt.input, lines[0])
			}
		})
	}
}

func TestWrapANSIText_ReopensColor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		color string
		width int
	}{
		{name: "ascii", input: green + "this is a longer green string that should wrap" + reset, color: green, width: 10},
		{name: "accented", input: red + "CRÍTICO: Anomalía DDoS detectada" + reset, color: red, width: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := wrapANSIText(tt.input, tt.width)
			require.Greater(t, len(lines), 1)
			assertWithinWidth(t, lines, tt.width)
			for i, line := range lines[1:] {
				assert.True(t, strings.HasPrefix(line, tt.color), "line %d lost its color: %q", i+1, line)
			}
		})
	}
}

func TestWrapWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  []string
	}{
		{
			name:  "breaks on spaces",
			input: "alpha beta gamma delta",
			width: 11,
			want:  []string{"alpha beta", "gamma delta"},
		},
		{
			name:  "accented words stay whole",
			input: "14:03:27 - CRÍTICO: Anomalía DDoS",
			width: 12,
		},
		{
			name:  "fits on one line",
			input: "Anomalía DDoS",
			width: 13,
			want:  []string{"Anomalía DDoS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := wrapWords(tt.input, tt.width)
			assertWithinWidth(t, lines, tt.width)
			if tt.want != nil {
				assert.Equal(t, tt.want, lines)
			}

			// No word is split when every word fits.
			assert.Equal(t, strings.Fields(tt.input), strings.Fields(strings.Join(lines, " ")))
		})
	}
}

func TestWrapWords_HardWrapsLongWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
	}{
		{name: "ascii", input: "supercalifragilistic", width: 8},
		{name: "accented", input: "desactivación-automática", width: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := wrapWords(tt.input, tt.width)
			require.Greater(t, len(lines), 1)
			assertWithinWidth(t, lines, tt.width)
			assert.Equal(t, tt.input, strings.Join(lines, ""))
		})
	}
}

func TestWrapWords_NonPositiveWidth(t *testing.T) {
	assert.Equal(t, []string{"Anomalía DDoS"}, wrapWords("Anomalía DDoS", 0))
	assert.Equal(t, []string{"Anomalía DDoS"}, wrapWords("Anomalía DDoS", -1))
}

func TestTruncateANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{name: "fits", input: "hello", width: 10, want: "hello"},
		{name: "cut", input: "this is a long string", width: 10, want: "this is a "},
		{name: "accented fits by width", input: "CRÍTICO", width: 7, want: "CRÍTICO"},
		{name: "accented cut on rune boundary", input: "Anomalía DDoS", width: 8, want: "Anomalía"},
		{name: "zero width", input: "hello", width: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateANSI(tt.input, tt.width))
		})
	}
}

func TestTruncateANSI_Colored(t *testing.T) {
	input := red + "14:03:27 - CRÍTICO: Anomalía DDoS" + reset

	out := truncateANSI(input, 18)
	assert.Equal(t, 18, ansi.PrintableRuneWidth(out))
	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasPrefix(out, red))
	assert.Contains(t, out, "CRÍTICO")
}
