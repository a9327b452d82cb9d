package output

import (
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// wrapANSIText hard-wraps s to width printable columns. An SGR sequence
// that is still active at a line break is reopened on the next line.
func wrapANSIText(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}

	lines := strings.Split(wrap.String(s, width), "\n")

	active := ""
	for i, line := range lines {
		if active != "" && !strings.HasPrefix(line, active) {
			lines[i] = active + line
		}
		active = lastSGR(line, active)
	}
	return lines
}

// wrapWords wraps on word boundaries and falls back to a hard wrap for
// words longer than width.
func wrapWords(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	return wrapANSIText(wordwrap.String(s, width), width)
}

// lastSGR returns the SGR sequence in effect at the end of line, given the
// one in effect at its start.
func lastSGR(line, active string) string {
	for {
		start := strings.IndexRune(line, ansi.Marker)
		if start < 0 {
			return active
		}
		end := strings.IndexByte(line[start:], 'm')
		if end < 0 {
			return active
		}
		seq := line[start : start+end+1]
		if seq == "\x1b[0m" || seq == "\x1b[m" {
			active = ""
		} else {
			active = seq
		}
		line = line[start+end+1:]
	}
}

// truncateANSI cuts s to at most width printable columns.
func truncateANSI(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.PrintableRuneWidth(s) <= width {
		return s
	}
	return truncate.String(s, uint(width))
}
