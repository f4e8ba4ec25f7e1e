package logs

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/charliek/devcli/internal/constants"
)

// Sanitize turns one raw captured line into display-safe text. Carriage
// returns and terminal control sequences are removed except SGR color codes,
// trailing whitespace is trimmed and an empty result becomes a placeholder.
func Sanitize(line string) string {
	var b strings.Builder
	b.Grow(len(line))

	var state byte
	for len(line) > 0 {
		seq, width, n, next := ansi.DecodeSequence(line, state, nil)
		state = next
		if n <= 0 {
			n = 1
		}
		line = line[n:]
		if keepSequence(seq, width) {
			b.WriteString(seq)
		}
	}

	out := strings.TrimRight(b.String(), " \t")
	if out == "" {
		return constants.BlankLinePlaceholder
	}
	return out
}

// keepSequence reports whether one decoded sequence survives sanitizing
func keepSequence(seq string, width int) bool {
	switch {
	case seq == "":
		return false
	case width > 0:
		return true
	case ansi.HasCsiPrefix(seq):
		return seq[len(seq)-1] == 'm'
	case seq == "\t":
		return true
	}
	// zero-width graphemes such as combining marks; controls are below 0xC0
	return seq[0] >= 0xC0
}
