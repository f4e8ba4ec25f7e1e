package logs

import (
	"regexp"
	"strings"

	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/domain"
	"github.com/charmbracelet/x/ansi"
)

// ErrorPredicate reports whether a plain-text stdout line describes an error
type ErrorPredicate func(text string) bool

// KeywordPredicate matches any keyword as a case-insensitive substring
func KeywordPredicate(keywords []string) ErrorPredicate {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			lowered = append(lowered, strings.ToLower(k))
		}
	}
	return func(text string) bool {
		text = strings.ToLower(text)
		for _, k := range lowered {
			if strings.Contains(text, k) {
				return true
			}
		}
		return false
	}
}

// Classifier derives the persisted level of a line
type Classifier struct {
	isError ErrorPredicate
	warn    *regexp.Regexp
}

// NewClassifier creates a classifier around an error predicate.
// A nil predicate falls back to the default error keywords.
func NewClassifier(isError ErrorPredicate) *Classifier {
	if isError == nil {
		isError = KeywordPredicate(constants.DefaultErrorKeywords)
	}
	return &Classifier{
		isError: isError,
		warn:    regexp.MustCompile(`(?i)\b(?:` + strings.Join(constants.WarnKeywords, "|") + `)\b`),
	}
}

// Level classifies a sanitized line. Stderr is always an error.
func (c *Classifier) Level(stream domain.Stream, text string) domain.Level {
	if stream == domain.StreamStderr {
		return domain.LevelError
	}
	plain := ansi.Strip(text)
	if c.isError(plain) {
		return domain.LevelError
	}
	if c.warn.MatchString(plain) {
		return domain.LevelWarn
	}
	return domain.LevelInfo
}
