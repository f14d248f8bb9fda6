// Package chunk segments transcript text into fixed-size windows with overlap.
package chunk

import (
	"regexp"
	"strings"
)

const (
	// DefaultMaxChars is the default window size in characters
	DefaultMaxChars = 1000
	// DefaultOverlap is the default number of characters shared between
	// adjacent windows
	DefaultOverlap = 150
)

var whitespaceRe = regexp.MustCompile(`\s+`)

type config struct {
	maxChars int
	overlap  int
}

type Option func(*config)

// WithMaxChars sets the window size
func WithMaxChars(n int) Option {
	return func(c *config) {
		c.maxChars = n
	}
}

// WithOverlap sets the overlap between adjacent windows
func WithOverlap(n int) Option {
	return func(c *config) {
		c.overlap = n
	}
}

// Split segments text into overlapping windows of at most maxChars characters.
// Whitespace is collapsed to single spaces and the text trimmed first. Empty
// input yields nil, and text that fits one window yields exactly one chunk.
// The function is pure and safe for concurrent use.
func Split(text string, opts ...Option) []string {
	cfg := &config{
		maxChars: DefaultMaxChars,
		overlap:  DefaultOverlap,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if s == "" {
		return nil
	}

	// Window sizes count characters, not bytes, so multibyte transcripts
	// never split mid-rune
	runes := []rune(s)
	if len(runes) <= cfg.maxChars {
		return []string{s}
	}

	// Clamp overlap so the step is always at least 1 character
	overlap := cfg.overlap
	if overlap < 0 {
		overlap = 0
	}
	if overlap > cfg.maxChars-1 {
		overlap = cfg.maxChars - 1
	}
	step := cfg.maxChars - overlap

	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + cfg.maxChars
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end >= len(runes) {
			break
		}
	}
	return chunks
}
