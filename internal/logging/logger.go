package logging

import (
	"io"
	"log/slog"
	"os"
	"regexp"
)

// DefaultMaskPatterns match attribute keys that carry form answers, including
// rendered operator notifications.
var DefaultMaskPatterns = []string{`(?i)^phone$`, `(?i)^email$`, `(?i)^name$`, `(?i)password`, `(?i)^notification$`}

// Option configures the logger returned by New.
type Option func(*options)

type options struct {
	out      io.Writer
	patterns []*regexp.Regexp
}

// WithOutput redirects the log stream, mostly for tests.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithMask replaces the values of attributes whose key matches any pattern.
func WithMask(patterns ...string) Option {
	return func(o *options) {
		for _, p := range patterns {
			o.patterns = append(o.patterns, regexp.MustCompile(p))
		}
	}
}

// New creates a configured application logger.
// It writes to Stderr (to separate from Stdout flow UI/JSON-RPC).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level, opts ...Option) *slog.Logger {
	o := &options{out: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	return slog.New(slog.NewTextHandler(o.out, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			for _, p := range o.patterns {
				if p.MatchString(a.Key) {
					return slog.String(a.Key, "***")
				}
			}
			return a
		},
	}))
}

// ParseLevel maps a textual level to slog, defaulting to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
