package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_RewritesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	log := New(slog.LevelInfo, WithOutput(&buf))

	log.Info("boom", "error", errors.New("disk full"))

	assert.Contains(t, buf.String(), "err=\"disk full\"")
	assert.NotContains(t, buf.String(), "error=")
}

func TestNew_MasksSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	log := New(slog.LevelDebug, WithOutput(&buf), WithMask(DefaultMaskPatterns...))

	log.Debug("field accepted", "phone", "79111234567", "email", "a@b.co", "field", "company")

	out := buf.String()
	assert.NotContains(t, out, "79111234567")
	assert.NotContains(t, out, "a@b.co")
	assert.Contains(t, out, "phone=***")
	assert.Contains(t, out, "field=company")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}
