package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warning", LevelWarn},
		{" WARN ", LevelWarn},
		{"error", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn)
	l.SetOutput(&buf)

	l.Debug("hidden %d", 1)
	l.Info("hidden %d", 2)
	l.Warn("built %d blocks", 6)
	l.Error("export failed: %s", "boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden", "filtered records were written")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `msg="built 6 blocks"`)
	assert.Contains(t, out, "level=ERROR")

	buf.Reset()
	l.SetLevel(LevelDebug)
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible", "SetLevel(LevelDebug) did not enable debug")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing %s", "here")
	assert.False(t, l.Slog().Enabled(t.Context(), LevelError.slogLevel()), "Discard logger should not enable error records")
}
