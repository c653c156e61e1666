package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load("", map[string]any{KeyInstrument: "kcwi"})
	require.NoError(t, err)

	assert.Equal(t, "kcwi", s.Instrument)
	assert.Equal(t, "yaml", s.Format)
	assert.Equal(t, "info", s.LogLevel)
	assert.Zero(t, s.Watch)
	assert.False(t, s.NoInternal)
}

func TestLoad_Layers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odl.yaml")
	cfg := "instrument: mosfire\nformat: json\nlog-level: debug\nno-domeflats: true\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	s, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "mosfire", s.Instrument)
	assert.Equal(t, "json", s.Format)
	assert.Equal(t, "debug", s.LogLevel)
	assert.True(t, s.NoDomeFlats)

	t.Setenv("ODL_FORMAT", "table")
	t.Setenv("ODL_LOG_LEVEL", "warn")
	s, err = Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "table", s.Format)
	assert.Equal(t, "warn", s.LogLevel)

	s, err = Load(path, map[string]any{KeyFormat: "yaml", KeyInstrument: "nires"})
	require.NoError(t, err)
	assert.Equal(t, "yaml", s.Format)
	assert.Equal(t, "nires", s.Instrument)
	assert.Equal(t, "warn", s.LogLevel)
}

func TestLoad_Watch(t *testing.T) {
	s, err := Load("", map[string]any{KeyRecipe: "night.yaml", KeyWatch: "30s"})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, s.Watch)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		wantErr   string
	}{
		{"nothing to build", nil, "recipe or an instrument"},
		{"bad format", map[string]any{KeyInstrument: "kcwi", KeyFormat: "xml"}, "format must be"},
		{"watch without recipe", map[string]any{KeyInstrument: "kcwi", KeyWatch: time.Second}, "watch requires a recipe"},
		{"negative watch", map[string]any{KeyRecipe: "r.yaml", KeyWatch: -time.Second}, "non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("", tt.overrides)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), map[string]any{KeyInstrument: "kcwi"})
	assert.ErrorContains(t, err, "read config")
}
