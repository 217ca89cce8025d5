package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

// TestResolveLevel verifies the precedence of level sources.
func TestResolveLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	assert.Equal(t, "trace", ResolveLevel("trace", true, true), "explicit level wins")
	assert.Equal(t, "warn", ResolveLevel("", true, true), "quiet wins over verbose")
	assert.Equal(t, "debug", ResolveLevel("", true, false))
	assert.Equal(t, "warn", ResolveLevel("", false, true))
	assert.Equal(t, "error", ResolveLevel("", false, false), "LOG_LEVEL is used last")

	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, "info", ResolveLevel("", false, false))
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&Config{Level: "info", Format: "json"}, &buf)

	logger.Debug().Msg("hidden")
	logger.Info().Str("branch", "refs/heads/main").Msg("Target branch")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1, "debug must be filtered at info level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "refs/heads/main", entry["branch"])
	assert.Equal(t, "Target branch", entry["message"])
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&Config{Level: "debug", Format: "console", NoColor: true}, &buf)

	logger.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "DBG")
}
