package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONConServicioYNivel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "warn", Service: "retail-ledger", Output: &buf})

	zl := l.Zerolog()
	zl.Info().Msg("descartado")
	cl := zl.With().Str("component", "till").Logger()
	cl.Warn().Str("till_id", "t1").Msg("diferencia")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "retail-ledger", entry["service"])
	assert.Equal(t, "till", entry["component"])
	assert.Equal(t, "t1", entry["till_id"])
	assert.Contains(t, entry, "time")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel(" error "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
}
