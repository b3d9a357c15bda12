package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_TextFormat_SortedKeysAndLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatText, App: "broker", Writer: &buf})

	l.Debug("hidden", nil)
	l.Info("grant issued", map[string]any{"token": "abcd1234...", "ttl_minutes": 5})

	out := strings.TrimSpace(buf.String())
	require.NotEmpty(t, out)
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "app=broker level=info msg=grant issued"), out)
	assert.Contains(t, out, "token=abcd1234...")
	assert.Contains(t, out, "ttl_minutes=5")
}

func TestLogger_JSONFormat_WithFieldsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Debug, Format: FormatJSON, Writer: &buf}).
		With(map[string]any{"component": "registry"})

	l.Error("token collision", map[string]any{"err": errors.New("conflict")})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "registry", entry["component"])
	assert.Equal(t, "conflict", entry["err"])
}

func TestParseLevelAndFormat(t *testing.T) {
	assert.Equal(t, Warn, ParseLevel("WARNING"))
	assert.Equal(t, Info, ParseLevel("bogus"))
	assert.Equal(t, FormatJSON, ParseFormat(" json "))
	assert.Equal(t, FormatText, ParseFormat(""))
}
