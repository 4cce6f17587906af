package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "json")
	l.Info().Str("sale_id", "SALE-1").Msg("sale recorded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sale recorded", entry["message"])
	assert.Equal(t, "SALE-1", entry["sale_id"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "caller")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "console")
	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("chatty"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
}

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")
	SetLevel("error")
	assert.Equal(t, zerolog.ErrorLevel, Log.GetLevel())
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
}
