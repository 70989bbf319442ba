package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithConfig_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithConfig(Config{Level: "info", Output: &buf})

	log.Info().Int64("amount", 50000).Msg("top up")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "top up", line["message"])
	assert.Equal(t, "donasi", line["service"])
	assert.Equal(t, float64(50000), line["amount"])
}

func TestNewWithConfig_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithConfig(Config{Level: "warn", Output: &buf})

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithConfig_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithConfig(Config{Level: "loud", Output: &buf})

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithConfig_Pretty(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithConfig(Config{Level: "info", Pretty: true, Output: &buf})

	log.Info().Msg("pretty line")
	assert.Contains(t, buf.String(), "pretty line")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
