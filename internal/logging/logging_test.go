package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "WARN")
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger.Info().Msg("hidden")
	logger.Warn().Dur("latency", 1500*time.Microsecond).Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "model-select", entry["service"])
	assert.Equal(t, 1.5, entry["latency"])
	assert.Contains(t, entry, "time")
}

func TestNewWithWriterDefaultsToInfo(t *testing.T) {
	for _, level := range []string{"", "verbose"} {
		logger := NewWithWriter(&bytes.Buffer{}, level)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel(), level)
	}
}
