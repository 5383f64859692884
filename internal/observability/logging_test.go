package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/battle/internal/config"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: format})
		require.NoError(t, err, "format %q should be valid", format)
		assert.NotNil(t, logger)
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "trace", Format: "json"})
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestNewLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := NewLogger(config.LoggingConfig{Level: level, Format: "json"})
		require.NoError(t, err, "level %q should be valid", level)
		assert.NotNil(t, logger)
	}
}

func TestSessionLogger_AddsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := SessionLogger(zap.New(core), "sess-1", "goblin-camp")
	logger.Info("battle started")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "battle", entry.LoggerName)
	ctx := entry.ContextMap()
	assert.Equal(t, "sess-1", ctx["session_id"])
	assert.Equal(t, "goblin-camp", ctx["encounter_id"])
}

func TestSessionLogger_OmitsEmptyEncounter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SessionLogger(zap.New(core), "sess-2", "").Info("x")
	_, ok := logs.All()[0].ContextMap()["encounter_id"]
	assert.False(t, ok)
}

func TestSessionLogger_NilBase(t *testing.T) {
	assert.NotNil(t, SessionLogger(nil, "s", ""))
}
