package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/seamui/seam/internal/config"
)

func TestNew(t *testing.T) {
	log, err := New(&config.LoggingConfig{Level: "debug", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	require.NotNil(t, log)
	log.Debugw("test entry", "k", "v")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestContextHelpers(t *testing.T) {
	log := NewNop()
	assert.NotNil(t, log.WithStage("analyze"))
	assert.NotNil(t, log.WithModule("components/counter.js"))
	assert.NotNil(t, log.WithRequest("req-1"))
	assert.NotNil(t, log.WithRoute("/"))
}

func TestNopLoggerIsSilent(t *testing.T) {
	log := NewNop()
	log.Infow("discarded")
	require.NoError(t, log.Sync())
}
