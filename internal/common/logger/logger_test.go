package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", "json", "stdout")
	assert.Error(t, err)
}

func TestNew_Levels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		l, err := New(level, "console", "stderr")
		require.NoError(t, err, level)
		assert.NotNil(t, l)
	}
}

func TestZapAdapter_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).
		WithFields(map[string]interface{}{"taskType": "assess-credit-risk"}).
		WithError(errors.New("boom"))

	log.Info("job completed", map[string]interface{}{"jobKey": int64(42), "verdict": "LOW_RISK"})

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "assess-credit-risk", ctx["taskType"])
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, int64(42), ctx["jobKey"])
	assert.Equal(t, "LOW_RISK", ctx["verdict"])
}

func TestZapAdapter_ErrorValuedField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	NewZapAdapter(zap.New(core)).Warn("store failed", map[string]interface{}{"cause": errors.New("timeout")})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "timeout", logs.All()[0].ContextMap()["cause"])
}
