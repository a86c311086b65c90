package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_Log(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core))

	l.Log("level", 0, "msg", "dial failed", "addr", "127.0.0.1:80")
	l.Log("level", 1, "action", "done", "bytes", 30)
	l.Log("level", 3, "action", "chunk")
	l.Log("action", "start", "dangling")

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "dial failed", entries[0].Message)
	assert.Equal(t, "127.0.0.1:80", entries[0].ContextMap()["addr"])

	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "done", entries[1].ContextMap()["action"])
	assert.EqualValues(t, 30, entries[1].ContextMap()["bytes"])

	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)

	assert.Equal(t, zapcore.InfoLevel, entries[3].Level)
	assert.Equal(t, "(MISSING)", entries[3].ContextMap()["dangling"])
}

func TestNewLogger_None(t *testing.T) {
	t.Parallel()

	l, err := NewLogger("none", LevelTrace)
	require.NoError(t, err)
	assert.Equal(t, NewNopLogger(), l)
}
