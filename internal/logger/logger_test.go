package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return FromZap(zap.New(core)), logs
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"development", "production", ""} {
		l, err := New(mode, "")
		require.NoError(t, err, mode)
		assert.NotNil(t, l.SugaredLogger)
	}

	_, err := New("development", "loud")
	assert.Error(t, err)
}

func TestRedaction(t *testing.T) {
	l, logs := observed()

	l.Info("saved section", "cv_id", "abc", "email", "jane@example.org", "client_ip", "10.0.0.1")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "abc", fields["cv_id"])
	assert.Equal(t, "[REDACTED]", fields["email"])
	assert.Contains(t, fields["client_ip"], "hash:")
}

func TestRedactionDisabled(t *testing.T) {
	l, logs := observed()
	l.WithRedaction(false).Warn("debugging", "phone", "+49 30 1234")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "+49 30 1234", logs.All()[0].ContextMap()["phone"])
}

func TestWith(t *testing.T) {
	l, logs := observed()
	l.With("section", "education", "password", "hunter2").Error("save failed")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "education", fields["section"])
	assert.Equal(t, "[REDACTED]", fields["password"])
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Debug("ignored", "k", "v")
	l.Sync()
}
