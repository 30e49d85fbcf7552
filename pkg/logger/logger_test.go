package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/Payphone-Digital/auth-service/config"
	ctxutil "github.com/Payphone-Digital/auth-service/pkg/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetLoggerBeforeInit(t *testing.T) {
	assert.NotNil(t, GetLogger())
}

func TestContextLogBuilderExtractsContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	ctx := ctxutil.WithRequestID(context.Background(), "req-42")
	ctx = ctxutil.WithUserID(ctx, 7)
	ctx = ctxutil.WithFunction(ctx, "service", "Login")

	WarnWithContext(ctx, "Login failed").
		String("identifier", "daniel").
		Err(errors.New("boom")).
		Log()

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()

	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "Login failed", entry.Message)
	assert.Equal(t, "daniel", fields["identifier"])
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, uint64(7), fields["user_id"])
	assert.Equal(t, "service", fields["module"])
	assert.Equal(t, "Login", fields["function"])
	assert.Equal(t, "boom", fields["error"])
}

func TestContextLogBuilderRespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	DebugWithContext(context.Background(), "hidden").String("k", "v").Log()
	InfoWithContext(context.Background(), "shown").Log()

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		level string
		want  zapcore.Level
	}{
		{name: "development default", env: "development", want: zapcore.DebugLevel},
		{name: "production default", env: "production", want: zapcore.InfoLevel},
		{name: "explicit level", env: "production", level: "warn", want: zapcore.WarnLevel},
		{name: "unknown level falls back", env: "development", level: "loud", want: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				App: config.AppConfig{Environment: tt.env},
				Log: config.LogConfig{Level: tt.level},
			}
			assert.Equal(t, tt.want, levelFor(cfg))
		})
	}
}
