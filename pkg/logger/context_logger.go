package logger

import (
	"context"
	"time"

	ctxutil "github.com/Payphone-Digital/auth-service/pkg/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ContextLogBuilder collects fields for one entry and pulls request metadata
// (request id, client, user, module, function) out of the context on Log.
type ContextLogBuilder struct {
	logger  *zap.Logger
	ctx     context.Context
	level   zapcore.Level
	message string
	fields  []zap.Field
	enabled bool
}

func newBuilder(ctx context.Context, level zapcore.Level, message string) *ContextLogBuilder {
	l := GetLogger()
	return &ContextLogBuilder{
		logger:  l,
		ctx:     ctx,
		level:   level,
		message: message,
		fields:  make([]zap.Field, 0, 10),
		enabled: l.Core().Enabled(level),
	}
}

func InfoWithContext(ctx context.Context, message string) *ContextLogBuilder {
	return newBuilder(ctx, zapcore.InfoLevel, message)
}

func WarnWithContext(ctx context.Context, message string) *ContextLogBuilder {
	return newBuilder(ctx, zapcore.WarnLevel, message)
}

func ErrorWithContext(ctx context.Context, message string) *ContextLogBuilder {
	return newBuilder(ctx, zapcore.ErrorLevel, message)
}

func DebugWithContext(ctx context.Context, message string) *ContextLogBuilder {
	return newBuilder(ctx, zapcore.DebugLevel, message)
}

func (b *ContextLogBuilder) String(key, value string) *ContextLogBuilder {
	if b.enabled {
		b.fields = append(b.fields, zap.String(key, value))
	}
	return b
}

func (b *ContextLogBuilder) Int(key string, value int) *ContextLogBuilder {
	if b.enabled {
		b.fields = append(b.fields, zap.Int(key, value))
	}
	return b
}

func (b *ContextLogBuilder) Uint(key string, value uint) *ContextLogBuilder {
	if b.enabled {
		b.fields = append(b.fields, zap.Uint(key, value))
	}
	return b
}

func (b *ContextLogBuilder) Bool(key string, value bool) *ContextLogBuilder {
	if b.enabled {
		b.fields = append(b.fields, zap.Bool(key, value))
	}
	return b
}

func (b *ContextLogBuilder) Duration(value time.Duration) *ContextLogBuilder {
	if b.enabled {
		b.fields = append(b.fields, zap.Duration("duration", value))
	}
	return b
}

func (b *ContextLogBuilder) Err(err error) *ContextLogBuilder {
	if b.enabled && err != nil {
		b.fields = append(b.fields, zap.Error(err))
	}
	return b
}

func (b *ContextLogBuilder) Any(key string, value any) *ContextLogBuilder {
	if b.enabled {
		b.fields = append(b.fields, zap.Any(key, value))
	}
	return b
}

// Log writes the entry.
func (b *ContextLogBuilder) Log() {
	if !b.enabled {
		return
	}
	b.fields = append(b.fields, contextFields(b.ctx)...)
	if ce := b.logger.Check(b.level, b.message); ce != nil {
		ce.Write(b.fields...)
	}
}

func contextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}

	fields := make([]zap.Field, 0, 6)
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if clientIP := ctxutil.GetClientIP(ctx); clientIP != "" {
		fields = append(fields, zap.String("client_ip", clientIP))
	}
	if userID, ok := ctxutil.GetUserID(ctx); ok {
		fields = append(fields, zap.Uint("user_id", userID))
	}
	if module := ctxutil.GetModule(ctx); module != "" {
		fields = append(fields, zap.String("module", module))
	}
	if function := ctxutil.GetFunction(ctx); function != "" {
		fields = append(fields, zap.String("function", function))
	}
	if elapsed := ctxutil.GetDuration(ctx); elapsed > 0 {
		fields = append(fields, zap.Duration("elapsed", elapsed))
	}
	return fields
}
