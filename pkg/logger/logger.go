package logger

import (
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/Payphone-Digital/auth-service/config"
	"github.com/Payphone-Digital/auth-service/internal/constants"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var current atomic.Pointer[zap.Logger]

// InitLogger builds the process logger: JSON to stdout plus info/error files
// under cfg.Log.Path. DISABLE_LOGS installs a no-op logger.
func InitLogger(cfg *config.Config) error {
	if cfg.Log.Disabled {
		SetLogger(zap.NewNop())
		return nil
	}

	if err := os.MkdirAll(cfg.Log.Path, 0o755); err != nil {
		return err
	}

	level := levelFor(cfg)

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	infoFile, err := os.OpenFile(filepath.Join(cfg.Log.Path, "info.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	errorFile, err := os.OpenFile(filepath.Join(cfg.Log.Path, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		infoFile.Close()
		return err
	}

	encoder := zapcore.NewJSONEncoder(encoderConfig)

	infoCore := zapcore.NewCore(
		encoder,
		zapcore.NewMultiWriteSyncer(zapcore.AddSync(infoFile), zapcore.AddSync(os.Stdout)),
		level,
	)

	errorCore := zapcore.NewCore(
		encoder.Clone(),
		zapcore.AddSync(errorFile),
		zapcore.ErrorLevel,
	)

	SetLogger(zap.New(
		zapcore.NewTee(infoCore, errorCore),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("app", cfg.App.Name)),
	))

	return nil
}

func levelFor(cfg *config.Config) zapcore.Level {
	if cfg.Log.Level != "" {
		if level, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
			return level
		}
	}

	name := constants.LogLevelDebug
	if cfg.IsProduction() {
		name = constants.LogLevelInfo
	}
	level, _ := zapcore.ParseLevel(name)
	return level
}

// SetLogger replaces the process logger. Tests use it to install zap.NewNop
// or an observer.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	current.Store(l)
}

// GetLogger returns the structured logger, a no-op one before InitLogger.
func GetLogger() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// Sync flushes buffered entries (call this before application exits)
func Sync() {
	_ = GetLogger().Sync()
}

// LogRequest logs HTTP request information
func LogRequest(method, path string, statusCode int, durationMs int64, clientIP, userAgent, requestID string) {
	GetLogger().Info("HTTP Request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", statusCode),
		zap.Int64("duration_ms", durationMs),
		zap.String("client_ip", clientIP),
		zap.String("user_agent", userAgent),
		zap.String("request_id", requestID),
	)
}

// LogPanic logs a recovered panic with its stack
func LogPanic(recovered any) {
	GetLogger().Error("Panic recovered",
		zap.Any("panic", recovered),
		zap.Stack("stack"),
	)
}

// LogAuth logs authentication events
func LogAuth(identifier, action string, success bool, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("identifier", identifier),
		zap.String("action", action),
		zap.Bool("success", success),
	}, fields...)

	if success {
		GetLogger().Info("Authentication success", allFields...)
	} else {
		GetLogger().Warn("Authentication failure", allFields...)
	}
}
