package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLevel = "info"

// New builds the service logger emitting structured JSON on stdout. Unknown
// levels fall back to info.
func New(level string) (*zap.Logger, error) {
	atom := zap.NewAtomicLevel()
	if err := atom.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		_ = atom.UnmarshalText([]byte(defaultLevel))
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "severity",
		NameKey:    "logger",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(l.String()))
		},
		EncodeDuration: zapcore.StringDurationEncoder,
		CallerKey:      "caller",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		StacktraceKey:  "stacktrace",
	}

	cfg := zap.Config{
		Level:             atom,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
		InitialFields:     map[string]any{"service": "cart-service"},
	}
	return cfg.Build()
}

// MigrateLogger adapts zap to the logger interface of golang-migrate.
type MigrateLogger struct {
	logger  *zap.SugaredLogger
	verbose bool
}

func NewMigrateLogger(logger *zap.Logger) *MigrateLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MigrateLogger{
		logger:  logger.Named("migrate").Sugar(),
		verbose: logger.Core().Enabled(zapcore.DebugLevel),
	}
}

func (l *MigrateLogger) Printf(format string, v ...any) {
	l.logger.Infof(strings.TrimRight(format, "\n"), v...)
}

func (l *MigrateLogger) Verbose() bool {
	return l.verbose
}
