package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts *zap.Logger to Logger. Key/value args are converted to
// zap.Any fields; a dangling key is logged under "!BADKEY" like slog does.
type ZapLogger struct {
	l *zap.Logger
}

func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{l: l}
}

// NewZapProduction builds a stdout zap logger with the production or the
// development preset.
func NewZapProduction(development bool) (*zap.Logger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func (z *ZapLogger) log(ctx context.Context, level zapcore.Level, msg string, args []any) {
	if ce := z.l.Check(level, msg); ce != nil {
		ce.Write(fields(contextArgs(ctx, args))...)
	}
}

func (z *ZapLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.log(ctx, zapcore.DebugLevel, msg, args)
}

func (z *ZapLogger) Info(ctx context.Context, msg string, args ...any) {
	z.log(ctx, zapcore.InfoLevel, msg, args)
}

func (z *ZapLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.log(ctx, zapcore.WarnLevel, msg, args)
}

func (z *ZapLogger) Error(ctx context.Context, msg string, args ...any) {
	z.log(ctx, zapcore.ErrorLevel, msg, args)
}

func (z *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{l: z.l.With(fields(args)...)}
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.l.Sync()
}

func fields(args []any) []zap.Field {
	out := make([]zap.Field, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			out = append(out, zap.Any("!BADKEY", args[i]))
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if err, isErr := args[i+1].(error); isErr {
			out = append(out, zap.NamedError(key, err))
			continue
		}
		out = append(out, zap.Any(key, args[i+1]))
	}
	return out
}
