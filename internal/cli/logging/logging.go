// Package logging builds the zap logger used by the tref commands.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/tref/internal/cli/config"
)

// New returns a logger writing to w at the configured level and format.
// Verbose lowers the level to debug regardless of the configuration.
func New(cfg config.LogConfig, verbose bool, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	if w == nil {
		w = os.Stderr
	}

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "json":
		enc := zap.NewProductionEncoderConfig()
		enc.TimeKey = "timestamp"
		enc.EncodeTime = zapcore.RFC3339TimeEncoder
		encoder = zapcore.NewJSONEncoder(enc)
	default:
		enc := zap.NewDevelopmentEncoderConfig()
		enc.TimeKey = ""
		enc.CallerKey = ""
		encoder = zapcore.NewConsoleEncoder(enc)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core), nil
}

// MustNew is New with a no-op fallback, for callers that have nowhere to
// report a broken logging configuration.
func MustNew(cfg config.LogConfig, verbose bool, w io.Writer) *zap.Logger {
	logger, err := New(cfg, verbose, w)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
