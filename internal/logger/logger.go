// Package logger builds the zap loggers used across armory.
//
// Libraries never construct their own logger: they accept a
// *zap.SugaredLogger and fall back to OrNop when given nil.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	// JSON selects structured JSON output for machine consumption.
	JSON bool

	// Verbose lowers the level from Info to Debug.
	Verbose bool

	// Output receives log lines. Defaults to os.Stderr so command output
	// on stdout stays parseable.
	Output io.Writer
}

// New returns a SugaredLogger configured from opts.
func New(opts Options) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var encoder zapcore.Encoder
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), level)
	return zap.New(core).Sugar()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}
