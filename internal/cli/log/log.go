// Package log wraps zap with the configuration the covenant CLI needs:
// a colorized console encoder writing to stderr for interactive use,
// raised to error level when --quiet is set.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the logger the CLI constructs at startup.
type Options struct {
	Verbose bool // -v: enable debug-level logging
	Quiet   bool // --quiet: suppress everything but errors
	NoColor bool
}

// New builds a *zap.Logger for console output on stderr: info level by
// default, debug level with Verbose, and error level with Quiet (Quiet
// wins when both are set).
func New(opts Options) *zap.Logger {
	level := zapcore.InfoLevel
	switch {
	case opts.Quiet:
		level = zapcore.ErrorLevel
	case opts.Verbose:
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = "" // the CLI's own output carries timing where it matters
	if opts.NoColor {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(os.Stderr)),
		level,
	)

	return zap.New(core).Named("covenant")
}

// Nop returns a logger that discards everything, for library callers
// (such as tests) that don't want CLI-flavored console output.
func Nop() *zap.Logger {
	return zap.NewNop()
}
