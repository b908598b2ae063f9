// Package logging configures the process-wide zap logger used by the
// compiler and the command line tool.
package logging

import (
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kolkov/uexpr/internal/env"
)

// UnstructuredLogsEnv selects human-readable console output when true or unset.
const UnstructuredLogsEnv = "UNSTRUCTURED_LOGS"

// Debugw logs a message at debug level with additional key-value pairs.
func Debugw(msg string, keysAndValues ...any) {
	zap.S().Debugw(msg, keysAndValues...)
}

// Sugared returns the current global sugared logger.
func Sugared() *zap.SugaredLogger {
	return zap.S()
}

// DebugProvider reports whether debug logging is enabled.
type DebugProvider interface {
	IsDebug() bool
}

// StaticDebug is a DebugProvider with a fixed answer.
type StaticDebug bool

// IsDebug implements DebugProvider.
func (d StaticDebug) IsDebug() bool {
	return bool(d)
}

// InitializeWithOptions configures the global logger. Unless
// UNSTRUCTURED_LOGS is false, output is a plain console format on stderr;
// otherwise it is JSON on stdout.
func InitializeWithOptions(envReader env.Reader, debugProvider DebugProvider) {
	zap.ReplaceGlobals(zap.Must(Config(envReader, debugProvider).Build()))
}

// Config builds the zap configuration InitializeWithOptions installs.
func Config(envReader env.Reader, debugProvider DebugProvider) zap.Config {
	var config zap.Config
	if unstructuredLogs(envReader) {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.Kitchen)
		config.OutputPaths = []string{"stderr"}
		config.DisableStacktrace = true
		config.DisableCaller = true
	} else {
		config = zap.NewProductionConfig()
		config.OutputPaths = []string{"stdout"}
	}

	if debugProvider.IsDebug() {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return config
}

func unstructuredLogs(envReader env.Reader) bool {
	unstructured, err := strconv.ParseBool(envReader.Getenv(UnstructuredLogsEnv))
	if err != nil {
		// unset or unparsable
		return true
	}
	return unstructured
}
