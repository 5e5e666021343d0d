package shared

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the logging contract every component takes a dependency on.
// Two implementations exist: ConsoleLogger for CLI-facing human output
// (colored, terse) and ZeroLogger for the unattended daemon (structured,
// timestamped). Both satisfy this interface so services stay logger-agnostic.
type Logger interface {
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
	Success(format string, args ...interface{})
	SetDebugMode(enabled bool)
}

// ConsoleLogger prints colored, human-facing lines for CLI commands.
type ConsoleLogger struct {
	debugEnabled bool
}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{}
}

func (cl *ConsoleLogger) Info(format string, args ...interface{}) {
	ColorInfo.Printf(format+"\n", args...)
}

func (cl *ConsoleLogger) Warning(format string, args ...interface{}) {
	ColorWarning.Printf(format+"\n", args...)
}

func (cl *ConsoleLogger) Error(format string, args ...interface{}) {
	ColorError.Printf(format+"\n", args...)
}

func (cl *ConsoleLogger) Debug(format string, args ...interface{}) {
	if cl.debugEnabled {
		ColorInfo.Printf("[debug] "+format+"\n", args...)
	}
}

func (cl *ConsoleLogger) Success(format string, args ...interface{}) {
	ColorSuccess.Printf(format+"\n", args...)
}

func (cl *ConsoleLogger) SetDebugMode(enabled bool) {
	cl.debugEnabled = enabled
}

// ZeroLogger backs the daemon's logging with rs/zerolog: leveled,
// timestamped, safe for concurrent use by scanner workers, the player's
// output thread, and HTTP handlers all at once.
type ZeroLogger struct {
	log zerolog.Logger
}

func NewZeroLogger(debug bool) *ZeroLogger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	return &ZeroLogger{log: l}
}

func (zl *ZeroLogger) Info(format string, args ...interface{}) {
	zl.log.Info().Msgf(format, args...)
}

func (zl *ZeroLogger) Warning(format string, args ...interface{}) {
	zl.log.Warn().Msgf(format, args...)
}

func (zl *ZeroLogger) Error(format string, args ...interface{}) {
	zl.log.Error().Msgf(format, args...)
}

func (zl *ZeroLogger) Debug(format string, args ...interface{}) {
	zl.log.Debug().Msgf(format, args...)
}

func (zl *ZeroLogger) Success(format string, args ...interface{}) {
	zl.log.Info().Msgf(format, args...)
}

func (zl *ZeroLogger) SetDebugMode(enabled bool) {
	level := zerolog.InfoLevel
	if enabled {
		level = zerolog.DebugLevel
	}
	zl.log = zl.log.Level(level)
}
