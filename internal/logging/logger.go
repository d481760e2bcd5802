// Package logging provides structured logging for the CLI and library callers.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mediastore/mediastore-cli/internal/constants"
)

// Logger wraps zerolog with an optional rotating log file.
type Logger struct {
	zlog   zerolog.Logger
	output io.Writer // current console writer
	file   *lumberjack.Logger
}

// Options configures NewLogger.
type Options struct {
	// Console receives human-readable output. Nil means stderr; stdout is
	// left for command output such as JSON listings.
	Console io.Writer

	// File, when set, also writes JSON lines to a rotating log file.
	File string
}

// NewLogger creates a logger writing to the console and, optionally, a file.
func NewLogger(opts Options) *Logger {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	l := &Logger{output: console}
	if opts.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    constants.LogFileMaxSizeMB,
			MaxBackups: constants.LogFileMaxBackups,
			MaxAge:     constants.LogFileMaxAgeDays,
			Compress:   true,
		}
	}
	l.rebuild()
	return l
}

// NewDefaultCLILogger creates a console-only logger on stderr.
func NewDefaultCLILogger() *Logger {
	return NewLogger(Options{})
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{zlog: zerolog.Nop(), output: io.Discard}
}

func (l *Logger) rebuild() {
	var w io.Writer = zerolog.ConsoleWriter{
		Out:        l.output,
		TimeFormat: "15:04:05",
	}
	if l.file != nil {
		w = zerolog.MultiLevelWriter(w, l.file)
	}
	l.zlog = zerolog.New(w).With().Timestamp().Logger()
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// With creates a child logger with additional context.
func (l *Logger) With() zerolog.Context {
	return l.zlog.With()
}

// SetOutput changes the console writer.
// Progress bars use this to print log lines above the bars.
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
	l.rebuild()
}

// Output returns the current console writer.
func (l *Logger) Output() io.Writer {
	return l.output
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Debugf logs a debug message with printf-style formatting.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zlog.Debug().Msgf(format, args...)
}

// Infof logs an info message with printf-style formatting.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.zlog.Info().Msgf(format, args...)
}

// Errorf logs an error message with printf-style formatting.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zlog.Error().Msgf(format, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zlog.Warn().Msgf(format, args...)
}

// ParseLevel maps a config level name onto a zerolog level, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Packages without an injected Logger (proxy, transport) use the global one
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	})
}
