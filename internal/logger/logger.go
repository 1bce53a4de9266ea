package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
)

// Logger wraps a configured zerolog.Logger with the role name (CP/CS/LC)
// attached to every entry, so multiplexed logs from several roles running
// in one process stay distinguishable.
type Logger struct {
	logger zerolog.Logger
	config *Config
}

// Config controls sink, format and level for a Logger.
type Config struct {
	Level      string `json:"level"`      // debug, info, warn, error
	Format     string `json:"format"`     // console, json
	Output     string `json:"output"`     // stdout, stderr, or a file path
	TimeFormat string `json:"timeFormat"`
	Caller     bool   `json:"caller"`
	Async      bool   `json:"async"` // wrap output in a diode ring buffer
	Role       string `json:"role"`  // "chargepoint", "centralsystem", "localcontroller"
}

// DefaultConfig returns sane defaults for interactive/dev use.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
		Caller:     true,
		Async:      false,
	}
}

// New builds a Logger from config and installs it as the zerolog default.
func New(config *Config) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	zerolog.TimeFieldFormat = config.TimeFormat

	level, err := zerolog.ParseLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", config.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer
	switch strings.ToLower(config.Output) {
	case "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		if err := ensureDir(filepath.Dir(config.Output)); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", config.Output, err)
		}
		output = file
	}

	// The RPC hot path can emit one log line per frame; diode drops
	// rather than blocks the writer goroutine when the sink falls behind.
	if config.Async {
		output = diode.NewWriter(output, 1000, 10*time.Millisecond, func(missed int) {
			fmt.Fprintf(os.Stderr, "logger dropped %d messages\n", missed)
		})
	}

	var logger zerolog.Logger
	switch strings.ToLower(config.Format) {
	case "console":
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: config.TimeFormat,
		})
	case "json":
		logger = zerolog.New(output)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", config.Format)
	}

	ctx := logger.With().Timestamp()
	if config.Role != "" {
		ctx = ctx.Str("role", config.Role)
	}
	logger = ctx.Logger()

	if config.Caller {
		logger = logger.With().Caller().Logger()
	}

	logger = logger.Level(level)

	log.Logger = logger

	globalLogger = &Logger{
		logger: logger,
		config: config,
	}

	return &Logger{
		logger: logger,
		config: config,
	}, nil
}

// WithComponent returns a child Logger tagging every entry with the given
// component name (e.g. "rpc", "dispatch", "transaction").
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		logger: l.logger.With().Str("component", name).Logger(),
		config: l.config,
	}
}

// GetLogger exposes the underlying zerolog.Logger for callers that need
// fields this wrapper doesn't expose a helper for.
func (l *Logger) GetLogger() zerolog.Logger {
	return l.logger
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

// Info logs at info level.
func (l *Logger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logger.Info().Msgf(format, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

// Error logs at error level.
func (l *Logger) Error(msg string) {
	l.logger.Error().Msg(msg)
}

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

// ErrorWithErr logs an error value alongside a message.
func (l *Logger) ErrorWithErr(err error, msg string) {
	l.logger.Error().Err(err).Msg(msg)
}

// Fatal logs at fatal level and exits the process.
func (l *Logger) Fatal(msg string) {
	l.logger.Fatal().Msg(msg)
}

// Fatalf logs a formatted fatal message and exits the process.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.logger.Fatal().Msgf(format, args...)
}

// WithField starts an info-level event with one extra field.
func (l *Logger) WithField(key string, value interface{}) *zerolog.Event {
	return l.logger.Info().Interface(key, value)
}

// WithFields starts an info-level event with several extra fields.
func (l *Logger) WithFields(fields map[string]interface{}) *zerolog.Event {
	event := l.logger.Info()
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	return event
}

// SetLevel changes the active level at runtime.
func (l *Logger) SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %s: %w", level, err)
	}

	l.logger = l.logger.Level(lvl)
	l.config.Level = level
	return nil
}

// GetLevel returns the active level.
func (l *Logger) GetLevel() string {
	return l.config.Level
}

// Close exists for interface completeness; zerolog needs no explicit close.
func (l *Logger) Close() error {
	return nil
}

// ensureDir creates dir (and parents) if it doesn't already exist.
func ensureDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

var globalLogger *Logger

// InitGlobalLogger builds and installs the package-level logger.
func InitGlobalLogger(config *Config) error {
	logger, err := New(config)
	if err != nil {
		return err
	}
	globalLogger = logger
	return nil
}

// Debug logs at debug level on the global logger.
func Debug(msg string) {
	if globalLogger != nil {
		globalLogger.Debug(msg)
	}
}

// Debugf logs a formatted debug message on the global logger.
func Debugf(format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.Debugf(format, args...)
	}
}

// Info logs at info level on the global logger.
func Info(msg string) {
	if globalLogger != nil {
		globalLogger.Info(msg)
	}
}

// Infof logs a formatted info message on the global logger.
func Infof(format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.Infof(format, args...)
	}
}

// Warn logs at warn level on the global logger.
func Warn(msg string) {
	if globalLogger != nil {
		globalLogger.Warn(msg)
	}
}

// Warnf logs a formatted warn message on the global logger.
func Warnf(format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.Warnf(format, args...)
	}
}

// Error logs at error level on the global logger.
func Error(msg string) {
	if globalLogger != nil {
		globalLogger.Error(msg)
	}
}

// Errorf logs a formatted error message on the global logger.
func Errorf(format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.Errorf(format, args...)
	}
}

// ErrorWithErr logs an error value on the global logger.
func ErrorWithErr(err error, msg string) {
	if globalLogger != nil {
		globalLogger.ErrorWithErr(err, msg)
	}
}
