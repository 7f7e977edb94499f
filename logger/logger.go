package logger

import (
	"io"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

const (
	LOG_LEVEL_DEBUG    = "DEBUG"
	LOG_LEVEL_INFO     = "INFO"
	LOG_LEVEL_WARN     = "WARN"
	LOG_LEVEL_ERROR    = "ERROR"
	LOG_LEVEL_FATAL    = "FATAL"
	LOG_LEVEL_PANIC    = "PANIC"
	LOG_LEVEL_DISABLED = "DISABLED"

	LOG_FORMAT_JSON    = "json"
	LOG_FORMAT_CONSOLE = "console"
)

// Config is read from the environment
type Config struct {
	Level  string `envconfig:"LIBSVM_LOGLEVEL" default:"INFO"`
	Format string `envconfig:"LIBSVM_LOGFORMAT" default:"console"`
}

// SetupLogging sets the global zerolog field names used by every logger.
// Call it once at program start, before anything is logged.
func SetupLogging() {
	zerolog.LevelFieldName = "level_name"
	zerolog.TimestampFieldName = "timestamp"
}

// ReadConfig reads the logging environment, falling back to defaults on error
func ReadConfig() Config {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{Level: LOG_LEVEL_INFO, Format: LOG_FORMAT_CONSOLE}
	}
	return cfg
}

// ParseLevel maps a LIBSVM_LOGLEVEL value to a zerolog level
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case LOG_LEVEL_DEBUG:
		return zerolog.DebugLevel
	case LOG_LEVEL_WARN:
		return zerolog.WarnLevel
	case LOG_LEVEL_ERROR:
		return zerolog.ErrorLevel
	case LOG_LEVEL_FATAL:
		return zerolog.FatalLevel
	case LOG_LEVEL_PANIC:
		return zerolog.PanicLevel
	case LOG_LEVEL_DISABLED:
		return zerolog.Disabled
	}
	return zerolog.InfoLevel
}

func NewLogger(component string) zerolog.Logger {
	return NewLoggerWithConfig(component, ReadConfig(), os.Stderr)
}

func NewLoggerWithConfig(component string, cfg Config, out io.Writer) zerolog.Logger {
	if cfg.Format != LOG_FORMAT_JSON {
		out = zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(out).
		With().
		Str("component", component).
		Timestamp().
		Logger().
		Level(ParseLevel(cfg.Level))

	return logger
}
