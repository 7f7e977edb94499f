package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(LOG_LEVEL_WARN))
	assert.Equal(t, zerolog.Disabled, ParseLevel(LOG_LEVEL_DISABLED))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
}

func TestReadConfigFromEnvironment(t *testing.T) {
	t.Setenv("LIBSVM_LOGLEVEL", "ERROR")
	t.Setenv("LIBSVM_LOGFORMAT", "json")

	cfg := ReadConfig()
	assert.Equal(t, "ERROR", cfg.Level)
	assert.Equal(t, LOG_FORMAT_JSON, cfg.Format)
}

func TestJSONLoggerCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithConfig("solver", Config{Level: LOG_LEVEL_INFO, Format: LOG_FORMAT_JSON}, &buf)

	l.Info().Int("iter", 12).Msg("optimization finished")
	l.Debug().Msg("hidden")

	out := buf.String()
	assert.Contains(t, out, `"component":"solver"`)
	assert.Contains(t, out, `"iter":12`)
	assert.NotContains(t, out, "hidden")
}

func TestSetupLoggingFieldNames(t *testing.T) {
	levelField, timeField := zerolog.LevelFieldName, zerolog.TimestampFieldName
	t.Cleanup(func() {
		zerolog.LevelFieldName, zerolog.TimestampFieldName = levelField, timeField
	})

	SetupLogging()

	var buf bytes.Buffer
	l := NewLoggerWithConfig("predict", Config{Level: LOG_LEVEL_INFO, Format: LOG_FORMAT_JSON}, &buf)
	l.Warn().Msg("model supports probability estimates")

	out := buf.String()
	assert.Contains(t, out, `"level_name":"warn"`)
	assert.Contains(t, out, `"timestamp":`)
}
