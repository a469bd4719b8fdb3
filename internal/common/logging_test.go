package common

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerReturnsNonNil(t *testing.T) {
	logger := NewLogger("info")
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}
}

func TestLoggerFluentAPI(t *testing.T) {
	// Must not panic through the full fluent chain.
	logger := NewSilentLogger()
	logger.Info().Str("key", "value").Msg("test message")
	logger.Warn().Int("count", 42).Msg("warning")
	logger.Debug().Bool("ok", true).Msg("debug")
}

func TestNewLoggerWithOutputWritesToProvidedWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("info", &buf)
	logger.Info().Str("entity", "contract").Msg("record created")

	output := buf.String()
	if output == "" {
		t.Fatal("expected output to provided writer, got empty string")
	}
	if !strings.Contains(output, "record created") {
		t.Errorf("output missing message: %q", output)
	}
	if !strings.Contains(output, "entity=contract") {
		t.Errorf("output missing field: %q", output)
	}
}

func TestNewSilentLoggerDiscardsOutput(t *testing.T) {
	logger := NewSilentLogger()
	if logger == nil {
		t.Fatal("NewSilentLogger returned nil")
	}
	logger.Info().Str("key", "value").Msg("should be discarded")
	logger.Error().Msg("should be discarded")
}

func TestWithCorrelationIdReturnsLogger(t *testing.T) {
	logger := NewSilentLogger().WithCorrelationId("abc-123")
	if logger == nil {
		t.Fatal("WithCorrelationId returned nil")
	}
	logger.Info().Msg("correlated message")
}
