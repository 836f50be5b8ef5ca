package oteladapters_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"
	"go.opentelemetry.io/otel/log/noop"

	"github.com/AntonStoeckl/fmodel-go/eventstore/oteladapters"
)

type emittedRecord struct {
	severity log.Severity
	body     string
	attrs    map[string]string
}

type recordingLogger struct {
	embedded.Logger
	records []emittedRecord
}

func (l *recordingLogger) Emit(_ context.Context, record log.Record) {
	attrs := make(map[string]string)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value.String()
		return true
	})

	l.records = append(l.records, emittedRecord{
		severity: record.Severity(),
		body:     record.Body().AsString(),
		attrs:    attrs,
	})
}

func (l *recordingLogger) Enabled(context.Context, log.EnabledParameters) bool {
	return true
}

func Test_OTelLogger_Severities(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "debug")
	logger.InfoContext(ctx, "info")
	logger.WarnContext(ctx, "warn")
	logger.ErrorContext(ctx, "error")

	// assert
	require.Len(t, recorder.records, 4)
	assert.Equal(t, log.SeverityDebug, recorder.records[0].severity)
	assert.Equal(t, log.SeverityInfo, recorder.records[1].severity)
	assert.Equal(t, log.SeverityWarn, recorder.records[2].severity)
	assert.Equal(t, log.SeverityError, recorder.records[3].severity)
	assert.Equal(t, "warn", recorder.records[2].body)
}

func Test_OTelLogger_Attributes(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	// act
	logger.InfoContext(context.Background(), "events appended",
		"event_count", 2,
		"projection_type", "NumberView",
		"error", errors.New("boom"),
		42, "ignored",
		"dangling",
	)

	// assert
	require.Len(t, recorder.records, 1)
	attrs := recorder.records[0].attrs
	assert.Len(t, attrs, 3)
	assert.Equal(t, "2", attrs["event_count"])
	assert.Equal(t, "NumberView", attrs["projection_type"])
	assert.Equal(t, "boom", attrs["error"])
}

func Test_SlogBridgeLogger(t *testing.T) {
	// arrange
	logger := oteladapters.NewSlogBridgeLogger("fmodel", noop.NewLoggerProvider())
	ctx := context.Background()

	// act + assert
	require.NotNil(t, logger.Slog())
	assert.NotPanics(t, func() {
		logger.DebugContext(ctx, "debug", "k", "v")
		logger.InfoContext(ctx, "info")
		logger.WarnContext(ctx, "warn")
		logger.ErrorContext(ctx, "error")
	})
}
