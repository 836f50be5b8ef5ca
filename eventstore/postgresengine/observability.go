package postgresengine

import (
	"context"
	"time"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
)

const (
	logMsgSQLExecuted         = "executed sql"
	logMsgQueryCompleted      = "events queried"
	logMsgEventsAppended      = "events appended"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgOperationFailed     = "eventstore operation failed"
	logMsgCloseRowsFailed     = "closing rows failed"
	logMsgSnapshotSaved       = "snapshot saved"
	logMsgSnapshotDeleted     = "snapshot deleted"

	logAttrOperation        = "operation"
	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrEventCount       = "event_count"
	logAttrDurationMS       = "duration_ms"
	logAttrExpectedSequence = "expected_sequence"
	logAttrRowsAffected     = "rows_affected"
	logAttrConsistency      = "consistency"
	logAttrProjectionType   = "projection_type"

	operationQuery          = "query"
	operationAppend         = "append"
	operationSaveSnapshot   = "save_snapshot"
	operationLoadSnapshot   = "load_snapshot"
	operationDeleteSnapshot = "delete_snapshot"
)

func (es EventStore) logDebug(ctx context.Context, msg string, args ...any) {
	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.DebugContext(ctx, msg, args...)
	case es.logger != nil:
		es.logger.Debug(msg, args...)
	}
}

func (es EventStore) logInfo(ctx context.Context, msg string, args ...any) {
	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.InfoContext(ctx, msg, args...)
	case es.logger != nil:
		es.logger.Info(msg, args...)
	}
}

func (es EventStore) logWarn(ctx context.Context, msg string, args ...any) {
	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.WarnContext(ctx, msg, args...)
	case es.logger != nil:
		es.logger.Warn(msg, args...)
	}
}

func (es EventStore) logError(ctx context.Context, operation string, err error, args ...any) {
	args = append([]any{logAttrOperation, operation, logAttrError, err.Error()}, args...)

	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.ErrorContext(ctx, logMsgOperationFailed, args...)
	case es.logger != nil:
		es.logger.Error(logMsgOperationFailed, args...)
	}
}

func (es EventStore) logSQL(ctx context.Context, operation string, sqlQuery string, duration time.Duration) {
	es.logDebug(ctx, logMsgSQLExecuted,
		logAttrOperation, operation,
		logAttrDurationMS, toMilliseconds(duration),
		logAttrQuery, sqlQuery,
	)
}

func (es EventStore) recordDuration(metric string, operation string, status string, duration time.Duration) {
	if es.metricsCollector == nil {
		return
	}

	es.metricsCollector.RecordDuration(metric, duration, map[string]string{
		eventstore.LabelOperation: operation,
		eventstore.LabelStatus:    status,
	})
}

func (es EventStore) recordCount(metric string, operation string, count int) {
	if es.metricsCollector == nil {
		return
	}

	es.metricsCollector.RecordValue(metric, float64(count), map[string]string{
		eventstore.LabelOperation: operation,
	})
}

func (es EventStore) incrementCounter(metric string, operation string, status string) {
	if es.metricsCollector == nil {
		return
	}

	es.metricsCollector.IncrementCounter(metric, map[string]string{
		eventstore.LabelOperation: operation,
		eventstore.LabelStatus:    status,
	})
}

func toMilliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
