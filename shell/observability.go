package shell

import (
	"context"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
)

// The contextual logger wins when both are set.

func logDebug(ctx context.Context, logger eventstore.Logger, contextualLogger eventstore.ContextualLogger, msg string, args ...any) {
	switch {
	case contextualLogger != nil:
		contextualLogger.DebugContext(ctx, msg, args...)
	case logger != nil:
		logger.Debug(msg, args...)
	}
}

func logInfo(ctx context.Context, logger eventstore.Logger, contextualLogger eventstore.ContextualLogger, msg string, args ...any) {
	switch {
	case contextualLogger != nil:
		contextualLogger.InfoContext(ctx, msg, args...)
	case logger != nil:
		logger.Info(msg, args...)
	}
}

func logWarn(ctx context.Context, logger eventstore.Logger, contextualLogger eventstore.ContextualLogger, msg string, args ...any) {
	switch {
	case contextualLogger != nil:
		contextualLogger.WarnContext(ctx, msg, args...)
	case logger != nil:
		logger.Warn(msg, args...)
	}
}

func logError(ctx context.Context, logger eventstore.Logger, contextualLogger eventstore.ContextualLogger, msg string, args ...any) {
	switch {
	case contextualLogger != nil:
		contextualLogger.ErrorContext(ctx, msg, args...)
	case logger != nil:
		logger.Error(msg, args...)
	}
}
