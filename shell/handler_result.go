package shell

import "time"

// HandlerResult is the outcome of handling one command.
type HandlerResult[E any] struct {
	// Idempotent is true when the Decider decided no events, so nothing was appended.
	Idempotent bool

	// Events are the decided events as they were appended.
	Events []E

	// SequenceNumber is the highest sequence number of the stream the command was decided on,
	// before the decided events were appended.
	SequenceNumber uint

	RetryAttempts    int
	TotalRetryDelay  time.Duration
	LastErrorType    string
	RetriesExhausted bool
}

func newHandlerResult[E any](events []E, sequenceNumber uint, retryMetrics RetryMetrics) HandlerResult[E] {
	return HandlerResult[E]{
		Idempotent:       len(events) == 0,
		Events:           events,
		SequenceNumber:   sequenceNumber,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}

func newErrorResult[E any](retryMetrics RetryMetrics) HandlerResult[E] {
	return HandlerResult[E]{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
