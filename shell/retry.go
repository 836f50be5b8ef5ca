package shell

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3

	MetricRetries           = "shell_command_retries_total"
	MetricRetryDelay        = "shell_command_retry_delay_seconds"
	MetricMaxRetriesReached = "shell_command_max_retries_reached_total"

	LabelCommandType   = "command_type"
	LabelAttemptNumber = "attempt_number"
	LabelErrorType     = "error_type"

	ErrorTypeNone                    = "none"
	ErrorTypeConcurrencyConflict     = "concurrency_conflict"
	ErrorTypeContextCanceled         = "context_canceled"
	ErrorTypeContextDeadlineExceeded = "context_deadline_exceeded"
	ErrorTypeContractViolation       = "contract_violation"
	ErrorTypeOther                   = "other"
)

var (
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")
	ErrEmptyCommandType    = errors.New("command type must not be empty")
	ErrInvalidMaxAttempts  = errors.New("max attempts must be positive")
	ErrNegativeBaseDelay   = errors.New("base delay must not be negative")
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc is one attempt of an operation.
type RetryableFunc func(ctx context.Context) error

// RetryMetrics describes how an operation got to its result.
type RetryMetrics struct {
	Attempts         int
	TotalDelay       time.Duration
	LastErrorType    string
	RetriesExhausted bool
}

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector eventstore.MetricsCollector
	commandType      string
}

// RetryOption configures RetryWithExponentialBackoff.
type RetryOption func(*retryConfig) error

// RetryWithExponentialBackoff runs fn until it succeeds, fails with an error other than
// eventstore.ErrConcurrencyConflict, or maxAttempts are used up.
//
// Delays before the retries are baseDelay * 2^(retry-1) plus up to jitterFactor of that.
// With the defaults: 10 ms, 20 ms, 40 ms, 80 ms, 160 ms.
func RetryWithExponentialBackoff(ctx context.Context, fn RetryableFunc, options ...RetryOption) (RetryMetrics, error) {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return RetryMetrics{}, err
		}
	}

	metrics := RetryMetrics{LastErrorType: ErrorTypeNone}

	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.baseDelay * time.Duration(1<<(attempt-1))
			backoff := delay + time.Duration(rand.Float64()*float64(delay)*config.jitterFactor) //nolint:gosec // jitter only

			config.recordDuration(MetricRetryDelay, backoff, map[string]string{
				LabelCommandType:   config.commandType,
				LabelAttemptNumber: strconv.Itoa(attempt),
			})

			select {
			case <-time.After(backoff):
				metrics.TotalDelay += backoff
			case <-ctx.Done():
				metrics.LastErrorType = errorType(ctx.Err())
				return metrics, ctx.Err()
			}
		}

		metrics.Attempts++

		lastErr = fn(ctx)
		metrics.LastErrorType = errorType(lastErr)

		if lastErr == nil {
			return metrics, nil
		}

		if !isRetryable(lastErr) {
			return metrics, lastErr
		}

		if attempt < config.maxAttempts-1 {
			config.incrementCounter(MetricRetries, map[string]string{
				LabelCommandType:   config.commandType,
				LabelAttemptNumber: strconv.Itoa(attempt + 1),
				LabelErrorType:     metrics.LastErrorType,
			})
		}
	}

	metrics.RetriesExhausted = true
	config.incrementCounter(MetricMaxRetriesReached, map[string]string{
		LabelCommandType: config.commandType,
		LabelErrorType:   metrics.LastErrorType,
	})

	return metrics, lastErr
}

func (c *retryConfig) recordDuration(metric string, duration time.Duration, labels map[string]string) {
	if c.metricsCollector != nil {
		c.metricsCollector.RecordDuration(metric, duration, labels)
	}
}

func (c *retryConfig) incrementCounter(metric string, labels map[string]string) {
	if c.metricsCollector != nil {
		c.metricsCollector.IncrementCounter(metric, labels)
	}
}

// isRetryable: only concurrency conflicts. Timeouts fail fast, retrying them under load
// makes things worse.
func isRetryable(err error) bool {
	return errors.Is(err, eventstore.ErrConcurrencyConflict)
}

func errorType(err error) string {
	switch {
	case err == nil:
		return ErrorTypeNone
	case errors.Is(err, eventstore.ErrConcurrencyConflict):
		return ErrorTypeConcurrencyConflict
	case errors.Is(err, ErrContractViolation):
		return ErrorTypeContractViolation
	case errors.Is(err, context.Canceled):
		return ErrorTypeContextCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeContextDeadlineExceeded
	default:
		return ErrorTypeOther
	}
}

// WithMaxAttempts counts the first try, so 1 disables retrying.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the delay before the first retry; each further retry doubles it.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the random extra delay as a fraction of the backoff, 0.0 to 1.0.
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithRetryMetrics records retries, delays and exhaustion, labeled with commandType.
func WithRetryMetrics(collector eventstore.MetricsCollector, commandType string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if commandType == "" {
			return ErrEmptyCommandType
		}

		config.metricsCollector = collector
		config.commandType = commandType

		return nil
	}
}
