package spies

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// LogHandlerSpy is a slog.Handler that keeps every record. Use Logger to get a *slog.Logger,
// which satisfies both eventstore.Logger and eventstore.ContextualLogger.
type LogHandlerSpy struct {
	mu      sync.Mutex
	records []slog.Record
}

func NewLogHandlerSpy() *LogHandlerSpy {
	return &LogHandlerSpy{}
}

func (s *LogHandlerSpy) Logger() *slog.Logger {
	return slog.New(s)
}

func (s *LogHandlerSpy) Handle(_ context.Context, record slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record.Clone())

	return nil
}

func (s *LogHandlerSpy) Enabled(context.Context, slog.Level) bool {
	return true
}

// WithAttrs drops the attributes; records only carry their own.
func (s *LogHandlerSpy) WithAttrs([]slog.Attr) slog.Handler {
	return s
}

func (s *LogHandlerSpy) WithGroup(string) slog.Handler {
	return s
}

func (s *LogHandlerSpy) Records() []slog.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.records)
}

func (s *LogHandlerSpy) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]string, 0, len(s.records))
	for _, record := range s.records {
		messages = append(messages, record.Message)
	}

	return messages
}

func (s *LogHandlerSpy) HasMessage(msg string) bool {
	return slices.Contains(s.Messages(), msg)
}

// Attr returns the value of key on the first record with msg.
func (s *LogHandlerSpy) Attr(msg string, key string) (slog.Value, bool) {
	for _, record := range s.Records() {
		if record.Message != msg {
			continue
		}

		var value slog.Value
		found := false

		record.Attrs(func(attr slog.Attr) bool {
			if attr.Key == key {
				value, found = attr.Value, true
				return false
			}

			return true
		})

		return value, found
	}

	return slog.Value{}, false
}
