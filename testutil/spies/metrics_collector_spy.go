package spies

import (
	"maps"
	"sync"
	"time"
)

// MetricsCollectorSpy captures every metrics call. It is safe for concurrent use.
type MetricsCollectorSpy struct {
	mu              sync.Mutex
	durationRecords []DurationRecord
	counterRecords  []CounterRecord
	valueRecords    []ValueRecord
}

type DurationRecord struct {
	Metric   string
	Duration time.Duration
	Labels   map[string]string
}

type CounterRecord struct {
	Metric string
	Labels map[string]string
}

type ValueRecord struct {
	Metric string
	Value  float64
	Labels map[string]string
}

func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durationRecords = append(s.durationRecords, DurationRecord{Metric: metric, Duration: duration, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counterRecords = append(s.counterRecords, CounterRecord{Metric: metric, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.valueRecords = append(s.valueRecords, ValueRecord{Metric: metric, Value: value, Labels: maps.Clone(labels)})
}

// Durations returns the duration records of metric, in call order.
func (s *MetricsCollectorSpy) Durations(metric string) []DurationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []DurationRecord
	for _, record := range s.durationRecords {
		if record.Metric == metric {
			records = append(records, record)
		}
	}

	return records
}

// Counters returns the counter records of metric, in call order.
func (s *MetricsCollectorSpy) Counters(metric string) []CounterRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []CounterRecord
	for _, record := range s.counterRecords {
		if record.Metric == metric {
			records = append(records, record)
		}
	}

	return records
}

// Values returns the value records of metric, in call order.
func (s *MetricsCollectorSpy) Values(metric string) []ValueRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []ValueRecord
	for _, record := range s.valueRecords {
		if record.Metric == metric {
			records = append(records, record)
		}
	}

	return records
}

func (s *MetricsCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durationRecords = nil
	s.counterRecords = nil
	s.valueRecords = nil
}
