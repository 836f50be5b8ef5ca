package core

import "time"

const (
	NumberAddedEventType          = "NumberAdded"
	NumberMultipliedEventType     = "NumberMultiplied"
	OddNumberAddedEventType       = "OddNumberAdded"
	OddNumberMultipliedEventType  = "OddNumberMultiplied"
	EvenNumberAddedEventType      = "EvenNumberAdded"
	EvenNumberMultipliedEventType = "EvenNumberMultiplied"
)

// NumberEvent is the union of all events of this domain.
type NumberEvent interface {
	EventType() string
	HasOccurredAt() time.Time
	StreamID() string
}

type ArithmeticEvent interface {
	NumberEvent
	isArithmeticEvent()
}

type OddNumberEvent interface {
	NumberEvent
	isOddNumberEvent()
}

type EvenNumberEvent interface {
	NumberEvent
	isEvenNumberEvent()
}

// NumberEventTypes lists every event type of the domain.
func NumberEventTypes() []string {
	return []string{
		NumberAddedEventType,
		NumberMultipliedEventType,
		OddNumberAddedEventType,
		OddNumberMultipliedEventType,
		EvenNumberAddedEventType,
		EvenNumberMultipliedEventType,
	}
}

type NumberAdded struct {
	NumberID   string
	Number     int
	OccurredAt time.Time
}

func (NumberAdded) EventType() string          { return NumberAddedEventType }
func (e NumberAdded) HasOccurredAt() time.Time { return e.OccurredAt }
func (e NumberAdded) StreamID() string         { return e.NumberID }
func (NumberAdded) isArithmeticEvent()         {}

type NumberMultiplied struct {
	NumberID   string
	Multiplier int
	OccurredAt time.Time
}

func (NumberMultiplied) EventType() string          { return NumberMultipliedEventType }
func (e NumberMultiplied) HasOccurredAt() time.Time { return e.OccurredAt }
func (e NumberMultiplied) StreamID() string         { return e.NumberID }
func (NumberMultiplied) isArithmeticEvent()         {}

type OddNumberAdded struct {
	NumberID   string
	Value      int
	OccurredAt time.Time
}

func (OddNumberAdded) EventType() string          { return OddNumberAddedEventType }
func (e OddNumberAdded) HasOccurredAt() time.Time { return e.OccurredAt }
func (e OddNumberAdded) StreamID() string         { return e.NumberID }
func (OddNumberAdded) isOddNumberEvent()          {}

type OddNumberMultiplied struct {
	NumberID   string
	Multiplier int
	OccurredAt time.Time
}

func (OddNumberMultiplied) EventType() string          { return OddNumberMultipliedEventType }
func (e OddNumberMultiplied) HasOccurredAt() time.Time { return e.OccurredAt }
func (e OddNumberMultiplied) StreamID() string         { return e.NumberID }
func (OddNumberMultiplied) isOddNumberEvent()          {}

type EvenNumberAdded struct {
	NumberID   string
	Value      int
	OccurredAt time.Time
}

func (EvenNumberAdded) EventType() string          { return EvenNumberAddedEventType }
func (e EvenNumberAdded) HasOccurredAt() time.Time { return e.OccurredAt }
func (e EvenNumberAdded) StreamID() string         { return e.NumberID }
func (EvenNumberAdded) isEvenNumberEvent()         {}

type EvenNumberMultiplied struct {
	NumberID   string
	Multiplier int
	OccurredAt time.Time
}

func (EvenNumberMultiplied) EventType() string          { return EvenNumberMultipliedEventType }
func (e EvenNumberMultiplied) HasOccurredAt() time.Time { return e.OccurredAt }
func (e EvenNumberMultiplied) StreamID() string         { return e.NumberID }
func (EvenNumberMultiplied) isEvenNumberEvent()         {}
