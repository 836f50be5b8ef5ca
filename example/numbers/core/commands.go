package core

import "time"

// NumberCommand is the union of all commands of this domain.
type NumberCommand interface {
	StreamID() string
}

// ArithmeticCommand is handled by NumberDecider.
type ArithmeticCommand interface {
	NumberCommand
	isArithmeticCommand()
}

type OddNumberCommand interface {
	NumberCommand
	isOddNumberCommand()
}

type EvenNumberCommand interface {
	NumberCommand
	isEvenNumberCommand()
}

type AddNumber struct {
	NumberID   string
	Number     int
	OccurredAt time.Time
}

func (c AddNumber) StreamID() string   { return c.NumberID }
func (AddNumber) isArithmeticCommand() {}

type MultiplyNumber struct {
	NumberID   string
	Multiplier int
	OccurredAt time.Time
}

func (c MultiplyNumber) StreamID() string   { return c.NumberID }
func (MultiplyNumber) isArithmeticCommand() {}

type AddOddNumber struct {
	NumberID   string
	Value      int
	OccurredAt time.Time
}

func (c AddOddNumber) StreamID() string  { return c.NumberID }
func (AddOddNumber) isOddNumberCommand() {}

type MultiplyOddNumber struct {
	NumberID   string
	Multiplier int
	OccurredAt time.Time
}

func (c MultiplyOddNumber) StreamID() string  { return c.NumberID }
func (MultiplyOddNumber) isOddNumberCommand() {}

type AddEvenNumber struct {
	NumberID   string
	Value      int
	OccurredAt time.Time
}

func (c AddEvenNumber) StreamID() string   { return c.NumberID }
func (AddEvenNumber) isEvenNumberCommand() {}

type MultiplyEvenNumber struct {
	NumberID   string
	Multiplier int
	OccurredAt time.Time
}

func (c MultiplyEvenNumber) StreamID() string   { return c.NumberID }
func (MultiplyEvenNumber) isEvenNumberCommand() {}
