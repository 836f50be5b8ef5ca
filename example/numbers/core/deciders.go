package core

import "github.com/AntonStoeckl/fmodel-go/domain"

type NumberState struct {
	Value int
}

type OddNumberState struct {
	Value int
}

type EvenNumberState struct {
	Value int
}

// OddEvenState is the state of OddEvenDecider.
type OddEvenState = domain.Pair[domain.Option[OddNumberState], domain.Option[EvenNumberState]]

// AllNumbersState is the state of AllNumbersDecider.
type AllNumbersState = domain.Pair[domain.Option[NumberState], domain.Option[OddEvenState]]

// NumberDecider adds to and multiplies a number, which starts at 0.
func NumberDecider() domain.Decider[ArithmeticCommand, NumberState, ArithmeticEvent] {
	return domain.NewDecider(
		func(c ArithmeticCommand, _ domain.Option[NumberState]) []ArithmeticEvent {
			switch c := c.(type) {
			case AddNumber:
				return []ArithmeticEvent{NumberAdded{NumberID: c.NumberID, Number: c.Number, OccurredAt: c.OccurredAt}}
			case MultiplyNumber:
				return []ArithmeticEvent{NumberMultiplied{NumberID: c.NumberID, Multiplier: c.Multiplier, OccurredAt: c.OccurredAt}}
			default:
				panic(domain.UnrecognizedCommand(c))
			}
		},
		func(s domain.Option[NumberState], e ArithmeticEvent) domain.Option[NumberState] {
			current := s.OrElse(NumberState{})

			switch e := e.(type) {
			case NumberAdded:
				return domain.Some(NumberState{Value: current.Value + e.Number})
			case NumberMultiplied:
				return domain.Some(NumberState{Value: current.Value * e.Multiplier})
			default:
				panic(domain.UnrecognizedEvent(e))
			}
		},
		domain.Some(NumberState{}),
	)
}

// OddDecider only accepts odd values and multipliers; anything else decides no events.
func OddDecider() domain.Decider[OddNumberCommand, OddNumberState, OddNumberEvent] {
	return domain.NewDecider(
		func(c OddNumberCommand, _ domain.Option[OddNumberState]) []OddNumberEvent {
			switch c := c.(type) {
			case AddOddNumber:
				if !isOdd(c.Value) {
					return nil
				}

				return []OddNumberEvent{OddNumberAdded{NumberID: c.NumberID, Value: c.Value, OccurredAt: c.OccurredAt}}
			case MultiplyOddNumber:
				if !isOdd(c.Multiplier) {
					return nil
				}

				return []OddNumberEvent{OddNumberMultiplied{NumberID: c.NumberID, Multiplier: c.Multiplier, OccurredAt: c.OccurredAt}}
			default:
				panic(domain.UnrecognizedCommand(c))
			}
		},
		func(s domain.Option[OddNumberState], e OddNumberEvent) domain.Option[OddNumberState] {
			current := s.OrElse(OddNumberState{})

			switch e := e.(type) {
			case OddNumberAdded:
				return domain.Some(OddNumberState{Value: current.Value + e.Value})
			case OddNumberMultiplied:
				return domain.Some(OddNumberState{Value: current.Value * e.Multiplier})
			default:
				panic(domain.UnrecognizedEvent(e))
			}
		},
		domain.None[OddNumberState](),
	)
}

// EvenDecider only accepts even values and multipliers; anything else decides no events.
func EvenDecider() domain.Decider[EvenNumberCommand, EvenNumberState, EvenNumberEvent] {
	return domain.NewDecider(
		func(c EvenNumberCommand, _ domain.Option[EvenNumberState]) []EvenNumberEvent {
			switch c := c.(type) {
			case AddEvenNumber:
				if isOdd(c.Value) {
					return nil
				}

				return []EvenNumberEvent{EvenNumberAdded{NumberID: c.NumberID, Value: c.Value, OccurredAt: c.OccurredAt}}
			case MultiplyEvenNumber:
				if isOdd(c.Multiplier) {
					return nil
				}

				return []EvenNumberEvent{EvenNumberMultiplied{NumberID: c.NumberID, Multiplier: c.Multiplier, OccurredAt: c.OccurredAt}}
			default:
				panic(domain.UnrecognizedCommand(c))
			}
		},
		func(s domain.Option[EvenNumberState], e EvenNumberEvent) domain.Option[EvenNumberState] {
			current := s.OrElse(EvenNumberState{})

			switch e := e.(type) {
			case EvenNumberAdded:
				return domain.Some(EvenNumberState{Value: current.Value + e.Value})
			case EvenNumberMultiplied:
				return domain.Some(EvenNumberState{Value: current.Value * e.Multiplier})
			default:
				panic(domain.UnrecognizedEvent(e))
			}
		},
		domain.None[EvenNumberState](),
	)
}

func OddEvenDecider() domain.Decider[NumberCommand, OddEvenState, NumberEvent] {
	return domain.Combine[NumberCommand, NumberEvent](OddDecider(), EvenDecider())
}

// AllNumbersDecider handles every NumberCommand: NumberDecider next to OddEvenDecider.
func AllNumbersDecider() domain.Decider[NumberCommand, AllNumbersState, NumberEvent] {
	return domain.Combine[NumberCommand, NumberEvent](NumberDecider(), OddEvenDecider())
}

func isOdd(n int) bool {
	return n%2 != 0
}
