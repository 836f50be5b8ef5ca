package domain_test

import (
	"github.com/AntonStoeckl/fmodel-go/domain"
)

// counter: a single leaf Decider

type counterCommand interface{ isCounterCommand() }

type add struct{ amount int }

type multiply struct{ factor int }

type reset struct{}

func (add) isCounterCommand()      {}
func (multiply) isCounterCommand() {}
func (reset) isCounterCommand()    {}

type counterEvent interface{ isCounterEvent() }

type added struct{ amount int }

type multiplied struct{ factor int }

type wasReset struct{}

func (added) isCounterEvent()      {}
func (multiplied) isCounterEvent() {}
func (wasReset) isCounterEvent()   {}

type counterState struct{ value int }

func counterDecider() domain.Decider[counterCommand, counterState, counterEvent] {
	return domain.NewDecider(
		func(c counterCommand, _ domain.Option[counterState]) []counterEvent {
			switch command := c.(type) {
			case add:
				return []counterEvent{added(command)}
			case multiply:
				return []counterEvent{multiplied(command)}
			default:
				panic(domain.UnrecognizedCommand(c))
			}
		},
		func(s domain.Option[counterState], e counterEvent) domain.Option[counterState] {
			current := s.OrElse(counterState{value: 0})

			switch event := e.(type) {
			case added:
				return domain.Some(counterState{value: current.value + event.amount})
			case multiplied:
				return domain.Some(counterState{value: current.value * event.factor})
			default:
				panic(domain.UnrecognizedEvent(e))
			}
		},
		domain.Some(counterState{value: 0}),
	)
}

// odd/even: two leaves over sub-unions of a shared number union

type numberCommand interface{ isNumberCommand() }

type oddCommand interface {
	numberCommand
	isOddCommand()
}

type evenCommand interface {
	numberCommand
	isEvenCommand()
}

type addOdd struct{ value int }

type addEven struct{ value int }

type unknownCommand struct{}

func (addOdd) isNumberCommand()         {}
func (addOdd) isOddCommand()            {}
func (addEven) isNumberCommand()        {}
func (addEven) isEvenCommand()          {}
func (unknownCommand) isNumberCommand() {}

type numberEvent interface{ isNumberEvent() }

type oddEvent interface {
	numberEvent
	isOddEvent()
}

type evenEvent interface {
	numberEvent
	isEvenEvent()
}

type oddAdded struct{ value int }

type evenAdded struct{ value int }

type somethingElseHappened struct{}

func (oddAdded) isNumberEvent()              {}
func (oddAdded) isOddEvent()                 {}
func (evenAdded) isNumberEvent()             {}
func (evenAdded) isEvenEvent()               {}
func (somethingElseHappened) isNumberEvent() {}

type oddState struct{ sum int }

type evenState struct{ sum int }

type tallyState struct{ count int }

func oddDecider() domain.Decider[oddCommand, oddState, oddEvent] {
	return domain.NewDecider(
		func(c oddCommand, _ domain.Option[oddState]) []oddEvent {
			switch command := c.(type) {
			case addOdd:
				if command.value%2 == 0 {
					return nil
				}

				return []oddEvent{oddAdded(command)}
			default:
				panic(domain.UnrecognizedCommand(c))
			}
		},
		func(s domain.Option[oddState], e oddEvent) domain.Option[oddState] {
			switch event := e.(type) {
			case oddAdded:
				return domain.Some(oddState{sum: s.OrElse(oddState{}).sum + event.value})
			default:
				panic(domain.UnrecognizedEvent(e))
			}
		},
		domain.None[oddState](),
	)
}

func evenDecider() domain.Decider[evenCommand, evenState, evenEvent] {
	return domain.NewDecider(
		func(c evenCommand, _ domain.Option[evenState]) []evenEvent {
			switch command := c.(type) {
			case addEven:
				if command.value%2 != 0 {
					return nil
				}

				return []evenEvent{evenAdded(command)}
			default:
				panic(domain.UnrecognizedCommand(c))
			}
		},
		func(s domain.Option[evenState], e evenEvent) domain.Option[evenState] {
			switch event := e.(type) {
			case evenAdded:
				return domain.Some(evenState{sum: s.OrElse(evenState{}).sum + event.value})
			default:
				panic(domain.UnrecognizedEvent(e))
			}
		},
		domain.None[evenState](),
	)
}

func oddView() domain.View[oddState, oddEvent] {
	return domain.NewView(
		func(s oddState, e oddEvent) oddState {
			switch event := e.(type) {
			case oddAdded:
				return oddState{sum: s.sum + event.value}
			default:
				panic(domain.UnrecognizedEvent(e))
			}
		},
		oddState{sum: 0},
	)
}

func evenView() domain.View[evenState, evenEvent] {
	return domain.NewView(
		func(s evenState, e evenEvent) evenState {
			switch event := e.(type) {
			case evenAdded:
				return evenState{sum: s.sum + event.value}
			default:
				panic(domain.UnrecognizedEvent(e))
			}
		},
		evenState{sum: 0},
	)
}

// tallyView counts every number event, whatever its variant.
func tallyView() domain.View[tallyState, numberEvent] {
	return domain.NewView(
		func(s tallyState, _ numberEvent) tallyState {
			return tallyState{count: s.count + 1}
		},
		tallyState{count: 0},
	)
}
