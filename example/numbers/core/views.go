package core

import "github.com/AntonStoeckl/fmodel-go/domain"

type OddViewState struct {
	OddState int
}

type EvenViewState struct {
	EvenState int
}

// OddEvenViewState is the state of OddEvenView.
type OddEvenViewState = domain.Pair[OddViewState, EvenViewState]

// NumbersViewState is the state of NumbersView.
type NumbersViewState = domain.Pair[domain.Option[NumberState], OddEvenViewState]

func OddView() domain.View[OddViewState, OddNumberEvent] {
	return domain.NewView(
		func(s OddViewState, e OddNumberEvent) OddViewState {
			switch e := e.(type) {
			case OddNumberAdded:
				return OddViewState{OddState: s.OddState + e.Value}
			case OddNumberMultiplied:
				return OddViewState{OddState: s.OddState * e.Multiplier}
			default:
				panic(domain.UnrecognizedEvent(e))
			}
		},
		OddViewState{},
	)
}

func EvenView() domain.View[EvenViewState, EvenNumberEvent] {
	return domain.NewView(
		func(s EvenViewState, e EvenNumberEvent) EvenViewState {
			switch e := e.(type) {
			case EvenNumberAdded:
				return EvenViewState{EvenState: s.EvenState + e.Value}
			case EvenNumberMultiplied:
				return EvenViewState{EvenState: s.EvenState * e.Multiplier}
			default:
				panic(domain.UnrecognizedEvent(e))
			}
		},
		EvenViewState{},
	)
}

func OddEvenView() domain.View[OddEvenViewState, NumberEvent] {
	return domain.CombineViews[NumberEvent](OddView(), EvenView())
}

// NumbersView shows a number together with its odd and even totals.
func NumbersView() domain.View[NumbersViewState, NumberEvent] {
	return domain.CombineViews[NumberEvent](domain.AsView(NumberDecider()), OddEvenView())
}
