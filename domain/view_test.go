package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/fmodel-go/domain"
)

func Test_View_Evolve(t *testing.T) {
	// arrange
	view := oddView()

	// act
	state := view.Replay(view.InitialState(), []oddEvent{oddAdded{value: 1}, oddAdded{value: 5}})

	// assert
	assert.Equal(t, oddState{sum: 0}, view.InitialState())
	assert.Equal(t, oddState{sum: 6}, state)
}

func Test_CombineViews(t *testing.T) {
	type combinedState = domain.Pair[oddState, evenState]

	tests := []struct {
		name     string
		state    combinedState
		event    numberEvent
		expected combinedState
	}{
		{
			name:     "odd event only changes the odd slot",
			state:    domain.PairOf(oddState{sum: 0}, evenState{sum: 0}),
			event:    oddAdded{value: 1},
			expected: domain.PairOf(oddState{sum: 1}, evenState{sum: 0}),
		},
		{
			name:     "even event only changes the even slot",
			state:    domain.PairOf(oddState{sum: 3}, evenState{sum: 4}),
			event:    evenAdded{value: 2},
			expected: domain.PairOf(oddState{sum: 3}, evenState{sum: 6}),
		},
		{
			name:     "event neither view handles leaves the state unchanged",
			state:    domain.PairOf(oddState{sum: 3}, evenState{sum: 4}),
			event:    somethingElseHappened{},
			expected: domain.PairOf(oddState{sum: 3}, evenState{sum: 4}),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			view := domain.CombineViews[numberEvent](oddView(), evenView())

			// act
			state := view.Evolve(tc.state, tc.event)

			// assert
			assert.Equal(t, tc.expected, state)
		})
	}
}

func Test_CombineViews_InitialState(t *testing.T) {
	// arrange
	view := domain.CombineViews[numberEvent](oddView(), evenView())

	// act
	initial := view.InitialState()

	// assert
	assert.Equal(t, domain.PairOf(oddState{sum: 0}, evenState{sum: 0}), initial)
}

func Test_CombineViews_Is_Associative_Up_To_Nesting(t *testing.T) {
	// arrange
	left := domain.CombineViews[numberEvent](
		domain.CombineViews[numberEvent](oddView(), evenView()),
		tallyView(),
	)
	right := domain.CombineViews[numberEvent](
		oddView(),
		domain.CombineViews[numberEvent](evenView(), tallyView()),
	)

	events := []numberEvent{oddAdded{value: 1}, somethingElseHappened{}, evenAdded{value: 2}, oddAdded{value: 3}}

	// act
	leftState := left.Replay(left.InitialState(), events)
	rightState := right.Replay(right.InitialState(), events)

	// assert
	assert.Equal(t, leftState.First.First, rightState.First)
	assert.Equal(t, leftState.First.Second, rightState.Second.First)
	assert.Equal(t, leftState.Second, rightState.Second.Second)
	assert.Equal(t, oddState{sum: 4}, rightState.First)
	assert.Equal(t, evenState{sum: 2}, rightState.Second.First)
	assert.Equal(t, tallyState{count: 4}, rightState.Second.Second)
}

func Test_CombineViewsWith_Explicit_Narrowing(t *testing.T) {
	// arrange
	onlyBig := func(e numberEvent) (oddEvent, bool) {
		odd, ok := e.(oddAdded)
		if !ok || odd.value < 10 {
			return nil, false
		}

		return odd, true
	}

	view := domain.CombineViewsWith(
		oddView(), onlyBig,
		tallyView(), domain.VariantOf[numberEvent, numberEvent]().Narrow,
	)

	// act
	state := view.Replay(view.InitialState(), []numberEvent{oddAdded{value: 1}, oddAdded{value: 11}})

	// assert
	assert.Equal(t, domain.PairOf(oddState{sum: 11}, tallyState{count: 2}), state)
}

func Test_View_Identity_Law(t *testing.T) {
	// arrange
	original := oddView()
	mapped := domain.DimapOnViewState(
		domain.MapContraOnViewEvent(original, domain.Identity[oddEvent]),
		domain.Identity[oddState],
		domain.Identity[oddState],
	)

	// act / assert
	assert.Equal(t, original.InitialState(), mapped.InitialState())

	for _, s := range []oddState{{sum: 0}, {sum: 7}, {sum: -3}} {
		for _, e := range []oddEvent{oddAdded{value: 1}, oddAdded{value: 9}} {
			assert.Equal(t, original.Evolve(s, e), mapped.Evolve(s, e))
		}
	}
}

func Test_View_Mapping_Composes(t *testing.T) {
	// arrange
	double := func(e oddEvent) oddEvent { return oddAdded{value: e.(oddAdded).value * 2} } //nolint:forcetypeassert
	triple := func(e oddEvent) oddEvent { return oddAdded{value: e.(oddAdded).value * 3} } //nolint:forcetypeassert

	twice := domain.MapContraOnViewEvent(domain.MapContraOnViewEvent(oddView(), double), triple)
	once := domain.MapContraOnViewEvent(oddView(), domain.Compose(triple, double))

	// act / assert
	for _, e := range []oddEvent{oddAdded{value: 1}, oddAdded{value: 5}} {
		assert.Equal(t, once.Evolve(oddState{}, e), twice.Evolve(oddState{}, e))
	}
}

func Test_NarrowViewEvent(t *testing.T) {
	// arrange
	view := domain.NarrowViewEvent(evenView(), domain.VariantOf[numberEvent, evenEvent]().Narrow)

	// act
	state := view.Replay(view.InitialState(), []numberEvent{evenAdded{value: 2}, oddAdded{value: 1}})

	// assert
	assert.Equal(t, evenState{sum: 2}, state)
}

func Test_ProductOnViewState(t *testing.T) {
	// arrange
	squares := domain.NewView(
		func(s tallyState, e numberEvent) tallyState {
			if odd, ok := e.(oddAdded); ok {
				return tallyState{count: s.count + odd.value*odd.value}
			}

			return s
		},
		tallyState{count: 0},
	)
	view := domain.ProductOnViewState(tallyView(), squares)

	// act
	state := view.Replay(view.InitialState(), []numberEvent{oddAdded{value: 3}, evenAdded{value: 2}})

	// assert
	assert.Equal(t, domain.PairOf(tallyState{count: 2}, tallyState{count: 9}), state)
}

func Test_AsView(t *testing.T) {
	// arrange
	decider := counterDecider()
	view := domain.AsView(decider)

	// act
	state := view.Replay(view.InitialState(), []counterEvent{added{amount: 2}, multiplied{factor: 3}})

	// assert
	assert.Equal(t, domain.Some(counterState{value: 6}), state)
}
