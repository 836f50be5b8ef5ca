package domain

// View is the event-handling unit for read models: it folds events into a denormalized
// state which is more adequate for querying. Unlike a Decider's, a View's state is
// never absent.
type View[S, E any] struct {
	evolve       func(S, E) S
	initialState func() S
}

// NewView builds a View from a pure evolve function and its starting projection.
func NewView[S, E any](evolve func(S, E) S, initialState S) View[S, E] {
	return View[S, E]{
		evolve:       evolve,
		initialState: func() S { return initialState },
	}
}

// Evolve folds one event into the state.
func (v View[S, E]) Evolve(state S, event E) S {
	return v.evolve(state, event)
}

// InitialState is the starting projection.
func (v View[S, E]) InitialState() S {
	return v.initialState()
}

// Replay folds the events, in order, into the state.
func (v View[S, E]) Replay(state S, events []E) S {
	for _, event := range events {
		state = v.evolve(state, event)
	}

	return state
}

func (v View[S, E]) asFold() fold[S, S, E] {
	return fold[S, S, E]{
		evolve:       v.evolve,
		initialState: v.initialState,
	}
}

func viewFromFold[S, E any](f fold[S, S, E]) View[S, E] {
	return View[S, E]{
		evolve:       f.evolve,
		initialState: f.initialState,
	}
}

// AsView exposes the evolve side of a Decider as a View over its optional state.
func AsView[C, S, E any](d Decider[C, S, E]) View[Option[S], E] {
	return viewFromFold(d.asFold())
}

// MapContraOnViewEvent lets v accept events of type ENew by translating them down to E.
func MapContraOnViewEvent[S, E, ENew any](v View[S, E], f func(ENew) E) View[S, ENew] {
	return viewFromFold(mapContraOnEvent(v.asFold(), f))
}

// NarrowViewEvent lets v accept events of a wider type ENew. Events that do not narrow
// to E leave the state unchanged.
func NarrowViewEvent[S, E, ENew any](v View[S, E], narrow func(ENew) (E, bool)) View[S, ENew] {
	return viewFromFold(narrowOnEvent(v.asFold(), narrow))
}

// DimapOnViewState embeds v's state into SNew: fl projects down, fr lifts back up.
func DimapOnViewState[S, E, SNew any](v View[S, E], fl func(SNew) S, fr func(S) SNew) View[SNew, E] {
	return viewFromFold(dimapOnState(v.asFold(), fl, fr))
}

// ProductOnViewState runs two Views over the same event type side by side on a paired state.
func ProductOnViewState[S1, S2, E any](x View[S1, E], y View[S2, E]) View[Pair[S1, S2], E] {
	foldX := mapContraOnState(x.asFold(), func(p Pair[S1, S2]) S1 { return p.First })
	foldY := mapContraOnState(y.asFold(), func(p Pair[S1, S2]) S2 { return p.Second })

	return viewFromFold(productOnState(foldX, foldY))
}

// CombineViews merges two Views with unrelated state and event types into one View over
// the union event type E and the paired state. E1 and E2 must be assignable to E, otherwise
// CombineViews panics with a *CompositionError.
//
// Events that narrow to E1 only change the first slot, events that narrow to E2 only the
// second; anything else leaves the state as it is.
//
//	v := domain.CombineViews[NumberEvent](oddView, evenView)
func CombineViews[E, S1, E1, S2, E2 any](x View[S1, E1], y View[S2, E2]) View[Pair[S1, S2], E] {
	return CombineViewsWith(
		x, VariantOf[E, E1]().Narrow,
		y, VariantOf[E, E2]().Narrow,
	)
}

// CombineViewsWith is CombineViews with explicit narrowing functions.
func CombineViewsWith[E, S1, E1, S2, E2 any](
	x View[S1, E1],
	narrowX func(E) (E1, bool),
	y View[S2, E2],
	narrowY func(E) (E2, bool),
) View[Pair[S1, S2], E] {

	return viewFromFold(combineFolds(x.asFold(), y.asFold(), narrowX, narrowY))
}
