package domain

// fold is the shape shared by Decider and View: an evolve function plus a lazily
// computed initial state. Its input and output state types differ only while
// composing; every public Decider or View collapses them into one.
type fold[SIn, SOut, E any] struct {
	evolve       func(SIn, E) SOut
	initialState func() SOut
}

// mapContraOnEvent translates incoming events of the new type down to E before folding.
func mapContraOnEvent[SIn, SOut, E, ENew any](
	f fold[SIn, SOut, E],
	fn func(ENew) E,
) fold[SIn, SOut, ENew] {

	return fold[SIn, SOut, ENew]{
		evolve: func(s SIn, e ENew) SOut {
			return f.evolve(s, fn(e))
		},
		initialState: f.initialState,
	}
}

// narrowOnEvent is the partial version of mapContraOnEvent: events that do not narrow
// to E leave the state unchanged.
func narrowOnEvent[S, E, ENew any](
	f fold[S, S, E],
	narrow func(ENew) (E, bool),
) fold[S, S, ENew] {

	return fold[S, S, ENew]{
		evolve: func(s S, e ENew) S {
			if narrowed, ok := narrow(e); ok {
				return f.evolve(s, narrowed)
			}

			return s
		},
		initialState: f.initialState,
	}
}

// dimapOnState contra-maps the input state with fl and maps the output state with fr.
func dimapOnState[SIn, SOut, E, SInNew, SOutNew any](
	f fold[SIn, SOut, E],
	fl func(SInNew) SIn,
	fr func(SOut) SOutNew,
) fold[SInNew, SOutNew, E] {

	return fold[SInNew, SOutNew, E]{
		evolve: func(s SInNew, e E) SOutNew {
			return fr(f.evolve(fl(s), e))
		},
		initialState: func() SOutNew {
			return fr(f.initialState())
		},
	}
}

// mapContraOnState is dimapOnState with an identity on the output side.
func mapContraOnState[SIn, SOut, E, SInNew any](
	f fold[SIn, SOut, E],
	fl func(SInNew) SIn,
) fold[SInNew, SOut, E] {

	return dimapOnState(f, fl, Identity[SOut])
}

// mapOnState is dimapOnState with an identity on the input side.
func mapOnState[SIn, SOut, E, SOutNew any](
	f fold[SIn, SOut, E],
	fr func(SOut) SOutNew,
) fold[SIn, SOutNew, E] {

	return dimapOnState(f, Identity[SIn], fr)
}

// applyOnState folds ff and f over the same input and applies the resulting function
// to the resulting value. productOnState and combineFolds are built from it.
func applyOnState[SIn, SOut, E, SOutNew any](
	f fold[SIn, SOut, E],
	ff fold[SIn, func(SOut) SOutNew, E],
) fold[SIn, SOutNew, E] {

	return fold[SIn, SOutNew, E]{
		evolve: func(s SIn, e E) SOutNew {
			return ff.evolve(s, e)(f.evolve(s, e))
		},
		initialState: func() SOutNew {
			return ff.initialState()(f.initialState())
		},
	}
}

// productOnState pairs two folds sharing input state and event type.
func productOnState[SIn, SOut, E, SOutNew any](
	f fold[SIn, SOut, E],
	other fold[SIn, SOutNew, E],
) fold[SIn, Pair[SOut, SOutNew], E] {

	pairWith := mapOnState(other, func(b SOutNew) func(SOut) Pair[SOut, SOutNew] {
		return func(a SOut) Pair[SOut, SOutNew] {
			return PairOf(a, b)
		}
	})

	return applyOnState(f, pairWith)
}

// combineFolds merges two folds with unrelated state and event types into one fold over
// the paired state and the union event type E. Each side only evolves on events that
// narrow to its own event type; its slot is passed through otherwise.
func combineFolds[S1, E1, S2, E2, E any](
	x fold[S1, S1, E1],
	y fold[S2, S2, E2],
	narrowX func(E) (E1, bool),
	narrowY func(E) (E2, bool),
) fold[Pair[S1, S2], Pair[S1, S2], E] {

	foldX := mapContraOnState(
		narrowOnEvent(x, narrowX),
		func(p Pair[S1, S2]) S1 { return p.First },
	)

	foldY := mapContraOnState(
		narrowOnEvent(y, narrowY),
		func(p Pair[S1, S2]) S2 { return p.Second },
	)

	return productOnState(foldX, foldY)
}
