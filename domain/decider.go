package domain

// Decider is the main decision-making unit: it decides which events a command produces
// given the current state, and evolves the state by folding events.
//
// Its state may be absent (no stream yet), which is why decide and evolve receive an
// Option. A Decider is immutable; it is created once with NewDecider and composed into
// new Deciders with the functions in this package.
type Decider[C, S, E any] struct {
	decide       func(C, Option[S]) []E
	evolve       func(Option[S], E) Option[S]
	initialState Option[S]
}

// NewDecider builds a Decider from pure domain functions.
//
// decide must have one branch per live command variant and evolve one branch per
// declared event variant. Both should panic with UnrecognizedCommand or UnrecognizedEvent
// for anything else.
func NewDecider[C, S, E any](
	decide func(C, Option[S]) []E,
	evolve func(Option[S], E) Option[S],
	initialState Option[S],
) Decider[C, S, E] {

	return Decider[C, S, E]{
		decide:       decide,
		evolve:       evolve,
		initialState: initialState,
	}
}

// Decide returns the ordered events the command produces in the given state.
func (d Decider[C, S, E]) Decide(command C, state Option[S]) []E {
	return d.decide(command, state)
}

// Evolve folds one event into the state.
func (d Decider[C, S, E]) Evolve(state Option[S], event E) Option[S] {
	return d.evolve(state, event)
}

// InitialState is the state used when no events exist yet.
func (d Decider[C, S, E]) InitialState() Option[S] {
	return d.initialState
}

// Replay folds the events, in order, into the state.
func (d Decider[C, S, E]) Replay(state Option[S], events []E) Option[S] {
	for _, event := range events {
		state = d.evolve(state, event)
	}

	return state
}

func (d Decider[C, S, E]) asFold() fold[Option[S], Option[S], E] {
	initialState := d.initialState

	return fold[Option[S], Option[S], E]{
		evolve:       d.evolve,
		initialState: func() Option[S] { return initialState },
	}
}

func deciderFromFold[C, S, E any](
	decide func(C, Option[S]) []E,
	f fold[Option[S], Option[S], E],
) Decider[C, S, E] {

	return NewDecider(decide, f.evolve, f.initialState())
}

// MapContraOnCommand lets d accept commands of type CNew by translating them down to C.
func MapContraOnCommand[C, S, E, CNew any](d Decider[C, S, E], f func(CNew) C) Decider[CNew, S, E] {
	return NewDecider(
		func(c CNew, s Option[S]) []E {
			return d.decide(f(c), s)
		},
		d.evolve,
		d.initialState,
	)
}

// DimapOnEvent lets d consume events of type ENew (translated down with fl) and
// emit them (translated up with fr).
func DimapOnEvent[C, S, E, ENew any](
	d Decider[C, S, E],
	fl func(ENew) E,
	fr func(E) ENew,
) Decider[C, S, ENew] {

	return deciderFromFold(
		func(c C, s Option[S]) []ENew {
			return mapEvents(d.decide(c, s), fr)
		},
		mapContraOnEvent(d.asFold(), fl),
	)
}

// DimapOnState embeds d's state into SNew: fl projects the new state down to d's
// state, fr lifts d's state back up. Absent stays absent in both directions.
func DimapOnState[C, S, E, SNew any](
	d Decider[C, S, E],
	fl func(SNew) S,
	fr func(S) SNew,
) Decider[C, SNew, E] {

	optionFL := func(s Option[SNew]) Option[S] { return MapOption(s, fl) }
	optionFR := func(s Option[S]) Option[SNew] { return MapOption(s, fr) }

	return deciderFromFold(
		func(c C, s Option[SNew]) []E {
			return d.decide(c, optionFL(s))
		},
		dimapOnState(d.asFold(), optionFL, optionFR),
	)
}

// ProductOnState runs two Deciders sharing command and event types side by side over a
// paired state. Both decide on every command; x's events come first.
func ProductOnState[C, S1, S2, E any](
	x Decider[C, S1, E],
	y Decider[C, S2, E],
) Decider[C, Pair[Option[S1], Option[S2]], E] {

	foldX := mapContraOnState(x.asFold(), firstSlot[S1, S2])
	foldY := mapContraOnState(y.asFold(), secondSlot[S1, S2])

	return deciderFromFold(
		func(c C, s Option[Pair[Option[S1], Option[S2]]]) []E {
			return concatEvents(x.decide(c, firstSlot(s)), y.decide(c, secondSlot(s)))
		},
		mapOnState(productOnState(foldX, foldY), Some[Pair[Option[S1], Option[S2]]]),
	)
}

// Lift moves d onto the union command type C and union event type E.
//
// Commands that do not narrow to d's command type produce no events, and events that do
// not narrow to d's event type leave the state unchanged. Emitted events are widened to E.
func Lift[C, E, CV, S, EV any](
	d Decider[CV, S, EV],
	commands Variant[C, CV],
	events Variant[E, EV],
) Decider[C, S, E] {

	return deciderFromFold(
		func(c C, s Option[S]) []E {
			command, ok := commands.Narrow(c)
			if !ok {
				return nil
			}

			return mapEvents(d.decide(command, s), events.Widen)
		},
		narrowOnEvent(d.asFold(), events.Narrow),
	)
}

// Combine merges two Deciders with unrelated command, state, and event types into one
// Decider over the union command type C, the union event type E, and the paired state.
//
// C1 and C2 must be assignable to C, E1 and E2 to E; otherwise Combine panics with a
// *CompositionError. Each command is routed to every unit whose command type it narrows
// to (x first), each event only evolves the slot of the unit it narrows to.
//
//	d := domain.Combine[NumberCommand, NumberEvent](oddDecider, evenDecider)
func Combine[C, E, C1, S1, E1, C2, S2, E2 any](
	x Decider[C1, S1, E1],
	y Decider[C2, S2, E2],
) Decider[C, Pair[Option[S1], Option[S2]], E] {

	return CombineWith(
		x, VariantOf[C, C1](), VariantOf[E, E1](),
		y, VariantOf[C, C2](), VariantOf[E, E2](),
	)
}

// CombineWith is Combine with explicit narrowing and widening functions instead of type
// assertions, for unions that are not modeled as Go interfaces.
func CombineWith[C, E, C1, S1, E1, C2, S2, E2 any](
	x Decider[C1, S1, E1],
	commandsX Variant[C, C1],
	eventsX Variant[E, E1],
	y Decider[C2, S2, E2],
	commandsY Variant[C, C2],
	eventsY Variant[E, E2],
) Decider[C, Pair[Option[S1], Option[S2]], E] {

	liftedX := Lift(x, commandsX, eventsX)
	liftedY := Lift(y, commandsY, eventsY)

	combined := combineFolds(
		x.asFold(),
		y.asFold(),
		eventsX.Narrow,
		eventsY.Narrow,
	)

	return deciderFromFold(
		func(c C, s Option[Pair[Option[S1], Option[S2]]]) []E {
			return concatEvents(liftedX.decide(c, firstSlot(s)), liftedY.decide(c, secondSlot(s)))
		},
		dimapOnState(
			combined,
			func(s Option[Pair[Option[S1], Option[S2]]]) Pair[Option[S1], Option[S2]] {
				return PairOf(firstSlot(s), secondSlot(s))
			},
			Some[Pair[Option[S1], Option[S2]]],
		),
	)
}

// firstSlot reads the first slot of an optional pair; an absent pair has absent slots.
func firstSlot[S1, S2 any](s Option[Pair[Option[S1], Option[S2]]]) Option[S1] {
	if p, ok := s.Get(); ok {
		return p.First
	}

	return None[S1]()
}

// secondSlot reads the second slot of an optional pair; an absent pair has absent slots.
func secondSlot[S1, S2 any](s Option[Pair[Option[S1], Option[S2]]]) Option[S2] {
	if p, ok := s.Get(); ok {
		return p.Second
	}

	return None[S2]()
}

func mapEvents[E, ENew any](events []E, f func(E) ENew) []ENew {
	if events == nil {
		return nil
	}

	mapped := make([]ENew, 0, len(events))
	for _, event := range events {
		mapped = append(mapped, f(event))
	}

	return mapped
}

// concatEvents copies both slices into a new one so that no decide result is ever appended to in place.
func concatEvents[E any](first []E, second []E) []E {
	if len(first)+len(second) == 0 {
		return nil
	}

	events := make([]E, 0, len(first)+len(second))
	events = append(events, first...)

	return append(events, second...)
}
