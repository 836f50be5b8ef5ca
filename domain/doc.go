// Package domain provides the functional core for event-sourced business logic:
// the Decider and the View, plus the algebra to compose them.
//
// A Decider decides which events a command produces, given the current state,
// and evolves its state by folding events. A View only folds events into a
// denormalized state which is more adequate for querying.
//
// Both are plain immutable values holding functions. Nothing in this package
// performs I/O, mutates shared state, or knows how events are stored.
//
// Deciders and Views with unrelated command, state, and event types can be
// combined into one unit operating on a paired state and a union event type:
//
//	oddEven := domain.CombineViews[NumberEvent](oddView, evenView)
//	state := oddEven.Evolve(oddEven.InitialState(), OddNumberAdded{Value: 1})
//
// Each combined unit only sees the events (and commands) that narrow to its own
// variant type. Everything else leaves its slice of the state untouched.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package domain
