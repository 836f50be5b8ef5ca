package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedVariant signals a contract violation: a leaf Decider or View received
	// a command or event variant its logic does not handle.
	ErrUnrecognizedVariant = errors.New("unrecognized variant")

	// ErrCompositionTypeMismatch signals that a variant type is not part of the union type
	// it was supposed to be composed into.
	ErrCompositionTypeMismatch = errors.New("composition type mismatch")
)

const (
	variantKindCommand = "command"
	variantKindEvent   = "event"
)

// UnrecognizedVariantError is the fault raised by leaf decide/evolve functions for
// variants outside their implemented branches. It is a programming error, not a domain outcome.
type UnrecognizedVariantError struct {
	Kind string // "command" or "event"
	Type string // dynamic Go type of the offending value
}

func (e *UnrecognizedVariantError) Error() string {
	return fmt.Sprintf("%s: %s of type %s", ErrUnrecognizedVariant, e.Kind, e.Type)
}

func (e *UnrecognizedVariantError) Unwrap() error {
	return ErrUnrecognizedVariant
}

// UnrecognizedCommand builds the fault for a command no decide branch handles.
//
// Leaf deciders use it in the default branch of their type switch:
//
//	default:
//		panic(domain.UnrecognizedCommand(c))
func UnrecognizedCommand(command any) *UnrecognizedVariantError {
	return &UnrecognizedVariantError{Kind: variantKindCommand, Type: fmt.Sprintf("%T", command)}
}

// UnrecognizedEvent builds the fault for an event no evolve branch handles.
func UnrecognizedEvent(event any) *UnrecognizedVariantError {
	return &UnrecognizedVariantError{Kind: variantKindEvent, Type: fmt.Sprintf("%T", event)}
}

// CompositionError reports a variant type that cannot be widened into its union type.
type CompositionError struct {
	Union   string
	Variant string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("%s: %s is not assignable to %s", ErrCompositionTypeMismatch, e.Variant, e.Union)
}

func (e *CompositionError) Unwrap() error {
	return ErrCompositionTypeMismatch
}
