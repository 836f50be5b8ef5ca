package domain

import (
	"reflect"
)

// Variant relates a union type U to one of its variants V.
//
// Narrow classifies a union value: it returns false when the value is not a V,
// which combinators treat as "not this unit's business" and never as a fault.
// Widen embeds a V back into the union.
type Variant[U, V any] struct {
	Narrow func(U) (V, bool)
	Widen  func(V) U
}

// VariantOf builds a Variant from Go's type system: narrowing is a type assertion,
// widening an interface conversion.
//
// It panics with a *CompositionError when V is not assignable to U, so that a
// mismatch surfaces while composing, not while folding events.
func VariantOf[U, V any]() Variant[U, V] {
	unionType := reflect.TypeFor[U]()
	variantType := reflect.TypeFor[V]()

	if !variantType.AssignableTo(unionType) {
		panic(&CompositionError{Union: unionType.String(), Variant: variantType.String()})
	}

	return Variant[U, V]{
		Narrow: func(u U) (V, bool) {
			v, ok := any(u).(V)
			return v, ok
		},
		Widen: func(v V) U {
			return any(v).(U) //nolint:forcetypeassert // assignability checked above
		},
	}
}
