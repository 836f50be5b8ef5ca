package domain

// Pair is the product of two values. Combined Deciders and Views use it as their state.
type Pair[A, B any] struct {
	First  A
	Second B
}

// PairOf builds a Pair.
func PairOf[A, B any](first A, second B) Pair[A, B] {
	return Pair[A, B]{First: first, Second: second}
}

// Identity returns its argument unchanged.
func Identity[T any](v T) T {
	return v
}

// Compose is left to right function composition: Compose(f, g)(x) == g(f(x)).
func Compose[A, B, C any](f func(A) B, g func(B) C) func(A) C {
	return func(a A) C {
		return g(f(a))
	}
}
