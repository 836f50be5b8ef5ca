package domain

import "encoding/json"

// Option holds a value that may be absent.
//
// Deciders use it to model "no stream yet": an absent state is a first-class value,
// distinct from every domain state, and never an error.
type Option[T any] struct {
	value   T
	present bool
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, present: true}
}

// None returns an absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.present
}

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool {
	return o.present
}

// IsNone reports whether the value is absent.
func (o Option[T]) IsNone() bool {
	return !o.present
}

// OrElse returns the value if present, otherwise fallback.
func (o Option[T]) OrElse(fallback T) T {
	if o.present {
		return o.value
	}

	return fallback
}

// MapOption applies f to the value if present.
func MapOption[T, U any](o Option[T], f func(T) U) Option[U] {
	if !o.present {
		return None[U]()
	}

	return Some(f(o.value))
}

// MarshalJSON encodes an absent Option as null and a present one as its value.
func (o Option[T]) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}

	return json.Marshal(o.value)
}

// UnmarshalJSON reads null as absent. A present value that itself encodes as null
// does not survive the round trip.
func (o *Option[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None[T]()
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*o = Some(v)

	return nil
}
