package codec

// Occurrences holds every value recorded under one key, in encounter order.
// A key seen once is a bare value; a key seen more than once is repeated.
// All always yields the values so callers need not branch on the cardinality.
type Occurrences[T any] struct {
	items []T
}

// One returns a single, non-repeated occurrence
func One[T any](v T) Occurrences[T] {
	return Occurrences[T]{items: []T{v}}
}

// Many returns the given values in order
func Many[T any](vs ...T) Occurrences[T] {
	items := make([]T, len(vs))
	copy(items, vs)
	return Occurrences[T]{items: items}
}

// Len returns the number of occurrences
func (o Occurrences[T]) Len() int {
	return len(o.items)
}

// IsRepeated reports whether the key occurred more than once
func (o Occurrences[T]) IsRepeated() bool {
	return len(o.items) > 1
}

// Single returns the bare value when the key occurred exactly once.
func (o Occurrences[T]) Single() (T, bool) {
	if len(o.items) != 1 {
		var zero T
		return zero, false
	}
	return o.items[0], true
}

// First returns the first occurrence, or the zero value when empty
func (o Occurrences[T]) First() T {
	if len(o.items) == 0 {
		var zero T
		return zero
	}
	return o.items[0]
}

// All returns a copy of every occurrence in order
func (o Occurrences[T]) All() []T {
	out := make([]T, len(o.items))
	copy(out, o.items)
	return out
}

func (o *Occurrences[T]) add(v T) {
	o.items = append(o.items, v)
}
