// Package growslice implements the 1.5x-from-floor-16 growth
// discipline the source project's dsArray<T> uses for every
// authoring-side container, so the authored-graph builder allocates
// the same way the source does even though Go's append would grow on
// its own.
package growslice

// Floor is the smallest capacity a freshly grown slice receives.
const Floor = 16

// Grow returns the next capacity to allocate for a slice currently at
// capacity cap that needs room for at least need elements.
func Grow(cap, need int) int {
	if cap >= need {
		return cap
	}
	next := cap
	if next < Floor {
		next = Floor
	}
	for next < need {
		next = next + next/2
	}
	return next
}

// Append appends v to s, first growing s's backing array per Grow
// whenever len(s) == cap(s), rather than relying on append's own
// (unspecified) growth factor.
func Append[T any](s []T, v T) []T {
	if len(s) == cap(s) {
		next := Grow(cap(s), len(s)+1)
		grown := make([]T, len(s), next)
		copy(grown, s)
		s = grown
	}
	return append(s, v)
}
