// Package dbm implements clock zones as difference-bound matrices.
//
// A zone over n clocks is an (n+1)×(n+1) matrix of bound.Bound values.
// Entry (i, j) bounds x_i - x_j; index 0 is the reference clock whose
// value is always 0, so (i, 0) is an upper bound on x_i and (0, j) is a
// (negated) lower bound on x_j.
//
// # Persistence
//
// Zone is an immutable value. Every operation returns a new Zone built on
// a private copy of the receiver's storage; nothing writes to a matrix
// once the constructing function has returned. Zones may therefore be
// shared between goroutines without locking.
//
// # Canonical form
//
// Every non-empty Zone is shortest-path closed: no entry can be tightened
// by going through a third clock. Emptiness is detected during closure
// (a negative cycle) and represented by a dedicated empty value, so
// IsEmpty, Equal and String all agree on it. Canonical form is unique per
// set of accepted valuations, which makes Equal, Hash and Compare plain
// comparisons of the stored entries.
//
// # Errors
//
// Precondition violations (clock index out of range, dimension mismatch
// between operands, extracting constraints from an empty zone, malformed
// points or matrices) are returned as *PreconditionError values that
// match the Err* sentinels through errors.Is. A failing operation returns
// the invalid zero Zone, which every other operation rejects.
//
// Emptiness is a state, not an error.
package dbm
