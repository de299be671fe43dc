// Package bound encodes the right-hand side of a clock difference
// constraint x_i - x_j ◁ c as a single ordered integer.
//
// A Bound packs the integer magnitude c and the strictness of ◁ into one
// int64: the magnitude is shifted left by one and the low bit is set for
// non-strict (≤) bounds. With this layout the natural integer order is the
// order of bounds as upper limits: a smaller Bound is a tighter
// constraint, and for equal magnitudes "< c" sorts before "≤ c".
//
// Infinity is a strict sentinel above every finite bound and absorbs
// addition.
//
// This package imports nothing internal; dbm builds on it.
package bound
