package dbm

import (
	"math/bits"

	"github.com/roach88/zones/internal/bound"
)

// MinGraph marks the entries of a canonical zone that are not implied by
// the others. The marked constraints, applied to the universal zone,
// reproduce the zone exactly. It is computed on demand and never stored
// inside a Zone.
type MinGraph struct {
	dim   int
	words []uint64
	count int
}

func newMinGraph(dim int) MinGraph {
	return MinGraph{dim: dim, words: make([]uint64, (dim*dim+63)/64)}
}

// Dim returns the dimension of the zone the graph was computed from.
func (g MinGraph) Dim() int { return g.dim }

// Len returns the number of marked entries.
func (g MinGraph) Len() int { return g.count }

// Has reports whether entry (i, j) is marked.
func (g MinGraph) Has(i, j int) bool {
	if i < 0 || j < 0 || i >= g.dim || j >= g.dim {
		return false
	}
	idx := i*g.dim + j
	return g.words[idx/64]&(1<<(idx%64)) != 0
}

// Each calls fn for every marked entry in row-major order.
func (g MinGraph) Each(fn func(i, j int)) {
	for w, word := range g.words {
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			word &^= 1 << bit
			idx := w*64 + bit
			fn(idx/g.dim, idx%g.dim)
		}
	}
}

func (g *MinGraph) mark(i, j int) {
	idx := i*g.dim + j
	if g.words[idx/64]&(1<<(idx%64)) == 0 {
		g.words[idx/64] |= 1 << (idx % 64)
		g.count++
	}
}

func (g *MinGraph) unmark(i, j int) {
	idx := i*g.dim + j
	if g.words[idx/64]&(1<<(idx%64)) != 0 {
		g.words[idx/64] &^= 1 << (idx % 64)
		g.count--
	}
}

// MinimalGraph computes the non-redundant entries of z.
//
// An entry (i, j) is redundant when some third clock k gives
// M[i][k] + M[k][j] ≤ M[i][j]. Clocks whose difference is fixed form
// zero-weight cycles in which each entry implies the others, so those
// clocks are grouped first: every group keeps one cycle through its
// members in index order (the reference clock's group keeps both edges
// to each member instead), and redundancy is decided between group
// representatives only. Lower bounds 0 - x_j ≤ 0 hold for every valuation
// and are left unmarked, so the universal zone has an empty graph.
func (z Zone) MinimalGraph() (MinGraph, error) {
	const op = "MinimalGraph"
	if err := z.check(op); err != nil {
		return MinGraph{}, err
	}
	if z.IsEmpty() {
		return MinGraph{}, newError(CodeEmptyZone, op, "empty zone has no minimal graph")
	}
	return z.minimalGraph(), nil
}

func (z Zone) minimalGraph() MinGraph {
	n := z.dim
	g := newMinGraph(n)

	// rep[i] is the smallest clock tied to i by a zero-weight cycle. In a
	// closed non-empty zone the relation is transitive, so comparing with
	// representatives is enough.
	rep := make([]int, n)
	members := make(map[int][]int)
	var reps []int
	for i := 0; i < n; i++ {
		rep[i] = i
		for _, r := range reps {
			if bound.Add(z.at(i, r), z.at(r, i)) == bound.LEZero {
				rep[i] = r
				break
			}
		}
		if rep[i] == i {
			reps = append(reps, i)
		}
		members[rep[i]] = append(members[rep[i]], i)
	}

	for _, r := range reps {
		group := members[r]
		if len(group) < 2 {
			continue
		}
		if r == 0 {
			// Fixed clock values hang off the reference clock so that each
			// one renders as its own equality.
			for _, m := range group[1:] {
				g.mark(0, m)
				g.mark(m, 0)
			}
			continue
		}
		for t, i := range group {
			g.mark(i, group[(t+1)%len(group)])
		}
	}

	for _, i := range reps {
		for _, j := range reps {
			if i == j {
				continue
			}
			ij := z.at(i, j)
			if ij.IsInfinity() || z.impliedBetween(reps, i, j) {
				continue
			}
			if i == 0 && z.impliedByMember(members[j], j) {
				continue
			}
			g.mark(i, j)
		}
	}

	for j := 1; j < n; j++ {
		if z.at(0, j) == bound.LEZero {
			g.unmark(0, j)
		}
	}
	return g
}

// impliedBetween reports whether (i, j) follows from a path through
// another representative.
func (z Zone) impliedBetween(reps []int, i, j int) bool {
	ij := z.at(i, j)
	for _, k := range reps {
		if k == i || k == j {
			continue
		}
		if bound.Add(z.at(i, k), z.at(k, j)) <= ij {
			return true
		}
	}
	return false
}

// impliedByMember reports whether the lower bound (0, j) follows from
// x_m >= 0 for another member m of j's group, whose offset to x_j is
// fixed by the group's cycle.
func (z Zone) impliedByMember(group []int, j int) bool {
	zj := z.at(0, j)
	for _, m := range group {
		if m != j && z.at(m, j) <= zj {
			return true
		}
	}
	return false
}
