package dbm

import "github.com/roach88/zones/internal/bound"

// close tightens every entry to its shortest-path value (Floyd–Warshall
// over bound addition). It returns false as soon as a diagonal entry
// drops below ≤ 0, i.e. the constraints have a negative cycle and the
// zone is empty; the cells are garbage in that case.
//
// Time: O(dim³). Idempotent on an already closed matrix.
func (m *matrix) close() bool {
	n := m.dim
	for k := 0; k < n; k++ {
		rowK := m.cells[k*n : (k+1)*n]
		for i := 0; i < n; i++ {
			if i == k {
				continue
			}
			ik := m.cells[i*n+k]
			if ik.IsInfinity() {
				continue
			}
			rowI := m.cells[i*n : (i+1)*n]
			for j, kj := range rowK {
				if kj.IsInfinity() {
					continue
				}
				if s := bound.Add(ik, kj); s < rowI[j] {
					rowI[j] = s
				}
			}
			if rowI[i] < bound.LEZero {
				return false
			}
		}
	}
	return true
}

// constrain intersects a closed matrix with x_i - x_j ◁ b and restores
// closure incrementally. It returns false if the result is empty.
//
// Time: O(dim²) when the constraint tightens, O(1) otherwise.
func (m *matrix) constrain(i, j int, b bound.Bound) bool {
	if bound.Add(m.at(j, i), b) < bound.LEZero {
		return false
	}
	if !m.tighten(i, j, b) {
		return true
	}
	m.closeij(i, j)
	return true
}

// closeij propagates a freshly tightened entry (a, b) of an otherwise
// closed, non-empty matrix. Every shortest path that improves uses the
// new edge exactly once, so a single pass suffices.
func (m *matrix) closeij(a, b int) {
	n := m.dim
	ab := m.at(a, b)
	rowB := m.cells[b*n : (b+1)*n]
	for i := 0; i < n; i++ {
		ia := m.cells[i*n+a]
		if ia.IsInfinity() {
			continue
		}
		through := bound.Add(ia, ab)
		rowI := m.cells[i*n : (i+1)*n]
		for j, bj := range rowB {
			if bj.IsInfinity() {
				continue
			}
			if s := bound.Add(through, bj); s < rowI[j] {
				rowI[j] = s
			}
		}
	}
}

// isClosed reports whether no entry can be tightened through a third
// clock.
func (m *matrix) isClosed() bool {
	n := m.dim
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			ik := m.at(i, k)
			if ik.IsInfinity() {
				continue
			}
			for j := 0; j < n; j++ {
				if bound.Add(ik, m.at(k, j)) < m.at(i, j) {
					return false
				}
			}
		}
	}
	return true
}
