package dbm

import "slices"

// Relation describes how two zones of the same dimension compare as sets.
type Relation int

const (
	// Different: neither zone includes the other.
	Different Relation = iota
	// Subset: the first zone is strictly included in the second.
	Subset
	// Superset: the first zone strictly includes the second.
	Superset
	// Equal: both zones accept the same valuations.
	Equal
)

func (r Relation) String() string {
	switch r {
	case Subset:
		return "subset"
	case Superset:
		return "superset"
	case Equal:
		return "equal"
	default:
		return "different"
	}
}

// Equal reports whether z and o accept exactly the same valuations. Since
// canonical forms are unique this is entrywise equality.
func (z Zone) Equal(o Zone) (bool, error) {
	if err := z.checkPair("Equal", o); err != nil {
		return false, err
	}
	return z.equal(o), nil
}

func (z Zone) equal(o Zone) bool {
	if z.IsEmpty() || o.IsEmpty() {
		return z.IsEmpty() == o.IsEmpty()
	}
	return slices.Equal(z.cells, o.cells)
}

// Relation compares z with o by set inclusion.
func (z Zone) Relation(o Zone) (Relation, error) {
	if err := z.checkPair("Relation", o); err != nil {
		return Different, err
	}
	switch {
	case z.IsEmpty() && o.IsEmpty():
		return Equal, nil
	case z.IsEmpty():
		return Subset, nil
	case o.IsEmpty():
		return Superset, nil
	}

	sub, super := true, true
	for idx, b := range z.cells {
		other := o.cells[idx]
		if b > other {
			sub = false
		}
		if b < other {
			super = false
		}
		if !sub && !super {
			return Different, nil
		}
	}
	switch {
	case sub && super:
		return Equal, nil
	case sub:
		return Subset, nil
	default:
		return Superset, nil
	}
}

// IsSubsetOf reports whether every valuation of z is also in o.
func (z Zone) IsSubsetOf(o Zone) (bool, error) {
	r, err := z.Relation(o)
	if err != nil {
		return false, err
	}
	return r == Subset || r == Equal, nil
}

// Compare is a total order on zones, consistent with Equal: by dimension,
// then empty before non-empty, then lexicographically by canonical
// entries. It exists for sorting and ordered containers; it carries no
// geometric meaning.
func Compare(a, b Zone) int {
	switch {
	case a.dim != b.dim:
		if a.dim < b.dim {
			return -1
		}
		return 1
	case a.IsEmpty() && b.IsEmpty():
		return 0
	case a.IsEmpty():
		return -1
	case b.IsEmpty():
		return 1
	}
	return slices.Compare(a.cells, b.cells)
}
