package dbm

import (
	"strconv"
	"strings"

	"github.com/roach88/zones/internal/bound"
)

// ClockNamer maps a clock index (1..dim-1) to a display name.
type ClockNamer func(i int) string

// DefaultNames names clock i "x<i>".
func DefaultNames(i int) string { return "x" + strconv.Itoa(i) }

// NamesFrom returns a ClockNamer over names, where names[0] is clock 1.
// Indices without a name fall back to DefaultNames.
func NamesFrom(names []string) ClockNamer {
	return func(i int) string {
		if i >= 1 && i <= len(names) {
			return names[i-1]
		}
		return DefaultNames(i)
	}
}

// String renders z with the default clock names.
func (z Zone) String() string { return z.Format(DefaultNames) }

// Format renders the minimal constraints of z as a conjunction:
// "false" for the empty zone, "true" when nothing constrains it, and
// "(c1 && c2 && ...)" otherwise. Where both x_i - x_j and x_j - x_i are
// marked and add up to zero, a single equality is printed.
func (z Zone) Format(names ClockNamer) string {
	if z.dim <= 0 {
		return "invalid"
	}
	if z.IsEmpty() {
		return "false"
	}
	if names == nil {
		names = DefaultNames
	}
	g := z.minimalGraph()
	if g.Len() == 0 {
		return "true"
	}

	var parts []string
	done := newMinGraph(z.dim)
	g.Each(func(i, j int) {
		if done.Has(i, j) {
			return
		}
		ij := z.at(i, j)
		// The implicit x_i >= 0 was cleared from the graph but still pairs
		// with x_i <= 0.
		paired := g.Has(j, i) || (j == 0 && z.at(0, i) == bound.LEZero)
		if paired && bound.Add(ij, z.at(j, i)) == bound.LEZero {
			done.mark(j, i)
			parts = append(parts, formatEquality(i, j, ij.Magnitude(), names))
			return
		}
		parts = append(parts, formatInequality(i, j, ij, names))
	})
	return "(" + strings.Join(parts, " && ") + ")"
}

// formatInequality renders x_i - x_j ◁ b.
func formatInequality(i, j int, b bound.Bound, names ClockNamer) string {
	v := b.Magnitude()
	switch {
	case i == 0:
		// 0 - x_j ◁ v is -v ◁ x_j.
		return strconv.FormatInt(-v, 10) + b.Op() + names(j)
	case j == 0:
		return names(i) + b.Op() + strconv.FormatInt(v, 10)
	case v == 0:
		return names(i) + b.Op() + names(j)
	default:
		return names(i) + "-" + names(j) + b.Op() + strconv.FormatInt(v, 10)
	}
}

// formatEquality renders x_i - x_j == v.
func formatEquality(i, j int, v int64, names ClockNamer) string {
	switch {
	case i == 0:
		return names(j) + "==" + strconv.FormatInt(-v, 10)
	case j == 0:
		return names(i) + "==" + strconv.FormatInt(v, 10)
	case v == 0:
		return names(i) + "==" + names(j)
	default:
		return names(i) + "-" + names(j) + "==" + strconv.FormatInt(v, 10)
	}
}
