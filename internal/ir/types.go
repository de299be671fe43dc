package ir

import (
	"strconv"
	"strings"
)

// Init values of a ZoneSpec.
const (
	InitUniverse = "universe"
	InitZero     = "zero"
)

// Comparison operators of a ConstraintSpec.
const (
	OpLT = "<"
	OpLE = "<="
	OpEQ = "=="
	OpGE = ">="
	OpGT = ">"
)

// ValidOps defines allowed constraint operators.
var ValidOps = map[string]bool{
	OpLT: true,
	OpLE: true,
	OpEQ: true,
	OpGE: true,
	OpGT: true,
}

// ValidInits defines allowed starting zones.
var ValidInits = map[string]bool{
	InitUniverse: true,
	InitZero:     true,
}

// ZoneSpec is a compiled zone definition: the clocks it ranges over, the
// zone it starts from, and the constraints applied in order.
type ZoneSpec struct {
	Name        string           `json:"name"`
	Clocks      []string         `json:"clocks"`
	Init        string           `json:"init"`
	Constraints []ConstraintSpec `json:"constraints"`
	Elapse      bool             `json:"elapse"` // let time pass after constraining
}

// ConstraintSpec is Left - Right Op Bound. An empty Right is the
// reference clock, so the constraint bounds Left alone.
type ConstraintSpec struct {
	Left  string `json:"left"`
	Right string `json:"right,omitempty"`
	Op    string `json:"op"`
	Bound int64  `json:"bound"`
}

// String renders the constraint in the source syntax, e.g. "x - y < 2".
func (c ConstraintSpec) String() string {
	var sb strings.Builder
	sb.WriteString(c.Left)
	if c.Right != "" {
		sb.WriteString(" - ")
		sb.WriteString(c.Right)
	}
	sb.WriteByte(' ')
	sb.WriteString(c.Op)
	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatInt(c.Bound, 10))
	return sb.String()
}

// ClockIndex returns the zone index of a clock name (1-based; 0 is the
// reference clock) and whether the spec declares it.
func (s *ZoneSpec) ClockIndex(name string) (int, bool) {
	for i, c := range s.Clocks {
		if c == name {
			return i + 1, true
		}
	}
	return 0, false
}

// Dim returns the matrix dimension the spec needs.
func (s *ZoneSpec) Dim() int { return len(s.Clocks) + 1 }

// Value returns the spec as a canonical Object.
func (s *ZoneSpec) Value() Object {
	clocks := make(Array, len(s.Clocks))
	for i, c := range s.Clocks {
		clocks[i] = Str(c)
	}
	constraints := make(Array, len(s.Constraints))
	for i, c := range s.Constraints {
		constraints[i] = c.Value()
	}
	return Object{
		"name":        Str(s.Name),
		"clocks":      clocks,
		"init":        Str(s.Init),
		"constraints": constraints,
		"elapse":      Bool(s.Elapse),
	}
}

// Value returns the constraint as a canonical Object.
func (c ConstraintSpec) Value() Object {
	obj := Object{
		"left":  Str(c.Left),
		"op":    Str(c.Op),
		"bound": Int(c.Bound),
	}
	if c.Right != "" {
		obj["right"] = Str(c.Right)
	}
	return obj
}
