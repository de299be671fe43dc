package dbm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		cs   []Constraint
		want string
	}{
		{"unconstrained", nil, "true"},
		{"upper bound", []Constraint{upper(1, 3, false)}, "(x1<=3)"},
		{"strict upper bound", []Constraint{upper(2, 3, true)}, "(x2<3)"},
		{"open interval", []Constraint{lower(1, 2, true), upper(1, 5, true)}, "(2<x1 && x1<5)"},
		{"weak lower bound", []Constraint{lower(2, 7, false)}, "(7<=x2)"},
		{"fixed value", equals(1, 5), "(x1==5)"},
		{"difference", []Constraint{MustConstraint(1, 2, 3, false)}, "(x1-x2<=3)"},
		{"negative difference", []Constraint{MustConstraint(2, 1, -4, true)}, "(x2-x1<-4)"},
		{"fixed difference", []Constraint{MustConstraint(1, 2, 3, false), MustConstraint(2, 1, -3, false)}, "(x1-x2==3)"},
		{"clock comparison", []Constraint{MustConstraint(1, 2, 0, true)}, "(x1<x2)"},
		{"weak clock comparison", []Constraint{MustConstraint(1, 2, 0, false)}, "(x1<=x2)"},
		{"clocks equal", []Constraint{MustConstraint(1, 2, 0, false), MustConstraint(2, 1, 0, false)}, "(x1==x2)"},
		{"fixed at zero", []Constraint{upper(2, 0, false)}, "(x2==0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := constrained(t, 3, tt.cs...)
			assert.Equal(t, tt.want, z.String())
		})
	}
}

func TestString_EmptyAndZero(t *testing.T) {
	empty, err := Empty(3)
	assert.NoError(t, err)
	assert.Equal(t, "false", empty.String())
	assert.Equal(t, "(x1==0 && x2==0)", zero(t, 3).String())

	var invalid Zone
	assert.Equal(t, "invalid", invalid.String())
}

func TestFormat_ClockNames(t *testing.T) {
	z := constrained(t, 3, upper(1, 3, false), MustConstraint(2, 1, 1, true), lower(2, 1, false))
	names := NamesFrom([]string{"door", "light"})

	assert.Equal(t, "(1<=x2 && x1<=3 && x2-x1<1)", z.String())
	assert.Equal(t, "(1<=light && door<=3 && light-door<1)", z.Format(names))
	assert.Equal(t, z.String(), z.Format(nil))
}

func TestNamesFrom_FallsBackToDefault(t *testing.T) {
	names := NamesFrom([]string{"a"})
	assert.Equal(t, "a", names(1))
	assert.Equal(t, "x2", names(2))
	assert.Equal(t, "x0", names(0))
}

func TestConstraint_String(t *testing.T) {
	tests := []struct {
		c    Constraint
		want string
	}{
		{upper(1, 5, false), "x1<=5"},
		{upper(1, 5, true), "x1<5"},
		{lower(3, 2, false), "2<=x3"},
		{lower(3, 2, true), "2<x3"},
		{MustConstraint(1, 2, 3, false), "x1-x2<=3"},
		{MustConstraint(2, 1, 0, true), "x2<x1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.c.String())
	}

	c := MustConstraint(1, 2, -1, true)
	assert.Equal(t, "a-b<-1", c.Format(NamesFrom([]string{"a", "b"})))
	assert.True(t, c.IsStrict())
	assert.Equal(t, int64(-1), c.Value())
}
