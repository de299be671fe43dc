package dbm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/zones/internal/bound"
)

// universe returns Universe(dim) or fails the test.
func universe(t *testing.T, dim int) Zone {
	t.Helper()
	z, err := Universe(dim)
	require.NoError(t, err)
	return z
}

// zero returns Zero(dim) or fails the test.
func zero(t *testing.T, dim int) Zone {
	t.Helper()
	z, err := Zero(dim)
	require.NoError(t, err)
	return z
}

// constrained applies cs to Universe(dim) or fails the test.
func constrained(t *testing.T, dim int, cs ...Constraint) Zone {
	t.Helper()
	z, err := universe(t, dim).Constrain(cs...)
	require.NoError(t, err)
	return z
}

// upper is x_k <= m (or < m when strict).
func upper(k int, m int64, strict bool) Constraint {
	return MustConstraint(k, 0, m, strict)
}

// lower is m <= x_k (or m < x_k when strict).
func lower(k int, m int64, strict bool) Constraint {
	return MustConstraint(0, k, -m, strict)
}

// equals is x_k == m as two constraints.
func equals(k int, m int64) []Constraint {
	return []Constraint{upper(k, m, false), lower(k, m, false)}
}

func TestConstructors_InvalidDimension(t *testing.T) {
	for _, dim := range []int{0, -1, MaxDimension + 1} {
		_, err := Zero(dim)
		assert.True(t, errors.Is(err, ErrInvalidDimension), "Zero(%d)", dim)

		_, err = Universe(dim)
		assert.True(t, errors.Is(err, ErrInvalidDimension), "Universe(%d)", dim)

		_, err = Empty(dim)
		assert.True(t, errors.Is(err, ErrInvalidDimension), "Empty(%d)", dim)
	}
}

func TestZero(t *testing.T) {
	z := zero(t, 3)
	assert.Equal(t, 3, z.Dim())
	assert.Equal(t, 2, z.Clocks())
	assert.True(t, z.IsValid())
	assert.False(t, z.IsEmpty())

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			b, err := z.At(i, j)
			require.NoError(t, err)
			assert.Equal(t, bound.LEZero, b, "entry (%d,%d)", i, j)
		}
	}

	in, err := z.IncludesZero()
	require.NoError(t, err)
	assert.True(t, in)

	in, err = z.IncludesPoint([]int64{0, 1, 0})
	require.NoError(t, err)
	assert.False(t, in)
}

func TestZero_DimensionOne(t *testing.T) {
	z := zero(t, 1)
	assert.Equal(t, 0, z.Clocks())
	assert.Equal(t, "true", z.String())

	cs, err := z.MinimalConstraints()
	require.NoError(t, err)
	assert.Empty(t, cs)
}

func TestUniverse(t *testing.T) {
	z := universe(t, 3)
	assert.False(t, z.IsEmpty())
	assert.Equal(t, "true", z.String())

	b, err := z.At(1, 0)
	require.NoError(t, err)
	assert.True(t, b.IsInfinity())

	b, err = z.At(0, 2)
	require.NoError(t, err)
	assert.Equal(t, bound.LEZero, b)

	in, err := z.IncludesPoint([]int64{0, 1000, 7})
	require.NoError(t, err)
	assert.True(t, in)
}

func TestEmpty(t *testing.T) {
	z, err := Empty(3)
	require.NoError(t, err)
	assert.True(t, z.IsEmpty())
	assert.True(t, z.IsValid())
	assert.Equal(t, 3, z.Dim())
	assert.Equal(t, "false", z.String())
	assert.Nil(t, z.Matrix())

	_, err = z.At(0, 0)
	assert.True(t, errors.Is(err, ErrEmptyZone))
}

func TestZeroValueZoneIsRejected(t *testing.T) {
	var z Zone
	assert.False(t, z.IsValid())
	assert.False(t, z.IsEmpty())

	_, err := z.Up()
	assert.True(t, errors.Is(err, ErrInvalidZone))

	_, err = z.Constrain(upper(1, 3, false))
	assert.True(t, errors.Is(err, ErrInvalidZone))

	_, err = z.Intersect(universe(t, 2))
	assert.True(t, errors.Is(err, ErrInvalidZone))

	_, err = universe(t, 2).Intersect(z)
	assert.True(t, errors.Is(err, ErrInvalidZone))

	_, err = z.MinimalConstraints()
	assert.True(t, errors.Is(err, ErrInvalidZone))

	assert.True(t, IsPrecondition(err))
}

func TestFailedOperationReturnsInvalidZone(t *testing.T) {
	z, err := universe(t, 2).Free(5)
	require.Error(t, err)
	assert.False(t, z.IsValid())

	_, err = z.Up()
	assert.True(t, errors.Is(err, ErrInvalidZone))
}

func TestFromMatrix_ClosesEntries(t *testing.T) {
	inf := bound.Infinity
	z, err := FromMatrix([][]bound.Bound{
		{bound.LEZero, bound.LEZero, bound.LEZero},
		{bound.LE(3), bound.LEZero, bound.LE(1)},
		{inf, inf, bound.LEZero},
	})
	require.NoError(t, err)
	require.False(t, z.IsEmpty())

	// x2 - x0 is unbounded, x1 - x2 <= 1; nothing tightens (2, 0).
	b, err := z.At(2, 0)
	require.NoError(t, err)
	assert.True(t, b.IsInfinity())

	// x2 - x1 <= x2 - x0 + x0 - x1 = inf, stays unbounded.
	b, err = z.At(2, 1)
	require.NoError(t, err)
	assert.True(t, b.IsInfinity())

	b, err = z.At(1, 0)
	require.NoError(t, err)
	assert.Equal(t, bound.LE(3), b)

	m := z.mutable()
	assert.True(t, m.isClosed())
}

func TestFromMatrix_NegativeCycleIsEmpty(t *testing.T) {
	z, err := FromMatrix([][]bound.Bound{
		{bound.LEZero, bound.LE(-5)},
		{bound.LE(3), bound.LEZero},
	})
	require.NoError(t, err)
	assert.True(t, z.IsEmpty())
	assert.Equal(t, "false", z.String())
}

func TestFromMatrix_StrictZeroCycleIsEmpty(t *testing.T) {
	// x1 <= 3 and 3 < x1.
	z, err := FromMatrix([][]bound.Bound{
		{bound.LEZero, bound.LT(-3)},
		{bound.LE(3), bound.LEZero},
	})
	require.NoError(t, err)
	assert.True(t, z.IsEmpty())
}

func TestFromMatrix_Errors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]bound.Bound
		want error
	}{
		{
			name: "no rows",
			rows: nil,
			want: ErrInvalidDimension,
		},
		{
			name: "not square",
			rows: [][]bound.Bound{{bound.LEZero, bound.LEZero}, {bound.LEZero}},
			want: ErrInvalidMatrix,
		},
		{
			name: "bad diagonal",
			rows: [][]bound.Bound{{bound.LEZero, bound.LEZero}, {bound.Infinity, bound.LE(2)}},
			want: ErrInvalidMatrix,
		},
		{
			name: "unrepresentable entry",
			rows: [][]bound.Bound{{bound.LEZero, bound.LEZero}, {bound.Bound(int64(bound.MaxMagnitude+5) << 1), bound.LEZero}},
			want: ErrInvalidMatrix,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMatrix(tt.rows)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestFromMatrix_NormalizesInfinityAndLowerBounds(t *testing.T) {
	z, err := FromMatrix([][]bound.Bound{
		{bound.LEZero, bound.LE(4)},
		{bound.Infinity + 6, bound.LEZero},
	})
	require.NoError(t, err)
	assert.True(t, z.equal(universe(t, 2)))
}

func TestMatrixReturnsCopy(t *testing.T) {
	z := constrained(t, 2, upper(1, 3, false))
	rows := z.Matrix()
	require.Len(t, rows, 2)
	rows[1][0] = bound.LE(100)

	b, err := z.At(1, 0)
	require.NoError(t, err)
	assert.Equal(t, bound.LE(3), b)
}

func TestAt_OutOfRange(t *testing.T) {
	_, err := universe(t, 2).At(2, 0)
	assert.True(t, errors.Is(err, ErrClockIndex))
}

func TestPreconditionError_Message(t *testing.T) {
	_, err := universe(t, 3).Free(3)
	require.Error(t, err)

	var pe *PreconditionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, CodeClockIndex, pe.Code)
	assert.Equal(t, "Free", pe.Op)
	assert.Equal(t, "dbm.Free: CLOCK_INDEX: clock 3 not in [1, 3)", err.Error())
	assert.False(t, errors.Is(err, ErrEmptyZone))
}
