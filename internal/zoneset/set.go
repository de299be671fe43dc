package zoneset

import (
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/zones/internal/dbm"
)

// Set holds distinct zones of one dimension.
//
// Zones are bucketed by Sum64; a bucket hit is confirmed with Equal, so
// a 64-bit collision never merges two different zones. The dimension is
// fixed by the first zone added and reset by Clear.
//
// Thread-safe: every method may be called concurrently.
type Set struct {
	mu      sync.Mutex
	dim     int
	buckets map[uint64][]dbm.Zone
	count   int
}

// New creates an empty set.
func New() *Set {
	return &Set{buckets: make(map[uint64][]dbm.Zone)}
}

// Add inserts z unless an equal zone is already present. It reports
// whether z was new.
func (s *Set) Add(z dbm.Zone) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLocked("Add", z); err != nil {
		return false, err
	}
	key := z.Sum64()
	if containsEqual(s.buckets[key], z) {
		return false, nil
	}
	if s.dim == 0 {
		s.dim = z.Dim()
	}
	s.buckets[key] = append(s.buckets[key], z)
	s.count++
	return true, nil
}

// Contains reports whether a zone equal to z is present.
func (s *Set) Contains(z dbm.Zone) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLocked("Contains", z); err != nil {
		return false, err
	}
	return containsEqual(s.buckets[z.Sum64()], z), nil
}

// Len returns the number of distinct zones.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.count
}

// Dim returns the dimension shared by the zones in the set, or 0 when the
// set is empty.
func (s *Set) Dim() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dim
}

// Zones returns the members sorted with dbm.Compare.
func (s *Set) Zones() []dbm.Zone {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]dbm.Zone, 0, s.count)
	for _, bucket := range s.buckets {
		out = append(out, bucket...)
	}
	slices.SortFunc(out, dbm.Compare)
	return out
}

// Clear removes every zone and forgets the dimension.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buckets = make(map[uint64][]dbm.Zone)
	s.count = 0
	s.dim = 0
}

func (s *Set) checkLocked(op string, z dbm.Zone) error {
	if !z.IsValid() {
		return fmt.Errorf("zoneset.%s: %w", op, dbm.ErrInvalidZone)
	}
	if s.dim != 0 && z.Dim() != s.dim {
		return fmt.Errorf("zoneset.%s: set holds dimension %d, zone has %d: %w",
			op, s.dim, z.Dim(), dbm.ErrDimensionMismatch)
	}
	return nil
}

func containsEqual(bucket []dbm.Zone, z dbm.Zone) bool {
	for _, other := range bucket {
		if eq, err := other.Equal(z); err == nil && eq {
			return true
		}
	}
	return false
}
