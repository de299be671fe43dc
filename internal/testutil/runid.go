package testutil

import (
	"fmt"
	"sync"
)

// FixedRunIDGenerator returns predetermined run IDs so stored runs and
// golden traces are stable across executions.
//
// IDs are handed out in the order given. Once they are used up the
// generator continues with "test-run-<n>", n counting every ID issued.
//
// Thread-safety: FixedRunIDGenerator is safe for concurrent use.
type FixedRunIDGenerator struct {
	mu  sync.Mutex
	ids []string
	n   int
}

// NewFixedRunIDGenerator creates a generator over ids.
//
//	gen := NewFixedRunIDGenerator("run-a")
//	gen.Generate() // "run-a"
//	gen.Generate() // "test-run-2"
func NewFixedRunIDGenerator(ids ...string) *FixedRunIDGenerator {
	return &FixedRunIDGenerator{ids: ids}
}

// Generate returns the next run ID.
func (g *FixedRunIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.n++
	if g.n <= len(g.ids) {
		return g.ids[g.n-1]
	}
	return fmt.Sprintf("test-run-%d", g.n)
}
