package testutil

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_Sequence(t *testing.T) {
	tests := []struct {
		name  string
		clock *DeterministicClock
		want  []int64
	}{
		{"fresh", NewDeterministicClock(), []int64{1, 2, 3, 4}},
		{"continued", NewDeterministicClockAt(41), []int64{42, 43}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := tt.want[0] - 1
			assert.Equal(t, start, tt.clock.Current())

			for _, want := range tt.want {
				assert.Equal(t, want, tt.clock.Next())
			}
			assert.Equal(t, tt.want[len(tt.want)-1], tt.clock.Current())
		})
	}
}

func TestDeterministicClock_ResetReplaysSeqs(t *testing.T) {
	clock := NewDeterministicClockAt(7)

	first := []int64{clock.Next(), clock.Next()}
	clock.Reset()
	second := []int64{clock.Next(), clock.Next()}

	assert.Equal(t, []int64{8, 9}, first)
	assert.Equal(t, []int64{1, 2}, second, "reset restarts at zero, not at the original start")
}

func TestDeterministicClock_ConcurrentNextIsGapless(t *testing.T) {
	clock := NewDeterministicClock()
	const workers, perWorker = 50, 40

	seqs := make(chan int64, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				seqs <- clock.Next()
			}
		}()
	}
	wg.Wait()
	close(seqs)

	got := make([]int64, 0, workers*perWorker)
	for s := range seqs {
		got = append(got, s)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

	require.Len(t, got, workers*perWorker)
	for i, s := range got {
		require.Equal(t, int64(i+1), s, "seqs must be 1..n with no gaps or repeats")
	}
}
