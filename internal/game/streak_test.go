package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStreaks(t *testing.T) {
	tests := []struct {
		name        string
		outcomes    []bool
		wantCurrent int64
		wantMax     int64
	}{
		{
			name:        "empty history",
			outcomes:    nil,
			wantCurrent: 0,
			wantMax:     0,
		},
		{
			name:        "streak broken at the end",
			outcomes:    []bool{true, true, false, true, true, true, false},
			wantCurrent: 0,
			wantMax:     3,
		},
		{
			name:        "all correct",
			outcomes:    []bool{true, true, true},
			wantCurrent: 3,
			wantMax:     3,
		},
		{
			name:        "all wrong",
			outcomes:    []bool{false, false, false},
			wantCurrent: 0,
			wantMax:     0,
		},
		{
			name:        "trailing run is current",
			outcomes:    []bool{true, false, true, true},
			wantCurrent: 2,
			wantMax:     2,
		},
		{
			name:        "max in the middle",
			outcomes:    []bool{true, true, true, true, false, true},
			wantCurrent: 1,
			wantMax:     4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, max := ComputeStreaks(tt.outcomes)
			assert.Equal(t, tt.wantCurrent, current, "current streak")
			assert.Equal(t, tt.wantMax, max, "max streak")
		})
	}
}

func TestGuessStats_Apply(t *testing.T) {
	var stats GuessStats

	stats.Apply(true)
	stats.Apply(true)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(2), stats.Correct)
	assert.Equal(t, int64(2), stats.Streak)
	assert.Equal(t, int64(2), stats.MaxStreak)

	stats.Apply(false)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Correct)
	assert.Equal(t, int64(0), stats.Streak)
	assert.Equal(t, int64(2), stats.MaxStreak)

	stats.Apply(true)
	assert.Equal(t, int64(1), stats.Streak)
	assert.Equal(t, int64(2), stats.MaxStreak)
}

// The incremental counters must agree with the run-length decomposition for
// any outcome sequence applied in time order.
func TestGuessStats_IncrementalMatchesRunLength(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(50)
		outcomes := make([]bool, n)
		var correct int64
		for i := range outcomes {
			outcomes[i] = rng.Intn(2) == 0
			if outcomes[i] {
				correct++
			}
		}

		var stats GuessStats
		for _, outcome := range outcomes {
			stats.Apply(outcome)
		}

		current, max := ComputeStreaks(outcomes)
		assert.Equal(t, current, stats.Streak, "outcomes %v", outcomes)
		assert.Equal(t, max, stats.MaxStreak, "outcomes %v", outcomes)
		assert.Equal(t, int64(n), stats.Total)
		assert.Equal(t, correct, stats.Correct)
	}
}
