package game

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/geode-sdk/GeodeDiscord/internal/quotes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, count int64) quotes.RosterEntry {
	return quotes.RosterEntry{UserID: id, Count: count}
}

func ids(entries []quotes.RosterEntry) map[string]bool {
	set := make(map[string]bool, len(entries))
	for _, e := range entries {
		set[e.UserID] = true
	}
	return set
}

func TestSelectCandidates_AlwaysIncludesCorrectAuthor(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	roster := []quotes.RosterEntry{
		entry("B", 30), entry("C", 20), entry("D", 5), entry("E", 1),
	}

	for i := 0; i < 100; i++ {
		got := SelectCandidates(entry("A", 40), roster, 5, rng)
		set := ids(got)
		assert.True(t, set["A"], "correct author must always be included")
		assert.LessOrEqual(t, len(got), 5)
	}
}

func TestSelectCandidates_NeverExceedsDesired(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	var roster []quotes.RosterEntry
	for i := 0; i < 50; i++ {
		roster = append(roster, entry(fmt.Sprintf("u%d", i), int64(50-i)))
	}

	for i := 0; i < 100; i++ {
		got := SelectCandidates(entry("A", 25), roster, 5, rng)
		assert.Len(t, got, 5)

		// No duplicates
		assert.Len(t, ids(got), 5)
	}
}

func TestSelectCandidates_SmallRosterDegrades(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	tests := []struct {
		name    string
		roster  []quotes.RosterEntry
		desired int
		wantLen int
	}{
		{
			name:    "empty roster yields just the correct author",
			roster:  nil,
			desired: 5,
			wantLen: 1,
		},
		{
			name:    "two opponents yield three options",
			roster:  []quotes.RosterEntry{entry("B", 3), entry("C", 1)},
			desired: 5,
			wantLen: 3,
		},
		{
			name:    "desired one yields only the correct author",
			roster:  []quotes.RosterEntry{entry("B", 3)},
			desired: 1,
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectCandidates(entry("A", 2), tt.roster, tt.desired, rng)
			assert.Len(t, got, tt.wantLen)
			assert.True(t, ids(got)["A"])
		})
	}
}

func TestSelectCandidates_IgnoresCorrectAuthorInRoster(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	roster := []quotes.RosterEntry{
		entry("A", 40), // must be dropped, not picked twice
		entry("B", 30),
		entry("C", 20),
	}

	for i := 0; i < 50; i++ {
		got := SelectCandidates(entry("A", 40), roster, 5, rng)
		count := 0
		for _, e := range got {
			if e.UserID == "A" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	}
}

func TestSelectCandidates_WindowAroundRank(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	// Synthetic 20-entry roster, weights 200, 190, ... 10.
	var roster []quotes.RosterEntry
	for i := 0; i < 20; i++ {
		roster = append(roster, entry(fmt.Sprintf("u%02d", i), int64(200-10*i)))
	}

	// Correct author ranks below everyone: the window holds the five
	// entries just above that rank (start clamps to 15, the list ends
	// before the lower half fills up). Entries u00..u14 can never appear.
	correct := entry("A", 5)
	for i := 0; i < 200; i++ {
		got := SelectCandidates(correct, roster, 5, rng)
		for _, e := range got {
			if e.UserID == "A" {
				continue
			}
			assert.GreaterOrEqual(t, e.UserID, "u15", "candidate %s is outside the popularity window", e.UserID)
		}
	}

	// Correct author ranks first: the window is the top ten entries.
	correct = entry("A", 500)
	for i := 0; i < 200; i++ {
		got := SelectCandidates(correct, roster, 5, rng)
		for _, e := range got {
			if e.UserID == "A" {
				continue
			}
			assert.LessOrEqual(t, e.UserID, "u09", "candidate %s is outside the popularity window", e.UserID)
		}
	}
}

func TestSelectCandidates_TinyRosterKeepsNeighbors(t *testing.T) {
	rng := rand.New(rand.NewSource(6))

	// Roster smaller than the window: everyone is eligible and with
	// desired=5 every opponent is always picked.
	roster := []quotes.RosterEntry{
		entry("B", 30), entry("C", 20), entry("D", 5), entry("E", 1),
	}
	got := SelectCandidates(entry("A", 40), roster, 5, rng)
	set := ids(got)
	require.Len(t, got, 5)
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		assert.True(t, set[id], "expected %s in options", id)
	}
}

func TestSelectCandidates_HigherWeightPickedMoreOften(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	// One draw per round (desired=2): pick frequency must be ordered by
	// weight. Statistical check over many rounds.
	roster := []quotes.RosterEntry{
		entry("heavy", 80), entry("mid", 15), entry("light", 5),
	}
	counts := map[string]int{}
	const rounds = 5000
	for i := 0; i < rounds; i++ {
		got := SelectCandidates(entry("A", 40), roster, 2, rng)
		require.Len(t, got, 2)
		for _, e := range got {
			if e.UserID != "A" {
				counts[e.UserID]++
			}
		}
	}

	assert.Greater(t, counts["heavy"], counts["mid"])
	assert.Greater(t, counts["mid"], counts["light"])
	// Rough proportionality: heavy should take about 80% of draws.
	assert.InDelta(t, 0.80, float64(counts["heavy"])/rounds, 0.05)
}

func TestSelectCandidates_ZeroWeightsUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	roster := []quotes.RosterEntry{
		entry("B", 0), entry("C", 0), entry("D", 0),
	}

	counts := map[string]int{}
	for i := 0; i < 3000; i++ {
		got := SelectCandidates(entry("A", 0), roster, 2, rng)
		require.Len(t, got, 2)
		for _, e := range got {
			if e.UserID != "A" {
				counts[e.UserID]++
			}
		}
	}

	// All-zero weights degrade to a uniform draw.
	for _, id := range []string{"B", "C", "D"} {
		assert.InDelta(t, 1000, counts[id], 150)
	}
}
