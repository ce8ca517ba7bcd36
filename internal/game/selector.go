package game

import (
	"math/rand"
	"sort"

	"github.com/geode-sdk/GeodeDiscord/internal/quotes"
)

// rangeSize bounds the popularity window around the correct author's rank:
// at most rangeSize entries above, and the window is capped at 2*rangeSize.
const rangeSize = 5

// SelectCandidates builds the set of guess options for one round. The result
// always contains the correct author, never exceeds desired entries, and
// holds fewer when not enough similarly-popular authors exist. roster must
// not contain the correct author; entries with the same user ID are ignored.
// Order is unspecified, callers shuffle before display.
func SelectCandidates(correct quotes.RosterEntry, roster []quotes.RosterEntry, desired int, rng *rand.Rand) []quotes.RosterEntry {
	selected := []quotes.RosterEntry{correct}
	if desired <= 1 {
		return selected
	}

	working := make([]quotes.RosterEntry, 0, len(roster))
	for _, entry := range roster {
		if entry.UserID != correct.UserID {
			working = append(working, entry)
		}
	}
	sort.SliceStable(working, func(i, j int) bool {
		return working[i].Count > working[j].Count
	})

	// Rank the correct author would hold in the descending roster.
	rank := sort.Search(len(working), func(i int) bool {
		return working[i].Count <= correct.Count
	})

	// Window of similarly popular authors around that rank.
	start := rank - rangeSize
	if start < 0 {
		start = 0
	}
	end := start + 2*rangeSize
	if end > len(working) {
		end = len(working)
	}

	pool := make([]quotes.RosterEntry, end-start)
	copy(pool, working[start:end])

	// Weighted draws without replacement until enough options are picked
	// or the window runs dry.
	for len(selected) < desired && len(pool) > 0 {
		i := drawWeighted(pool, rng)
		selected = append(selected, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}

	return selected
}

// drawWeighted picks an index with probability proportional to its weight
// among the remaining total. An all-zero pool degrades to a uniform draw.
func drawWeighted(pool []quotes.RosterEntry, rng *rand.Rand) int {
	var total int64
	for _, entry := range pool {
		total += entry.Count
	}
	if total <= 0 {
		return rng.Intn(len(pool))
	}

	r := rng.Int63n(total)
	for i, entry := range pool {
		r -= entry.Count
		if r < 0 {
			return i
		}
	}
	return len(pool) - 1
}
