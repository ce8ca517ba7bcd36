package game

import "time"

// GuessStats holds the incrementally maintained per-user guessing counters.
// These are the canonical streak values; ComputeStreaks exists as an offline
// audit over the raw guess history.
type GuessStats struct {
	UserID    string `gorm:"primaryKey" json:"user_id"`
	Total     int64  `gorm:"not null;default:0" json:"total"`
	Correct   int64  `gorm:"not null;default:0" json:"correct"`
	Streak    int64  `gorm:"not null;default:0" json:"streak"`
	MaxStreak int64  `gorm:"not null;default:0" json:"max_streak"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GuessStats
func (GuessStats) TableName() string {
	return "guess_stats"
}

// Apply folds one guess outcome into the counters. Outcomes must be applied
// in the order they happened; under that condition the counters match the
// run-length form computed by ComputeStreaks.
func (s *GuessStats) Apply(correct bool) {
	s.Total++
	if correct {
		s.Correct++
		s.Streak++
		if s.Streak > s.MaxStreak {
			s.MaxStreak = s.Streak
		}
	} else {
		s.Streak = 0
	}
}

// ComputeStreaks derives (currentStreak, maxStreak) from a full outcome
// history, oldest first, by run-length decomposition. The current streak is
// the trailing run of correct guesses, zero when the last guess was wrong.
func ComputeStreaks(outcomes []bool) (current, max int64) {
	var run int64
	for _, correct := range outcomes {
		if correct {
			run++
			if run > max {
				max = run
			}
		} else {
			run = 0
		}
	}
	return run, max
}
