package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geode-sdk/GeodeDiscord/internal/quotes"
	"gorm.io/gorm"
)

// Guess records one resolved round of the guessing game. Immutable once
// written; removed together with its quote.
type Guess struct {
	ResponseID     string    `gorm:"primaryKey" json:"response_id"` // ID of the game prompt message
	UserID         string    `gorm:"index;not null" json:"user_id"`
	GuessedID      string    `gorm:"not null;default:''" json:"guessed_id"` // empty when the round timed out
	QuoteMessageID string    `gorm:"index;not null" json:"quote_message_id"`
	GuessedAt      time.Time `gorm:"index" json:"guessed_at"`
}

// TableName specifies the table name for Guess
func (Guess) TableName() string {
	return "guesses"
}

// TimedOut reports whether the round expired without a guess
func (g Guess) TimedOut() bool {
	return g.GuessedID == ""
}

// Outcome describes one finished round before it is persisted
type Outcome struct {
	ResponseID     string
	UserID         string
	GuessedID      string // empty when the round timed out
	CorrectID      string
	QuoteMessageID string
	GuessedAt      time.Time
}

// Correct reports whether the guess named the quote's author
func (o Outcome) Correct() bool {
	return o.GuessedID != "" && o.GuessedID == o.CorrectID
}

// Store persists guesses and the per-user counters
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewStore creates a new game store
func NewStore(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// RecordOutcome appends the guess and folds it into the user's counters in
// one transaction, so two overlapping rounds for the same user cannot lose
// an update. When the transaction fails the outcome is still folded into the
// last durable counters and returned for display, flagged as not persisted;
// the next call reads the durable row again, so a failed save never becomes
// the next round's baseline.
func (s *Store) RecordOutcome(ctx context.Context, outcome Outcome) (GuessStats, bool, error) {
	var stats GuessStats
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadStats(tx, outcome.UserID, &stats); err != nil {
			return err
		}
		stats.Apply(outcome.Correct())
		if err := tx.Save(&stats).Error; err != nil {
			return fmt.Errorf("failed to save guess stats: %w", err)
		}

		guess := Guess{
			ResponseID:     outcome.ResponseID,
			UserID:         outcome.UserID,
			GuessedID:      outcome.GuessedID,
			QuoteMessageID: outcome.QuoteMessageID,
			GuessedAt:      outcome.GuessedAt,
		}
		if err := tx.Create(&guess).Error; err != nil {
			return fmt.Errorf("failed to record guess: %w", err)
		}
		return nil
	})

	if err != nil {
		s.logger.Warn("guess outcome not durably saved, shown result is in-memory only",
			"user_id", outcome.UserID,
			"response_id", outcome.ResponseID,
			"error", err,
		)
		// Report this round from the last durable state without touching it.
		stats = GuessStats{}
		if loadErr := loadStats(s.db.WithContext(ctx), outcome.UserID, &stats); loadErr != nil {
			return GuessStats{}, false, errors.Join(err, loadErr)
		}
		stats.Apply(outcome.Correct())
		return stats, false, nil
	}

	return stats, true, nil
}

// Stats returns the user's counters, zero-valued when they have never played
func (s *Store) Stats(ctx context.Context, userID string) (GuessStats, error) {
	var stats GuessStats
	if err := loadStats(s.db.WithContext(ctx), userID, &stats); err != nil {
		return GuessStats{}, err
	}
	return stats, nil
}

// DeleteQuote removes a quote by name together with every guess that
// references it, in one transaction.
func (s *Store) DeleteQuote(ctx context.Context, name string) (*quotes.Quote, error) {
	var quote quotes.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", name).First(&quote).Error; err != nil {
			return fmt.Errorf("failed to find quote to delete: %w", err)
		}
		if err := tx.Where("quote_message_id = ?", quote.MessageID).Delete(&Guess{}).Error; err != nil {
			return fmt.Errorf("failed to delete guesses for quote: %w", err)
		}
		if err := tx.Delete(&quotes.Quote{}, quote.ID).Error; err != nil {
			return fmt.Errorf("failed to delete quote: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// History returns the user's guess outcomes in the order they happened,
// judged against the current quote authors. Guesses whose quote is gone are
// excluded (they were cascade-deleted anyway). Audit input only; the
// counters remain canonical.
func (s *Store) History(ctx context.Context, userID string) ([]bool, error) {
	rows := []struct{ Correct bool }{}
	err := s.db.WithContext(ctx).
		Table("guesses").
		Select("guesses.guessed_id <> '' AND guesses.guessed_id = quotes.author_id AS correct").
		Joins("JOIN quotes ON quotes.message_id = guesses.quote_message_id").
		Where("guesses.user_id = ?", userID).
		Order("guesses.guessed_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load guess history: %w", err)
	}

	outcomes := make([]bool, len(rows))
	for i, row := range rows {
		outcomes[i] = row.Correct
	}
	return outcomes, nil
}

// AuditStreaks recomputes the user's streaks from raw history via run-length
// decomposition. Used as an offline consistency check against the counters.
func (s *Store) AuditStreaks(ctx context.Context, userID string) (current, max int64, err error) {
	history, err := s.History(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	current, max = ComputeStreaks(history)
	return current, max, nil
}

// Leaderboard returns the top users by their best streak
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]GuessStats, error) {
	var entries []GuessStats
	if err := s.db.WithContext(ctx).
		Where("total > 0").
		Order("max_streak DESC, correct DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return entries, nil
}

func loadStats(db *gorm.DB, userID string, stats *GuessStats) error {
	err := db.Where("user_id = ?", userID).First(stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			*stats = GuessStats{UserID: userID}
			return nil
		}
		return fmt.Errorf("failed to load guess stats: %w", err)
	}
	return nil
}
