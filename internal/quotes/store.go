package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrNameTaken is returned when a quote name is already in use.
var ErrNameTaken = errors.New("a quote with that name already exists")

// Store handles persistence of quotes to the database
type Store struct {
	db *gorm.DB
}

// NewStore creates a new quote store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Snapshot captures a Discord message as a Quote. The quote is not persisted;
// call Add for that.
func Snapshot(msg *discordgo.Message, quoterID string) (*Quote, error) {
	quote := &Quote{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
		QuoterID:  quoterID,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}
	if msg.Author != nil {
		quote.AuthorID = msg.Author.ID
	}

	if ref := msg.ReferencedMessage; ref != nil {
		quote.ReplyMessageID = ref.ID
		quote.ReplyContent = ref.Content
		if ref.Author != nil {
			quote.ReplyAuthorID = ref.Author.ID
		}
	}

	if len(msg.Attachments) > 0 {
		data, err := json.Marshal(msg.Attachments)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal attachments: %w", err)
		}
		quote.Attachments = datatypes.JSON(data)
	}
	if len(msg.Embeds) > 0 {
		data, err := json.Marshal(msg.Embeds)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal embeds: %w", err)
		}
		quote.Embeds = datatypes.JSON(data)
	}
	if len(msg.Components) > 0 {
		data, err := json.Marshal(msg.Components)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal components: %w", err)
		}
		quote.Components = datatypes.JSON(data)
	}

	return quote, nil
}

// Add persists a new quote. Untitled quotes get their numeric ID as the name
// once it is assigned.
func (s *Store) Add(ctx context.Context, quote *Quote) error {
	quote.LastEdited = time.Now()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if quote.Name != "" {
			taken, err := nameTaken(tx, quote.Name)
			if err != nil {
				return err
			}
			if taken {
				return ErrNameTaken
			}
			return tx.Create(quote).Error
		}

		// No name given: create first so the autoincrement ID exists,
		// then name the quote after it.
		quote.Name = placeholderName(quote.MessageID)
		if err := tx.Create(quote).Error; err != nil {
			return fmt.Errorf("failed to create quote: %w", err)
		}
		quote.Name = strconv.FormatUint(uint64(quote.ID), 10)
		if err := tx.Model(quote).Update("name", quote.Name).Error; err != nil {
			return fmt.Errorf("failed to name quote: %w", err)
		}
		return nil
	})
}

// GetByName retrieves a quote by its unique name
func (s *Store) GetByName(ctx context.Context, name string) (*Quote, error) {
	var quote Quote
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&quote).Error; err != nil {
		return nil, fmt.Errorf("failed to get quote %q: %w", name, err)
	}
	return &quote, nil
}

// GetByMessageID retrieves a quote by the ID of the quoted message
func (s *Store) GetByMessageID(ctx context.Context, messageID string) (*Quote, error) {
	var quote Quote
	if err := s.db.WithContext(ctx).Where("message_id = ?", messageID).First(&quote).Error; err != nil {
		return nil, fmt.Errorf("failed to get quote for message %s: %w", messageID, err)
	}
	return &quote, nil
}

// Random retrieves a random quote, or nil when none are stored
func (s *Store) Random(ctx context.Context) (*Quote, error) {
	var quote Quote
	err := s.db.WithContext(ctx).Order("RANDOM()").First(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get random quote: %w", err)
	}
	return &quote, nil
}

// RandomByAuthor retrieves a random quote by a specific author, or nil
func (s *Store) RandomByAuthor(ctx context.Context, authorID string) (*Quote, error) {
	var quote Quote
	err := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("RANDOM()").
		First(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get random quote by author: %w", err)
	}
	return &quote, nil
}

// Count returns the number of stored quotes
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Quote{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}
	return count, nil
}

// CountByAuthor returns the number of quotes authored by a user
func (s *Store) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&Quote{}).
		Where("author_id = ?", authorID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count quotes by author: %w", err)
	}
	return count, nil
}

// Names returns a page of quote names ordered by ID
func (s *Store) Names(ctx context.Context, offset, limit int) ([]string, error) {
	var names []string
	if err := s.db.WithContext(ctx).
		Model(&Quote{}).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list quote names: %w", err)
	}
	return names, nil
}

// Rename changes a quote's unique name
func (s *Store) Rename(ctx context.Context, oldName, newName string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, newName)
		if err != nil {
			return err
		}
		if taken {
			return ErrNameTaken
		}

		result := tx.Model(&Quote{}).Where("name = ?", oldName).Update("name", newName)
		if result.Error != nil {
			return fmt.Errorf("failed to rename quote: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Update replaces a quote with a fresh snapshot of the same message.
// The row is deleted and reinserted: the replacement keeps the name and the
// message ID (so guesses referring to the message stay valid) but gets a new
// numeric ID. IDs are never reused.
func (s *Store) Update(ctx context.Context, fresh *Quote) (*Quote, error) {
	var updated Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Quote
		if err := tx.Where("message_id = ?", fresh.MessageID).First(&existing).Error; err != nil {
			return fmt.Errorf("failed to find quote to update: %w", err)
		}

		if err := tx.Delete(&Quote{}, existing.ID).Error; err != nil {
			return fmt.Errorf("failed to delete old quote row: %w", err)
		}

		updated = *fresh
		updated.ID = 0
		updated.Name = existing.Name
		updated.QuoterID = existing.QuoterID
		updated.CreatedAt = existing.CreatedAt
		updated.LastEdited = time.Now()
		if err := tx.Create(&updated).Error; err != nil {
			return fmt.Errorf("failed to reinsert quote: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Roster returns all known authors with their quote counts, most quoted
// first. When excludeAuthor is non-empty that author is left out.
func (s *Store) Roster(ctx context.Context, excludeAuthor string) ([]RosterEntry, error) {
	query := s.db.WithContext(ctx).
		Model(&Quote{}).
		Select("author_id as user_id, COUNT(*) as count").
		Group("author_id").
		Order("count DESC")
	if excludeAuthor != "" {
		query = query.Where("author_id <> ?", excludeAuthor)
	}

	var roster []RosterEntry
	if err := query.Scan(&roster).Error; err != nil {
		return nil, fmt.Errorf("failed to build author roster: %w", err)
	}
	return roster, nil
}

func nameTaken(tx *gorm.DB, name string) (bool, error) {
	var count int64
	if err := tx.Model(&Quote{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check quote name: %w", err)
	}
	return count > 0, nil
}

// placeholderName is used between Create and the ID-based rename so the
// unique name index never sees an empty duplicate.
func placeholderName(messageID string) string {
	return "pending-" + messageID
}
