package roles

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StickyRole records a role grant that is reapplied when the user rejoins.
// The (user, role) pair is the whole record; it never expires on its own.
type StickyRole struct {
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	RoleID    string    `gorm:"primaryKey" json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for StickyRole
func (StickyRole) TableName() string {
	return "sticky_roles"
}

// Store handles persistence of sticky roles
type Store struct {
	db *gorm.DB
}

// NewStore creates a new sticky role store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Add records a sticky role. Adding the same pair twice is a no-op.
func (s *Store) Add(ctx context.Context, userID, roleID string) error {
	sticky := StickyRole{UserID: userID, RoleID: roleID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&sticky).Error
	if err != nil {
		return fmt.Errorf("failed to add sticky role: %w", err)
	}
	return nil
}

// Remove deletes a sticky role pair. Removing a pair that was never recorded
// returns gorm.ErrRecordNotFound.
func (s *Store) Remove(ctx context.Context, userID, roleID string) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&StickyRole{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove sticky role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListForUser returns all sticky role IDs recorded for a user
func (s *Store) ListForUser(ctx context.Context, userID string) ([]string, error) {
	var roleIDs []string
	if err := s.db.WithContext(ctx).
		Model(&StickyRole{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("role_id", &roleIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to list sticky roles: %w", err)
	}
	return roleIDs, nil
}

// ListAll returns every recorded sticky role pair
func (s *Store) ListAll(ctx context.Context) ([]StickyRole, error) {
	var all []StickyRole
	if err := s.db.WithContext(ctx).
		Order("user_id ASC, created_at ASC").
		Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list sticky roles: %w", err)
	}
	return all, nil
}
