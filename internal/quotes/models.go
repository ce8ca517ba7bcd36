package quotes

import (
	"time"

	"gorm.io/datatypes"
)

// Quote represents a saved snapshot of a Discord message.
// The numeric ID is immutable and strictly increasing; Update replaces the
// row but keeps the message ID so guesses referring to it stay valid.
type Quote struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`

	MessageID string `gorm:"uniqueIndex;not null" json:"message_id"`
	ChannelID string `gorm:"not null" json:"channel_id"`
	AuthorID  string `gorm:"index;not null" json:"author_id"`
	QuoterID  string `gorm:"not null" json:"quoter_id"`

	Content string `json:"content"`

	// Reply metadata, set when the quoted message was itself a reply
	ReplyAuthorID  string `json:"reply_author_id,omitempty"`
	ReplyMessageID string `json:"reply_message_id,omitempty"`
	ReplyContent   string `json:"reply_content,omitempty"`

	// Serialized discordgo blobs, replayed verbatim when the quote is shown
	Attachments datatypes.JSON `json:"attachments,omitempty"`
	Embeds      datatypes.JSON `json:"embeds,omitempty"`
	Components  datatypes.JSON `json:"components,omitempty"`

	Timestamp  time.Time `json:"timestamp"`   // when the quoted message was sent
	LastEdited time.Time `json:"last_edited"` // last snapshot refresh
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for Quote
func (Quote) TableName() string {
	return "quotes"
}

// RosterEntry is one known author with their quote count, used as a
// popularity weight when building guess options. Not persisted.
type RosterEntry struct {
	UserID string
	Count  int64
}
