package services

import (
	"school-portal-server/models"
)

// MessageStore is the persistence boundary of the messaging service. The
// production implementation lives in storage (GORM over Postgres); tests and
// local development use MemoryStore.
type MessageStore interface {
	// Insert persists a new message and assigns its ID and CreatedAt.
	Insert(msg *models.Message) error

	// Get returns the message with the given id, or ErrMessageNotFound.
	Get(id uint) (*models.Message, error)

	// MarkRead flips is_read to true. Flipping an already-read message is a
	// harmless no-op.
	MarkRead(id uint) error

	// Inbox returns the top-level messages visible to a user: messages
	// addressed to them directly plus broadcasts matching their role or
	// addressed to everyone. Newest first, ties in insertion order.
	Inbox(userID uint, role string) ([]models.Message, error)

	// Sent returns the top-level messages authored by a user, newest first.
	Sent(userID uint) ([]models.Message, error)

	// Replies returns the messages replying to parentID, oldest first.
	Replies(parentID uint) ([]models.Message, error)

	// CountUnread returns the number of unread direct messages addressed to a
	// user. Broadcasts never count.
	CountUnread(userID uint) (int64, error)
}
