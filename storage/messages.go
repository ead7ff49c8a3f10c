package storage

import (
	"errors"

	"school-portal-server/models"
	"school-portal-server/services"

	"gorm.io/gorm"
)

// MessageDB is the GORM-backed MessageStore used in production.
type MessageDB struct {
	db *gorm.DB
}

func NewMessageDB(db *gorm.DB) *MessageDB {
	return &MessageDB{db: db}
}

func (s *MessageDB) Insert(msg *models.Message) error {
	return s.db.Create(msg).Error
}

func (s *MessageDB) Get(id uint) (*models.Message, error) {
	var msg models.Message
	if err := s.db.Preload("Sender").First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrMessageNotFound
		}
		return nil, err
	}
	return &msg, nil
}

func (s *MessageDB) MarkRead(id uint) error {
	return s.db.Model(&models.Message{}).Where("id = ?", id).Update("is_read", true).Error
}

func (s *MessageDB) Inbox(userID uint, role string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.
		Where("parent_message_id IS NULL").
		Where("recipient_id = ? OR target_role = ? OR target_role = ?", userID, role, models.AudienceAll).
		Preload("Sender").
		Order("created_at DESC, id ASC").
		Find(&msgs).Error
	return msgs, err
}

func (s *MessageDB) Sent(userID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.
		Where("parent_message_id IS NULL AND sender_id = ?", userID).
		Preload("Sender").
		Order("created_at DESC, id ASC").
		Find(&msgs).Error
	return msgs, err
}

func (s *MessageDB) Replies(parentID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.
		Where("parent_message_id = ?", parentID).
		Preload("Sender").
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	return msgs, err
}

func (s *MessageDB) CountUnread(userID uint) (int64, error) {
	var n int64
	err := s.db.Model(&models.Message{}).
		Where("parent_message_id IS NULL AND recipient_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}
