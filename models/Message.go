package models

import (
	"gorm.io/gorm"
)

// Message is a single portal message. A top-level message is either direct
// (RecipientID set) or a broadcast (TargetRole set), never both. Replies carry
// ParentMessageID and are always direct.
type Message struct {
	gorm.Model
	SenderID        uint    `json:"senderID" gorm:"index;not null"`
	RecipientID     *uint   `json:"recipientID" gorm:"index"`
	TargetRole      *string `json:"targetRole" gorm:"size:20;index"` // teacher | parent | student | all
	Subject         string  `json:"subject" gorm:"size:256"`
	Body            string  `json:"body" gorm:"type:text;not null"`
	ParentMessageID *uint   `json:"parentMessageID" gorm:"index"`
	IsRead          bool    `json:"isRead" gorm:"default:false;index"` // meaningful for direct messages only
	Sender          User    `json:"sender" gorm:"foreignKey:SenderID;references:ID"`
}

// IsBroadcast reports whether the message is addressed to a role cohort
// rather than a single recipient.
func (m *Message) IsBroadcast() bool {
	return m.RecipientID == nil && m.TargetRole != nil
}

// IsReply reports whether the message belongs to a thread rooted elsewhere.
func (m *Message) IsReply() bool {
	return m.ParentMessageID != nil
}
