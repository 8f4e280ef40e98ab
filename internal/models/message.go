package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is one chat message. The display order within a chat is
// (timestamp, id) ascending; pagination reverses it for newest-first pages.
// The id tie-break keeps the order deterministic when two messages share a
// timestamp. The timestamp is assigned by the database so it shares a clock
// with the participants' last_read_at markers; gorm reads it back via
// RETURNING on insert.
type Message struct {
	ID                  string    `gorm:"primaryKey" json:"id"`
	ChatID              string    `gorm:"type:uuid;not null;index:idx_chat_msg" json:"chat_id"`
	SenderParticipantID string    `gorm:"type:uuid;not null;index" json:"sender_participant_id"`
	Content             string    `gorm:"type:text;not null" json:"content"`
	Timestamp           time.Time `gorm:"not null;index:idx_chat_msg;default:now()" json:"timestamp"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}
