package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is the persisted out-of-band alert created for a chat member
// who was absent from the room when a message arrived. Exactly one row is
// created per message per absent recipient.
type Notification struct {
	ID            string        `gorm:"primaryKey" json:"id"`
	RecipientID   string        `gorm:"not null;index:idx_recipient" json:"recipient_id"`
	RecipientKind PrincipalKind `gorm:"type:text;not null;index:idx_recipient" json:"recipient_kind"`
	Title         string        `gorm:"type:text;not null" json:"title"`
	Body          string        `gorm:"type:text;not null" json:"body"`
	Read          bool          `gorm:"not null;default:false" json:"read"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}
