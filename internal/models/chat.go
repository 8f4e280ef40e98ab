package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PrincipalKind distinguishes the two classes of account that can take part
// in a chat. Participant rows carry the kind alongside the principal id, so a
// user and an instructor sharing the same id never collide.
type PrincipalKind string

const (
	KindUser       PrincipalKind = "user"
	KindInstructor PrincipalKind = "instructor"
)

// Valid reports whether the kind is one of the two known classes.
func (k PrincipalKind) Valid() bool {
	return k == KindUser || k == KindInstructor
}

// PrincipalRef is a tagged reference to a user or an instructor. It is the
// only way the chat core addresses an account; resolution of names, avatars
// and device tokens goes through the principal directory.
type PrincipalRef struct {
	ID   string        `json:"id"`
	Kind PrincipalKind `json:"kind"`
}

// Chat is a conversation container. IsGroup is immutable after creation:
// private chats hold exactly two participants and never carry a name or
// picture, group chats are named and admin-governed.
type Chat struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	IsGroup    bool      `gorm:"not null" json:"is_group"`
	Name       string    `gorm:"type:text" json:"name,omitempty"`
	PictureURL string    `gorm:"type:text" json:"picture_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// Participant is one principal's membership in one chat. At most one row may
// exist per (chat_id, principal_id, principal_kind). LastReadAt only ever
// moves forward; it is advanced by the owning principal's own actions. Both
// timestamps are database-assigned, same clock as message timestamps.
type Participant struct {
	ID            string        `gorm:"primaryKey" json:"id"`
	ChatID        string        `gorm:"type:uuid;not null;uniqueIndex:idx_chat_principal" json:"chat_id"`
	PrincipalID   string        `gorm:"not null;uniqueIndex:idx_chat_principal" json:"principal_id"`
	PrincipalKind PrincipalKind `gorm:"type:text;not null;uniqueIndex:idx_chat_principal" json:"principal_kind"`
	IsAdmin       bool          `gorm:"not null;default:false" json:"is_admin"`
	JoinedAt      time.Time     `gorm:"not null;default:now()" json:"joined_at"`
	LastReadAt    time.Time     `gorm:"not null;default:now()" json:"last_read_at"`
}

func (p *Participant) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// Ref returns the tagged principal reference for this membership.
func (p *Participant) Ref() PrincipalRef {
	return PrincipalRef{ID: p.PrincipalID, Kind: p.PrincipalKind}
}

// ChatSummary is the list-view projection of a chat for one principal:
// display name and picture resolved for that principal, the timestamp of the
// latest activity and the unread count.
type ChatSummary struct {
	ChatID       string    `json:"chat_id"`
	IsGroup      bool      `json:"is_group"`
	Name         string    `json:"name"`
	PictureURL   string    `json:"picture_url,omitempty"`
	LastActivity time.Time `json:"last_activity"`
	UnreadCount  int64     `json:"unread_count"`
}

// ChatDetail is the full roster view of a single chat.
type ChatDetail struct {
	Chat    Chat         `json:"chat"`
	Members []ChatMember `json:"members"`
}

// ChatMember is one roster entry with the resolved display name.
type ChatMember struct {
	ParticipantID string        `json:"participant_id"`
	PrincipalID   string        `json:"principal_id"`
	PrincipalKind PrincipalKind `json:"principal_kind"`
	Name          string        `json:"name"`
	IsAdmin       bool          `json:"is_admin"`
	JoinedAt      time.Time     `json:"joined_at"`
}
