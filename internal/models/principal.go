package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq" // pq.StringArray for the text[] device token column
	"gorm.io/gorm"
)

// User is a learner account. Only the fields the chat core needs are mapped
// here; the rest of the account lives with the external account service.
type User struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"type:text;not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;type:text;not null" json:"email"`
	AvatarURL    string         `gorm:"type:text" json:"avatar_url,omitempty"`
	DeviceTokens pq.StringArray `gorm:"type:text[]" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// Instructor is a teaching account. Kept as its own table to mirror the rest
// of the platform; the chat core only ever sees it through PrincipalRef and
// the principal directory.
type Instructor struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"type:text;not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;type:text;not null" json:"email"`
	AvatarURL    string         `gorm:"type:text" json:"avatar_url,omitempty"`
	DeviceTokens pq.StringArray `gorm:"type:text[]" json:"-"`
}

func (i *Instructor) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return
}

// PrincipalInfo is the resolved view of a principal, independent of which
// table it came from.
type PrincipalInfo struct {
	Ref          PrincipalRef
	Name         string
	Email        string
	AvatarURL    string
	DeviceTokens []string
}
