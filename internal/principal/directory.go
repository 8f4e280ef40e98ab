// Package principal resolves tagged principal references (user or
// instructor) into display data and device tokens. The chat core never
// touches the account tables directly; everything goes through Directory so
// the two account classes stay behind one capability interface.
package principal

import (
	"errors"

	"educhat/backend/internal/apperr"
	"educhat/backend/internal/models"

	"gorm.io/gorm"
)

type Directory interface {
	Resolve(ref models.PrincipalRef) (*models.PrincipalInfo, error)
	ResolveByEmail(email string, kind models.PrincipalKind) (*models.PrincipalInfo, error)
	DisplayName(ref models.PrincipalRef) (string, error)
	DeviceTokens(ref models.PrincipalRef) ([]string, error)
}

// GormDirectory implements Directory over the users and instructors tables.
type GormDirectory struct {
	DB *gorm.DB
}

func NewDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{DB: db}
}

func (d *GormDirectory) Resolve(ref models.PrincipalRef) (*models.PrincipalInfo, error) {
	switch ref.Kind {
	case models.KindUser:
		var u models.User
		if err := d.DB.First(&u, "id = ?", ref.ID).Error; err != nil {
			return nil, notFoundOr(err, "User not found")
		}
		return &models.PrincipalInfo{Ref: ref, Name: u.Name, Email: u.Email, AvatarURL: u.AvatarURL, DeviceTokens: u.DeviceTokens}, nil
	case models.KindInstructor:
		var i models.Instructor
		if err := d.DB.First(&i, "id = ?", ref.ID).Error; err != nil {
			return nil, notFoundOr(err, "User not found")
		}
		return &models.PrincipalInfo{Ref: ref, Name: i.Name, Email: i.Email, AvatarURL: i.AvatarURL, DeviceTokens: i.DeviceTokens}, nil
	default:
		return nil, apperr.InvalidArgument("unknown principal kind %q", ref.Kind)
	}
}

func (d *GormDirectory) ResolveByEmail(email string, kind models.PrincipalKind) (*models.PrincipalInfo, error) {
	switch kind {
	case models.KindUser:
		var u models.User
		if err := d.DB.First(&u, "email = ?", email).Error; err != nil {
			return nil, notFoundOr(err, "User not found")
		}
		return &models.PrincipalInfo{
			Ref:          models.PrincipalRef{ID: u.ID, Kind: kind},
			Name:         u.Name,
			Email:        u.Email,
			AvatarURL:    u.AvatarURL,
			DeviceTokens: u.DeviceTokens,
		}, nil
	case models.KindInstructor:
		var i models.Instructor
		if err := d.DB.First(&i, "email = ?", email).Error; err != nil {
			return nil, notFoundOr(err, "User not found")
		}
		return &models.PrincipalInfo{
			Ref:          models.PrincipalRef{ID: i.ID, Kind: kind},
			Name:         i.Name,
			Email:        i.Email,
			AvatarURL:    i.AvatarURL,
			DeviceTokens: i.DeviceTokens,
		}, nil
	default:
		return nil, apperr.InvalidArgument("unknown principal kind %q", kind)
	}
}

func (d *GormDirectory) DisplayName(ref models.PrincipalRef) (string, error) {
	info, err := d.Resolve(ref)
	if err != nil {
		return "", err
	}
	return info.Name, nil
}

func (d *GormDirectory) DeviceTokens(ref models.PrincipalRef) ([]string, error) {
	info, err := d.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return info.DeviceTokens, nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s", msg)
	}
	return apperr.Internal(err)
}
