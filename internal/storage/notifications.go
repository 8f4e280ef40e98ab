package storage

import (
	"log"

	"educhat/backend/internal/apperr"
	"educhat/backend/internal/models"
)

func (s *Service) SaveNotification(n *models.Notification) error {
	if err := s.DB.Create(n).Error; err != nil {
		log.Printf("ERROR: Failed to save notification for %s %s: %v", n.RecipientKind, n.RecipientID, err)
		return apperr.Internal(err)
	}
	return nil
}

func (s *Service) ListNotifications(recipient models.PrincipalRef) ([]models.Notification, error) {
	var out []models.Notification
	err := s.DB.Where("recipient_id = ? AND recipient_kind = ?", recipient.ID, recipient.Kind).
		Order("created_at desc").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// MarkNotificationRead flips the read flag; only the recipient may do so.
func (s *Service) MarkNotificationRead(id string, recipient models.PrincipalRef) error {
	res := s.DB.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND recipient_kind = ?", id, recipient.ID, recipient.Kind).
		Update("read", true)
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}
