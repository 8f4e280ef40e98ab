package storage

import (
	"errors"
	"log"

	"educhat/backend/internal/apperr"
	"educhat/backend/internal/models"

	"gorm.io/gorm"
)

// findPrivateChat looks for an existing non-group chat whose participant set
// is exactly {a, b}. Returns nil when there is none.
func (s *Service) findPrivateChat(tx *gorm.DB, a, b models.PrincipalRef) (*models.Chat, error) {
	var chatID string
	err := tx.Raw(`
		SELECT c.id FROM chats c
		WHERE c.is_group = false
		  AND (SELECT COUNT(*) FROM participants p WHERE p.chat_id = c.id) = 2
		  AND EXISTS (SELECT 1 FROM participants p WHERE p.chat_id = c.id AND p.principal_id = ? AND p.principal_kind = ?)
		  AND EXISTS (SELECT 1 FROM participants p WHERE p.chat_id = c.id AND p.principal_id = ? AND p.principal_kind = ?)
		LIMIT 1
	`, a.ID, a.Kind, b.ID, b.Kind).Scan(&chatID).Error
	if err != nil {
		return nil, err
	}
	if chatID == "" {
		return nil, nil
	}
	var chat models.Chat
	if err := tx.First(&chat, "id = ?", chatID).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

// CreatePrivateChat returns the existing private chat between the two
// principals or creates it. Idempotent and commutative in argument order.
func (s *Service) CreatePrivateChat(a, b models.PrincipalRef) (*models.Chat, error) {
	if a == b {
		return nil, apperr.InvalidArgument("cannot open a private chat with yourself")
	}

	var chat *models.Chat
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		existing, err := s.findPrivateChat(tx, a, b)
		if err != nil {
			return err
		}
		if existing != nil {
			chat = existing
			return nil
		}

		chat = &models.Chat{IsGroup: false}
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		for _, ref := range []models.PrincipalRef{a, b} {
			p := &models.Participant{ChatID: chat.ID, PrincipalID: ref.ID, PrincipalKind: ref.Kind}
			if err := tx.Create(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("ERROR: Failed to create private chat: %v", err)
		return nil, apperr.Internal(err)
	}
	return chat, nil
}

// CreateGroupChat creates the chat with the creator as admin and every
// member as a regular participant, all in one transaction.
func (s *Service) CreateGroupChat(name string, creator models.PrincipalRef, members []models.PrincipalRef) (*models.Chat, error) {
	chat := &models.Chat{IsGroup: true, Name: name}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		admin := &models.Participant{ChatID: chat.ID, PrincipalID: creator.ID, PrincipalKind: creator.Kind, IsAdmin: true}
		if err := tx.Create(admin).Error; err != nil {
			return err
		}
		seen := map[models.PrincipalRef]bool{creator: true}
		for _, ref := range members {
			if seen[ref] {
				continue
			}
			seen[ref] = true
			p := &models.Participant{ChatID: chat.ID, PrincipalID: ref.ID, PrincipalKind: ref.Kind}
			if err := tx.Create(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("ERROR: Failed to create group chat %q: %v", name, err)
		return nil, apperr.Internal(err)
	}
	return chat, nil
}

func (s *Service) GetChat(chatID string) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.First(&chat, "id = ?", chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Chat not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &chat, nil
}

func (s *Service) UpdateChatName(chatID, name string) error {
	return s.updateChatColumn(chatID, "name", name)
}

func (s *Service) UpdateChatPicture(chatID, url string) error {
	return s.updateChatColumn(chatID, "picture_url", url)
}

func (s *Service) updateChatColumn(chatID, column, value string) error {
	res := s.DB.Model(&models.Chat{}).Where("id = ?", chatID).Update(column, value)
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Chat not found")
	}
	return nil
}

// ListChatsForPrincipal returns every chat the principal belongs to.
func (s *Service) ListChatsForPrincipal(p models.PrincipalRef) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.DB.
		Joins("JOIN participants ON participants.chat_id = chats.id").
		Where("participants.principal_id = ? AND participants.principal_kind = ?", p.ID, p.Kind).
		Find(&chats).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return chats, nil
}

// AddParticipant inserts a membership row. Duplicate membership is an
// InvalidArgument, matching the uniqueness invariant.
func (s *Service) AddParticipant(chatID string, ref models.PrincipalRef, isAdmin bool) (*models.Participant, error) {
	var existing models.Participant
	err := s.DB.Where("chat_id = ? AND principal_id = ? AND principal_kind = ?", chatID, ref.ID, ref.Kind).
		First(&existing).Error
	if err == nil {
		return nil, apperr.InvalidArgument("principal is already a member of this chat")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err)
	}

	p := &models.Participant{ChatID: chatID, PrincipalID: ref.ID, PrincipalKind: ref.Kind, IsAdmin: isAdmin}
	if err := s.DB.Create(p).Error; err != nil {
		log.Printf("ERROR: Failed to add participant to chat %s: %v", chatID, err)
		return nil, apperr.Internal(err)
	}
	return p, nil
}

// RemoveParticipant deletes the membership row. Removing the last
// participant cascades into deleting the chat and all its messages. When a
// group loses its last admin but still has members, the earliest-joined
// remaining member is promoted.
func (s *Service) RemoveParticipant(chatID, participantID string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND chat_id = ?", participantID, chatID).Delete(&models.Participant{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("participant not found in this chat")
		}

		var remaining int64
		if err := tx.Model(&models.Participant{}).Where("chat_id = ?", chatID).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			if err := tx.Where("chat_id = ?", chatID).Delete(&models.Message{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Chat{}, "id = ?", chatID).Error
		}

		var chat models.Chat
		if err := tx.First(&chat, "id = ?", chatID).Error; err != nil {
			return err
		}
		if !chat.IsGroup {
			return nil
		}

		var admins int64
		if err := tx.Model(&models.Participant{}).Where("chat_id = ? AND is_admin = ?", chatID, true).Count(&admins).Error; err != nil {
			return err
		}
		if admins > 0 {
			return nil
		}

		// Promote the earliest-joined remaining member so the group never
		// stays admin-less.
		var oldest models.Participant
		if err := tx.Where("chat_id = ?", chatID).Order("joined_at asc, id asc").First(&oldest).Error; err != nil {
			return err
		}
		log.Printf("INFO: Promoting participant %s to admin of chat %s after last admin left", oldest.ID, chatID)
		return tx.Model(&models.Participant{}).Where("id = ?", oldest.ID).Update("is_admin", true).Error
	})
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return err
		}
		log.Printf("ERROR: Failed to remove participant %s from chat %s: %v", participantID, chatID, err)
		return apperr.Internal(err)
	}
	return nil
}

// SetAdmin promotes the participant. Idempotent; there is no demote.
func (s *Service) SetAdmin(chatID, participantID string) error {
	res := s.DB.Model(&models.Participant{}).
		Where("id = ? AND chat_id = ?", participantID, chatID).
		Update("is_admin", true)
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("participant not found in this chat")
	}
	return nil
}

func (s *Service) ParticipantsOf(chatID string) ([]models.Participant, error) {
	var out []models.Participant
	if err := s.DB.Where("chat_id = ?", chatID).Order("joined_at asc").Find(&out).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *Service) ParticipantOf(chatID string, ref models.PrincipalRef) (*models.Participant, error) {
	var p models.Participant
	err := s.DB.Where("chat_id = ? AND principal_id = ? AND principal_kind = ?", chatID, ref.ID, ref.Kind).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("participant not found in this chat")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &p, nil
}

func (s *Service) GetParticipant(participantID string) (*models.Participant, error) {
	var p models.Participant
	err := s.DB.First(&p, "id = ?", participantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("participant not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &p, nil
}
