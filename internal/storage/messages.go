package storage

import (
	"errors"
	"log"
	"strings"

	"educhat/backend/internal/apperr"
	"educhat/backend/internal/config"
	"educhat/backend/internal/models"

	"gorm.io/gorm"
)

// AppendMessage persists a message with a server-assigned id and a
// database-assigned timestamp (same clock as the read markers). The sender
// must be a current participant of the chat.
func (s *Service) AppendMessage(chatID, senderParticipantID, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.InvalidArgument("Content must be a string")
	}

	var sender models.Participant
	err := s.DB.Where("id = ? AND chat_id = ?", senderParticipantID, chatID).First(&sender).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.InvalidArgument("sender is not a participant of this chat")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	msg := &models.Message{ChatID: chatID, SenderParticipantID: senderParticipantID, Content: content}
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for chat %s: %v", chatID, err)
		return nil, apperr.Internal(err)
	}
	return msg, nil
}

// ListMessages returns one newest-first page. Ties on timestamp are broken
// by id so the order is the exact reverse of the (timestamp, id) ascending
// display order.
func (s *Service) ListMessages(chatID string, page, pageSize int) ([]models.Message, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = config.DefaultPageSize
	}
	if pageSize > config.MaxPageSize {
		pageSize = config.MaxPageSize
	}

	var out []models.Message
	err := s.DB.Where("chat_id = ?", chatID).
		Order("timestamp desc, id desc").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&out).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *Service) GetMessage(messageID string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.First(&msg, "id = ?", messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("message not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &msg, nil
}

func (s *Service) UpdateMessageContent(messageID, content string) error {
	if strings.TrimSpace(content) == "" {
		return apperr.InvalidArgument("Content must be a string")
	}
	res := s.DB.Model(&models.Message{}).Where("id = ?", messageID).Update("content", content)
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("message not found")
	}
	return nil
}

func (s *Service) DeleteMessage(messageID string) error {
	res := s.DB.Delete(&models.Message{}, "id = ?", messageID)
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("message not found")
	}
	return nil
}

// LatestMessage returns the most recent message of the chat, or nil when
// the chat has none yet.
func (s *Service) LatestMessage(chatID string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.Where("chat_id = ?", chatID).Order("timestamp desc, id desc").First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &msg, nil
}

// AdvanceReadState moves last_read_at to now. GREATEST guards against
// wall-clock regressions across retries.
func (s *Service) AdvanceReadState(chatID, participantID string) error {
	res := s.DB.Model(&models.Participant{}).
		Where("id = ? AND chat_id = ?", participantID, chatID).
		Update("last_read_at", gorm.Expr("GREATEST(last_read_at, NOW())"))
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("participant not found in this chat")
	}
	return nil
}

// UnreadCount counts messages newer than the participant's read marker.
func (s *Service) UnreadCount(chatID, participantID string) (int64, error) {
	var p models.Participant
	err := s.DB.Where("id = ? AND chat_id = ?", participantID, chatID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperr.NotFound("participant not found in this chat")
	}
	if err != nil {
		return 0, apperr.Internal(err)
	}

	var count int64
	err = s.DB.Model(&models.Message{}).
		Where("chat_id = ? AND timestamp > ?", chatID, p.LastReadAt).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return count, nil
}
