// Package storage is the persistence layer: chats, participants, messages
// and notifications in PostgreSQL via gorm, plus Redis Pub/Sub for
// cross-node realtime fan-out. Every exported mutation is one logical
// transaction.
package storage

import (
	"context"
	"encoding/json"

	"educhat/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Storage interface {
	// Chats
	CreatePrivateChat(a, b models.PrincipalRef) (*models.Chat, error)
	CreateGroupChat(name string, creator models.PrincipalRef, members []models.PrincipalRef) (*models.Chat, error)
	GetChat(chatID string) (*models.Chat, error)
	UpdateChatName(chatID, name string) error
	UpdateChatPicture(chatID, url string) error
	ListChatsForPrincipal(p models.PrincipalRef) ([]models.Chat, error)

	// Participants
	AddParticipant(chatID string, p models.PrincipalRef, isAdmin bool) (*models.Participant, error)
	RemoveParticipant(chatID, participantID string) error
	SetAdmin(chatID, participantID string) error
	ParticipantsOf(chatID string) ([]models.Participant, error)
	ParticipantOf(chatID string, p models.PrincipalRef) (*models.Participant, error)
	GetParticipant(participantID string) (*models.Participant, error)

	// Messages
	AppendMessage(chatID, senderParticipantID, content string) (*models.Message, error)
	ListMessages(chatID string, page, pageSize int) ([]models.Message, error)
	GetMessage(messageID string) (*models.Message, error)
	UpdateMessageContent(messageID, content string) error
	DeleteMessage(messageID string) error
	LatestMessage(chatID string) (*models.Message, error)

	// Read state
	AdvanceReadState(chatID, participantID string) error
	UnreadCount(chatID, participantID string) (int64, error)

	// Notifications
	SaveNotification(n *models.Notification) error
	ListNotifications(recipient models.PrincipalRef) ([]models.Notification, error)
	MarkNotificationRead(id string, recipient models.PrincipalRef) error

	// Realtime fan-out
	PublishEvent(chatID string, env EventEnvelope) error
	SubscribeToChats() *redis.PubSub
}

// EventEnvelope wraps a room event for Pub/Sub transport between nodes.
// Origin identifies the publishing hub so a node can skip its own events.
type EventEnvelope struct {
	Origin string             `json:"origin"`
	ChatID string             `json:"chat_id"`
	Event  models.ServerEvent `json:"event"`
}

// Service implements Storage over gorm and go-redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

const chatChannelPrefix = "chat:"

// PublishEvent publishes a room event to Redis Pub/Sub so hubs on other
// nodes can deliver it to their local connections.
func (s *Service) PublishEvent(chatID string, env EventEnvelope) error {
	if s.Redis == nil {
		return nil
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, chatChannelPrefix+chatID, payload).Err()
}

// SubscribeToChats subscribes to every room channel. Returns nil when no
// Redis client is configured (single-node deployments, tests).
func (s *Service) SubscribeToChats() *redis.PubSub {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.PSubscribe(s.Ctx, chatChannelPrefix+"*")
}
