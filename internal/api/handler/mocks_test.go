package handler_test

import (
	"context"
	"io"

	"educhat/backend/internal/models"
	"educhat/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockFileStore records Save calls so tests can assert nothing gets stored
// for rejected uploads.
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, filename, r)
	return args.String(0), args.Error(1)
}

// MockStorage is a comprehensive mock implementation of the storage.Storage
// interface. It uses testify/mock to allow flexible expectation setting in
// tests.
type MockStorage struct {
	mock.Mock
}

// Chats

func (m *MockStorage) CreatePrivateChat(a, b models.PrincipalRef) (*models.Chat, error) {
	args := m.Called(a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockStorage) CreateGroupChat(name string, creator models.PrincipalRef, members []models.PrincipalRef) (*models.Chat, error) {
	args := m.Called(name, creator, members)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockStorage) GetChat(chatID string) (*models.Chat, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockStorage) UpdateChatName(chatID, name string) error {
	args := m.Called(chatID, name)
	return args.Error(0)
}

func (m *MockStorage) UpdateChatPicture(chatID, url string) error {
	args := m.Called(chatID, url)
	return args.Error(0)
}

func (m *MockStorage) ListChatsForPrincipal(p models.PrincipalRef) ([]models.Chat, error) {
	args := m.Called(p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Chat), args.Error(1)
}

// Participants

func (m *MockStorage) AddParticipant(chatID string, p models.PrincipalRef, isAdmin bool) (*models.Participant, error) {
	args := m.Called(chatID, p, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockStorage) RemoveParticipant(chatID, participantID string) error {
	args := m.Called(chatID, participantID)
	return args.Error(0)
}

func (m *MockStorage) SetAdmin(chatID, participantID string) error {
	args := m.Called(chatID, participantID)
	return args.Error(0)
}

func (m *MockStorage) ParticipantsOf(chatID string) ([]models.Participant, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Participant), args.Error(1)
}

func (m *MockStorage) ParticipantOf(chatID string, p models.PrincipalRef) (*models.Participant, error) {
	args := m.Called(chatID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockStorage) GetParticipant(participantID string) (*models.Participant, error) {
	args := m.Called(participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

// Messages

func (m *MockStorage) AppendMessage(chatID, senderParticipantID, content string) (*models.Message, error) {
	args := m.Called(chatID, senderParticipantID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStorage) ListMessages(chatID string, page, pageSize int) ([]models.Message, error) {
	args := m.Called(chatID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) GetMessage(messageID string) (*models.Message, error) {
	args := m.Called(messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStorage) UpdateMessageContent(messageID, content string) error {
	args := m.Called(messageID, content)
	return args.Error(0)
}

func (m *MockStorage) DeleteMessage(messageID string) error {
	args := m.Called(messageID)
	return args.Error(0)
}

func (m *MockStorage) LatestMessage(chatID string) (*models.Message, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// Read state

func (m *MockStorage) AdvanceReadState(chatID, participantID string) error {
	args := m.Called(chatID, participantID)
	return args.Error(0)
}

func (m *MockStorage) UnreadCount(chatID, participantID string) (int64, error) {
	args := m.Called(chatID, participantID)
	return args.Get(0).(int64), args.Error(1)
}

// Notifications

func (m *MockStorage) SaveNotification(n *models.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *MockStorage) ListNotifications(recipient models.PrincipalRef) ([]models.Notification, error) {
	args := m.Called(recipient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockStorage) MarkNotificationRead(id string, recipient models.PrincipalRef) error {
	args := m.Called(id, recipient)
	return args.Error(0)
}

// Realtime fan-out

func (m *MockStorage) PublishEvent(chatID string, env storage.EventEnvelope) error {
	args := m.Called(chatID, env)
	return args.Error(0)
}

func (m *MockStorage) SubscribeToChats() *redis.PubSub {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*redis.PubSub)
}

var _ storage.Storage = (*MockStorage)(nil)

// MockDirectory is a testify mock for the principal directory.
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Resolve(ref models.PrincipalRef) (*models.PrincipalInfo, error) {
	args := m.Called(ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrincipalInfo), args.Error(1)
}

func (m *MockDirectory) ResolveByEmail(email string, kind models.PrincipalKind) (*models.PrincipalInfo, error) {
	args := m.Called(email, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrincipalInfo), args.Error(1)
}

func (m *MockDirectory) DisplayName(ref models.PrincipalRef) (string, error) {
	args := m.Called(ref)
	return args.String(0), args.Error(1)
}

func (m *MockDirectory) DeviceTokens(ref models.PrincipalRef) ([]string, error) {
	args := m.Called(ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
