package chathub_test

import (
	"educhat/backend/internal/chathub"
	"educhat/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockChatOps is a testify mock for the slice of the chat service the hub
// calls into.
type MockChatOps struct {
	mock.Mock
}

func (m *MockChatOps) MarkRead(p models.PrincipalRef, chatID string) (*models.Participant, error) {
	args := m.Called(p, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockChatOps) SendMessage(p models.PrincipalRef, chatID, content string) (*models.Message, error) {
	args := m.Called(p, chatID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// MockNotifier records messages handed to the offline fan-out.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) MessageDelivered(msg *models.Message) {
	m.Called(msg)
}

// MockClient is a test double for the chathub.Client interface.
type MockClient struct {
	connID    string
	principal models.PrincipalRef
	send      chan models.ServerEvent
	closed    bool
}

func newMockClient(connID string, p models.PrincipalRef) *MockClient {
	return &MockClient{
		connID:    connID,
		principal: p,
		send:      make(chan models.ServerEvent, 10), // Buffered to prevent blocking in tests
	}
}

func (c *MockClient) GetID() string { return c.connID }

func (c *MockClient) GetPrincipal() models.PrincipalRef { return c.principal }

func (c *MockClient) GetSendChannel() chan<- models.ServerEvent { return c.send }

func (c *MockClient) Run() {}

func (c *MockClient) Close() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// DrainEvents empties the send channel for assertions.
func (c *MockClient) DrainEvents() []models.ServerEvent {
	var events []models.ServerEvent
	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

var _ chathub.Client = (*MockClient)(nil)
