package models

import (
	"encoding/json"
	"time"
)

// Realtime event names. Inbound events arrive on the websocket as JSON
// frames; outbound events are written back to every connection registered in
// the target room.
const (
	EventJoinChat          = "join_chat"
	EventLeaveChat         = "leave_chat"
	EventSendMessage       = "send_message"
	EventParticipantJoined = "participant_joined"
	EventNewMessage        = "new_message"
	EventError             = "error"
)

// ClientEvent is an inbound websocket frame. Content stays raw so the hub
// can report a type mismatch ("Content must be a string") instead of
// dropping the whole frame on decode.
type ClientEvent struct {
	Event   string          `json:"event"`
	ChatID  string          `json:"chat_id"`
	Content json.RawMessage `json:"content,omitempty"`
}

// ServerEvent is an outbound websocket frame. Fields are populated per event
// type; everything else is omitted from the wire format.
type ServerEvent struct {
	Event         string        `json:"event"`
	ChatID        string        `json:"chat_id,omitempty"`
	MessageID     string        `json:"message_id,omitempty"`
	SenderID      string        `json:"sender_id,omitempty"`
	Content       string        `json:"content,omitempty"`
	Timestamp     *time.Time    `json:"timestamp,omitempty"`
	PrincipalID   string        `json:"principal_id,omitempty"`
	PrincipalKind PrincipalKind `json:"principal_kind,omitempty"`
	Message       string        `json:"message,omitempty"` // error text
}

// NewMessageEvent builds the room-scoped frame for a persisted message.
func NewMessageEvent(m *Message) ServerEvent {
	ts := m.Timestamp
	return ServerEvent{
		Event:     EventNewMessage,
		ChatID:    m.ChatID,
		MessageID: m.ID,
		SenderID:  m.SenderParticipantID,
		Content:   m.Content,
		Timestamp: &ts,
	}
}

// ParticipantJoinedEvent builds the frame announcing a principal entering a
// room.
func ParticipantJoinedEvent(chatID string, ref PrincipalRef) ServerEvent {
	return ServerEvent{
		Event:         EventParticipantJoined,
		ChatID:        chatID,
		PrincipalID:   ref.ID,
		PrincipalKind: ref.Kind,
	}
}

// ErrorEvent builds a room-scoped error frame. The connection stays open.
func ErrorEvent(chatID, message string) ServerEvent {
	return ServerEvent{Event: EventError, ChatID: chatID, Message: message}
}
