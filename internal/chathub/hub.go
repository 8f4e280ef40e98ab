// Package chathub is the realtime front door: it owns the websocket
// connections, the per-room presence registry, and the single dispatcher
// goroutine that serializes room events so messages are broadcast in the
// exact order they were committed.
package chathub

import (
	"encoding/json"
	"log"

	"educhat/backend/internal/models"
	"educhat/backend/internal/storage"

	"github.com/google/uuid"
)

// InboundEvent is one decoded frame from one connection, queued for the
// dispatcher goroutine.
type InboundEvent struct {
	Client  Client
	Name    string
	ChatID  string
	Content json.RawMessage
}

// ChatOps is the slice of the chat service the hub needs.
type ChatOps interface {
	MarkRead(p models.PrincipalRef, chatID string) (*models.Participant, error)
	SendMessage(p models.PrincipalRef, chatID, content string) (*models.Message, error)
}

// Notifier receives every delivered message for offline fan-out. Called
// after the room broadcast has completed, never before.
type Notifier interface {
	MessageDelivered(msg *models.Message)
}

// Hub is the event dispatcher. One Run goroutine per process handles
// registration, room events and cross-node Pub/Sub deliveries, so handlers
// never race on hub state.
type Hub struct {
	ID string // origin tag for Pub/Sub envelopes

	RegisterCh   chan Client
	UnregisterCh chan Client
	EventCh      chan InboundEvent
	RemoteCh     chan storage.EventEnvelope

	Presence *Registry
	Chats    ChatOps
	Store    storage.Storage
	Notifier Notifier

	clients map[string]Client
}

func NewHub(chats ChatOps, store storage.Storage, presence *Registry) *Hub {
	return &Hub{
		ID:           uuid.New().String(),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		EventCh:      make(chan InboundEvent),
		RemoteCh:     make(chan storage.EventEnvelope, 64),
		Presence:     presence,
		Chats:        chats,
		Store:        store,
		clients:      make(map[string]Client),
	}
}

// SetNotifier wires the offline-notification dispatcher.
func (h *Hub) SetNotifier(n Notifier) { h.Notifier = n }

// Run is the dispatcher loop. Each event handler runs to completion before
// the next event is picked up.
func (h *Hub) Run() {
	h.startPubSubListener()

	for {
		select {
		case c := <-h.RegisterCh:
			h.clients[c.GetID()] = c

		case c := <-h.UnregisterCh:
			h.handleDisconnect(c)

		case ev := <-h.EventCh:
			h.handleEvent(ev)

		case env := <-h.RemoteCh:
			// Delivered by another node; our storage already holds it.
			h.broadcastLocal(env.ChatID, env.Event)
		}
	}
}

func (h *Hub) handleEvent(ev InboundEvent) {
	// Frames from a connection that was already torn down (slow-client
	// drop) are discarded; the read pump may still be flushing.
	if _, ok := h.clients[ev.Client.GetID()]; !ok {
		return
	}

	switch ev.Name {
	case models.EventJoinChat:
		h.handleJoin(ev)
	case models.EventLeaveChat:
		h.handleLeave(ev)
	case models.EventSendMessage:
		h.handleSend(ev)
	default:
		h.sendToClient(ev.Client, models.ErrorEvent(ev.ChatID, "unknown event"))
	}
}

// handleJoin registers presence, advances the joiner's read marker and
// announces the join to everyone in the room, the joiner included.
func (h *Hub) handleJoin(ev InboundEvent) {
	member, err := h.Chats.MarkRead(ev.Client.GetPrincipal(), ev.ChatID)
	if err != nil {
		h.sendToClient(ev.Client, models.ErrorEvent(ev.ChatID, err.Error()))
		return
	}
	h.Presence.Register(ev.ChatID, member.ID, ev.Client)
	h.broadcast(ev.ChatID, models.ParticipantJoinedEvent(ev.ChatID, ev.Client.GetPrincipal()))
}

// handleLeave silently drops presence and advances the read marker. No
// "left" broadcast.
func (h *Hub) handleLeave(ev InboundEvent) {
	if _, ok := h.Presence.UnregisterClient(ev.ChatID, ev.Client.GetID()); !ok {
		return
	}
	if _, err := h.Chats.MarkRead(ev.Client.GetPrincipal(), ev.ChatID); err != nil {
		log.Printf("ERROR: Failed to advance read state on leave: %v", err)
	}
}

// handleSend persists, broadcasts in commit order, then hands the message
// to the notifier for absent members. A message that fails to persist is
// never broadcast.
func (h *Hub) handleSend(ev InboundEvent) {
	var content string
	if len(ev.Content) == 0 || json.Unmarshal(ev.Content, &content) != nil {
		h.sendToClient(ev.Client, models.ErrorEvent(ev.ChatID, "Content must be a string"))
		return
	}

	if _, ok := h.Presence.ParticipantFor(ev.ChatID, ev.Client.GetID()); !ok {
		h.sendToClient(ev.Client, models.ErrorEvent(ev.ChatID, "join the chat before sending messages"))
		return
	}

	msg, err := h.Chats.SendMessage(ev.Client.GetPrincipal(), ev.ChatID, content)
	if err != nil {
		h.sendToClient(ev.Client, models.ErrorEvent(ev.ChatID, err.Error()))
		return
	}

	h.broadcast(ev.ChatID, models.NewMessageEvent(msg))

	if h.Notifier != nil {
		h.Notifier.MessageDelivered(msg)
	}
}

// handleDisconnect unregisters the connection from every room it joined and
// advances read state for each, then tears the client down.
func (h *Hub) handleDisconnect(c Client) {
	for chatID := range h.Presence.DropClient(c.GetID()) {
		if _, err := h.Chats.MarkRead(c.GetPrincipal(), chatID); err != nil {
			log.Printf("ERROR: Failed to advance read state on disconnect (chat %s): %v", chatID, err)
		}
	}
	if _, ok := h.clients[c.GetID()]; ok {
		delete(h.clients, c.GetID())
		c.Close()
	}
}

// broadcast delivers the event to every local room member and publishes it
// for hubs on other nodes.
func (h *Hub) broadcast(chatID string, ev models.ServerEvent) {
	h.broadcastLocal(chatID, ev)
	if err := h.Store.PublishEvent(chatID, storage.EventEnvelope{Origin: h.ID, ChatID: chatID, Event: ev}); err != nil {
		log.Printf("ERROR: Failed to publish event for chat %s: %v", chatID, err)
	}
}

func (h *Hub) broadcastLocal(chatID string, ev models.ServerEvent) {
	for _, c := range h.Presence.ClientsIn(chatID) {
		h.sendToClient(c, ev)
	}
}

// sendToClient never blocks the dispatcher: a client whose buffer is full
// is dropped, same as the slow-client policy in the write pump. Clients no
// longer tracked have a closed Send channel; events still in flight from
// their read pump are discarded instead of sent.
func (h *Hub) sendToClient(c Client, ev models.ServerEvent) {
	if _, ok := h.clients[c.GetID()]; !ok {
		return
	}
	select {
	case c.GetSendChannel() <- ev:
	default:
		log.Printf("WARN: Dropping slow connection %s", c.GetID())
		h.handleDisconnect(c)
	}
}
