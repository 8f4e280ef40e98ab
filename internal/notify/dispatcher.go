// Package notify fans a delivered message out to the chat members who were
// not present in the room: one persisted Notification row plus one
// best-effort push per absent recipient. Fan-out runs off the broadcast
// path — through the asynq queue when available, a goroutine otherwise —
// so a slow push can never hold up delivery to present members.
package notify

import (
	"context"
	"encoding/json"
	"log"

	"educhat/backend/internal/config"
	"educhat/backend/internal/models"
	"educhat/backend/internal/principal"
	"educhat/backend/internal/push"

	"github.com/hibiken/asynq"
)

// TaskDeliverNotification is the asynq task type for one recipient's
// notification.
const TaskDeliverNotification = "notification:deliver"

// Presence is the read-only slice of the registry the dispatcher needs.
type Presence interface {
	IsPresent(chatID, participantID string) bool
}

// Store is the slice of the storage layer the dispatcher needs.
type Store interface {
	GetChat(chatID string) (*models.Chat, error)
	GetParticipant(participantID string) (*models.Participant, error)
	ParticipantsOf(chatID string) ([]models.Participant, error)
	SaveNotification(n *models.Notification) error
}

type deliverPayload struct {
	RecipientID   string               `json:"recipient_id"`
	RecipientKind models.PrincipalKind `json:"recipient_kind"`
	Title         string               `json:"title"`
	Body          string               `json:"body"`
}

type Dispatcher struct {
	Store    Store
	Dir      principal.Directory
	Presence Presence
	Queue    *asynq.Client // nil means inline fire-and-forget delivery
	Sink     push.Sink
}

func NewDispatcher(store Store, dir principal.Directory, presence Presence, queue *asynq.Client, sink push.Sink) *Dispatcher {
	if sink == nil {
		sink = push.LogSink{}
	}
	return &Dispatcher{Store: store, Dir: dir, Presence: presence, Queue: queue, Sink: sink}
}

// MessageDelivered enqueues one notification per chat member who is neither
// the sender nor currently present in the room. Presence in other rooms
// does not count.
func (d *Dispatcher) MessageDelivered(msg *models.Message) {
	chat, err := d.Store.GetChat(msg.ChatID)
	if err != nil {
		log.Printf("ERROR: Notification fan-out lost chat %s: %v", msg.ChatID, err)
		return
	}
	sender, err := d.Store.GetParticipant(msg.SenderParticipantID)
	if err != nil {
		log.Printf("ERROR: Notification fan-out lost sender %s: %v", msg.SenderParticipantID, err)
		return
	}
	senderName, err := d.Dir.DisplayName(sender.Ref())
	if err != nil {
		log.Printf("ERROR: Notification fan-out could not resolve sender name: %v", err)
		return
	}

	title := senderName
	if chat.IsGroup {
		title = chat.Name
	}
	body := senderName + ": " + msg.Content

	members, err := d.Store.ParticipantsOf(msg.ChatID)
	if err != nil {
		log.Printf("ERROR: Notification fan-out could not list members of chat %s: %v", msg.ChatID, err)
		return
	}
	for _, m := range members {
		if m.ID == sender.ID {
			continue
		}
		if d.Presence.IsPresent(msg.ChatID, m.ID) {
			continue
		}
		d.dispatch(deliverPayload{
			RecipientID:   m.PrincipalID,
			RecipientKind: m.PrincipalKind,
			Title:         title,
			Body:          body,
		})
	}
}

func (d *Dispatcher) dispatch(p deliverPayload) {
	if d.Queue == nil {
		go func() { _ = d.deliver(context.Background(), p) }()
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		log.Printf("ERROR: Failed to encode notification payload: %v", err)
		return
	}
	task := asynq.NewTask(TaskDeliverNotification, raw)
	if _, err := d.Queue.Enqueue(task, asynq.Queue(config.NotifyQueue), asynq.MaxRetry(config.NotifyMaxRetry)); err != nil {
		log.Printf("WARN: Notification enqueue failed, delivering inline: %v", err)
		go func() { _ = d.deliver(context.Background(), p) }()
	}
}

// HandleDeliverTask is the asynq handler. A persistence failure is returned
// so the queue retries it; push failures are swallowed.
func (d *Dispatcher) HandleDeliverTask(ctx context.Context, t *asynq.Task) error {
	var p deliverPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	return d.deliver(ctx, p)
}

func (d *Dispatcher) deliver(ctx context.Context, p deliverPayload) error {
	n := &models.Notification{
		RecipientID:   p.RecipientID,
		RecipientKind: p.RecipientKind,
		Title:         p.Title,
		Body:          p.Body,
	}
	if err := d.Store.SaveNotification(n); err != nil {
		return err
	}

	tokens, err := d.Dir.DeviceTokens(models.PrincipalRef{ID: p.RecipientID, Kind: p.RecipientKind})
	if err != nil {
		log.Printf("WARN: No device tokens for %s %s: %v", p.RecipientKind, p.RecipientID, err)
		return nil
	}
	for _, token := range tokens {
		if err := d.Sink.Push(ctx, token, p.Title, p.Body); err != nil {
			// Best effort: log and move on, never retry, never surface.
			log.Printf("WARN: Push delivery failed for %s %s: %v", p.RecipientKind, p.RecipientID, err)
		}
	}
	return nil
}
