package chathub

import (
	"encoding/json"
	"log"

	"educhat/backend/internal/storage"
)

// startPubSubListener subscribes to the per-chat Redis channels and feeds
// events published by other nodes into the dispatcher loop. Events carrying
// our own origin tag were already delivered locally and are skipped.
func (h *Hub) startPubSubListener() {
	pubsub := h.Store.SubscribeToChats()
	if pubsub == nil {
		// Single-node deployment (or tests): no cross-node fan-out.
		return
	}

	go func() {
		defer pubsub.Close()
		for msg := range pubsub.Channel() {
			var env storage.EventEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("Error unmarshalling Pub/Sub payload: %v", err)
				continue
			}
			if env.Origin == h.ID {
				continue
			}
			h.RemoteCh <- env
		}
	}()
}
