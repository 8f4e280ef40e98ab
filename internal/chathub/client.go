package chathub

import "educhat/backend/internal/models"

// Client is the interface for one realtime connection. It abstracts the
// underlying transport so the hub and the presence registry can manage
// connections uniformly (websocket today, anything with an outbound event
// channel tomorrow).
type Client interface {
	// GetID returns the unique identifier of this connection. A principal
	// may hold several connections; each gets its own id.
	GetID() string
	// GetPrincipal returns the authenticated principal behind the connection.
	GetPrincipal() models.PrincipalRef

	// GetSendChannel returns the channel the hub writes outbound room
	// events to. It is a send-only view.
	GetSendChannel() chan<- models.ServerEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the outbound channel and lets the pumps wind down.
	Close()
}
