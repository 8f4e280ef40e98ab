package handler

import (
	"context"
	"io"

	"educhat/backend/internal/chathub"
	"educhat/backend/internal/service"
)

// FileStore is the opaque file-storage collaborator: it takes the uploaded
// bytes and returns a URL. Where the bytes actually live is not this
// service's business.
type FileStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Handler carries the dependencies of the REST and websocket endpoints.
type Handler struct {
	Hub       *chathub.Hub
	Service   *service.ChatService
	Files     FileStore
	jwtSecret []byte
}

func NewHandler(hub *chathub.Hub, svc *service.ChatService, files FileStore, jwtSecret string) *Handler {
	return &Handler{Hub: hub, Service: svc, Files: files, jwtSecret: []byte(jwtSecret)}
}
