// Package push holds the best-effort delivery sinks for offline
// notifications. A sink gets one attempt per device token; failures are the
// caller's to log and swallow, never to retry.
package push

import (
	"context"
	"log"
)

// Sink delivers one push to one device token.
type Sink interface {
	Push(ctx context.Context, deviceToken, title, body string) error
}

// LogSink is the default sink when no push transport is configured. It only
// logs, which keeps the dispatcher path identical in development.
type LogSink struct{}

func (LogSink) Push(ctx context.Context, deviceToken, title, body string) error {
	log.Printf("INFO: push (log sink) token=%s title=%q", deviceToken, title)
	return nil
}
