package config

const (
	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Realtime
	ClientSendBuffer = 256

	// Notification fan-out
	NotifyQueue    = "notify"
	NotifyMaxRetry = 3
)
