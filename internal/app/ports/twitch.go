package ports

import (
	"context"

	"twitchchat/internal/app/domain"
)

// ParserPort turns one raw IRC line into a typed message.
type ParserPort interface {
	Parse(ctx context.Context, raw string) (domain.TwitchMessage, error)
}

// ChatPort sends text to the joined channel.
type ChatPort interface {
	Say(text string) error
}

// ImageFetcherPort downloads an image and returns it as PNG bytes.
type ImageFetcherPort interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type APIPort interface {
	GetUserID(ctx context.Context, login string) (string, error)
	SyncBadges(ctx context.Context, dir, broadcasterID string) (int, error)
	CreateEventSubSubscription(ctx context.Context, req SubscriptionRequest) error
}

type SubscriptionRequest struct {
	Type      string            `json:"type"`
	Version   string            `json:"version"`
	Condition map[string]string `json:"condition"`
	Transport struct {
		Method    string `json:"method"`
		SessionID string `json:"session_id"`
	} `json:"transport"`
}

// CommandPort answers chat commands found in a message.
type CommandPort interface {
	Handle(msg domain.ChatMessage) []string
}
