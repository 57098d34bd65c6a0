package event_sub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/net/proxy"

	"twitchchat/internal/app/adapters/metrics"
	"twitchchat/internal/app/adapters/platform/twitch/api"
	"twitchchat/internal/app/domain"
	"twitchchat/internal/app/infrastructure/storage"
	"twitchchat/internal/app/ports"
	"twitchchat/pkg/logger"
)

const (
	eventSubURL = "wss://eventsub.wss.twitch.tv/ws?keepalive_timeout_seconds=30"

	defaultKeepalive = 30 * time.Second
	keepaliveGrace   = 10 * time.Second

	maxRetries     = 5
	initialBackoff = 3 * time.Second
)

type Options struct {
	Username       string
	Channel        string
	URL            string
	ReconnectDelay time.Duration
}

// EventSub receives channel events that IRC does not carry and emits them
// as chat log entries.
type EventSub struct {
	log    logger.Logger
	api    ports.APIPort
	opts   Options
	dialer websocket.Dialer

	out     chan domain.TwitchMessage
	seen    *storage.Cache[bool]
	backoff time.Duration
}

func New(log logger.Logger, api ports.APIPort, dialer proxy.ContextDialer, opts Options) *EventSub {
	if dialer == nil {
		dialer = proxy.Direct
	}
	if opts.URL == "" {
		opts.URL = eventSubURL
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = 5 * time.Second
	}

	return &EventSub{
		log:  log,
		api:  api,
		opts: opts,
		dialer: websocket.Dialer{
			NetDialContext:   dialer.DialContext,
			HandshakeTimeout: 10 * time.Second,
		},
		out: make(chan domain.TwitchMessage, 64),
		seen: storage.NewCache[bool](storage.CacheOptions{
			Capacity: 512,
			TTL:      10 * time.Minute,
		}),
		backoff: initialBackoff,
	}
}

// Messages is closed when Run returns.
func (es *EventSub) Messages() <-chan domain.TwitchMessage {
	return es.out
}

// Run keeps a session open until ctx ends. A session_reconnect moves to the
// new URL at once and keeps the existing subscriptions.
func (es *EventSub) Run(ctx context.Context) error {
	defer close(es.out)

	url := es.opts.URL
	for {
		next, err := es.session(ctx, url, url != es.opts.URL)
		if ctx.Err() != nil {
			return nil
		}

		if next != "" {
			es.log.Debug("EventSub session moved", slog.String("url", next))
			url = next
			continue
		}
		url = es.opts.URL

		es.log.Warn("Websocket connection lost, retrying...", slog.String("error", errString(err)))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(es.opts.ReconnectDelay):
		}
	}
}

// session returns the reconnect URL when the server asked to move.
func (es *EventSub) session(ctx context.Context, url string, resumed bool) (string, error) {
	ws, resp, err := es.dialer.DialContext(ctx, url, http.Header{})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return "", fmt.Errorf("websocket dial: %w", err)
	}
	defer ws.Close()

	stop := context.AfterFunc(ctx, func() { _ = ws.Close() })
	defer stop()

	es.log.Info("Connected to EventSub WebSocket")

	keepalive := defaultKeepalive
	for {
		_ = ws.SetReadDeadline(time.Now().Add(keepalive + keepaliveGrace))

		_, data, err := ws.ReadMessage()
		if err != nil {
			return "", err
		}

		var msg EventSubMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			es.log.Error("Failed to decode EventSub message", err, slog.String("event", string(data)))
			continue
		}

		switch msg.Metadata.MessageType {
		case "session_welcome":
			var p SessionPayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				es.log.Error("Failed to decode session_welcome payload", err)
				continue
			}
			if p.Session.KeepaliveTimeoutSeconds > 0 {
				keepalive = time.Duration(p.Session.KeepaliveTimeoutSeconds) * time.Second
			}

			es.log.Debug("Received session_welcome on EventSub", slog.String("session", p.Session.ID), slog.Bool("resumed", resumed))
			if !resumed {
				go es.subscribeEvents(ctx, p.Session.ID)
			}

		case "session_keepalive":
			es.log.Trace("Received session_keepalive on EventSub")

		case "session_reconnect":
			var p SessionPayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil || p.Session.ReconnectURL == "" {
				return "", fmt.Errorf("bad session_reconnect payload")
			}
			return p.Session.ReconnectURL, nil

		case "revocation":
			es.log.Warn("EventSub subscription revoked", slog.String("payload", string(msg.Payload)))

		case "notification":
			if _, dup := es.seen.Get(msg.Metadata.MessageID); dup && msg.Metadata.MessageID != "" {
				continue
			}
			es.seen.Set(msg.Metadata.MessageID, true)

			es.handleNotification(ctx, msg.Payload)
		}
	}
}

func (es *EventSub) handleNotification(ctx context.Context, payload json.RawMessage) {
	var envelope EventSubEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		es.log.Error("Failed to decode EventSub envelope", err)
		return
	}
	metrics.EventSubNotifications.WithLabelValues(envelope.Subscription.Type).Inc()

	msg, ok, err := convertNotification(envelope.Subscription.Type, envelope.Event)
	if err != nil {
		es.log.Error("Failed to decode notification event", err, slog.String("type", envelope.Subscription.Type))
		return
	}
	if !ok {
		return
	}

	select {
	case es.out <- msg:
	case <-ctx.Done():
	}
}

func (es *EventSub) subscribeEvents(ctx context.Context, sessionID string) {
	broadcasterID, err := es.api.GetUserID(ctx, es.opts.Channel)
	if err != nil {
		es.log.Error("Failed to resolve channel id", err, slog.String("channel", es.opts.Channel))
		return
	}
	userID, err := es.api.GetUserID(ctx, es.opts.Username)
	if err != nil {
		es.log.Error("Failed to resolve user id", err, slog.String("user", es.opts.Username))
		return
	}

	events := []struct {
		name, version string
		condition     map[string]string
	}{
		{
			name:    ChatNotification,
			version: "1",
			condition: map[string]string{
				"broadcaster_user_id": broadcasterID,
				"user_id":             userID,
			},
		},
		{
			name:    ChatClearUser,
			version: "1",
			condition: map[string]string{
				"broadcaster_user_id": broadcasterID,
				"user_id":             userID,
			},
		},
		{
			name:    RewardRedemption,
			version: "1",
			condition: map[string]string{
				"broadcaster_user_id": broadcasterID,
			},
		},
	}

	for _, e := range events {
		req := ports.SubscriptionRequest{Type: e.name, Version: e.version, Condition: e.condition}
		req.Transport.Method = "websocket"
		req.Transport.SessionID = sessionID

		if err := es.subscribe(ctx, req); err != nil {
			es.log.Error("Giving up on event subscription", err, slog.String("event", e.name))
		}
	}
}

func (es *EventSub) subscribe(ctx context.Context, req ports.SubscriptionRequest) error {
	backoff := es.backoff

	for attempt := 1; ; attempt++ {
		err := es.api.CreateEventSubSubscription(ctx, req)
		switch {
		case err == nil, errors.Is(err, api.ErrConflict):
			return nil
		case errors.Is(err, api.ErrUnauthorized), errors.Is(err, api.ErrBadRequest):
			return err
		case attempt >= maxRetries:
			return err
		}

		es.log.Warn("Retrying event subscription", slog.String("event", req.Type), slog.Int("attempt", attempt), slog.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
