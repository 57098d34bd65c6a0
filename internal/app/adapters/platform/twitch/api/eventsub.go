package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"twitchchat/internal/app/ports"
)

// CreateEventSubSubscription registers a WebSocket subscription. Twitch
// answers 202 Accepted.
func (t *Twitch) CreateEventSubSubscription(ctx context.Context, req ports.SubscriptionRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	var resp SubscriptionResponse
	status, err := t.doTwitchRequest(ctx, twitchRequest{
		Method: "POST",
		URL:    t.baseURL + "/eventsub/subscriptions",
		Body:   bytes.NewReader(body),
	}, &resp)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", req.Type, err)
	}

	t.log.Info("EventSub subscription created", slog.String("type", req.Type), slog.Int("status", status))
	return nil
}
