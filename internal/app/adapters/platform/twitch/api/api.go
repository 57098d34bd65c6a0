package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"twitchchat/internal/app/infrastructure/storage"
	"twitchchat/pkg/logger"
)

const helixURL = "https://api.twitch.tv/helix"

type Options struct {
	OAuth    string
	ClientID string
	// UsersCachePath persists login to user id lookups between runs.
	UsersCachePath string
}

type Twitch struct {
	log     logger.Logger
	opts    Options
	client  *http.Client
	baseURL string
	users   *storage.Cache[string]
	pool    *TwitchPool
}

func NewTwitch(log logger.Logger, opts Options, client *http.Client, workerCount int) *Twitch {
	t := &Twitch{
		log:     log,
		opts:    opts,
		client:  client,
		baseURL: helixURL,
		users: storage.NewCache[string](storage.CacheOptions{
			Capacity: 1024,
			FilePath: opts.UsersCachePath,
		}),
		pool: newPool(workerCount, 300),
	}

	return t
}

// Close stops the worker pool and persists the user cache.
func (t *Twitch) Close() error {
	t.pool.Stop()
	return t.users.Close()
}

const (
	maxRetries  = 5
	baseBackoff = time.Second
	maxBackoff  = 30 * time.Second
)

type twitchRequest struct {
	Method string
	URL    string
	Body   io.Reader
}

type TwitchAPIError struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (t *Twitch) doTwitchRequest(ctx context.Context, reqData twitchRequest, target any) (int, error) {
	t.log.Trace("Preparing Twitch request",
		slog.String("method", reqData.Method),
		slog.String("url", reqData.URL),
	)

	var body []byte
	if reqData.Body != nil {
		var err error
		if body, err = io.ReadAll(reqData.Body); err != nil {
			return 0, err
		}
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := t.newRequest(ctx, reqData.Method, reqData.URL, body)
		if err != nil {
			t.log.Error("Failed to create HTTP request", err, slog.String("method", reqData.Method), slog.String("url", reqData.URL))
			return 0, err
		}

		t.log.Debug("Sending Twitch request", slog.Int("attempt", attempt), slog.String("method", reqData.Method), slog.String("url", reqData.URL))

		resp, err := t.client.Do(req)
		if err != nil {
			t.log.Error("HTTP request failed", err, slog.Int("attempt", attempt), slog.String("url", reqData.URL))
			return 0, err
		}

		raw, err := io.ReadAll(resp.Body)
		if cerr := resp.Body.Close(); cerr != nil {
			t.log.Error("Failed to close response body", cerr)
		}
		if err != nil {
			t.log.Error("Failed to read response body", err, slog.Int("status", resp.StatusCode), slog.String("url", reqData.URL))
			return resp.StatusCode, err
		}

		t.log.Trace("Response received", slog.Int("status", resp.StatusCode), slog.String("body", string(raw)))
		switch resp.StatusCode {
		case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
			if target == nil || len(raw) == 0 {
				return resp.StatusCode, nil
			}

			if err := json.Unmarshal(raw, target); err != nil {
				t.log.Error("Failed to decode response JSON", err, slog.Int("status", resp.StatusCode), slog.String("body", string(raw)))
				return resp.StatusCode, err
			}
			return resp.StatusCode, nil

		case http.StatusTooManyRequests:
			wait := calcWaitDuration(resp.Header.Get("Ratelimit-Reset"))

			if wait <= 0 {
				wait = time.Duration(attempt) * baseBackoff
			}
			if wait > maxBackoff {
				wait = maxBackoff
			}

			t.log.Warn("Rate limit hit, backing off", slog.Int("attempt", attempt), slog.String("wait", wait.String()))
			select {
			case <-ctx.Done():
				return resp.StatusCode, ctx.Err()
			case <-time.After(wait):
			}
			continue

		default:
			return resp.StatusCode, apiError(resp.StatusCode, raw)
		}
	}

	t.log.Error("Twitch request failed after max retries", nil,
		slog.Int("maxRetries", maxRetries),
		slog.String("url", reqData.URL),
	)
	return http.StatusTooManyRequests, fmt.Errorf("%w: gave up after %d retries", ErrRateLimited, maxRetries)
}

func (t *Twitch) newRequest(ctx context.Context, method, url string, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+t.opts.OAuth)
	req.Header.Set("Client-Id", t.opts.ClientID)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func apiError(status int, raw []byte) error {
	var sentinel error
	switch status {
	case http.StatusBadRequest:
		sentinel = ErrBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = ErrUnauthorized
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusConflict:
		sentinel = ErrConflict
	default:
		sentinel = ErrUnexpectedStatus
	}

	var apiErr TwitchAPIError
	if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Message == "" {
		return fmt.Errorf("%w: status %d: %s", sentinel, status, string(raw))
	}
	return fmt.Errorf("%w: %s", sentinel, apiErr.Message)
}

func calcWaitDuration(resetHeader string) time.Duration {
	if resetHeader == "" {
		return 0
	}

	ts, err := strconv.ParseInt(resetHeader, 10, 64)
	if err != nil {
		return 0
	}

	resetTime := time.Unix(ts, 0)
	now := time.Now()

	if resetTime.Before(now) {
		return 0
	}
	return resetTime.Sub(now)
}

