package config

import (
	"errors"
	"fmt"
	"strings"
)

func (m *Manager) validate(cfg *Config) error {
	// app
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if cfg.App.LogLevel != "" && !validLevels[cfg.App.LogLevel] {
		return fmt.Errorf("app.log_level must be one of trace, debug, info, warn, error; got %s", cfg.App.LogLevel)
	}

	cfg.App.OAuth = strings.TrimPrefix(cfg.App.OAuth, "oauth:")
	if cfg.App.OAuth == "" {
		return errors.New("app.oauth is required (or set TOKEN)")
	}
	if cfg.App.Username == "" {
		return errors.New("app.username is required (or set NAME)")
	}

	cfg.App.Username = strings.ToLower(cfg.App.Username)
	cfg.App.Channel = strings.ToLower(strings.TrimPrefix(cfg.App.Channel, "#"))
	if cfg.App.Channel == "" {
		cfg.App.Channel = cfg.App.Username
	}
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = "data"
	}

	if cfg.Proxy != nil && (cfg.Proxy.Address == "" || cfg.Proxy.Port <= 0 || cfg.Proxy.Port > 65535) {
		return errors.New("proxy.address and proxy.port must be set together")
	}

	// chat
	switch cfg.Chat.Transport {
	case "":
		cfg.Chat.Transport = TransportTCP
	case TransportTCP, TransportWebSocket:
	default:
		return fmt.Errorf("chat.transport must be tcp or websocket; got %s", cfg.Chat.Transport)
	}

	switch cfg.Chat.Images {
	case "":
		cfg.Chat.Images = ImagesAuto
	case ImagesAuto, ImagesPlain, ImagesTmux, ImagesOff:
	default:
		return fmt.Errorf("chat.images must be one of auto, plain, tmux, off; got %s", cfg.Chat.Images)
	}

	if cfg.Chat.LogSize < 1 || cfg.Chat.LogSize > 10000 {
		return errors.New("chat.log_size must be [1,10000]")
	}
	if cfg.Chat.ReconnectDelaySecs < 1 {
		cfg.Chat.ReconnectDelaySecs = 5
	}
	if cfg.Chat.CommandsPerSecond <= 0 || cfg.Chat.CommandsBurst < 1 {
		return errors.New("chat.commands_per_second and chat.commands_burst must be positive")
	}

	// pipeline
	if cfg.Pipeline.Workers < 1 || cfg.Pipeline.Workers > 256 {
		return errors.New("pipeline.workers must be [1,256]")
	}
	if cfg.Pipeline.QueueSize < 1 {
		return errors.New("pipeline.queue_size must be positive")
	}
	if cfg.Pipeline.EnqueueTimeoutMs < 0 || cfg.Pipeline.EmoteTimeoutMs < 0 {
		return errors.New("pipeline timeouts must not be negative")
	}
	if cfg.Pipeline.EmoteCacheSize < 1 {
		return errors.New("pipeline.emote_cache_size must be positive")
	}

	// http
	if cfg.HTTP.Enabled && cfg.HTTP.Addr == "" {
		return errors.New("http.addr is required when http is enabled")
	}

	// event_sub
	if cfg.EventSub.Enabled {
		if cfg.App.ClientID == "" {
			return errors.New("app.client_id is required for event_sub (or set CLIENT_ID)")
		}
		if cfg.EventSub.ReconnectDelaySecs < 1 {
			cfg.EventSub.ReconnectDelaySecs = 5
		}
	}

	return nil
}
