package config

const (
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"

	ImagesAuto  = "auto"
	ImagesPlain = "plain"
	ImagesTmux  = "tmux"
	ImagesOff   = "off"
)

func (m *Manager) GetDefault() *Config {
	return &Config{
		App: App{
			LogLevel: "info",
			LogFile:  "logs/main.log",
			GinMode:  "release",
			DataDir:  "data",
		},
		Chat: Chat{
			Transport:            TransportTCP,
			Images:               ImagesAuto,
			LogSize:              100,
			ReconnectDelaySecs:   5,
			SyncBadges:           true,
			CommandsEnabled:      true,
			CommandsPerSecond:    1,
			CommandsBurst:        3,
			AnnouncementsEnabled: true,
		},
		Pipeline: Pipeline{
			Workers:          8,
			QueueSize:        256,
			EnqueueTimeoutMs: 500,
			EmoteTimeoutMs:   5000,
			EmoteCacheSize:   2048,
		},
		HTTP: HTTP{
			Enabled: false,
			Addr:    "127.0.0.1:8080",
		},
		EventSub: EventSub{
			Enabled:            false,
			ReconnectDelaySecs: 5,
		},
	}
}
