package config

type Config struct {
	App      App      `json:"app"`
	Proxy    *Proxy   `json:"proxy"`
	Chat     Chat     `json:"chat"`
	Pipeline Pipeline `json:"pipeline"`
	HTTP     HTTP     `json:"http"`
	EventSub EventSub `json:"event_sub"`
}

type App struct {
	LogLevel  string `json:"log_level"`
	LogFile   string `json:"log_file"`
	GinMode   string `json:"gin_mode"`
	DataDir   string `json:"data_dir"`
	OAuth     string `json:"oauth"`
	ClientID  string `json:"client_id"`
	Username  string `json:"username"`
	Channel   string `json:"channel"` // по умолчанию канал пользователя
	AuthToken string `json:"auth_token"`
}

type Proxy struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

type Chat struct {
	Transport          string `json:"transport"` // tcp или websocket
	Images             string `json:"images"`    // auto, plain, tmux, off
	LogSize            int    `json:"log_size"`
	ReconnectDelaySecs int    `json:"reconnect_delay_secs"`
	SyncBadges         bool   `json:"sync_badges"`

	CommandsEnabled      bool    `json:"commands_enabled"`
	CommandsPerSecond    float64 `json:"commands_per_second"`
	CommandsBurst        int     `json:"commands_burst"`
	AnnouncementsEnabled bool    `json:"announcements_enabled"`
}

type Pipeline struct {
	Workers          int `json:"workers"`
	QueueSize        int `json:"queue_size"`
	EnqueueTimeoutMs int `json:"enqueue_timeout_ms"`
	EmoteTimeoutMs   int `json:"emote_timeout_ms"`
	EmoteCacheSize   int `json:"emote_cache_size"`
}

type HTTP struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

type EventSub struct {
	Enabled            bool `json:"enabled"`
	ReconnectDelaySecs int  `json:"reconnect_delay_secs"`
}
