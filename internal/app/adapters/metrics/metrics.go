package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IRCConnected - подключён ли клиент к IRC.
	IRCConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_irc_connected",
		Help: "Whether the IRC connection is up (1) or down (0)",
	})

	// IRCReconnects - количество переподключений.
	IRCReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_irc_reconnects_total",
		Help: "Number of IRC reconnect attempts",
	})

	// MessagesParsed - разобранные сообщения по типу.
	MessagesParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_parsed_total",
			Help: "Parsed IRC lines by resulting message type",
		},
		[]string{"type"},
	)

	ParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_parse_errors_total",
		Help: "IRC lines dropped as malformed",
	})

	// PipelineDropped - строки, отброшенные при переполнении очереди.
	PipelineDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_pipeline_dropped_total",
		Help: "Lines dropped because the parse queue stayed full",
	})

	EmoteFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_emote_fetch_failures_total",
			Help: "Emotes left as text, by failure reason",
		},
		[]string{"reason"},
	)

	EmoteFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chat_emote_fetch_seconds",
		Help:    "Time spent downloading and converting one emote",
		Buckets: prometheus.DefBuckets,
	})

	BadgeAssetsMissing = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_badge_assets_missing_total",
		Help: "Badges skipped because their asset file was missing",
	})

	// CommandsDispatched - ответы на команды чата.
	CommandsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_commands_dispatched_total",
			Help: "Chat commands answered, by command name",
		},
		[]string{"command"},
	)

	AnnouncementsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_announcements_sent_total",
		Help: "Timed announcements posted to chat",
	})

	ChatLogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_log_size",
		Help: "Entries currently held in the chat log",
	})

	// EventSubNotifications - уведомления EventSub по типу подписки.
	EventSubNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_eventsub_notifications_total",
			Help: "EventSub notifications received, by subscription type",
		},
		[]string{"subscription"},
	)

	// OverlayClients - подключённые клиенты оверлея.
	OverlayClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_overlay_clients",
		Help: "WebSocket overlay clients currently connected",
	})

	OverlayDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_overlay_dropped_total",
		Help: "Messages not delivered to an overlay client whose buffer was full",
	})

	// MessageProcessingTime - время обработки одной строки IRC.
	MessageProcessingTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_message_processing_seconds",
			Help:    "Time from receiving an IRC line to having it parsed",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)
)
