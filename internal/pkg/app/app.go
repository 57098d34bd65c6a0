package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/proxy"
	"golang.org/x/sync/errgroup"

	router "twitchchat/internal/app/adapters/http"
	"twitchchat/internal/app/adapters/metrics"
	"twitchchat/internal/app/adapters/overlay"
	"twitchchat/internal/app/adapters/platform/twitch/api"
	"twitchchat/internal/app/adapters/platform/twitch/cdn"
	"twitchchat/internal/app/adapters/platform/twitch/event_sub"
	"twitchchat/internal/app/adapters/platform/twitch/irc"
	"twitchchat/internal/app/adapters/platform/twitch/parse"
	"twitchchat/internal/app/adapters/terminal"
	"twitchchat/internal/app/domain"
	"twitchchat/internal/app/domain/chatlog"
	"twitchchat/internal/app/domain/commands"
	"twitchchat/internal/app/infrastructure/config"
	"twitchchat/internal/app/infrastructure/storage"
	"twitchchat/internal/app/infrastructure/timers"
	"twitchchat/internal/app/ports"
	"twitchchat/pkg/logger"
)

const (
	configPath = "config.json"
	apiWorkers = 4

	badgeSyncTimeout = 30 * time.Second
)

// New runs the chat client until it is interrupted, the user quits the
// view, or a component fails for good.
func New() error {
	started := time.Now()

	env, err := config.LoadEnv()
	if err != nil {
		return err
	}

	manager, err := config.New(configPath, env)
	if err != nil {
		return err
	}
	cfg := manager.Get()

	interactive := terminal.IsTerminal(os.Stdin) && terminal.IsTerminal(os.Stdout)

	logOpts := logger.Options{FilePath: cfg.App.LogFile, Level: cfg.App.LogLevel}
	if !interactive {
		logOpts.Console = os.Stderr
	}
	log := logger.New(logOpts)
	gin.SetMode(cfg.App.GinMode)

	prometheus.MustRegister(metrics.MessageProcessingTime)

	dialer, err := newDialer(cfg.Proxy)
	if err != nil {
		log.Error("Error creating proxy dialer", err)
		return err
	}
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConnsPerHost: 8,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	twitchAPI := api.NewTwitch(logger.NewPrefixedLogger(log, "api"), api.Options{
		OAuth:          cfg.App.OAuth,
		ClientID:       cfg.App.ClientID,
		UsersCachePath: filepath.Join(cfg.App.DataDir, "cache", "users.json"),
	}, client, apiWorkers)
	defer func() {
		if err := twitchAPI.Close(); err != nil {
			log.Error("Failed to close API client", err)
		}
	}()

	badgesDir := filepath.Join(cfg.App.DataDir, "badges")
	if cfg.Chat.SyncBadges {
		syncBadges(ctx, log, twitchAPI, cfg, badgesDir)
	}

	parser := newParser(log, cfg, client, badgesDir, interactive)
	pipeline := irc.NewPipeline(
		logger.NewPrefixedLogger(log, "pipeline"),
		parser,
		cfg.Pipeline.Workers,
		cfg.Pipeline.QueueSize,
		time.Duration(cfg.Pipeline.EnqueueTimeoutMs)*time.Millisecond,
	)
	chat := irc.New(logger.NewPrefixedLogger(log, "irc"), irc.Options{
		Username:       cfg.App.Username,
		OAuth:          cfg.App.OAuth,
		Channel:        cfg.App.Channel,
		Transport:      cfg.Chat.Transport,
		ReconnectDelay: time.Duration(cfg.Chat.ReconnectDelaySecs) * time.Second,
	}, dialer, pipeline)

	chatLog := chatlog.New(cfg.Chat.LogSize)
	store := commands.NewStore(cfg.App.DataDir)

	var dispatcher ports.CommandPort
	if cfg.Chat.CommandsEnabled {
		dispatcher = commands.NewDispatcher(logger.NewPrefixedLogger(log, "commands"), store, chat, cfg.Chat.CommandsPerSecond, cfg.Chat.CommandsBurst)
	}

	// Оверлей раздаётся только вместе с HTTP сервером.
	var hub *overlay.Hub
	var publisher ports.PublisherPort
	if cfg.HTTP.Enabled {
		hub = overlay.NewHub(logger.NewPrefixedLogger(log, "overlay"))
		publisher = hub
	}
	ui := terminal.NewUI(logger.NewPrefixedLogger(log, "ui"), chatLog, dispatcher, publisher, os.Stdin, os.Stdout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return pipeline.Run(gctx) })
	g.Go(func() error { return chat.Run(gctx) })

	sources := []<-chan domain.TwitchMessage{pipeline.Messages()}

	if cfg.EventSub.Enabled {
		es := event_sub.New(logger.NewPrefixedLogger(log, "eventsub"), twitchAPI, dialer, event_sub.Options{
			Username:       cfg.App.Username,
			Channel:        cfg.App.Channel,
			ReconnectDelay: time.Duration(cfg.EventSub.ReconnectDelaySecs) * time.Second,
		})
		sources = append(sources, es.Messages())
		g.Go(func() error { return es.Run(gctx) })
	}

	if cfg.Chat.AnnouncementsEnabled {
		wheel := timers.NewTimingWheel(time.Second, 60)
		defer wheel.Stop()

		announcer := commands.NewAnnouncer(logger.NewPrefixedLogger(log, "announcer"), store, chat, wheel)
		g.Go(func() error {
			if err := announcer.Run(gctx); err != nil {
				log.Error("Announcements disabled", err)
			}
			return nil
		})
	}

	if cfg.HTTP.Enabled {
		r := router.NewRouter(logger.NewPrefixedLogger(log, "http"), router.Options{
			Addr:      cfg.HTTP.Addr,
			AuthToken: cfg.App.AuthToken,
		}, chatLog, hub, started)
		g.Go(func() error {
			err := r.Run(gctx)
			// Upgraded connections outlive Shutdown.
			_ = hub.Close()
			return err
		})
	}

	g.Go(func() error {
		defer stop()
		return ui.Run(gctx, sources...)
	})

	log.Info("Chat client started", "channel", cfg.App.Channel, "transport", cfg.Chat.Transport, "interactive", interactive)
	if err := g.Wait(); err != nil {
		log.Error("Chat client stopped", err)
		return err
	}
	return nil
}

func newDialer(p *config.Proxy) (proxy.ContextDialer, error) {
	if p == nil {
		return proxy.Direct, nil
	}

	d, err := proxy.SOCKS5("tcp", net.JoinHostPort(p.Address, strconv.Itoa(p.Port)), nil, proxy.Direct)
	if err != nil {
		return nil, err
	}

	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("socks5 dialer does not support contexts")
	}
	return cd, nil
}

// newEncoder returns nil when images are disabled.
func newEncoder(mode string, interactive bool) *terminal.Encoder {
	switch mode {
	case config.ImagesOff:
		return nil
	case config.ImagesPlain:
		return terminal.NewEncoder(false)
	case config.ImagesTmux:
		return terminal.NewEncoder(true)
	}

	if !interactive {
		return nil
	}
	return terminal.EncoderFromEnv(os.Getenv)
}

func newParser(log logger.Logger, cfg *config.Config, client *http.Client, badgesDir string, interactive bool) *parse.Parser {
	parseLog := logger.NewPrefixedLogger(log, "parse")

	encoder := newEncoder(cfg.Chat.Images, interactive)
	if encoder == nil {
		return parse.New(nil, nil, parseLog)
	}

	badges := parse.NewBadgeResolver(badgesDir, encoder, storage.NewCache[string](storage.CacheOptions{
		Capacity: 256,
	}), parseLog.Named("badges"))

	emotes := parse.NewEmoteResolver(
		cdn.New(logger.NewPrefixedLogger(log, "cdn"), client),
		encoder,
		storage.NewCache[string](storage.CacheOptions{
			Capacity: cfg.Pipeline.EmoteCacheSize,
			TTL:      time.Hour,
		}),
		parseLog.Named("emotes"),
		time.Duration(cfg.Pipeline.EmoteTimeoutMs)*time.Millisecond,
	)

	return parse.New(badges, emotes, parseLog)
}

func syncBadges(ctx context.Context, log logger.Logger, twitchAPI ports.APIPort, cfg *config.Config, dir string) {
	if cfg.App.ClientID == "" {
		log.Warn("Skipping badge sync: app.client_id is not set")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, badgeSyncTimeout)
	defer cancel()

	broadcasterID, err := twitchAPI.GetUserID(ctx, cfg.App.Channel)
	if err != nil {
		log.Error("Failed to resolve channel for badges", err, "channel", cfg.App.Channel)
	}

	n, err := twitchAPI.SyncBadges(ctx, dir, broadcasterID)
	if err != nil {
		log.Error("Badge sync incomplete", err, "written", n)
		return
	}
	log.Info("Badge assets ready", "written", n, "dir", dir)
}
