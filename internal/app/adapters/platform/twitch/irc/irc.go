package irc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"

	"twitchchat/internal/app/adapters/metrics"
	"twitchchat/internal/app/adapters/platform/twitch/parse"
	"twitchchat/pkg/logger"
)

const (
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"

	maxMessageLen = 500
)

var (
	ErrAuthFailed      = errors.New("irc authentication failed")
	ErrNotConnected    = errors.New("irc not connected")
	ErrMessageTooLong  = errors.New("message too long")
	ErrEmptyMessage    = errors.New("empty message")
	ErrRateLimited     = errors.New("sending messages too quickly")
	errServerReconnect = errors.New("server requested reconnect")
)

type Options struct {
	Username       string
	OAuth          string
	Channel        string
	Transport      string
	ReconnectDelay time.Duration
}

// Client keeps one authenticated connection to Twitch chat and feeds every
// received line into the pipeline.
type Client struct {
	log      logger.Logger
	opts     Options
	dial     dialFunc
	pipeline *Pipeline

	mu   sync.Mutex
	conn lineConn

	limiter *rate.Limiter
}

func New(log logger.Logger, opts Options, dialer proxy.ContextDialer, pipeline *Pipeline) *Client {
	if dialer == nil {
		dialer = proxy.Direct
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = 5 * time.Second
	}
	opts.Channel = strings.ToLower(strings.TrimPrefix(opts.Channel, "#"))

	c := &Client{
		log:      log,
		opts:     opts,
		pipeline: pipeline,
		// 20 messages per 30 seconds for regular accounts.
		limiter: rate.NewLimiter(rate.Every(1500*time.Millisecond), 20),
	}

	switch opts.Transport {
	case TransportWebSocket:
		c.dial = dialWebSocket(dialer, wsURL)
	default:
		c.dial = dialTCP(dialer, tcpAddr, &tls.Config{MinVersion: tls.VersionTLS12, ServerName: "irc.chat.twitch.tv"})
	}

	return c
}

// Run connects and reconnects until ctx ends. Only authentication failures
// stop it early.
func (c *Client) Run(ctx context.Context) error {
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, ErrAuthFailed) {
			return err
		}

		c.log.Warn("IRC connection lost, retrying...", slog.String("error", errString(err)), slog.Duration("delay", c.opts.ReconnectDelay))
		metrics.IRCReconnects.Inc()

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.opts.ReconnectDelay):
		}
	}
}

func (c *Client) session(parent context.Context) error {
	conn, err := c.dial(parent)
	if err != nil {
		c.log.Error("Failed to connect to IRC chat Twitch", err)
		return err
	}

	// Lines still being parsed when the connection drops finish with plain text.
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c.setConn(conn)
	defer c.setConn(nil)

	for _, line := range []string{
		"PASS oauth:" + c.opts.OAuth,
		"NICK " + c.opts.Username,
		"CAP REQ :twitch.tv/tags twitch.tv/commands twitch.tv/membership",
		"JOIN #" + c.opts.Channel,
	} {
		if err := conn.WriteLine(line); err != nil {
			return fmt.Errorf("handshake: %w", err)
		}
	}

	metrics.IRCConnected.Set(1)
	defer metrics.IRCConnected.Set(0)
	c.log.Info("Listening on IRC chat Twitch", slog.String("channel", "#"+c.opts.Channel))

	for {
		line, err := conn.ReadLine()
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}

		if arg, ok := strings.CutPrefix(line, "PING"); ok {
			if err := conn.WriteLine("PONG" + arg); err != nil {
				return err
			}
			continue
		}

		if err := c.control(line); err != nil {
			return err
		}

		c.log.Trace("IRC line", slog.String("line", line))
		c.pipeline.Submit(ctx, line)
	}
}

// control reacts to server lines that affect the connection itself.
func (c *Client) control(line string) error {
	l, err := parse.Split(line)
	if err != nil {
		return nil
	}

	switch l.Command {
	case "RECONNECT":
		return errServerReconnect
	case "NOTICE":
		switch {
		case strings.Contains(l.Text, "Login authentication failed"), strings.Contains(l.Text, "Improperly formatted auth"):
			c.log.Error("Login authentication to IRC failed", nil, slog.String("line", line))
			return ErrAuthFailed
		case strings.Contains(l.Text, "sending messages too quickly"):
			c.log.Warn("Rate limit to IRC exceeded", slog.String("line", line))
		}
	}
	return nil
}

// Say posts text to the joined channel.
func (c *Client) Say(text string) error {
	text = strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(text))
	if text == "" {
		return ErrEmptyMessage
	}
	if len(text) > maxMessageLen {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLong, len(text))
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	if !c.limiter.Allow() {
		return ErrRateLimited
	}

	return conn.WriteLine("PRIVMSG #" + c.opts.Channel + " :" + text)
}

func (c *Client) setConn(conn lineConn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
