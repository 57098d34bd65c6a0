package commands

import (
	"errors"
	"strings"

	"golang.org/x/time/rate"

	"twitchchat/internal/app/adapters/metrics"
	"twitchchat/internal/app/domain"
	"twitchchat/internal/app/ports"
	"twitchchat/pkg/logger"
)

const replyPrefix = "[bot] "

// Dispatcher answers "!name" tokens in chat with the stored command text.
type Dispatcher struct {
	log     logger.Logger
	store   *Store
	chat    ports.ChatPort
	limiter *rate.Limiter
}

func NewDispatcher(log logger.Logger, store *Store, chat ports.ChatPort, perSecond float64, burst int) *Dispatcher {
	return &Dispatcher{
		log:     log,
		store:   store,
		chat:    chat,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Handle replies once for every distinct command token in the message and
// returns the names it answered.
func (d *Dispatcher) Handle(msg domain.ChatMessage) []string {
	var answered []string
	seen := make(map[string]struct{})

	for _, word := range strings.Fields(msg.Message) {
		name, ok := strings.CutPrefix(word, "!")
		if !ok || !ValidName(name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		text, err := d.store.Command(name)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				d.log.Error("Failed to read command", err, "command", name)
			}
			continue
		}

		if !d.limiter.Allow() {
			d.log.Warn("Command reply throttled", "command", name, "user", msg.DisplayName)
			continue
		}

		if err := d.chat.Say(replyPrefix + text); err != nil {
			d.log.Error("Failed to send command reply", err, "command", name)
			continue
		}

		metrics.CommandsDispatched.WithLabelValues(name).Inc()
		answered = append(answered, name)
	}

	return answered
}
