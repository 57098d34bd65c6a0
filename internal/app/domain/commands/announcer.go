package commands

import (
	"context"
	"strings"

	"twitchchat/internal/app/adapters/metrics"
	"twitchchat/internal/app/ports"
	"twitchchat/pkg/logger"
)

const timerPrefix = "announcement:"

// Announcer posts every stored announcement on its own interval.
type Announcer struct {
	log    logger.Logger
	store  *Store
	chat   ports.ChatPort
	timers ports.TimersPort
}

func NewAnnouncer(log logger.Logger, store *Store, chat ports.ChatPort, timers ports.TimersPort) *Announcer {
	return &Announcer{
		log:    log,
		store:  store,
		chat:   chat,
		timers: timers,
	}
}

// Sync schedules announcements found on disk and drops timers of removed ones.
func (a *Announcer) Sync() (int, error) {
	list, err := a.store.Announcements()
	if err != nil {
		return 0, err
	}

	want := make(map[string]struct{}, len(list))
	for _, ann := range list {
		id := timerPrefix + ann.Name
		want[id] = struct{}{}

		message := ann.Message
		a.timers.AddTimer(id, ann.Every, func() {
			if err := a.chat.Say(replyPrefix + message); err != nil {
				a.log.Error("Failed to post announcement", err, "name", ann.Name)
				return
			}
			metrics.AnnouncementsSent.Inc()
		})
	}

	for id := range a.timers.ActiveTimers() {
		if _, ok := want[id]; !ok && strings.HasPrefix(id, timerPrefix) {
			a.timers.RemoveTimer(id)
		}
	}

	a.log.Info("Announcements scheduled", "count", len(list))
	return len(list), nil
}

// Run schedules announcements and removes them again when ctx ends.
func (a *Announcer) Run(ctx context.Context) error {
	if _, err := a.Sync(); err != nil {
		return err
	}

	<-ctx.Done()
	for id := range a.timers.ActiveTimers() {
		if strings.HasPrefix(id, timerPrefix) {
			a.timers.RemoveTimer(id)
		}
	}
	return nil
}
