package ports

import "time"

type TimersPort interface {
	AddTimer(id string, interval time.Duration, task func())
	UpdateTimer(id string, newInterval time.Duration) bool
	RemoveTimer(id string)
	ActiveTimers() map[string]time.Duration
}
