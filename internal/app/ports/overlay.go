package ports

import "twitchchat/internal/app/domain"

type PublisherPort interface {
	Publish(msg domain.TwitchMessage)
}
