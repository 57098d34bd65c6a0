package parse

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"twitchchat/internal/app/adapters/metrics"
	"twitchchat/internal/app/domain"
	"twitchchat/pkg/logger"
)

// Parser classifies raw IRC lines. Badge and emote resolvers are optional;
// without them names are kept as plain text.
type Parser struct {
	badges *BadgeResolver
	emotes *EmoteResolver
	log    logger.Logger
}

func New(badges *BadgeResolver, emotes *EmoteResolver, log logger.Logger) *Parser {
	return &Parser{
		badges: badges,
		emotes: emotes,
		log:    log,
	}
}

// Parse returns exactly one message for every line that splits. Only
// domain.ErrMalformedLine is ever returned.
func (p *Parser) Parse(ctx context.Context, raw string) (domain.TwitchMessage, error) {
	l, err := Split(raw)
	if err != nil {
		metrics.ParseErrors.Inc()
		return nil, err
	}

	var msg domain.TwitchMessage
	switch l.Command {
	case "PRIVMSG":
		msg, err = p.chatMessage(ctx, l)
	case "USERNOTICE":
		msg = userNotice(l)
	case "CLEARMSG":
		msg = domain.ClearMessage{
			DisplayName: l.Tags.Get("login"),
			MessageID:   l.Tags.Get("target-msg-id"),
		}
	case "CLEARCHAT":
		msg = clearChat(l)
	default:
		msg = domain.UnknownMessage{Raw: l.Raw}
	}
	if err != nil {
		metrics.ParseErrors.Inc()
		return nil, err
	}

	metrics.MessagesParsed.WithLabelValues(string(msg.Type())).Inc()
	return msg, nil
}

func (p *Parser) chatMessage(ctx context.Context, l *Line) (domain.ChatMessage, error) {
	if l.Channel == "" {
		return domain.ChatMessage{}, fmt.Errorf("%w: PRIVMSG without channel", domain.ErrMalformedLine)
	}

	m := domain.ChatMessage{
		ID:               l.Tags.Get("id"),
		DisplayName:      l.Sender,
		Nickname:         l.Sender,
		Channel:          l.Channel,
		Message:          l.Text,
		Color:            l.Tags.Get("color"),
		AnimationID:      l.Tags.Get("animation-id"),
		Badges:           ParseBadges(l.Tags.Get("badges")),
		FirstMsg:         l.Tags.Bool("first-msg"),
		ReturningChatter: l.Tags.Bool("returning-chatter"),
		Subscriber:       l.Tags.Bool("subscriber"),
		Moderator:        l.Tags.Bool("mod"),
		Raw:              l.Raw,
	}
	if m.Color == "" {
		m.Color = domain.DefaultColor
	}

	if ts, err := strconv.ParseInt(l.Tags.Get("tmi-sent-ts"), 10, 64); err == nil {
		m.Timestamp = time.UnixMilli(ts)
	}

	if p.badges != nil && len(m.Badges) > 0 {
		m.Nickname = p.badges.Glyphs(ctx, m.Badges) + l.Sender
	}

	if p.emotes != nil {
		m.Message, m.Emotes = p.emotes.Resolve(ctx, l.Tags.Get("emotes"), l.Text)
	} else {
		m.Emotes = ParseEmotes(l.Tags.Get("emotes"))
		nameEmotes(m.Emotes, l.Text)
	}

	return m, nil
}

func userNotice(l *Line) domain.TwitchMessage {
	notice := l.Tags.Get("system-msg")
	if notice == "" || !hasValue(l.Tags, "raid") {
		return domain.UnknownMessage{Raw: l.Raw}
	}

	name := l.Tags.Get("msg-param-displayName")
	if name == "" {
		name = l.Sender
	}

	return domain.RaidNotice{
		UserID:      l.Tags.Get("user-id"),
		DisplayName: name,
		Notice:      notice,
	}
}

func clearChat(l *Line) domain.TwitchMessage {
	if l.Text == "" {
		return domain.UnknownMessage{Raw: l.Raw}
	}
	return domain.ClearMessageByUser{DisplayName: l.Text}
}

func hasValue(tags Tags, value string) bool {
	for _, v := range tags {
		if v == value {
			return true
		}
	}
	return false
}
