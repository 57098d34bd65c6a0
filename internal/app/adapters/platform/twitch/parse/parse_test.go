package parse

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitchchat/internal/app/adapters/terminal"
	"twitchchat/internal/app/domain"
	"twitchchat/pkg/logger"
)

const scenarioA = "@badges=broadcaster/1,premium/1;color=#8A2BE2;display-name=s9tpepper_;first-msg=0;mod=0;subscriber=0 :s9tpepper_!s9tpepper_@s9tpepper_.tmi.twitch.tv PRIVMSG #s9tpepper_ :hello world"

func newTestParser(t *testing.T, images map[string][]byte) *Parser {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broadcaster.txt"), []byte("QkM="), 0o600))

	return New(newTestBadgeResolver(dir), newTestEmoteResolver(newFakeFetcher(images), false), logger.Discard())
}

func TestParseChatMessage(t *testing.T) {
	p := newTestParser(t, nil)

	msg, err := p.Parse(context.Background(), scenarioA+"\r\n")
	require.NoError(t, err)

	chat, ok := msg.(domain.ChatMessage)
	require.True(t, ok, "got %T", msg)

	assert.True(t, strings.HasSuffix(chat.Nickname, "s9tpepper_"))
	assert.Equal(t, terminal.NewEncoder(false).EncodeBase64("QkM=")+"s9tpepper_", chat.Nickname)
	assert.Equal(t, "s9tpepper_", chat.DisplayName)
	assert.Equal(t, []string{"broadcaster", "premium"}, chat.Badges)
	assert.Equal(t, "#8A2BE2", chat.Color)
	assert.Equal(t, "hello world", chat.Message)
	assert.Equal(t, "#s9tpepper_", chat.Channel)
	assert.False(t, chat.FirstMsg)
	assert.False(t, chat.Subscriber)
	assert.False(t, chat.Moderator)
	assert.False(t, chat.ReturningChatter)
	assert.Empty(t, chat.Emotes)
	assert.Equal(t, scenarioA, chat.Raw)
}

func TestParseChatMessageFields(t *testing.T) {
	p := newTestParser(t, nil)

	raw := "@badges=;color=;display-name=;emotes=;first-msg=1;id=abc-1;mod=1;returning-chatter=1;subscriber=1;tmi-sent-ts=1700000000123;animation-id=rainbow-eclipse :viewer!viewer@viewer.tmi.twitch.tv PRIVMSG #chan :  two  spaces"
	msg, err := p.Parse(context.Background(), raw)
	require.NoError(t, err)

	chat := msg.(domain.ChatMessage)
	assert.Equal(t, "viewer", chat.Nickname)
	assert.Equal(t, domain.DefaultColor, chat.Color)
	assert.Equal(t, "abc-1", chat.ID)
	assert.Equal(t, "rainbow-eclipse", chat.AnimationID)
	assert.Equal(t, "  two  spaces", chat.Message)
	assert.True(t, chat.FirstMsg)
	assert.True(t, chat.Moderator)
	assert.True(t, chat.ReturningChatter)
	assert.True(t, chat.Subscriber)
	assert.Equal(t, time.UnixMilli(1700000000123), chat.Timestamp)
	assert.Empty(t, chat.Badges)
	assert.Empty(t, chat.Emotes)
}

func TestParseChatMessageEmote(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	p := newTestParser(t, map[string][]byte{domain.EmoteURL("303147449"): png})

	raw := "@emotes=303147449:0-13;display-name=viewer :viewer!viewer@viewer.tmi.twitch.tv PRIVMSG #chan :s9tpepLetsGooo lets go"
	msg, err := p.Parse(context.Background(), raw)
	require.NoError(t, err)

	chat := msg.(domain.ChatMessage)
	require.Len(t, chat.Emotes, 1)
	assert.Equal(t, "303147449", chat.Emotes[0].ID)
	assert.Equal(t, "s9tpepLetsGooo", chat.Emotes[0].Name)
	assert.True(t, strings.HasPrefix(chat.Message, "\x1b]"))
	assert.NotContains(t, chat.Message, "s9tpepLetsGooo")
	assert.True(t, strings.HasSuffix(chat.Message, " lets go"))
}

func TestParseWithoutResolvers(t *testing.T) {
	p := New(nil, nil, logger.Discard())

	msg, err := p.Parse(context.Background(), "@badges=vip/1;emotes=25:0-4 :a!a@a PRIVMSG #c :Kappa")
	require.NoError(t, err)

	chat := msg.(domain.ChatMessage)
	assert.Equal(t, "a", chat.Nickname)
	assert.Equal(t, "Kappa", chat.Message)
	require.Len(t, chat.Emotes, 1)
	assert.Equal(t, "Kappa", chat.Emotes[0].Name)
}

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.TwitchMessage
	}{
		{
			name: "raid",
			raw:  `@msg-id=raid;user-id=123;display-name=Raider;msg-param-displayName=Raider;system-msg=1\sraiders\sfrom\sX\shave\sjoined! :tmi.twitch.tv USERNOTICE #chan`,
			want: domain.RaidNotice{UserID: "123", DisplayName: "Raider", Notice: "1 raiders from X have joined!"},
		},
		{
			name: "raid display name falls back to sender",
			raw:  `@msg-id=raid;user-id=9;display-name=Other;system-msg=raid! :tmi.twitch.tv USERNOTICE #chan`,
			want: domain.RaidNotice{UserID: "9", DisplayName: "Other", Notice: "raid!"},
		},
		{
			name: "raid without system message",
			raw:  `@msg-id=raid;user-id=123;system-msg= :tmi.twitch.tv USERNOTICE #chan`,
			want: domain.UnknownMessage{Raw: `@msg-id=raid;user-id=123;system-msg= :tmi.twitch.tv USERNOTICE #chan`},
		},
		{
			name: "sub notice",
			raw:  `@msg-id=sub;system-msg=x\ssubscribed :tmi.twitch.tv USERNOTICE #chan :hype`,
			want: domain.UnknownMessage{Raw: `@msg-id=sub;system-msg=x\ssubscribed :tmi.twitch.tv USERNOTICE #chan :hype`},
		},
		{
			name: "join",
			raw:  ":foo!foo@foo.tmi.twitch.tv JOIN #chan\r\n",
			want: domain.UnknownMessage{Raw: ":foo!foo@foo.tmi.twitch.tv JOIN #chan"},
		},
		{
			name: "ping",
			raw:  "PING :tmi.twitch.tv",
			want: domain.UnknownMessage{Raw: "PING :tmi.twitch.tv"},
		},
		{
			name: "clear single message",
			raw:  "@login=ronni;room-id=;target-msg-id=abc-123-def;tmi-sent-ts=1642720582342 :tmi.twitch.tv CLEARMSG #dallas :HeyGuys",
			want: domain.ClearMessage{DisplayName: "ronni", MessageID: "abc-123-def"},
		},
		{
			name: "clear user",
			raw:  "@ban-duration=350;room-id=12345678;target-user-id=87654321;tmi-sent-ts=1642719320727 :tmi.twitch.tv CLEARCHAT #dallas :ronni",
			want: domain.ClearMessageByUser{DisplayName: "ronni"},
		},
		{
			name: "clear whole chat",
			raw:  "@room-id=12345678;tmi-sent-ts=1642715695392 :tmi.twitch.tv CLEARCHAT #dallas",
			want: domain.UnknownMessage{Raw: "@room-id=12345678;tmi-sent-ts=1642715695392 :tmi.twitch.tv CLEARCHAT #dallas"},
		},
	}

	p := newTestParser(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(context.Background(), tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []string{
		"@broken",
		":only-prefix",
		"@a=b :x!x@x PRIVMSG",
		"",
	}

	p := newTestParser(t, nil)
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			msg, err := p.Parse(context.Background(), raw)
			assert.ErrorIs(t, err, domain.ErrMalformedLine)
			assert.Nil(t, msg)
		})
	}
}

func TestParseTagOrderIndependent(t *testing.T) {
	tags := []string{
		"badges=broadcaster/1,premium/1",
		"color=#8A2BE2",
		"display-name=s9tpepper_",
		"first-msg=1",
		"mod=0",
		"subscriber=1",
		"id=42",
	}
	rest := " :s9tpepper_!s9tpepper_@s9tpepper_.tmi.twitch.tv PRIVMSG #s9tpepper_ :hello world"

	p := newTestParser(t, nil)
	base, err := p.Parse(context.Background(), "@"+strings.Join(tags, ";")+rest)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([]string(nil), tags...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := p.Parse(context.Background(), "@"+strings.Join(shuffled, ";")+rest)
		require.NoError(t, err)

		want := base.(domain.ChatMessage)
		gotChat := got.(domain.ChatMessage)
		gotChat.Raw, want.Raw = "", ""
		assert.Equal(t, want, gotChat)
	}
}

func TestParseMessageRoundTrip(t *testing.T) {
	texts := []string{"hello", "  padded  ", ":starts with colon", "ünïcödé ✨", "a;b=c\\d"}

	p := New(nil, nil, logger.Discard())
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			msg, err := p.Parse(context.Background(), "@badges=;emotes= :u!u@u PRIVMSG #c :"+text)
			require.NoError(t, err)

			chat := msg.(domain.ChatMessage)
			assert.Equal(t, text, chat.Message)
			assert.Empty(t, chat.Badges)
			assert.Empty(t, chat.Emotes)
		})
	}
}
