package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitchchat/internal/app/domain"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Line
	}{
		{
			name: "privmsg with tags",
			raw:  "@display-name=Foo;color= :foo!foo@foo.tmi.twitch.tv PRIVMSG #chan :hello world\r\n",
			want: Line{
				Raw:     "@display-name=Foo;color= :foo!foo@foo.tmi.twitch.tv PRIVMSG #chan :hello world",
				Tags:    Tags{"display-name": "Foo", "color": ""},
				Prefix:  "foo!foo@foo.tmi.twitch.tv",
				Nick:    "foo",
				Sender:  "Foo",
				Command: "PRIVMSG",
				Channel: "#chan",
				Text:    "hello world",
			},
		},
		{
			name: "keeps internal spacing and one colon only",
			raw:  ":bar!bar@bar PRIVMSG #chan ::)   spaced  out \n",
			want: Line{
				Raw:     ":bar!bar@bar PRIVMSG #chan ::)   spaced  out ",
				Tags:    Tags{},
				Prefix:  "bar!bar@bar",
				Nick:    "bar",
				Sender:  "bar",
				Command: "PRIVMSG",
				Channel: "#chan",
				Text:    ":)   spaced  out ",
			},
		},
		{
			name: "empty display name falls back to nick",
			raw:  "@display-name= :baz!baz@baz PRIVMSG #chan :hi",
			want: Line{
				Raw:     "@display-name= :baz!baz@baz PRIVMSG #chan :hi",
				Tags:    Tags{"display-name": ""},
				Prefix:  "baz!baz@baz",
				Nick:    "baz",
				Sender:  "baz",
				Command: "PRIVMSG",
				Channel: "#chan",
				Text:    "hi",
			},
		},
		{
			name: "server ping without prefix",
			raw:  "PING :tmi.twitch.tv",
			want: Line{
				Raw:     "PING :tmi.twitch.tv",
				Tags:    Tags{},
				Command: "PING",
				Text:    "tmi.twitch.tv",
			},
		},
		{
			name: "server prefix has no nick separator",
			raw:  ":tmi.twitch.tv 001 bot :Welcome, GLHF!",
			want: Line{
				Raw:     ":tmi.twitch.tv 001 bot :Welcome, GLHF!",
				Tags:    Tags{},
				Prefix:  "tmi.twitch.tv",
				Nick:    "tmi.twitch.tv",
				Sender:  "tmi.twitch.tv",
				Command: "001",
				Text:    "bot :Welcome, GLHF!",
			},
		},
		{
			name: "join without text",
			raw:  ":foo!foo@foo.tmi.twitch.tv JOIN #chan",
			want: Line{
				Raw:     ":foo!foo@foo.tmi.twitch.tv JOIN #chan",
				Tags:    Tags{},
				Prefix:  "foo!foo@foo.tmi.twitch.tv",
				Nick:    "foo",
				Sender:  "foo",
				Command: "JOIN",
				Channel: "#chan",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestSplitMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"tag block only", "@broken"},
		{"tag block with crlf", "@a=b\r\n"},
		{"prefix only", ":tmi.twitch.tv"},
		{"empty line", ""},
		{"tags then nothing", "@a=b "},
		{"prefix then nothing", ":foo!foo@foo "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(tt.raw)
			assert.ErrorIs(t, err, domain.ErrMalformedLine)
		})
	}
}
