package parse

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"twitchchat/internal/app/adapters/terminal"
	"twitchchat/internal/app/domain"
)

func TestParseEmotes(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []domain.Emote
	}{
		{"empty", "", nil},
		{
			name:  "single",
			value: "25:0-4",
			want:  []domain.Emote{{ID: "25", URL: domain.EmoteURL("25"), Start: 0, End: 4}},
		},
		{
			name:  "first range only",
			value: "25:0-4,12-16/1902:6-10",
			want: []domain.Emote{
				{ID: "25", URL: domain.EmoteURL("25"), Start: 0, End: 4},
				{ID: "1902", URL: domain.EmoteURL("1902"), Start: 6, End: 10},
			},
		},
		{
			name:  "malformed entries skipped",
			value: "nocolon/:0-1/1:x-2/2:3/3:5-1/4:-/5:1-2",
			want:  []domain.Emote{{ID: "5", URL: domain.EmoteURL("5"), Start: 1, End: 2}},
		},
		{
			name:  "offsets past int range skipped",
			value: "6:0-9223372036854775808/7:9223372036854775808-9223372036854775809/8:1-1",
			want:  []domain.Emote{{ID: "8", URL: domain.EmoteURL("8"), Start: 1, End: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEmotes(tt.value))
		})
	}
}

func TestEmoteResolverResolve(t *testing.T) {
	png := []byte("png-bytes")
	enc := terminal.NewEncoder(false)
	seq := enc.Encode(png)

	tests := []struct {
		name      string
		images    map[string][]byte
		value     string
		text      string
		want      string
		wantNames []string
	}{
		{
			name:  "no emotes is a no-op",
			value: "",
			text:  "hello world",
			want:  "hello world",
		},
		{
			name:      "replaces every occurrence",
			images:    map[string][]byte{domain.EmoteURL("25"): png},
			value:     "25:0-4",
			text:      "Kappa hi Kappa",
			want:      seq + " hi " + seq,
			wantNames: []string{"Kappa"},
		},
		{
			name:      "fetch failure keeps text",
			value:     "25:0-4",
			text:      "Kappa hi",
			want:      "Kappa hi",
			wantNames: []string{"Kappa"},
		},
		{
			name:      "out of range keeps text",
			images:    map[string][]byte{domain.EmoteURL("25"): png},
			value:     "25:10-14",
			text:      "Kappa",
			want:      "Kappa",
			wantNames: []string{""},
		},
		{
			name:      "offsets count characters",
			images:    map[string][]byte{domain.EmoteURL("25"): png},
			value:     "25:4-8",
			text:      "héé Kappa",
			want:      "héé " + seq,
			wantNames: []string{"Kappa"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestEmoteResolver(newFakeFetcher(tt.images), false)

			got, emotes := r.Resolve(context.Background(), tt.value, tt.text)
			assert.Equal(t, tt.want, got)

			var names []string
			for _, e := range emotes {
				names = append(names, e.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestEmoteResolverPayloadNotRescanned(t *testing.T) {
	// "A" occurs inside the base64 payload of the first emote; it must not be
	// substituted again.
	f := newFakeFetcher(map[string][]byte{
		domain.EmoteURL("1"): []byte("AAAA"),
		domain.EmoteURL("2"): []byte("b"),
	})
	r := newTestEmoteResolver(f, false)

	enc := terminal.NewEncoder(false)
	got, _ := r.Resolve(context.Background(), "1:0-3/2:5-5", "QUFB A")
	assert.Equal(t, enc.Encode([]byte("AAAA"))+" "+enc.Encode([]byte("b")), got)
}

func TestEmoteResolverCachesSequences(t *testing.T) {
	f := newFakeFetcher(map[string][]byte{domain.EmoteURL("25"): []byte("png")})
	r := newTestEmoteResolver(f, true)

	for i := 0; i < 3; i++ {
		got, _ := r.Resolve(context.Background(), "25:0-4", "Kappa")
		assert.True(t, strings.HasPrefix(got, "\x1bPtmux;"))
	}
	assert.Equal(t, 1, f.Calls(domain.EmoteURL("25")))
}

func TestEmoteResolverCanceledContext(t *testing.T) {
	f := newFakeFetcher(map[string][]byte{domain.EmoteURL("25"): []byte("png")})
	r := newTestEmoteResolver(f, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, emotes := r.Resolve(ctx, "25:0-4", "Kappa 123")
	assert.Equal(t, "Kappa 123", got)
	assert.Len(t, emotes, 1)
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "canceled", failureReason(context.Canceled))
	assert.Equal(t, "decode", failureReason(domain.ErrEmoteDecodeFailed))
	assert.Equal(t, "fetch", failureReason(errors.New("dial tcp: refused")))
}
