package domain

import "errors"

var (
	// ErrMalformedLine is returned when a raw IRC line cannot be split into
	// tags, prefix, command and parameters.
	ErrMalformedLine = errors.New("malformed irc line")

	ErrEmoteFetchFailed  = errors.New("emote fetch failed")
	ErrEmoteDecodeFailed = errors.New("emote decode failed")
	ErrBadgeAssetMissing = errors.New("badge asset missing")
)

// DefaultColor is used for chatters who never picked a name color.
const DefaultColor = "#FF9912"

// EmoteURL returns the CDN location of the dark 1x rendition of an emote.
func EmoteURL(id string) string {
	return "https://static-cdn.jtvnw.net/emoticons/v2/" + id + "/default/dark/1.0"
}
