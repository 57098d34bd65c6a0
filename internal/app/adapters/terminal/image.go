package terminal

import (
	"encoding/base64"
	"strings"
)

const (
	imageHeader = "1337;File=inline=1;preserveAspectRatio=1:"

	plainStart = "\x1b]"
	plainEnd   = "\x07"

	// tmux passthrough: the inner ESC is doubled and the sequence closed with ST.
	tmuxStart = "\x1bPtmux;\x1b\x1b]"
	tmuxEnd   = "\x07\x1b\\"
)

// Encoder renders images with the iTerm2 inline image protocol.
type Encoder struct {
	Tmux bool
}

func NewEncoder(tmux bool) *Encoder {
	return &Encoder{Tmux: tmux}
}

// EncoderFromEnv detects tmux through TMUX and TERM. GNU screen also sets
// TERM=screen* but cannot unwrap tmux passthrough, so it gets plain output.
func EncoderFromEnv(getenv func(string) string) *Encoder {
	return NewEncoder(getenv("TMUX") != "" || IsTmux(getenv("TERM")))
}

func IsTmux(term string) bool {
	return strings.HasPrefix(term, "tmux")
}

func (e *Encoder) Encode(png []byte) string {
	return e.EncodeBase64(base64.StdEncoding.EncodeToString(png))
}

// EncodeBase64 wraps an already base64 encoded payload.
func (e *Encoder) EncodeBase64(payload string) string {
	start, end := plainStart, plainEnd
	if e.Tmux {
		start, end = tmuxStart, tmuxEnd
	}

	var b strings.Builder
	b.Grow(len(start) + len(imageHeader) + len(payload) + len(end))
	b.WriteString(start)
	b.WriteString(imageHeader)
	b.WriteString(payload)
	b.WriteString(end)
	return b.String()
}

// IsImageSequence reports whether s starts with an inline image.
func IsImageSequence(s string) bool {
	return strings.HasPrefix(s, plainStart+imageHeader) || strings.HasPrefix(s, tmuxStart+imageHeader)
}
