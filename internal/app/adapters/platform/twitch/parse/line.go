package parse

import (
	"fmt"
	"strings"

	"twitchchat/internal/app/domain"
)

// Line is a raw IRC line cut into its parts. Grammar:
//
//	['@' tags ' '] [':' prefix ' '] command [' ' params] ['\r\n']
type Line struct {
	Raw     string
	Tags    Tags
	Prefix  string
	Nick    string // prefix text before '!'
	Sender  string // display-name tag when set, Nick otherwise
	Command string
	Channel string
	Text    string
}

func Split(raw string) (*Line, error) {
	line := strings.TrimRight(raw, "\r\n")
	l := &Line{Raw: line, Tags: Tags{}}

	rest := line
	if strings.HasPrefix(rest, "@") {
		block, after, ok := strings.Cut(rest[1:], " ")
		if !ok {
			return nil, fmt.Errorf("%w: tag block without command", domain.ErrMalformedLine)
		}
		l.Tags = DecodeTags(block)
		rest = after
	}

	if strings.HasPrefix(rest, ":") {
		prefix, after, ok := strings.Cut(rest[1:], " ")
		if !ok {
			return nil, fmt.Errorf("%w: prefix without command", domain.ErrMalformedLine)
		}
		l.Prefix = prefix
		l.Nick, _, _ = strings.Cut(prefix, "!")
		rest = after
	}

	command, params, _ := strings.Cut(rest, " ")
	if command == "" {
		return nil, fmt.Errorf("%w: empty command", domain.ErrMalformedLine)
	}
	l.Command = command

	if strings.HasPrefix(params, "#") {
		l.Channel, params, _ = strings.Cut(params, " ")
	}
	l.Text = strings.TrimPrefix(params, ":")

	l.Sender = l.Nick
	if name := l.Tags.Get("display-name"); name != "" {
		l.Sender = name
	}

	return l, nil
}
