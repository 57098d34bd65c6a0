package terminal

import (
	"fmt"
	"strconv"
	"strings"

	"twitchchat/internal/app/domain"
)

type rgb struct{ r, g, b uint8 }

var (
	yellow = rgb{255, 255, 0}
	green  = rgb{0, 255, 127}

	// announcementColors are the named colors Twitch uses for announcements.
	announcementColors = map[string]rgb{
		"PRIMARY": {145, 70, 255},
		"BLUE":    {0, 200, 255},
		"GREEN":   {0, 219, 132},
		"ORANGE":  {255, 183, 0},
		"PURPLE":  {159, 71, 255},
	}
)

const reset = "\x1b[0m"

func (c rgb) paint(s string, bold bool) string {
	weight := ""
	if bold {
		weight = "1;"
	}
	return fmt.Sprintf("\x1b[%s38;2;%d;%d;%dm%s%s", weight, c.r, c.g, c.b, s, reset)
}

// parseHex reads "#RRGGBB".
func parseHex(s string) (rgb, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{uint8(v >> 16), uint8(v >> 8), uint8(v)}, true
}

func senderColor(s string) rgb {
	if c, ok := parseHex(s); ok {
		return c
	}
	c, _ := parseHex(domain.DefaultColor)
	return c
}

// Render lays out one log entry as display lines of at most cols columns.
// Entries that are not shown produce no lines.
func Render(msg domain.TwitchMessage, cols int) []string {
	switch m := msg.(type) {
	case domain.ChatMessage:
		var out []string
		if m.FirstMsg {
			out = append(out, paintLines(Wrap("✨ First time chatter", cols), yellow, true)...)
		}

		nick := m.Nickname
		if nick == "" {
			nick = m.DisplayName
		}
		lines := Wrap(nick+": "+strings.TrimSpace(m.Message), cols)
		if head, ok := strings.CutPrefix(lines[0], nick+":"); ok {
			lines[0] = senderColor(m.Color).paint(nick, true) + ":" + head
		}
		return append(out, lines...)

	case domain.RaidNotice:
		out := paintLines(Wrap("🪂 "+m.DisplayName+" Raid", cols), yellow, true)
		return append(out, paintLines(Wrap(m.Notice, cols), yellow, false)...)

	case domain.RedeemMessage:
		return paintLines(Wrap(m.String(), cols), green, false)

	case domain.AnnouncementMessage:
		c, ok := announcementColors[strings.ToUpper(m.Color)]
		if !ok {
			c = announcementColors["PRIMARY"]
		}
		out := paintLines(Wrap("📣 Announcement", cols), c, true)
		return append(out, paintLines(Wrap(m.DisplayName+": "+m.Message, cols), c, false)...)
	}

	return nil
}

// Plain is the single-line form used when the output is not a terminal.
func Plain(msg domain.TwitchMessage) (string, bool) {
	switch m := msg.(type) {
	case domain.ChatMessage:
		prefix := ""
		if m.FirstMsg {
			prefix = "[first] "
		}
		return prefix + m.DisplayName + ": " + strings.TrimSpace(m.Message), true
	case domain.RaidNotice:
		return "[raid] " + m.DisplayName + ": " + m.Notice, true
	case domain.RedeemMessage:
		return "[redeem] " + m.String(), true
	case domain.AnnouncementMessage:
		return "[announcement] " + m.DisplayName + ": " + m.Message, true
	}
	return "", false
}

func paintLines(lines []string, c rgb, bold bool) []string {
	for i, l := range lines {
		if l != "" {
			lines[i] = c.paint(l, bold)
		}
	}
	return lines
}
