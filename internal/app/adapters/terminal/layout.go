package terminal

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// imageCells is how many columns an inline emote or badge takes.
const imageCells = 2

type cell struct {
	text  string
	width int
	space bool
}

type word struct {
	gap   int // spaces before the word
	cells []cell
	width int
}

// Wrap breaks s into display lines no wider than cols. Inline images are
// kept whole, words wider than a line are split with a trailing "-", and
// spaces at the start of a wrapped line are dropped.
func Wrap(s string, cols int) []string {
	if cols < 1 {
		cols = 1
	}

	var (
		lines []string
		line  strings.Builder
		used  int
		dirty bool
	)
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		used, dirty = 0, false
	}
	put := func(c cell) {
		line.WriteString(c.text)
		used += c.width
		dirty = true
	}

	for i, w := range splitWords(s) {
		switch {
		case dirty && used+w.gap+w.width <= cols:
			line.WriteString(strings.Repeat(" ", w.gap))
			used += w.gap
		case dirty:
			flush()
		case i == 0 && w.gap+w.width <= cols:
			line.WriteString(strings.Repeat(" ", w.gap))
			used += w.gap
		}

		if used+w.width <= cols {
			for _, c := range w.cells {
				put(c)
			}
			continue
		}

		rest := w.width
		limit := cols
		if cols > 1 {
			limit = cols - 1
		}
		for j, c := range w.cells {
			if used+rest <= cols {
				for _, tail := range w.cells[j:] {
					put(tail)
				}
				break
			}
			if dirty && used+c.width > limit {
				if cols > 1 {
					line.WriteByte('-')
				}
				flush()
			}
			put(c)
			rest -= c.width
		}
	}

	if dirty || len(lines) == 0 {
		flush()
	}
	return lines
}

// Width reports how many columns s occupies.
func Width(s string) int {
	n := 0
	for _, c := range scan(s) {
		n += c.width
	}
	return n
}

func splitWords(s string) []word {
	var (
		words []word
		cur   word
	)
	for _, c := range scan(s) {
		if c.space {
			if len(cur.cells) > 0 {
				words = append(words, cur)
				cur = word{}
			}
			cur.gap++
			continue
		}
		cur.cells = append(cur.cells, c)
		cur.width += c.width
	}
	if len(cur.cells) > 0 {
		words = append(words, cur)
	}
	return words
}

// scan splits s into printable cells. Escape sequences are single cells:
// inline images take imageCells columns and other sequences none.
func scan(s string) []cell {
	cells := make([]cell, 0, len(s))
	for i := 0; i < len(s); {
		rest := s[i:]

		switch {
		case strings.HasPrefix(rest, tmuxStart):
			n := sequenceLen(rest, tmuxEnd)
			cells = append(cells, cell{text: rest[:n], width: imageCells})
			i += n
			continue

		case strings.HasPrefix(rest, plainStart):
			n := sequenceLen(rest, plainEnd)
			w := 0
			if IsImageSequence(rest) {
				w = imageCells
			}
			cells = append(cells, cell{text: rest[:n], width: w})
			i += n
			continue

		case strings.HasPrefix(rest, "\x1b["):
			n := 2
			for n < len(rest) && (rest[n] < 0x40 || rest[n] > 0x7e) {
				n++
			}
			n = min(n+1, len(rest))
			cells = append(cells, cell{text: rest[:n]})
			i += n
			continue
		}

		r, size := utf8.DecodeRuneInString(rest)
		cells = append(cells, cell{text: rest[:size], width: runeWidth(r), space: r == ' '})
		i += size
	}
	return cells
}

func sequenceLen(s, end string) int {
	if n := strings.Index(s, end); n >= 0 {
		return n + len(end)
	}
	return len(s)
}

func runeWidth(r rune) int {
	switch {
	case r < 0x20 || r == 0x7f:
		return 0
	case r == 0x200d || (r >= 0xfe00 && r <= 0xfe0f):
		return 0
	case unicode.In(r, unicode.Mn, unicode.Me):
		return 0
	}

	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}
