package terminal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"twitchchat/internal/app/adapters/metrics"
	"twitchchat/internal/app/domain"
	"twitchchat/internal/app/domain/chatlog"
	"twitchchat/internal/app/infrastructure/storage"
	"twitchchat/internal/app/ports"
	"twitchchat/pkg/logger"
)

const (
	enterScreen = "\x1b[?1049h\x1b[?25l"
	leaveScreen = "\x1b[?25h\x1b[?1049l"
	clearScreen = "\x1b[H\x1b[2J"

	ctrlC = 0x03

	resizePoll = 500 * time.Millisecond

	commandQueue = 32
	// raidWindow covers the same raid arriving over IRC and EventSub.
	raidWindow = 2 * time.Minute
)

// UI owns the chat log: it is the only writer. Clears from IRC and EventSub
// are applied here so that removal and insertion never race.
type UI struct {
	log       logger.Logger
	chat      *chatlog.Log
	commands  ports.CommandPort
	publisher ports.PublisherPort
	raids     ports.CachePort[bool]
	replies   chan domain.ChatMessage

	in   *os.File
	out  io.Writer
	tty  bool
	cols int
	view *View
}

// NewUI draws to out. Without a terminal on both in and out it runs
// headless and prints one line per message. commands and publisher may be nil.
func NewUI(log logger.Logger, chat *chatlog.Log, commands ports.CommandPort, publisher ports.PublisherPort, in *os.File, out io.Writer) *UI {
	u := &UI{
		log:       log,
		chat:      chat,
		commands:  commands,
		publisher: publisher,
		raids:     storage.NewCache[bool](storage.CacheOptions{Capacity: 64, TTL: raidWindow}),
		in:        in,
		out:       out,
		cols:      80,
		view:      NewView(24),
	}

	if f, ok := out.(*os.File); ok && in != nil {
		u.tty = isTerminal(f) && isTerminal(in)
	}
	return u
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (u *UI) Interactive() bool { return u.tty }

// Run consumes every source until ctx ends, the user quits, or (headless)
// all sources are closed. Sources must be closed by their producers once ctx
// ends: after cancellation Run keeps applying (and headless, printing) what
// they still deliver until all of them are closed. After the user quits the
// rest is discarded in the background.
func (u *UI) Run(ctx context.Context, sources ...<-chan domain.TwitchMessage) error {
	msgs := merge(sources...)

	if u.commands != nil {
		u.replies = make(chan domain.ChatMessage, commandQueue)
		done := make(chan struct{})
		go u.answerCommands(ctx, u.replies, done)
		defer func() {
			close(u.replies)
			u.replies = nil
			<-done
		}()
	}

	if !u.tty {
		return u.runHeadless(msgs)
	}

	err := u.runInteractive(ctx, msgs)
	if ctx.Err() == nil {
		go discard(msgs)
		return err
	}
	for msg := range msgs {
		u.apply(msg)
	}
	return err
}

func (u *UI) runHeadless(msgs <-chan domain.TwitchMessage) error {
	for msg := range msgs {
		if u.apply(msg) {
			if line, ok := Plain(msg); ok {
				if _, err := fmt.Fprintln(u.out, line); err != nil {
					go discard(msgs)
					return err
				}
			}
		}
	}
	return nil
}

// answerCommands sends command replies outside the render loop. Replies
// still queued at shutdown are skipped.
func (u *UI) answerCommands(ctx context.Context, replies <-chan domain.ChatMessage, done chan<- struct{}) {
	defer close(done)
	for msg := range replies {
		if ctx.Err() != nil {
			continue
		}
		u.commands.Handle(msg)
	}
}

func (u *UI) runInteractive(ctx context.Context, msgs <-chan domain.TwitchMessage) error {
	out := u.out.(*os.File)
	inFd, outFd := int(u.in.Fd()), int(out.Fd())

	state, err := term.MakeRaw(inFd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer func() {
		_, _ = io.WriteString(out, leaveScreen)
		if err := term.Restore(inFd, state); err != nil {
			u.log.Error("Failed to restore terminal", err)
		}
	}()
	_, _ = io.WriteString(out, enterScreen)

	done := make(chan struct{})
	defer close(done)
	keys := make(chan byte, 16)
	go u.readKeys(keys, done)

	ticker := time.NewTicker(resizePoll)
	defer ticker.Stop()

	u.resize(outFd)
	u.relayout()
	u.draw()

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-msgs:
			if !ok {
				msgs = nil
				continue
			}
			if u.apply(msg) {
				u.relayout()
				u.draw()
			}

		case k := <-keys:
			if u.handleKey(k) {
				return nil
			}
			u.draw()

		case <-ticker.C:
			if u.resize(outFd) {
				u.relayout()
				u.draw()
			}
		}
	}
}

// apply updates the log and reports whether it changed. Every shown or
// clearing event is also published to overlay clients.
func (u *UI) apply(msg domain.TwitchMessage) bool {
	changed := true

	switch m := msg.(type) {
	case domain.ChatMessage:
		u.chat.Add(m)
		u.queueCommand(m)

	case domain.ClearMessage:
		changed = u.chat.RemoveByID(m.MessageID)

	case domain.ClearMessageByUser:
		changed = u.chat.RemoveByUser(m.DisplayName) > 0

	case domain.RaidNotice:
		if m.UserID != "" {
			if _, seen := u.raids.Get(m.UserID); seen {
				u.log.Debug("Duplicate raid skipped", slog.String("user_id", m.UserID))
				return false
			}
			u.raids.Set(m.UserID, true)
		}
		u.chat.Add(m)

	case domain.RedeemMessage, domain.AnnouncementMessage:
		u.chat.Add(m)

	default:
		u.log.Trace("Ignoring message", slog.String("type", string(msg.Type())))
		return false
	}

	if u.publisher != nil {
		u.publisher.Publish(msg)
	}
	if changed {
		metrics.ChatLogSize.Set(float64(u.chat.Len()))
	}
	return changed
}

func (u *UI) queueCommand(msg domain.ChatMessage) {
	if u.replies == nil {
		return
	}
	select {
	case u.replies <- msg:
	default:
		u.log.Warn("Command queue full, message skipped", slog.String("user", msg.DisplayName))
	}
}


// handleKey reports whether the user asked to quit.
func (u *UI) handleKey(k byte) bool {
	switch k {
	case 'j':
		u.view.ScrollDown()
	case 'k':
		u.view.ScrollUp()
	case 'f':
		u.view.PageDown()
	case 'b':
		u.view.PageUp()
	case 'g':
		u.view.Top()
	case 'G':
		u.view.Bottom()
	case 'q', ctrlC:
		return true
	}
	return false
}

func (u *UI) relayout() {
	var lines []string
	for _, msg := range u.chat.Snapshot() {
		lines = append(lines, Render(msg, u.cols)...)
	}
	u.view.SetLines(lines)
}

func (u *UI) draw() {
	var b strings.Builder
	b.WriteString(clearScreen)
	for i, line := range u.view.Visible() {
		if i > 0 {
			b.WriteString("\r\n")
		}
		b.WriteString(line)
	}

	if _, err := io.WriteString(u.out, b.String()); err != nil {
		u.log.Error("Failed to draw", err)
	}
}

// resize reports whether the terminal size changed.
func (u *UI) resize(fd int) bool {
	cols, rows, err := term.GetSize(fd)
	if err != nil || cols < 1 || rows < 1 {
		return false
	}
	if cols == u.cols && rows == u.view.Height() {
		return false
	}

	u.cols = cols
	u.view.SetHeight(rows)
	return true
}

// readKeys outlives Run while blocked in Read; done stops it from sending.
func (u *UI) readKeys(keys chan<- byte, done <-chan struct{}) {
	buf := make([]byte, 16)
	for {
		n, err := u.in.Read(buf)
		if err != nil {
			return
		}
		for _, k := range buf[:n] {
			select {
			case keys <- k:
			case <-done:
				return
			}
		}
	}
}

// merge forwards every source until all of them are closed.
func merge(sources ...<-chan domain.TwitchMessage) <-chan domain.TwitchMessage {
	out := make(chan domain.TwitchMessage)

	var wg sync.WaitGroup
	for _, src := range sources {
		if src == nil {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range src {
				out <- msg
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func discard(msgs <-chan domain.TwitchMessage) {
	for range msgs {
	}
}
