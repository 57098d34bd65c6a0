package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	CommandsDir      = "chat_commands"
	AnnouncementsDir = "chat_announcements"
)

var (
	ErrInvalidName    = errors.New("invalid command name")
	ErrNotFound       = errors.New("command not found")
	ErrInvalidTiming  = errors.New("invalid announcement timing")
	ErrEmptyMessage   = errors.New("empty message")
	ErrMalformedEntry = errors.New("malformed announcement file")
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,32}$`)

func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

type Command struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type Announcement struct {
	Name    string        `json:"name"`
	Every   time.Duration `json:"every"`
	Message string        `json:"message"`
}

// Store keeps one file per command under <dataDir>/chat_commands and one per
// announcement under <dataDir>/chat_announcements. Announcement files hold
// "<minutes>\n<message>".
type Store struct {
	dataDir string
}

func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

func (s *Store) AddCommand(name, message string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}
	return s.write(CommandsDir, name, message)
}

func (s *Store) Command(name string) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	data, err := os.ReadFile(filepath.Join(s.dataDir, CommandsDir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *Store) Commands() ([]Command, error) {
	names, err := s.list(CommandsDir)
	if err != nil {
		return nil, err
	}

	out := make([]Command, 0, len(names))
	for _, name := range names {
		msg, err := s.Command(name)
		if err != nil {
			continue
		}
		out = append(out, Command{Name: name, Message: msg})
	}
	return out, nil
}

func (s *Store) AddAnnouncement(name string, every time.Duration, message string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	minutes := int(every / time.Minute)
	if minutes < 1 {
		return fmt.Errorf("%w: must be at least one minute", ErrInvalidTiming)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}
	return s.write(AnnouncementsDir, name, strconv.Itoa(minutes)+"\n"+message)
}

func (s *Store) Announcements() ([]Announcement, error) {
	names, err := s.list(AnnouncementsDir)
	if err != nil {
		return nil, err
	}

	out := make([]Announcement, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dataDir, AnnouncementsDir, name))
		if err != nil {
			continue
		}
		a, err := parseAnnouncement(name, string(data))
		if err != nil {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func parseAnnouncement(name, content string) (Announcement, error) {
	timing, message, ok := strings.Cut(content, "\n")
	if !ok {
		return Announcement{}, fmt.Errorf("%w: %s", ErrMalformedEntry, name)
	}

	minutes, err := strconv.Atoi(strings.TrimSpace(timing))
	if err != nil || minutes < 1 {
		return Announcement{}, fmt.Errorf("%w: %s", ErrInvalidTiming, name)
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return Announcement{}, fmt.Errorf("%w: %s", ErrEmptyMessage, name)
	}

	return Announcement{Name: name, Every: time.Duration(minutes) * time.Minute, Message: message}, nil
}

// Remove deletes a command or announcement. Commands are checked first.
func (s *Store) Remove(name string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	for _, dir := range []string{CommandsDir, AnnouncementsDir} {
		err := os.Remove(filepath.Join(s.dataDir, dir, name))
		if err == nil {
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (s *Store) write(dir, name, content string) error {
	path := filepath.Join(s.dataDir, dir)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(path, name), []byte(content), 0o644)
}

func (s *Store) list(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dataDir, dir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && ValidName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
