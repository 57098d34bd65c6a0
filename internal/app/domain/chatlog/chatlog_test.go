package chatlog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"twitchchat/internal/app/domain"
)

func chat(id, user string) domain.ChatMessage {
	return domain.ChatMessage{ID: id, DisplayName: user, Message: "msg " + id}
}

func ids(msgs []domain.TwitchMessage) []string {
	var out []string
	for _, m := range msgs {
		switch v := m.(type) {
		case domain.ChatMessage:
			out = append(out, v.ID)
		case domain.RaidNotice:
			out = append(out, "raid:"+v.DisplayName)
		}
	}
	return out
}

func TestAddEvictsOldest(t *testing.T) {
	l := New(3)
	for i := 1; i <= 5; i++ {
		l.Add(chat(fmt.Sprint(i), "u"))
	}

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []string{"3", "4", "5"}, ids(l.Snapshot()))
}

func TestDefaultSize(t *testing.T) {
	l := New(0)
	assert.Equal(t, DefaultSize, l.Cap())

	for i := 0; i < DefaultSize+20; i++ {
		l.Add(chat(fmt.Sprint(i), "u"))
	}
	assert.Equal(t, DefaultSize, l.Len())
	assert.Equal(t, "20", ids(l.Snapshot())[0])
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name   string
		remove func(l *Log) int
		want   []string
		n      int
	}{
		{
			name: "by id",
			remove: func(l *Log) int {
				if l.RemoveByID("2") {
					return 1
				}
				return 0
			},
			want: []string{"1", "3", "4", "raid:Alice"},
			n:    1,
		},
		{
			name:   "unknown id",
			remove: func(l *Log) int { return boolToInt(l.RemoveByID("nope")) },
			want:   []string{"1", "2", "3", "4", "raid:Alice"},
		},
		{
			name:   "empty id",
			remove: func(l *Log) int { return boolToInt(l.RemoveByID("")) },
			want:   []string{"1", "2", "3", "4", "raid:Alice"},
		},
		{
			name:   "by user ignores case and keeps notices",
			remove: func(l *Log) int { return l.RemoveByUser("alice") },
			want:   []string{"2", "4", "raid:Alice"},
			n:      2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(10)
			l.Add(chat("1", "Alice"))
			l.Add(chat("2", "bob"))
			l.Add(chat("3", "ALICE"))
			l.Add(chat("4", "carol"))
			l.Add(domain.RaidNotice{DisplayName: "Alice"})

			assert.Equal(t, tt.n, tt.remove(l))
			assert.Equal(t, tt.want, ids(l.Snapshot()))
		})
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	l := New(2)
	l.Add(chat("1", "u"))

	snap := l.Snapshot()
	l.Add(chat("2", "u"))
	l.Add(chat("3", "u"))

	assert.Equal(t, []string{"1"}, ids(snap))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
