package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"DEBUG", "debug"},
		{"warn", "warn"},
		{"error", "error"},
		{"fatal", "fatal"},
		{"", "info"},
		{"verbose", "info"},
	}

	l := Discard()
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			l.SetLogLevel(tt.in)
			assert.Equal(t, tt.want, l.GetLogLevel())
		})
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Console: &buf, Level: "debug"})

	p := NewPrefixedLogger(l, "irc").Named("pipeline")
	p.Error("parse failed", errors.New("boom"), "line", "x")
	p.Trace("hidden")

	out := buf.String()
	assert.Contains(t, out, "[irc/pipeline] parse failed")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "line=x")
	assert.NotContains(t, out, "hidden")
}
