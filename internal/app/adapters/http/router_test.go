package http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitchchat/internal/app/adapters/overlay"
	"twitchchat/internal/app/domain"
	"twitchchat/internal/app/domain/chatlog"
	"twitchchat/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(token string) (*Router, *chatlog.Log) {
	chat := chatlog.New(5)
	chat.Add(domain.ChatMessage{ID: "1", DisplayName: "Bob", Message: "hi"})
	chat.Add(domain.RedeemMessage{UserName: "Eve", RewardTitle: "Hydrate", Cost: 5})

	return NewRouter(logger.Discard(), Options{Addr: "127.0.0.1:0", AuthToken: token}, chat, nil, time.Now().Add(-time.Minute)), chat
}

func serve(r *Router, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	return w
}

func TestLocalOnlyWithoutToken(t *testing.T) {
	r, _ := newTestRouter("")

	tests := []struct {
		name   string
		remote string
		want   int
	}{
		{"loopback v4", "127.0.0.1:5555", http.StatusOK},
		{"loopback v6", "[::1]:5555", http.StatusOK},
		{"remote", "203.0.113.7:5555", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/chatlog", nil)
			req.RemoteAddr = tt.remote
			req.Header.Set("X-Forwarded-For", "127.0.0.1")
			assert.Equal(t, tt.want, serve(r, req).Code)
		})
	}
}

func TestBasicAuthWithToken(t *testing.T) {
	r, _ := newTestRouter("secret")

	for _, path := range []string{"/metrics", "/chatlog", "/status", "/debug/pprof/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code, path)

		req = httptest.NewRequest(http.MethodGet, path, nil)
		req.SetBasicAuth("admin", "wrong")
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code, path)

		req = httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "203.0.113.7:5555"
		req.SetBasicAuth("admin", "secret")
		assert.Equal(t, http.StatusOK, serve(r, req).Code, path)
	}
}

func TestChatLogHandler(t *testing.T) {
	r, _ := newTestRouter("")

	req := httptest.NewRequest(http.MethodGet, "/chatlog", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Size     int `json:"size"`
		Capacity int `json:"capacity"`
		Messages []struct {
			Type    string          `json:"type"`
			Message json.RawMessage `json:"message"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, 2, body.Size)
	assert.Equal(t, 5, body.Capacity)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "chat", body.Messages[0].Type)
	assert.Equal(t, "redeem", body.Messages[1].Type)

	var chat domain.ChatMessage
	require.NoError(t, json.Unmarshal(body.Messages[0].Message, &chat))
	assert.Equal(t, "Bob", chat.DisplayName)
	assert.Equal(t, "hi", chat.Message)
}

func TestStatusHandler(t *testing.T) {
	r, _ := newTestRouter("")

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)

	var st struct {
		Uptime      string `json:"uptime"`
		Goroutines  int    `json:"goroutines"`
		ChatLogSize int    `json:"chat_log_size"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.NotEmpty(t, st.Uptime)
	assert.Positive(t, st.Goroutines)
	assert.Equal(t, 2, st.ChatLogSize)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	chat := chatlog.New(5)
	r := NewRouter(logger.Discard(), Options{Addr: addr}, chat, nil, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/status")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second * 6):
		t.Fatal("server did not stop")
	}
}

func TestOverlayRoute(t *testing.T) {
	hub := overlay.NewHub(logger.Discard())
	defer hub.Close()
	r := NewRouter(logger.Discard(), Options{}, chatlog.New(5), hub, time.Now())

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(domain.RaidNotice{UserID: "42", DisplayName: "Foo", Notice: "5 raiders"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev struct {
		Type    string            `json:"type"`
		Message domain.RaidNotice `json:"message"`
	}
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "raid", ev.Type)
	assert.Equal(t, "Foo", ev.Message.DisplayName)
}
