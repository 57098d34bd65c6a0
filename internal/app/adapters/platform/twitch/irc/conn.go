package irc

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/net/proxy"
)

const (
	tcpAddr = "irc.chat.twitch.tv:443"
	wsURL   = "wss://irc-ws.chat.twitch.tv:443"

	writeTimeout = 10 * time.Second
)

// lineConn moves whole IRC lines without their CRLF.
type lineConn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
}

type dialFunc func(ctx context.Context) (lineConn, error)

type tcpConn struct {
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
}

func dialTCP(dialer proxy.ContextDialer, addr string, tlsConf *tls.Config) dialFunc {
	return func(ctx context.Context) (lineConn, error) {
		raw, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}

		conn := net.Conn(raw)
		if tlsConf != nil {
			tc := tls.Client(raw, tlsConf)
			if err := tc.HandshakeContext(ctx); err != nil {
				_ = raw.Close()
				return nil, err
			}
			conn = tc
		}

		return &tcpConn{conn: conn, reader: bufio.NewReader(conn)}, nil
	}
}

func (c *tcpConn) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *tcpConn) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err := c.conn.Write([]byte(line + "\r\n"))
	return err
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}

// wsConn reads IRC over a WebSocket. One text frame may carry several lines.
type wsConn struct {
	conn    *websocket.Conn
	pending []string
	mu      sync.Mutex
}

func dialWebSocket(dialer proxy.ContextDialer, url string) dialFunc {
	d := websocket.Dialer{
		NetDialContext:   dialer.DialContext,
		HandshakeTimeout: 10 * time.Second,
	}

	return func(ctx context.Context) (lineConn, error) {
		conn, resp, err := d.DialContext(ctx, url, http.Header{})
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			return nil, err
		}
		return &wsConn{conn: conn}, nil
	}
}

func (c *wsConn) ReadLine() (string, error) {
	for len(c.pending) == 0 {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}

		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimRight(line, "\r"); line != "" {
				c.pending = append(c.pending, line)
			}
		}
	}

	line := c.pending[0]
	c.pending = c.pending[1:]
	return line, nil
}

func (c *wsConn) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
