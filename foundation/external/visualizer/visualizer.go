// Package visualizer streams phase changes to a remote activity display over
// a websocket.
package visualizer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/superfeelapi/goRaphael/foundation/state"
	"go.uber.org/zap"
)

const (
	dialTimeout  = 3 * time.Second
	writeTimeout = time.Second
)

// Event is the JSON frame sent for every phase change.
type Event struct {
	Phase string    `json:"phase"`
	At    time.Time `json:"at"`
}

type Client struct {
	url    string
	header http.Header
	logger *zap.SugaredLogger

	mu   sync.Mutex
	conn *websocket.Conn
}

func New(scheme, host, path, apiKey string, logger *zap.SugaredLogger) *Client {
	u := url.URL{
		Scheme: scheme,
		Host:   host,
		Path:   path,
	}

	return &Client{
		url:    u.String(),
		header: http.Header{"api-key": []string{apiKey}},
		logger: logger,
	}
}

// OnPhaseChanged sends the phase, dialing on first use and redialing once
// after a failed write. Failures are logged; the conversation never waits on
// a broken display.
func (c *Client) OnPhaseChanged(phase state.Phase) {
	event := Event{Phase: phase.String(), At: time.Now()}

	c.mu.Lock()
	defer c.mu.Unlock()

	for attempt := 0; attempt < 2; attempt++ {
		if err := c.send(event); err != nil {
			c.logger.Errorw("visualizer: OnPhaseChanged", "ERROR", err, "attempt", attempt+1)
			c.reset()
			continue
		}
		return
	}
}

func (c *Client) send(event Event) error {
	if c.conn == nil {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, c.header)
		if err != nil {
			return fmt.Errorf("dial %s: %w", c.url, err)
		}
		c.conn = conn
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(event)
}

func (c *Client) reset() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))

	err := c.conn.Close()
	c.conn = nil
	return err
}
