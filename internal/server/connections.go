package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"taberna-server/internal/metrics"
)

var (
	errQueueFull    = errors.New("send queue full")
	errClientClosed = errors.New("client closed")
)

// Client is one live connection. Outbound frames go through a bounded queue
// drained by a single writer, so a connection sees frames in the order they
// were enqueued.
type Client struct {
	ID   string
	conn *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(id string, conn *websocket.Conn, queueSize int) *Client {
	return &Client{
		ID:   id,
		conn: conn,
		send: make(chan []byte, queueSize),
		done: make(chan struct{}),
	}
}

// Enqueue never blocks. A full queue drops the frame.
func (c *Client) Enqueue(data []byte) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errQueueFull
	}
}

// Close stops the writer. Frames still queued are discarded.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// CloseSocket performs the WebSocket close handshake. The read loop then
// fails and runs the normal disconnect path.
func (c *Client) CloseSocket(code websocket.StatusCode, reason string) {
	if c.conn == nil {
		return
	}
	if err := c.conn.Close(code, reason); err != nil {
		log.Debug().Err(err).Str("session_id", c.ID).Msg("Close handshake failed")
	}
}

func (c *Client) writePump(ctx context.Context, writeTimeout time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case data := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				metrics.SendFailures.WithLabelValues(metrics.ReasonWrite).Inc()
				log.Warn().Err(err).Str("session_id", c.ID).Msg("Write failed, dropping connection")
				c.Close()
				c.conn.CloseNow()
				return
			}
			metrics.MessagesSent.Inc()
		}
	}
}

// ConnectionManager is the table of live clients keyed by session id.
type ConnectionManager struct {
	clients map[string]*Client
	mu      sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		clients: make(map[string]*Client),
	}
}

func (cm *ConnectionManager) AddClient(c *Client) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.clients[c.ID] = c
}

// RemoveClient returns the removed client, or nil if the id was unknown.
func (cm *ConnectionManager) RemoveClient(id string) *Client {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	c, ok := cm.clients[id]
	if !ok {
		return nil
	}
	delete(cm.clients, id)
	return c
}

func (cm *ConnectionManager) GetClient(id string) *Client {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.clients[id]
}

// Clients returns a snapshot of every live client.
func (cm *ConnectionManager) Clients() []*Client {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	out := make([]*Client, 0, len(cm.clients))
	for _, c := range cm.clients {
		out = append(out, c)
	}
	return out
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}
