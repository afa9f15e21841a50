package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mesaYaMailer/internal/modules/mailer/application/port"
	"mesaYaMailer/internal/modules/mailer/domain"
)

const (
	clientSendBuffer = 16
	writeWait        = 10 * time.Second
)

// DeliveryHub fans delivery reports out to every connected operator stream.
type DeliveryHub struct {
	mu      sync.RWMutex
	clients map[*DeliveryClient]struct{}
}

func NewDeliveryHub() *DeliveryHub {
	return &DeliveryHub{clients: make(map[*DeliveryClient]struct{})}
}

// Attach registers a freshly upgraded connection and starts its pumps.
func (h *DeliveryHub) Attach(conn *websocket.Conn, userID string) *DeliveryClient {
	client := &DeliveryClient{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, clientSendBuffer),
		done:   make(chan struct{}),
		userID: userID,
	}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	go client.writePump()
	go client.readPump()
	slog.Info("delivery stream client attached", slog.String("userId", userID))
	return client
}

func (h *DeliveryHub) detach(c *DeliveryClient) {
	h.mu.Lock()
	_, attached := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if attached {
		c.close()
		slog.Info("delivery stream client detached", slog.String("userId", c.userID))
	}
}

// Broadcast marshals the report once and hands it to every client. Clients
// whose buffers are full miss the report; the stream is a live view, not a
// durable log.
func (h *DeliveryHub) Broadcast(_ context.Context, report *domain.DeliveryReport) {
	data, err := json.Marshal(report)
	if err != nil {
		slog.Error("delivery broadcast marshal error", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	clients := make([]*DeliveryClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- data:
		default:
			slog.Debug("delivery stream client lagging, report dropped", slog.String("userId", c.userID))
		}
	}
}

// DeliveryClient is one operator websocket connection.
type DeliveryClient struct {
	hub       *DeliveryHub
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	userID    string
	closeOnce sync.Once
}

// Send queues an out-of-band message (e.g. the connected greeting).
func (c *DeliveryClient) Send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("delivery client marshal error", slog.Any("error", err))
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *DeliveryClient) writePump() {
	defer c.hub.detach(c)
	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump discards client input; it exists to notice the close handshake.
func (c *DeliveryClient) readPump() {
	defer c.hub.detach(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *DeliveryClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

var _ port.Broadcaster = (*DeliveryHub)(nil)
