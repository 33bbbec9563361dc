package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/solarworks/solarworks/internal/logging"
	"github.com/solarworks/solarworks/internal/metrics"
	"github.com/solarworks/solarworks/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

type refreshMessage struct {
	Type     string          `json:"type"`
	Resource string          `json:"resource"`
	Action   services.Action `json:"action"`
	ID       string          `json:"id,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes content events to connected admin dashboards so they can refetch.
type Hub struct {
	clients  map[*wsClient]struct{}
	mu       sync.RWMutex
	upgrader websocket.Upgrader
}

func NewHub(allowedOrigins []string) *Hub {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return &Hub{
		clients: make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func (hub *Hub) Count() int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.clients)
}

// Publish broadcasts a refresh message. Clients whose buffer is full are dropped.
func (hub *Hub) Publish(event services.ContentEvent) {
	msg, err := json.Marshal(refreshMessage{
		Type:     "refresh",
		Resource: event.Resource,
		Action:   event.Action,
		ID:       event.ID,
	})

	if err != nil {
		logging.Error().Err(err).Msg("Failed to encode refresh message")
		return
	}

	var slow []*wsClient

	hub.mu.RLock()
	for client := range hub.clients {
		select {
		case client.send <- msg:
		default:
			slow = append(slow, client)
		}
	}
	hub.mu.RUnlock()

	for _, client := range slow {
		logging.Warn().Msg("Dropping websocket client with full send buffer")
		hub.unregister(client)
	}
}

// Close disconnects every client.
func (hub *Hub) Close() {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for client := range hub.clients {
		delete(hub.clients, client)
		close(client.send)
		metrics.WebSocketClients.Dec()
	}
}

func (hub *Hub) register(client *wsClient) {
	hub.mu.Lock()
	hub.clients[client] = struct{}{}
	hub.mu.Unlock()
	metrics.WebSocketClients.Inc()
}

func (hub *Hub) unregister(client *wsClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if _, ok := hub.clients[client]; !ok {
		return
	}

	delete(hub.clients, client)
	close(client.send)
	metrics.WebSocketClients.Dec()
}

func (hub *Hub) WebSocket(c *gin.Context) {
	conn, err := hub.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}

	welcome, _ := json.Marshal(map[string]string{
		"type":    "connected",
		"message": "WebSocket connection established",
	})
	client.send <- welcome

	hub.register(client)

	defer func() {
		hub.unregister(client)
		logging.Debug().Str("remote", conn.RemoteAddr().String()).Msg("WebSocket connection closed")
	}()

	go client.writePump()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}
	}
}

// writePump owns all writes to the connection.
func (client *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			if err := client.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}

			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}

			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
