// Package notify доставляет события пользователям по websocket.
package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/senyabanana/common-elements/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	ConnectedEvent = "connected" // Соединение установлено

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client - одно websocket-соединение пользователя.
type Client struct {
	UserID string
	conn   *websocket.Conn
	send   chan models.Event
}

// Hub хранит активные соединения. У пользователя может быть несколько соединений.
type Hub struct {
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	logger  zerolog.Logger
}

// NewHub создает новый Hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]struct{})
	}
	h.clients[client.UserID][client] = struct{}{}
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := conns[client]; ok {
		delete(conns, client)
		close(client.send)
	}
	if len(conns) == 0 {
		delete(h.clients, client.UserID)
	}
}

// Connected возвращает количество соединений пользователя.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Notify отправляет событие во все соединения пользователя. Медленные соединения
// с переполненным буфером пропускают событие.
func (h *Hub) Notify(userID string, event models.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- event:
		default:
			h.logger.Warn().Str("userId", userID).Str("event", event.Type).Msg("websocket buffer full, event dropped")
		}
	}
}

// ServeWS переводит запрос в websocket и регистрирует соединение пользователя.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{UserID: userID, conn: conn, send: make(chan models.Event, sendBuffer)}
	h.register(client)
	client.send <- models.Event{Type: ConnectedEvent}

	go h.writePump(client)
	go h.readPump(client)
	return nil
}

// readPump читает входящие кадры, чтобы обрабатывать pong и закрытие соединения.
func (h *Hub) readPump(client *Client) {
	defer func() {
		h.unregister(client)
		client.conn.Close()
	}()

	client.conn.SetReadLimit(512)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Str("userId", client.UserID).Msg("websocket closed")
			}
			return
		}
	}
}

// writePump - единственный писатель в соединение.
func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case event, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteJSON(event); err != nil {
				h.logger.Debug().Err(err).Str("userId", client.UserID).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
