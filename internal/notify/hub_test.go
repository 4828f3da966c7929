package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/senyabanana/common-elements/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := hub.ServeWS(w, r, userID); err != nil {
			t.Logf("upgrade failed: %v", err)
		}
	}))
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) models.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event models.Event
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestHub_DeliversEventsToAllConnections(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	first := dial(t, hub, "user-1")
	second := dial(t, hub, "user-1")
	other := dial(t, hub, "user-2")

	for _, conn := range []*websocket.Conn{first, second, other} {
		assert.Equal(t, ConnectedEvent, readEvent(t, conn).Type)
	}
	assert.Equal(t, 2, hub.Connected("user-1"))

	hub.Notify("user-1", models.Event{Type: models.MessageEvent, RFPID: "rfp-1"})

	for _, conn := range []*websocket.Conn{first, second} {
		event := readEvent(t, conn)
		assert.Equal(t, models.MessageEvent, event.Type)
		assert.Equal(t, "rfp-1", event.RFPID)
	}

	hub.Notify("user-2", models.Event{Type: models.ProposalEvent, RFPID: "rfp-2"})
	assert.Equal(t, models.ProposalEvent, readEvent(t, other).Type)
}

func TestHub_UnregistersClosedConnections(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := dial(t, hub, "user-1")
	readEvent(t, conn)
	require.Equal(t, 1, hub.Connected("user-1"))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	assert.Eventually(t, func() bool { return hub.Connected("user-1") == 0 }, 2*time.Second, 10*time.Millisecond)

	// Пользователь без соединений
	hub.Notify("user-1", models.Event{Type: models.MessageEvent})
}
