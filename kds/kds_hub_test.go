package kds

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(ws, "staff", ParseTables(r.URL.Query().Get("tables")))
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(ws)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Clients() == n }, 2*time.Second, 10*time.Millisecond)
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_PublishRespectsSubscriptions(t *testing.T) {
	log, _ := test.NewNullLogger()
	hub := NewHub(log)
	srv := newTestServer(t, hub)

	orders := dial(t, srv, "tables=orders")
	everything := dial(t, srv, "")
	waitForClients(t, hub, 2)

	sent := hub.Publish(Event{Table: "tables", Action: "UPDATE", RecordID: 4})
	assert.Equal(t, 1, sent)
	msg := readMessage(t, everything)
	assert.Equal(t, "db_change", msg.Event)
	assert.Equal(t, "tables", msg.Data.Table)
	assert.Equal(t, int64(4), msg.Data.RecordID)

	sent = hub.Publish(Event{Table: "orders", Action: "INSERT", RecordID: 9})
	assert.Equal(t, 2, sent)
	assert.Equal(t, int64(9), readMessage(t, orders).Data.RecordID)
	assert.Equal(t, int64(9), readMessage(t, everything).Data.RecordID)
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	log, _ := test.NewNullLogger()
	hub := NewHub(log)
	srv := newTestServer(t, hub)

	conn := dial(t, srv, "")
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
	assert.Zero(t, hub.Publish(Event{Table: "orders", Action: "INSERT", RecordID: 1}))
}

func TestParseTables(t *testing.T) {
	assert.Equal(t, []string{"orders", "tables"}, ParseTables(" orders, ,tables "))
	assert.Nil(t, ParseTables(""))
}
