// Package kds fans realtime change events out to the kitchen, floor and admin
// screens over websockets.
package kds

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 5 * time.Second

// Event is an insert, update or delete on a named table.
type Event struct {
	Table    string      `json:"table"`
	Action   string      `json:"action"`
	RecordID int64       `json:"record_id"`
	Record   interface{} `json:"record,omitempty"`
}

// Message is the frame written to subscribers.
type Message struct {
	Event string `json:"event"`
	Data  Event  `json:"data"`
}

type subscriber struct {
	role   string
	tables map[string]bool // empty means every table
}

func (s subscriber) wants(table string) bool {
	return len(s.tables) == 0 || s.tables[table]
}

// Hub holds the connected clients. Writes to all connections happen under one
// mutex, so a connection never has two concurrent writers.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]subscriber
	log     *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{clients: make(map[*websocket.Conn]subscriber), log: log}
}

// ParseTables splits a comma separated subscription list.
func ParseTables(csv string) []string {
	var out []string
	for _, t := range strings.Split(csv, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Register subscribes conn to the given tables (all tables when none are given).
func (h *Hub) Register(conn *websocket.Conn, role string, tables []string) {
	sub := subscriber{role: role, tables: make(map[string]bool, len(tables))}
	for _, t := range tables {
		sub.tables[t] = true
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = sub
}

// Unregister drops conn and closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// Clients is the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends ev to every subscriber of ev.Table and returns how many received
// it. Connections that fail to take the write are dropped.
func (h *Hub) Publish(ev Event) int {
	data, err := json.Marshal(Message{Event: "db_change", Data: ev})
	if err != nil {
		h.log.WithError(err).Error("marshal realtime event")
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for conn, sub := range h.clients {
		if !sub.wants(ev.Table) {
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.WithError(err).WithField("role", sub.role).Warn("dropping realtime subscriber")
			delete(h.clients, conn)
			conn.Close()
			continue
		}
		sent++
	}
	h.log.WithFields(logrus.Fields{
		"table":     ev.Table,
		"action":    ev.Action,
		"record_id": ev.RecordID,
		"clients":   sent,
	}).Debug("realtime event published")
	return sent
}
