package server

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/tofgesture/internal/recognizer"
	"github.com/ayusman/tofgesture/internal/tof"
)

const (
	liveWriteWait = time.Second
	// liveQueue is the number of messages buffered per client before it
	// is dropped as too slow.
	liveQueue = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// LiveMessage is one recognizer result as sent to websocket clients.
type LiveMessage struct {
	TimeMs  int64             `json:"time_ms"`
	Result  recognizer.Result `json:"result"`
	Nearest float64           `json:"nearest_mm,omitempty"`
}

// LiveHandler broadcasts recognizer results via WebSocket.
type LiveHandler struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
	closed  bool
}

// NewLiveHandler creates a LiveHandler with no clients.
func NewLiveHandler() *LiveHandler {
	return &LiveHandler{clients: make(map[*websocket.Conn]chan []byte)}
}

// Publish queues a result for every client. It never blocks; clients that
// fall behind are disconnected.
func (h *LiveHandler) Publish(res recognizer.Result, frame tof.DepthFrame) {
	msg := LiveMessage{TimeMs: frame.TimeMs, Result: res}
	if _, _, d, ok := frame.Nearest(math.Inf(1)); ok {
		msg.Nearest = d
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("live message encode error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, queue := range h.clients {
		select {
		case queue <- data:
		default:
			close(queue)
			delete(h.clients, conn)
		}
	}
}

// Clients returns the number of connected clients.
func (h *LiveHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *LiveHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, queue := range h.clients {
		close(queue)
		delete(h.clients, conn)
	}
	h.closed = true
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	queue := make(chan []byte, liveQueue)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.clients[conn] = queue
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if q, ok := h.clients[conn]; ok {
			close(q)
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	}()

	// Reading detects a closed connection.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case data, ok := <-queue:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(liveWriteWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
