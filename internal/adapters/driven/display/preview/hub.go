package preview

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// DetectionMessage is broadcast to websocket clients for every shown frame.
type DetectionMessage struct {
	Type        string             `json:"type"`
	Seq         uint64             `json:"seq"`
	Timestamp   time.Time          `json:"timestamp"`
	FrameWidth  int                `json:"frame_width"`
	FrameHeight int                `json:"frame_height"`
	Code        string             `json:"code"`
	Objects     []domain.Detection `json:"objects"`
}

// hub tracks websocket clients.
type hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
	onQuit  func()
}

func newHub(onQuit func()) *hub {
	return &hub{clients: make(map[*websocket.Conn]struct{}), onQuit: onQuit}
}

func (h *hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	logger.Debug("preview: websocket client connected (total %d)", n)
}

func (h *hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		_ = conn.Close()
	}
	h.mu.Unlock()
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *hub) broadcast(msg *DetectionMessage) {
	if h.count() == 0 {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Warn("preview: marshal detection message: %v", err)
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Debug("preview: dropping websocket client: %v", err)
			h.unregister(c)
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		_ = c.Close()
		delete(h.clients, c)
	}
}

// serveWS upgrades the request and reads until the client leaves.
// A text message "quit" stops the detection loop.
func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("preview: websocket upgrade: %v", err)
		return
	}
	h.register(conn)
	go h.readPump(conn)
}

func (h *hub) readPump(conn *websocket.Conn) {
	defer h.unregister(conn)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug("preview: websocket read: %v", err)
			}
			return
		}
		if string(msg) == "quit" && h.onQuit != nil {
			h.onQuit()
		}
	}
}
