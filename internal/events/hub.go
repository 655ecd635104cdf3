package events

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/fisiocan/booking-platform/pkg/logging"
)

// Hub pushes slot-change events to websocket sessions. Each session
// subscribes to a single date; when that date's slots change the session
// receives the event and is expected to re-fetch availability.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logging.Logger

	mu    sync.Mutex
	conns map[string]map[*websocket.Conn]struct{} // date -> sessions
}

// NewHub creates a websocket hub.
func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checking is handled by the CORS layer in front.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
		conns:  make(map[string]map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP handles GET /ws/slots?date=YYYY-MM-DD, upgrading to a websocket
// that receives SlotsChangedEvent messages for the date.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "missing date", http.StatusBadRequest)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	h.add(date, conn)
	h.logger.Debug("slot session opened", "date", date)

	// Drain reads so close frames are processed; sessions are write-only.
	go func() {
		defer h.remove(date, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Dispatch fans an event out to every session watching its date.
func (h *Hub) Dispatch(evt SlotsChangedEvent) {
	h.mu.Lock()
	sessions := make([]*websocket.Conn, 0, len(h.conns[evt.Date]))
	for conn := range h.conns[evt.Date] {
		sessions = append(sessions, conn)
	}
	h.mu.Unlock()

	for _, conn := range sessions {
		if err := conn.WriteJSON(evt); err != nil {
			h.logger.Debug("dropping dead slot session", "date", evt.Date, "error", err)
			h.remove(evt.Date, conn)
		}
	}
}

// SessionCount reports how many sessions watch a date.
func (h *Hub) SessionCount(date string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[date])
}

func (h *Hub) add(date string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[date] == nil {
		h.conns[date] = make(map[*websocket.Conn]struct{})
	}
	h.conns[date][conn] = struct{}{}
}

func (h *Hub) remove(date string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sessions, ok := h.conns[date]; ok {
		delete(sessions, conn)
		if len(sessions) == 0 {
			delete(h.conns, date)
		}
	}
	_ = conn.Close()
}
