package timeline

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Publisher receives events after the transaction that wrote them commits.
type Publisher interface {
	Publish(events ...CaseEvent)
}

// NopPublisher drops events.
type NopPublisher struct{}

func (NopPublisher) Publish(...CaseEvent) {}

// WSEvent is pushed to feed subscribers.
type WSEvent struct {
	Type   string    `json:"type"`
	CaseID string    `json:"caseId"`
	Event  CaseEvent `json:"event"`
}

type subscriber struct {
	caseID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans committed case events out to websocket subscribers of that case.
type Hub struct {
	log  *zap.Logger
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{} // caseID -> subscribers
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:  log,
		subs: make(map[string]map[*subscriber]struct{}),
	}
}

func (h *Hub) register(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.subs[s.caseID]
	if !ok {
		room = make(map[*subscriber]struct{})
		h.subs[s.caseID] = room
	}
	room[s] = struct{}{}
}

func (h *Hub) unregister(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.subs[s.caseID]
	if !ok {
		return
	}
	if _, ok := room[s]; ok {
		delete(room, s)
		close(s.send)
	}
	if len(room) == 0 {
		delete(h.subs, s.caseID)
	}
}

// Subscribers reports how many connections follow caseID.
func (h *Hub) Subscribers(caseID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[caseID])
}

func (h *Hub) Publish(events ...CaseEvent) {
	for _, ev := range events {
		data, err := json.Marshal(WSEvent{Type: ev.Type, CaseID: ev.CaseID, Event: ev})
		if err != nil {
			h.log.Warn("marshal case event", zap.Error(err))
			continue
		}
		h.mu.RLock()
		for s := range h.subs[ev.CaseID] {
			select {
			case s.send <- data:
			default:
				// slow subscriber
			}
		}
		h.mu.RUnlock()
	}
}

// Serve upgrades the request and streams events for caseID until the client leaves.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, caseID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	s := &subscriber{
		caseID: caseID,
		conn:   conn,
		send:   make(chan []byte, 64),
	}
	h.register(s)

	go h.writePump(s)
	h.readPump(s)
	return nil
}

// readPump only services control frames; clients do not send events.
func (h *Hub) readPump(s *subscriber) {
	defer func() {
		h.unregister(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMsgSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
