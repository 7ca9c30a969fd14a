package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
)

// Event is one message on the event stream.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Hub fans emitted events out to server-sent event subscribers. It
// implements the EventEmitter interface the services take.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	buffer int
	logger *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		subs:   make(map[chan Event]struct{}),
		buffer: 64,
		logger: logger.WithPrefix("events"),
	}
}

// Emit delivers an event to every subscriber. Slow subscribers drop events
// rather than block the emitter.
func (h *Hub) Emit(_ context.Context, event string, data any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger.Debug("emit", "event", event, "subscribers", len(h.subs))
	for ch := range h.subs {
		select {
		case ch <- Event{Name: event, Data: data}:
		default:
			h.logger.Warn("subscriber lagging, dropped event", "event", event)
		}
	}
}

// Subscribe registers a new subscriber. Call the returned func to leave.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ServeHTTP streams events as text/event-stream until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	events, leave := h.Subscribe()
	defer leave()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			data, err := json.Marshal(ev.Data)
			if err != nil {
				h.logger.Error("marshal event", "event", ev.Name, "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
			flusher.Flush()
		}
	}
}
