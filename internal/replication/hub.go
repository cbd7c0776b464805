package replication

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/udisondev/beastmind/internal/ai"
)

// Hub is an in-process Sink that fans events out to one Mirror per agent and
// to subscribed listeners. Safe for concurrent publishers.
type Hub struct {
	mu        sync.RWMutex
	mirrors   map[uuid.UUID]*Mirror
	listeners []Sink

	published atomic.Uint64
	rejected  atomic.Uint64
}

var _ Sink = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{mirrors: make(map[uuid.UUID]*Mirror)}
}

// Subscribe adds a listener receiving every event after the mirrors were
// updated. Not safe to call once publishing started.
func (h *Hub) Subscribe(s Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, s)
}

// Publish implements Sink.
func (h *Hub) Publish(ev ChangeEvent) {
	h.published.Add(1)

	mirror := h.mirror(ev.Agent)
	if err := mirror.Apply(ev); err != nil {
		h.rejected.Add(1)
		if ai.IsDebugEnabled() {
			slog.Debug("replication event rejected", "agent", ev.Agent, "seq", ev.Seq, "error", err)
		}
	}

	h.mu.RLock()
	listeners := h.listeners
	h.mu.RUnlock()
	for _, l := range listeners {
		l.Publish(ev)
	}
}

func (h *Hub) mirror(agent uuid.UUID) *Mirror {
	h.mu.RLock()
	m, ok := h.mirrors[agent]
	h.mu.RUnlock()
	if ok {
		return m
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.mirrors[agent]; ok {
		return m
	}
	m = NewMirror(agent)
	h.mirrors[agent] = m
	return m
}

// Mirror returns the mirror for agent.
func (h *Hub) Mirror(agent uuid.UUID) (*Mirror, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	m, ok := h.mirrors[agent]
	return m, ok
}

// Remove forgets agent's mirror (despawn).
func (h *Hub) Remove(agent uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.mirrors, agent)
}

// Len returns the number of mirrored agents.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.mirrors)
}

// Stats returns published and rejected event counts.
func (h *Hub) Stats() (published, rejected uint64) {
	return h.published.Load(), h.rejected.Load()
}
