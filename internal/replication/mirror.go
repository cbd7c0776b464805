package replication

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/model"
)

var (
	// ErrWrongAgent is returned when an event targets another agent's mirror.
	ErrWrongAgent = errors.New("event for another agent")

	// ErrStaleEvent is returned for duplicate or reordered events. The mirror
	// is left unchanged.
	ErrStaleEvent = errors.New("stale event")
)

// Mirror is the observer's authoritative copy of one agent's replicated state.
// Safe for concurrent use.
type Mirror struct {
	mu sync.RWMutex

	agent    uuid.UUID
	state    *model.ReplicatedState
	seq      uint64
	tick     uint64
	synced   bool
	desynced bool
}

// NewMirror creates an empty mirror holding spawn defaults until the first
// resync arrives.
func NewMirror(agent uuid.UUID) *Mirror {
	return &Mirror{
		agent: agent,
		state: model.NewReplicatedState(),
	}
}

// Apply applies ev. Events must arrive in sequence order; older ones are
// rejected. A gap is applied but flags the mirror as desynced until the next
// resync event.
func (m *Mirror) Apply(ev ChangeEvent) error {
	if ev.Agent != m.agent {
		return fmt.Errorf("applying event for %s to mirror %s: %w", ev.Agent, m.agent, ErrWrongAgent)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.synced && ev.Seq <= m.seq {
		return fmt.Errorf("applying seq %d after %d: %w", ev.Seq, m.seq, ErrStaleEvent)
	}

	switch {
	case ev.Resync:
		m.desynced = false
		m.synced = true
	case !m.synced || ev.Seq != m.seq+1:
		if !m.desynced && ai.IsDebugEnabled() {
			slog.Debug("replication gap", "agent", m.agent, "expected", m.seq+1, "got", ev.Seq)
		}
		m.desynced = true
	}

	values := make(map[model.Field]int32, len(ev.Changes))
	for _, c := range ev.Changes {
		values[c.Field] = c.Value
	}
	m.state.Load(values)
	m.state.TakeDirty()

	m.seq = ev.Seq
	m.tick = ev.Tick
	return nil
}

// Agent returns the mirrored agent.
func (m *Mirror) Agent() uuid.UUID {
	return m.agent
}

// Value returns the mirrored value of f.
func (m *Mirror) Value(f model.Field) int32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Value(f)
}

// Values returns every mirrored field by name.
func (m *Mirror) Values() map[string]int32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int32, len(model.Fields()))
	for _, f := range model.Fields() {
		out[f.String()] = m.state.Value(f)
	}
	return out
}

// Seq returns the last applied sequence number.
func (m *Mirror) Seq() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seq
}

// Tick returns the server tick of the last applied event.
func (m *Mirror) Tick() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tick
}

// Synced reports whether a resync was received and no gap happened since.
func (m *Mirror) Synced() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.synced && !m.desynced
}

// Flying, Sitting and the phases are the reads observers use most.

func (m *Mirror) Flying() bool   { return m.Value(model.FieldFlying) != 0 }
func (m *Mirror) Sitting() bool  { return m.Value(model.FieldSitting) != 0 }
func (m *Mirror) Hovering() bool { return m.Value(model.FieldHovering) != 0 }

func (m *Mirror) AttackPhase() model.AttackPhase {
	return model.AttackPhase(m.Value(model.FieldAttackPhase))
}

func (m *Mirror) SleepPhase() model.SleepPhase {
	return model.SleepPhase(m.Value(model.FieldSleepPhase))
}

func (m *Mirror) FlightMode() model.FlightMode {
	return model.FlightMode(m.Value(model.FieldFlightMode))
}
