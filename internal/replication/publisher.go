package replication

import (
	"github.com/google/uuid"

	"github.com/udisondev/beastmind/internal/model"
)

// Change carries the absolute value of one replicated field.
type Change struct {
	Field model.Field
	Value int32
}

// ChangeEvent is one replication message for a single agent.
// Resync events carry every field.
type ChangeEvent struct {
	Agent   uuid.UUID
	Tick    uint64
	Seq     uint64
	Changes []Change
	Resync  bool
}

// Sink delivers change events to observers. Implementations must not retain
// the Changes slice past the call unless they copy it.
type Sink interface {
	Publish(ev ChangeEvent)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev ChangeEvent)

// Publish implements Sink.
func (f SinkFunc) Publish(ev ChangeEvent) { f(ev) }

// Publisher turns an agent's dirty fields into change events.
// Not safe for concurrent use; it runs on the agent's tick.
type Publisher struct {
	agent          uuid.UUID
	state          *model.ReplicatedState
	sink           Sink
	resyncInterval int

	seq         uint64
	sinceResync int
	forceResync bool
}

// NewPublisher creates a publisher for state. resyncInterval <= 0 disables
// the periodic resync pulse; the first event is always a resync.
func NewPublisher(agent uuid.UUID, state *model.ReplicatedState, sink Sink, resyncInterval int) *Publisher {
	return &Publisher{
		agent:          agent,
		state:          state,
		sink:           sink,
		resyncInterval: resyncInterval,
		forceResync:    true,
	}
}

// ForceResync makes the next Publish send the full state.
func (p *Publisher) ForceResync() {
	p.forceResync = true
}

// Seq returns the sequence number of the last published event.
func (p *Publisher) Seq() uint64 {
	return p.seq
}

// Publish emits an event for tick if anything changed or a resync is due.
// Returns false when nothing was published.
func (p *Publisher) Publish(tick uint64) (ChangeEvent, bool) {
	dirty := p.state.TakeDirty()
	p.sinceResync++

	resync := p.forceResync || (p.resyncInterval > 0 && p.sinceResync >= p.resyncInterval)
	fields := dirty
	if resync {
		fields = model.Fields()
		p.sinceResync = 0
		p.forceResync = false
	}
	if len(fields) == 0 {
		return ChangeEvent{}, false
	}

	changes := make([]Change, len(fields))
	for i, f := range fields {
		changes[i] = Change{Field: f, Value: p.state.Value(f)}
	}

	p.seq++
	ev := ChangeEvent{
		Agent:   p.agent,
		Tick:    tick,
		Seq:     p.seq,
		Changes: changes,
		Resync:  resync,
	}
	if p.sink != nil {
		p.sink.Publish(ev)
	}
	return ev, true
}
