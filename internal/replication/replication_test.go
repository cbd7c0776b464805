package replication_test

import (
	"bytes"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/model"
	"github.com/udisondev/beastmind/internal/replication"
)

type collector struct {
	events []replication.ChangeEvent
}

func (c *collector) Publish(ev replication.ChangeEvent) {
	c.events = append(c.events, ev)
}

func values(s *model.ReplicatedState) map[string]int32 {
	out := make(map[string]int32)
	for _, f := range model.Fields() {
		out[f.String()] = s.Value(f)
	}
	return out
}

func TestPublisherFirstEventIsResync(t *testing.T) {
	state := model.NewReplicatedState()
	sink := &collector{}
	p := replication.NewPublisher(uuid.New(), state, sink, 0)

	ev, ok := p.Publish(1)
	require.True(t, ok)
	assert.True(t, ev.Resync)
	assert.Len(t, ev.Changes, len(model.Fields()))
	assert.Equal(t, uint64(1), ev.Seq)
	assert.Equal(t, uint64(1), ev.Tick)
	require.Len(t, sink.events, 1)
}

func TestPublisherDeltas(t *testing.T) {
	state := model.NewReplicatedState()
	p := replication.NewPublisher(uuid.New(), state, nil, 0)
	_, _ = p.Publish(1)

	_, ok := p.Publish(2)
	assert.False(t, ok, "nothing changed")

	state.SetSitting(true)
	ev, ok := p.Publish(3)
	require.True(t, ok)
	assert.False(t, ev.Resync)
	assert.Equal(t, []replication.Change{{Field: model.FieldSitting, Value: 1}}, ev.Changes)
	assert.Equal(t, uint64(2), ev.Seq, "sequence only advances on published events")

	state.SetRunning(false)
	_, ok = p.Publish(4)
	assert.False(t, ok, "writing the same value is not a change")
}

func TestPublisherResyncPulse(t *testing.T) {
	state := model.NewReplicatedState()
	sink := &collector{}
	p := replication.NewPublisher(uuid.New(), state, sink, 3)

	for tick := uint64(1); tick <= 10; tick++ {
		p.Publish(tick)
	}

	var ticks []uint64
	for _, ev := range sink.events {
		require.True(t, ev.Resync)
		ticks = append(ticks, ev.Tick)
	}
	assert.Equal(t, []uint64{1, 4, 7, 10}, ticks)

	p.ForceResync()
	ev, ok := p.Publish(11)
	require.True(t, ok)
	assert.True(t, ev.Resync)
}

func TestMirrorConverges(t *testing.T) {
	agent := uuid.New()
	state := model.NewReplicatedState()
	hub := replication.NewHub()
	p := replication.NewPublisher(agent, state, hub, 50)
	rnd := rand.New(rand.NewPCG(7, 11))

	ops := []func(){
		func() { state.SetFlying(rnd.IntN(2) == 1) },
		func() { state.SetFlightMode(model.FlightMode(rnd.IntN(5) - 1)) },
		func() { state.SetTakeoff(rnd.IntN(2) == 1) },
		func() { state.SetLanding(rnd.IntN(2) == 1) },
		func() { state.SetHovering(rnd.IntN(2) == 1) },
		func() { state.SetRunning(rnd.IntN(2) == 1) },
		func() { state.SetSitting(rnd.IntN(2) == 1) },
		func() { state.SetGroundMoveLevel(model.GroundMoveLevel(rnd.IntN(3))) },
		func() { state.SetAttack(model.AttackPhase(rnd.IntN(4)), model.AttackKind(rnd.IntN(6))) },
		func() { state.SetSleepPhase(model.SleepPhase(rnd.IntN(4))) },
		func() { state.Reset() },
	}

	for tick := uint64(1); tick <= 2000; tick++ {
		for range rnd.IntN(4) {
			ops[rnd.IntN(len(ops))]()
		}
		p.Publish(tick)

		m, ok := hub.Mirror(agent)
		require.True(t, ok)
		require.Equal(t, values(state), m.Values(), "tick %d", tick)
		require.True(t, m.Synced())
	}

	published, rejected := hub.Stats()
	assert.NotZero(t, published)
	assert.Zero(t, rejected)
}

func TestMirrorSequencing(t *testing.T) {
	agent := uuid.New()
	m := replication.NewMirror(agent)
	sitting := []replication.Change{{Field: model.FieldSitting, Value: 1}}

	assert.False(t, m.Synced())

	require.NoError(t, m.Apply(replication.ChangeEvent{Agent: agent, Seq: 1, Resync: true}))
	assert.True(t, m.Synced())

	require.NoError(t, m.Apply(replication.ChangeEvent{Agent: agent, Seq: 3, Tick: 9, Changes: sitting}))
	assert.False(t, m.Synced(), "gap")
	assert.True(t, m.Sitting(), "gap events still apply")
	assert.Equal(t, uint64(9), m.Tick())

	err := m.Apply(replication.ChangeEvent{Agent: agent, Seq: 2})
	require.ErrorIs(t, err, replication.ErrStaleEvent)
	assert.Equal(t, uint64(3), m.Seq())

	require.NoError(t, m.Apply(replication.ChangeEvent{Agent: agent, Seq: 4, Resync: true}))
	assert.True(t, m.Synced())

	err = m.Apply(replication.ChangeEvent{Agent: uuid.New(), Seq: 5})
	require.ErrorIs(t, err, replication.ErrWrongAgent)
}

func TestDebugLogsAreGated(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() {
		slog.SetDefault(prev)
		ai.EnableDebugLogging(false)
	})

	gapAndStale := func() {
		agent := uuid.New()
		hub := replication.NewHub()
		hub.Publish(replication.ChangeEvent{Agent: agent, Seq: 1, Resync: true})
		hub.Publish(replication.ChangeEvent{Agent: agent, Seq: 3})
		hub.Publish(replication.ChangeEvent{Agent: agent, Seq: 2})
	}

	ai.EnableDebugLogging(false)
	gapAndStale()
	assert.Empty(t, buf.String(), "gate off: nothing logged")

	ai.EnableDebugLogging(true)
	gapAndStale()
	assert.Contains(t, buf.String(), "replication gap")
	assert.Contains(t, buf.String(), "replication event rejected")
}

func TestMirrorFieldOrder(t *testing.T) {
	agent := uuid.New()
	m := replication.NewMirror(agent)
	require.NoError(t, m.Apply(replication.ChangeEvent{Agent: agent, Seq: 1, Resync: true, Changes: []replication.Change{
		{Field: model.FieldSitting, Value: 1},
	}}))

	// running comes before sitting in field order
	require.NoError(t, m.Apply(replication.ChangeEvent{Agent: agent, Seq: 2, Changes: []replication.Change{
		{Field: model.FieldRunning, Value: 1},
		{Field: model.FieldSitting, Value: 0},
	}}))
	assert.False(t, m.Sitting())
	assert.Equal(t, int32(1), m.Value(model.FieldRunning))

	require.NoError(t, m.Apply(replication.ChangeEvent{Agent: agent, Seq: 3, Changes: []replication.Change{
		{Field: model.FieldFlying, Value: 1},
		{Field: model.FieldFlightMode, Value: int32(model.FlightHover)},
		{Field: model.FieldAttackPhase, Value: int32(model.AttackActive)},
		{Field: model.FieldAttackKind, Value: int32(model.AttackClaw)},
	}}))
	assert.True(t, m.Flying())
	assert.Equal(t, model.FlightHover, m.FlightMode())
	assert.Equal(t, model.AttackActive, m.AttackPhase())
	assert.Equal(t, int32(model.AttackClaw), m.Value(model.FieldAttackKind))
}

func TestPresentationCache(t *testing.T) {
	agent := uuid.New()
	m := replication.NewMirror(agent)
	require.NoError(t, m.Apply(replication.ChangeEvent{Agent: agent, Seq: 1, Resync: true}))
	cache := replication.NewPresentationCache(m)

	cache.Override(model.FieldSitting, 1, 10, 5)
	assert.Equal(t, int32(1), cache.Value(model.FieldSitting, 12))
	assert.False(t, m.Sitting(), "overrides never reach the mirror")

	assert.Equal(t, int32(0), cache.Value(model.FieldSitting, 15), "expired")
	assert.Zero(t, cache.Prune(15))

	t.Run("confirmed override is dropped", func(t *testing.T) {
		cache.Override(model.FieldSleepPhase, int32(model.SleepEntering), 20, 100)
		require.NoError(t, m.Apply(replication.ChangeEvent{Agent: agent, Seq: 2, Changes: []replication.Change{
			{Field: model.FieldSleepPhase, Value: int32(model.SleepEntering)},
		}}))
		assert.Equal(t, int32(model.SleepEntering), cache.Value(model.FieldSleepPhase, 21))
		assert.Zero(t, cache.Prune(21))
	})

	t.Run("prune and clear", func(t *testing.T) {
		cache.Override(model.FieldHovering, 1, 30, 2)
		cache.Override(model.FieldRunning, 1, 30, 10)
		cache.Override(model.FieldFlying, 1, 30, 0)
		assert.Equal(t, 1, cache.Prune(32))
		cache.Clear()
		assert.Zero(t, cache.Prune(32))
	})
}

func TestHub(t *testing.T) {
	hub := replication.NewHub()
	listener := &collector{}
	hub.Subscribe(listener)

	a, b := uuid.New(), uuid.New()
	pa := replication.NewPublisher(a, model.NewReplicatedState(), hub, 0)
	pb := replication.NewPublisher(b, model.NewReplicatedState(), hub, 0)
	pa.Publish(1)
	pb.Publish(1)

	assert.Equal(t, 2, hub.Len())
	assert.Len(t, listener.events, 2)

	hub.Publish(replication.ChangeEvent{Agent: a, Seq: 1})
	_, rejected := hub.Stats()
	assert.Equal(t, uint64(1), rejected)

	hub.Remove(a)
	_, ok := hub.Mirror(a)
	assert.False(t, ok)
	assert.Equal(t, 1, hub.Len())
}

func BenchmarkPublish(b *testing.B) {
	state := model.NewReplicatedState()
	p := replication.NewPublisher(uuid.New(), state, replication.SinkFunc(func(replication.ChangeEvent) {}), 100)

	b.ReportAllocs()
	var tick uint64
	for b.Loop() {
		tick++
		state.SetSitting(tick%2 == 0)
		p.Publish(tick)
	}
}
