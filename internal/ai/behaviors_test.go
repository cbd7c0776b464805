package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/model"
	"github.com/udisondev/beastmind/internal/testutil"
)

func run(h *testutil.Host, s *ai.Scheduler, ticks int) {
	for range ticks {
		s.Tick()
		h.Step()
	}
}

func TestWander(t *testing.T) {
	h := testutil.NewHost(t, nil, model.Vec3{})
	cfg := ai.DefaultBehaviorConfig().Wander
	w := ai.NewWander(h, cfg)

	s := ai.NewScheduler("test", 1)
	s.Add(12, w)

	s.Tick()
	require.True(t, s.IsRunning(w), "roll 0 passes the chance")

	target, ok := h.Motion().Target()
	require.True(t, ok)
	assert.InDelta(t, cfg.Radius*0.3, target.X(), 1e-9)

	run(h, s, 200)
	assert.Greater(t, h.Object.Position().X(), 1.0, "creature walked toward the point")
}

func TestWander_BlockedBySitOrder(t *testing.T) {
	h := testutil.NewHost(t, nil, model.Vec3{})
	h.OrderSit(true)
	w := ai.NewWander(h, ai.DefaultBehaviorConfig().Wander)

	assert.False(t, w.CanStart())
}

func TestFollowOwner(t *testing.T) {
	h := testutil.NewHost(t, nil, model.Vec3{})
	owner := testutil.Spawn(t, h.Env, model.KindPlayer, model.Vec3{20, 0, 0})
	h.SetOwner(owner)

	f := ai.NewFollowOwner(h, ai.DefaultBehaviorConfig().Follow)
	s := ai.NewScheduler("test", 1)
	s.Add(10, f)

	s.Tick()
	require.True(t, s.IsRunning(f))

	run(h, s, 400)
	assert.False(t, s.IsRunning(f), "stops once within stop distance")
	assert.Less(t, model.DistanceSquared(h.Object.Position(), owner.Position()), 10.0*10.0)
}

func TestFollowOwner_TeleportsWhenFar(t *testing.T) {
	h := testutil.NewHost(t, nil, model.Vec3{})
	owner := testutil.Spawn(t, h.Env, model.KindPlayer, model.Vec3{100, 0, 0})
	h.SetOwner(owner)

	f := ai.NewFollowOwner(h, ai.DefaultBehaviorConfig().Follow)
	require.True(t, f.CanStart())
	f.Start()
	f.Tick()

	assert.InDelta(t, 102, h.Object.Position().X(), 1e-9)
}

func TestFollowOwner_DeadOwner(t *testing.T) {
	h := testutil.NewHost(t, nil, model.Vec3{})
	owner := testutil.Spawn(t, h.Env, model.KindPlayer, model.Vec3{20, 0, 0})
	owner.Kill()
	h.SetOwner(owner)

	assert.False(t, ai.NewFollowOwner(h, ai.DefaultBehaviorConfig().Follow).CanStart())
}

func TestPanic(t *testing.T) {
	h := testutil.NewHost(t, nil, model.Vec3{})
	p := ai.NewPanic(h, ai.PanicConfig{Enabled: true, Radius: 8})
	assert.False(t, p.CanStart(), "not hurt")

	attacker := testutil.Spawn(t, h.Env, model.KindPlayer, model.Vec3{2, 0, 0})
	h.SetAttacker(attacker, 40)
	require.True(t, p.CanStart())
	assert.True(t, h.Motion().Moving())

	h.SetTarget(attacker)
	assert.False(t, p.CanStart(), "a creature with a target fights instead")

	h.ClearTarget()
	s := ai.NewScheduler("test", 1)
	s.Add(6, p)
	run(h, s, 41)
	assert.False(t, s.IsRunning(p), "panic ends with the hurt timer")
}

func TestFlee_RunsAway(t *testing.T) {
	h := testutil.NewHost(t, nil, model.Vec3{})
	testutil.Spawn(t, h.Env, model.KindPlayer, model.Vec3{4, 0, 0})

	f := ai.NewFlee(h, ai.FleeConfig{Enabled: true, DetectRadius: 8, SafeRadius: 16})
	s := ai.NewScheduler("test", 1)
	s.Add(7, f)

	s.Tick()
	require.True(t, s.IsRunning(f))
	target, ok := h.Motion().Target()
	require.True(t, ok)
	assert.Less(t, target.X(), 0.0, "flees away from the player")
	assert.False(t, f.PlayingDead())
}

func TestFlee_PlayDead(t *testing.T) {
	h := testutil.NewHost(t, nil, model.Vec3{})
	testutil.Spawn(t, h.Env, model.KindPlayer, model.Vec3{4, 0, 0})

	f := ai.NewFlee(h, ai.FleeConfig{Enabled: true, DetectRadius: 8, SafeRadius: 16, PlayDeadChance: 1, PlayDeadTicks: 5, Cooldown: 20})
	s := ai.NewScheduler("test", 1)
	s.Add(7, f)

	s.Tick()
	require.True(t, f.PlayingDead())
	assert.Equal(t, []string{"play_dead"}, h.Triggers())
	assert.False(t, h.Motion().Moving())

	run(h, s, 6)
	assert.False(t, s.IsRunning(f))
}

func TestFlee_TamedNeverFlees(t *testing.T) {
	h := testutil.NewHost(t, nil, model.Vec3{})
	player := testutil.Spawn(t, h.Env, model.KindPlayer, model.Vec3{4, 0, 0})
	h.SetOwner(player)

	assert.False(t, ai.NewFlee(h, ai.FleeConfig{Enabled: true, DetectRadius: 8, SafeRadius: 16}).CanStart())
}

func TestSit(t *testing.T) {
	h := testutil.NewHost(t, nil, model.Vec3{})
	sit := ai.NewSit(h)
	wander := ai.NewWander(h, ai.DefaultBehaviorConfig().Wander)

	s := ai.NewScheduler("test", 1)
	s.Add(5, sit)
	s.Add(12, wander)

	h.OrderSit(true)
	s.Tick()
	assert.True(t, s.IsRunning(sit))
	assert.True(t, h.State().Sitting())
	assert.False(t, h.State().Running())

	h.OrderSit(false)
	s.Tick()
	assert.False(t, s.IsRunning(sit))
	assert.False(t, h.State().Sitting())
}

func TestRetaliate(t *testing.T) {
	h := testutil.NewHost(t, nil, model.Vec3{})
	attacker := testutil.Spawn(t, h.Env, model.KindPlayer, model.Vec3{3, 0, 0})
	r := ai.NewRetaliate(h, ai.DefaultBehaviorConfig().Retaliate)

	s := ai.NewScheduler("test", 1)
	s.Add(13, r)

	h.SetAttacker(attacker, 40)
	s.Tick()
	target, ok := h.Target()
	require.True(t, ok)
	assert.Equal(t, attacker.ID(), target.ID())

	holder, ok := s.Holder(ai.FlagTarget)
	require.True(t, ok)
	assert.Equal(t, r, holder)

	attacker.Kill()
	s.Tick()
	_, ok = h.Target()
	assert.False(t, ok, "dead target is dropped")
}

func TestRetaliate_IgnoresOwner(t *testing.T) {
	h := testutil.NewHost(t, nil, model.Vec3{})
	owner := testutil.Spawn(t, h.Env, model.KindPlayer, model.Vec3{3, 0, 0})
	h.SetOwner(owner)
	h.SetAttacker(owner, 40)

	assert.False(t, ai.NewRetaliate(h, ai.DefaultBehaviorConfig().Retaliate).CanStart())
}

type fakeMate struct {
	*model.WorldObject
	species string
	inLove  bool
}

func (m *fakeMate) Species() string { return m.species }
func (m *fakeMate) InLove() bool    { return m.inLove }

func TestBreed(t *testing.T) {
	h := testutil.NewHost(t, nil, model.Vec3{})
	h.Timers().InLove = 600
	mate := &fakeMate{
		WorldObject: testutil.Spawn(t, h.Env, model.KindCreature, model.Vec3{4, 0, 0}),
		species:     "test",
		inLove:      true,
	}

	var bred []ai.Mate
	cfg := ai.DefaultBehaviorConfig().Breed
	cfg.BreedTicks = 5
	b := ai.NewBreed(h, cfg,
		func(ai.Host, float64) (ai.Mate, bool) { return mate, true },
		func(_ ai.Host, m ai.Mate) { bred = append(bred, m) })

	s := ai.NewScheduler("test", 1)
	s.Add(11, b)

	run(h, s, 200)

	require.Len(t, bred, 1)
	assert.Equal(t, mate.ID(), bred[0].ID())
	assert.Zero(t, h.Timers().InLove)
	assert.False(t, s.IsRunning(b))
}

func TestBreed_RejectsOtherSpecies(t *testing.T) {
	h := testutil.NewHost(t, nil, model.Vec3{})
	h.Timers().InLove = 600
	mate := &fakeMate{
		WorldObject: testutil.Spawn(t, h.Env, model.KindCreature, model.Vec3{4, 0, 0}),
		species:     "other",
		inLove:      true,
	}
	b := ai.NewBreed(h, ai.DefaultBehaviorConfig().Breed,
		func(ai.Host, float64) (ai.Mate, bool) { return mate, true }, nil)

	assert.False(t, b.CanStart())
}
