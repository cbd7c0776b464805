package dodge_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/game/dodge"
	"github.com/udisondev/beastmind/internal/model"
	"github.com/udisondev/beastmind/internal/testutil"
	"github.com/udisondev/beastmind/internal/world"
)

type rig struct {
	host  *testutil.Host
	r     *dodge.Reactor
	sched *ai.Scheduler
}

func newRig(t *testing.T, w *world.World, cfg dodge.Config) *rig {
	t.Helper()
	h := testutil.NewHost(t, w, model.Vec3{})
	r := dodge.NewReactor(h, cfg)
	s := ai.NewScheduler("test", 1)
	s.Add(3, r)
	return &rig{host: h, r: r, sched: s}
}

func (r *rig) tick() {
	r.sched.Tick()
	r.host.Step()
}

// shoot spawns a gravity-free projectile at from flying with vel.
func shoot(t *testing.T, w *world.World, from, vel model.Vec3) *model.WorldObject {
	t.Helper()
	p := testutil.Spawn(t, w, model.KindProjectile, from)
	p.SetNoGravity(true)
	p.SetVelocity(vel)
	return p
}

func TestDodgeTriggersOnAimedProjectile(t *testing.T) {
	g := newRig(t, nil, dodge.DefaultConfig())
	shoot(t, g.host.Env, model.Vec3{12, 0.5, 0}, model.Vec3{-0.3, 0, 0})

	g.tick()
	assert.True(t, g.sched.IsRunning(g.r))
	assert.True(t, g.host.Motion().Bursting())
	assert.Contains(t, g.host.Triggers(), "dodge")
}

func TestDodgeTriggersWithinOneDecisionInterval(t *testing.T) {
	cfg := dodge.DefaultConfig()
	g := newRig(t, nil, cfg)

	// back off to the longest interval
	for range 60 {
		g.tick()
	}
	require.False(t, g.sched.IsRunning(g.r))

	shoot(t, g.host.Env, model.Vec3{0, 0.5, 14}, model.Vec3{0, 0, -0.2})
	longest := cfg.Backoff[len(cfg.Backoff)-1]
	triggered := false
	for range longest {
		g.tick()
		if g.sched.IsRunning(g.r) {
			triggered = true
			break
		}
	}
	assert.True(t, triggered)
}

func TestNoQualifyingThreats(t *testing.T) {
	g := newRig(t, nil, dodge.DefaultConfig())
	w := g.host.Env

	shoot(t, w, model.Vec3{5, 0.5, 0}, model.Vec3{0.3, 0, 0})    // moving away
	shoot(t, w, model.Vec3{0, 0.5, 5}, model.Vec3{0.3, 0, 0})    // crossing
	shoot(t, w, model.Vec3{-5, 0.5, 0}, model.Vec3{0.01, 0, 0})  // too slow
	shoot(t, w, model.Vec3{40, 0.5, 0}, model.Vec3{0, 0, 0.3})   // out of range
	testutil.Spawn(t, w, model.KindPlayer, model.Vec3{3, 0, 0})

	for range 500 {
		g.tick()
		require.False(t, g.sched.IsRunning(g.r))
	}
	assert.NotContains(t, g.host.Triggers(), "dodge")
}

func TestScanBackoff(t *testing.T) {
	g := newRig(t, nil, dodge.DefaultConfig())

	var scanTicks []int
	last := 0
	for tick := 1; tick <= 60; tick++ {
		g.tick()
		if n := g.r.Scans(); n != last {
			scanTicks = append(scanTicks, tick)
			last = n
		}
	}
	assert.Equal(t, []int{1, 4, 9, 16, 25, 36, 47, 58}, scanTicks)
}

func TestBackoffResetsOnSighting(t *testing.T) {
	cfg := dodge.DefaultConfig()
	cfg.CooldownTicks = 0
	g := newRig(t, nil, cfg)
	for range 30 {
		g.tick()
	}

	p := shoot(t, g.host.Env, model.Vec3{10, 0.5, 0}, model.Vec3{-0.3, 0, 0})
	for range 12 {
		g.tick()
		if g.sched.IsRunning(g.r) {
			break
		}
	}
	require.True(t, g.sched.IsRunning(g.r))
	p.Kill()

	// burst runs out, then scans resume on the shortest interval
	for g.sched.IsRunning(g.r) {
		g.tick()
	}
	before := g.r.Scans()
	for range cfg.Backoff[0] {
		g.tick()
	}
	assert.Equal(t, before+1, g.r.Scans())
}

func TestBurstAndCooldown(t *testing.T) {
	cfg := dodge.DefaultConfig()
	g := newRig(t, nil, cfg)
	shoot(t, g.host.Env, model.Vec3{15, 0.5, 0}, model.Vec3{-0.3, 0, 0})

	g.tick()
	require.True(t, g.sched.IsRunning(g.r))

	burst := 1
	for g.sched.IsRunning(g.r) && burst < 50 {
		g.tick()
		if g.sched.IsRunning(g.r) {
			burst++
		}
	}
	assert.Equal(t, cfg.BurstTicks, burst)
	assert.Positive(t, g.host.Timers().DodgeCooldown)

	// projectile still incoming, but the cooldown holds
	for range cfg.CooldownTicks - 2 {
		g.tick()
		require.False(t, g.sched.IsRunning(g.r))
	}
}

func TestDodgeMovesSideways(t *testing.T) {
	g := newRig(t, nil, dodge.DefaultConfig())
	shoot(t, g.host.Env, model.Vec3{12, 0.5, 1}, model.Vec3{-0.3, 0, 0})

	g.tick()
	pos := g.host.Object.Position()
	assert.Greater(t, math.Abs(pos.Z()), math.Abs(pos.X()), "evasion is lateral to the approach")
	assert.Less(t, pos.Z(), 0.0, "away from the line of approach")
}

func TestScanPrefersLineOfSight(t *testing.T) {
	w := world.New(0)
	w.AddObstacle(world.Box{Min: model.Vec3{5, 0, -1}, Max: model.Vec3{6, 4, 1}})
	g := newRig(t, w, dodge.DefaultConfig())

	hidden := shoot(t, w, model.Vec3{10, 0.5, 0}, model.Vec3{-0.3, 0, 0})
	visible := shoot(t, w, model.Vec3{0, 0.5, 10}, model.Vec3{0.03, 0, -0.3})

	c, ok := g.r.Scan()
	require.True(t, ok)
	assert.Equal(t, visible.ID(), c.Projectile.ID())
	assert.True(t, c.LineOfSight)
	assert.Greater(t, 1.0, c.Alignment)

	visible.Kill()
	c, ok = g.r.Scan()
	require.True(t, ok)
	assert.Equal(t, hidden.ID(), c.Projectile.ID(), "hidden threats still count")
	assert.False(t, c.LineOfSight)
}

func TestScanPicksHighestAlignment(t *testing.T) {
	g := newRig(t, nil, dodge.DefaultConfig())
	w := g.host.Env
	shoot(t, w, model.Vec3{10, 0.5, 0}, model.Vec3{-0.3, 0, 0.05})
	direct := shoot(t, w, model.Vec3{-10, 0.5, 0}, model.Vec3{0.3, 0, 0})

	c, ok := g.r.Scan()
	require.True(t, ok)
	assert.Equal(t, direct.ID(), c.Projectile.ID())
	assert.InDelta(t, 1, c.Alignment, 0.01)
	assert.InDelta(t, 0.3, c.PredictedSpeed, 1e-9)
}

func TestEvasion(t *testing.T) {
	cfg := dodge.DefaultConfig()
	cfg.MaxImpulse = 10
	w := world.New(0)

	t.Run("perpendicular component", func(t *testing.T) {
		p := shoot(t, w, model.Vec3{10, 0, 2}, model.Vec3{-1, 0, 0})
		v := dodge.Evasion(model.ThreatCandidate{Projectile: p}, model.Vec3{}, ai.NewFixedRand(0), cfg)
		assert.InDelta(t, 0, v.X(), 1e-9)
		assert.InDelta(t, -cfg.LateralImpulse, v.Z(), 1e-9)
		assert.InDelta(t, cfg.VerticalBias, v.Y(), 1e-9)
	})

	t.Run("collinear picks a random side", func(t *testing.T) {
		p := shoot(t, w, model.Vec3{10, 0, 0}, model.Vec3{-1, 0, 0})
		left := dodge.Evasion(model.ThreatCandidate{Projectile: p}, model.Vec3{}, ai.NewFixedRand(0.2), cfg)
		right := dodge.Evasion(model.ThreatCandidate{Projectile: p}, model.Vec3{}, ai.NewFixedRand(0.7), cfg)
		assert.InDelta(t, cfg.LateralImpulse, math.Abs(left.Z()), 1e-9)
		assert.InDelta(t, -left.Z(), right.Z(), 1e-9)
		assert.InDelta(t, 0, left.X(), 1e-9)
	})

	t.Run("clamped", func(t *testing.T) {
		c := dodge.DefaultConfig()
		c.LateralImpulse = 5
		c.MaxImpulse = 0.5
		p := shoot(t, w, model.Vec3{10, 0, 0}, model.Vec3{-1, 0, 0})
		v := dodge.Evasion(model.ThreatCandidate{Projectile: p}, model.Vec3{}, ai.NewFixedRand(0), c)
		assert.InDelta(t, 0.5, v.Len(), 1e-9)
	})
}

func TestRiddenDoesNotDodge(t *testing.T) {
	g := newRig(t, nil, dodge.DefaultConfig())
	g.host.SetRidden(true)
	shoot(t, g.host.Env, model.Vec3{12, 0.5, 0}, model.Vec3{-0.3, 0, 0})
	g.tick()
	assert.False(t, g.sched.IsRunning(g.r))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, dodge.DefaultConfig().Validate())
	bad := dodge.DefaultConfig()
	bad.Backoff = nil
	assert.Error(t, bad.Validate())
}
