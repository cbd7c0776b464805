package flight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/game/flight"
	"github.com/udisondev/beastmind/internal/model"
	"github.com/udisondev/beastmind/internal/testutil"
	"github.com/udisondev/beastmind/internal/world"
)

type flier struct {
	host  *testutil.Host
	dec   *flight.Decision
	sched *ai.Scheduler
}

func newFlier(t *testing.T, w *world.World, cfg flight.Config) *flier {
	t.Helper()
	h := testutil.NewHost(t, w, model.Vec3{})
	h.SetCanFly(true)
	d := flight.NewDecision(h, cfg)
	s := ai.NewScheduler("test", 1)
	s.Add(4, d)
	return &flier{host: h, dec: d, sched: s}
}

func (f *flier) tick() {
	f.sched.Tick()
	f.host.Step()
}

func (f *flier) takeOff(t *testing.T) {
	t.Helper()
	f.dec.RequestTakeoff()
	for range 200 {
		f.tick()
		if f.dec.Phase() == flight.PhaseAirborne {
			return
		}
	}
	t.Fatalf("still %s after takeoff request", f.dec.Phase())
}

// quiet disables every random trigger so only explicit conditions act.
func quiet() flight.Config {
	cfg := flight.DefaultConfig()
	cfg.TakeoffChance = 0
	cfg.LandingCooldown = 0
	cfg.Clear.ContinueChance = 1
	cfg.HoverTicks = 0
	return cfg
}

func assertFlightInvariant(t *testing.T, s *model.ReplicatedState) {
	t.Helper()
	if !s.Flying() {
		assert.Equal(t, model.FlightGrounded, s.FlightMode())
	}
	n := 0
	for _, v := range []bool{s.Takeoff(), s.Landing(), s.Hovering()} {
		if v {
			n++
		}
	}
	assert.LessOrEqual(t, n, 1, "takeoff/landing/hovering are exclusive")
}

func TestTakeoffOnRequest(t *testing.T) {
	f := newFlier(t, nil, quiet())

	f.dec.RequestTakeoff()
	f.tick()

	s := f.host.State()
	assert.Equal(t, flight.PhaseTakeoff, f.dec.Phase())
	assert.True(t, s.Flying())
	assert.True(t, s.Takeoff())
	assert.Equal(t, model.FlightTakeoff, s.FlightMode())
	assert.Contains(t, f.host.Triggers(), "takeoff")

	for range 40 {
		f.tick()
		assertFlightInvariant(t, s)
	}
	assert.Equal(t, flight.PhaseAirborne, f.dec.Phase())
	assert.False(t, s.Takeoff())
	assert.Greater(t, f.host.Object.Position().Y(), 2.0)
}

func TestSitOrderLandsAfterSettle(t *testing.T) {
	cfg := quiet()
	f := newFlier(t, nil, cfg)
	f.takeOff(t)
	for range 20 {
		f.tick()
	}
	require.True(t, f.host.State().Flying())

	f.host.OrderSit(true)
	f.tick()

	s := f.host.State()
	require.Equal(t, flight.PhaseLanding, f.dec.Phase())
	assert.True(t, s.Landing())
	assert.True(t, s.Flying(), "flying persists until touchdown settles")
	assert.False(t, s.Hovering())
	assert.False(t, s.Takeoff())

	contact := 0
	for range 300 {
		if !s.Flying() {
			break
		}
		if f.host.Object.OnGround() {
			contact++
		} else {
			contact = 0
		}
		f.tick()
		assertFlightInvariant(t, s)
	}
	require.False(t, s.Flying(), "landed")
	assert.GreaterOrEqual(t, contact, cfg.SettleTicks, "ground contact lasted the settle window")
	assert.False(t, s.Landing())
	assert.Equal(t, model.FlightGrounded, s.FlightMode())
	assert.Equal(t, flight.PhaseGrounded, f.dec.Phase())
	assert.Contains(t, f.host.Triggers(), "land")
	assert.False(t, f.sched.IsRunning(f.dec))
}

func TestLandingNeedsSettleTicks(t *testing.T) {
	cfg := quiet()
	cfg.SettleTicks = 5
	f := newFlier(t, nil, cfg)
	f.takeOff(t)
	f.dec.RequestLanding()

	var firstContact, landedAt int
	for i := range 300 {
		f.tick()
		if firstContact == 0 && f.host.Object.OnGround() {
			firstContact = i
		}
		if !f.host.State().Flying() {
			landedAt = i
			break
		}
	}
	require.NotZero(t, firstContact)
	require.NotZero(t, landedAt)
	assert.GreaterOrEqual(t, landedAt-firstContact, cfg.SettleTicks)
}

func TestDangerBelowTakesOff(t *testing.T) {
	w := world.New(0)
	w.AddHazard(world.Box{Min: model.Vec3{-2, -1, -2}, Max: model.Vec3{2, 0, 2}})
	cfg := quiet()
	cfg.LandingCooldown = 1000
	f := newFlier(t, w, cfg)
	f.host.Timers().LandingCooldown = 1000

	f.tick()
	assert.Equal(t, flight.PhaseTakeoff, f.dec.Phase(), "danger ignores the landing cooldown")
}

func TestRandomTakeoffRoll(t *testing.T) {
	cfg := quiet()
	cfg.TakeoffChance = 0.01
	cfg.DecisionInterval = 10
	cfg.DecisionJitter = 0

	t.Run("roll passes", func(t *testing.T) {
		f := newFlier(t, nil, cfg)
		f.host.SetRand(ai.NewFixedRand(0.95))
		f.tick()
		assert.Equal(t, flight.PhaseTakeoff, f.dec.Phase())
	})

	t.Run("roll fails", func(t *testing.T) {
		f := newFlier(t, nil, cfg)
		f.host.SetRand(ai.NewFixedRand(0.5))
		for range 100 {
			f.tick()
		}
		assert.Equal(t, flight.PhaseGrounded, f.dec.Phase())
	})

	t.Run("rain halves the chance", func(t *testing.T) {
		f := newFlier(t, nil, cfg)
		f.host.Env.SetWeather(model.WeatherRain)
		f.host.SetRand(ai.NewFixedRand(0.93)) // needs chance > 0.07, rain gives 0.05
		for range 30 {
			f.tick()
		}
		assert.Equal(t, flight.PhaseGrounded, f.dec.Phase())
	})
}

func TestLandingCooldown(t *testing.T) {
	cfg := quiet()
	cfg.TakeoffChance = 1
	cfg.DecisionJitter = 0
	cfg.LandingCooldown = 50
	cfg.RainLandingCooldown = 10

	t.Run("blocks rolls", func(t *testing.T) {
		f := newFlier(t, nil, cfg)
		f.host.Timers().LandingCooldown = 50
		f.tick()
		assert.Equal(t, flight.PhaseGrounded, f.dec.Phase())
	})

	t.Run("shortened in rain", func(t *testing.T) {
		f := newFlier(t, nil, cfg)
		f.host.Env.SetWeather(model.WeatherRain)
		f.host.Timers().LandingCooldown = 50
		f.tick()
		assert.Equal(t, 9, f.host.Timers().LandingCooldown)
	})

	t.Run("zeroed in storms", func(t *testing.T) {
		f := newFlier(t, nil, cfg)
		f.host.Env.SetWeather(model.WeatherThunder)
		f.host.Timers().LandingCooldown = 50
		f.tick()
		assert.Equal(t, flight.PhaseTakeoff, f.dec.Phase())
	})

	t.Run("requests bypass it", func(t *testing.T) {
		f := newFlier(t, nil, cfg)
		f.host.Timers().LandingCooldown = 50
		f.dec.RequestTakeoff()
		f.tick()
		assert.Equal(t, flight.PhaseTakeoff, f.dec.Phase())
	})

	assert.Equal(t, 50, cfg.LandingCooldownFor(model.WeatherClear))
	assert.Equal(t, 10, cfg.LandingCooldownFor(model.WeatherRain))
	assert.Zero(t, cfg.LandingCooldownFor(model.WeatherThunder))
}

func TestOwnerFarTakesOff(t *testing.T) {
	f := newFlier(t, nil, quiet())
	owner := testutil.Spawn(t, f.host.Env, model.KindPlayer, model.Vec3{60, 0, 0})
	f.host.SetOwner(owner)

	f.tick()
	assert.Equal(t, flight.PhaseTakeoff, f.dec.Phase())
}

func TestTakeoffGates(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *testutil.Host)
	}{
		{"cannot fly", func(h *testutil.Host) { h.SetCanFly(false) }},
		{"ridden", func(h *testutil.Host) { h.SetRidden(true) }},
		{"ordered to sit", func(h *testutil.Host) { h.OrderSit(true) }},
		{"asleep", func(h *testutil.Host) { h.State().SetSleepPhase(model.SleepAsleep) }},
		{"attacking", func(h *testutil.Host) { h.State().SetAttack(model.AttackWindup, model.AttackBite) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFlier(t, nil, quiet())
			tt.setup(f.host)
			f.dec.RequestTakeoff()
			f.tick()
			assert.Equal(t, flight.PhaseGrounded, f.dec.Phase())
			assert.False(t, f.host.State().Flying())

			f.tick()
			assert.Equal(t, flight.PhaseGrounded, f.dec.Phase(), "request is dropped on refusal")
		})
	}
}

func TestYoungNearbyLands(t *testing.T) {
	f := newFlier(t, nil, quiet())
	f.takeOff(t)

	young := testutil.Spawn(t, f.host.Env, model.KindCreature, f.host.Object.Position().Add(model.Vec3{2, 0, 0}))
	young.SetYoung(true)
	f.tick()
	assert.Equal(t, flight.PhaseLanding, f.dec.Phase())
}

func TestYoungNearbyIgnoredOverDanger(t *testing.T) {
	w := world.New(0)
	w.AddHazard(world.Box{Min: model.Vec3{-30, -1, -30}, Max: model.Vec3{30, 0, 30}})
	cfg := quiet()
	cfg.DangerDepth = 64
	f := newFlier(t, w, cfg)
	f.takeOff(t)

	young := testutil.Spawn(t, w, model.KindCreature, f.host.Object.Position().Add(model.Vec3{2, 0, 0}))
	young.SetYoung(true)
	for range 5 {
		f.tick()
	}
	assert.Equal(t, flight.PhaseAirborne, f.dec.Phase())
}

func TestContinueRollFails(t *testing.T) {
	cfg := quiet()
	cfg.Clear.ContinueChance = 0.5
	cfg.DecisionInterval = 5
	cfg.DecisionJitter = 0
	f := newFlier(t, nil, cfg)
	f.takeOff(t)

	f.host.SetRand(ai.NewFixedRand(0.6))
	for range 10 {
		f.tick()
		if f.dec.Phase() == flight.PhaseLanding {
			break
		}
	}
	assert.Equal(t, flight.PhaseLanding, f.dec.Phase())
	assert.True(t, f.host.State().Landing())
}

func TestHoverAtWaypoint(t *testing.T) {
	cfg := quiet()
	cfg.HoverTicks = 15
	cfg.WaypointDistance = 4
	cfg.CruiseAltitude = 4
	f := newFlier(t, nil, cfg)
	f.takeOff(t)

	hovered := false
	for range 300 {
		f.tick()
		s := f.host.State()
		assertFlightInvariant(t, s)
		if s.Hovering() {
			hovered = true
			assert.Equal(t, model.FlightHover, s.FlightMode())
			break
		}
	}
	assert.True(t, hovered)
}

func TestForceGround(t *testing.T) {
	f := newFlier(t, nil, quiet())
	f.takeOff(t)

	f.dec.ForceGround()
	s := f.host.State()
	assert.Equal(t, flight.PhaseGrounded, f.dec.Phase())
	assert.False(t, s.Flying())
	assert.False(t, s.Landing())
	assert.Equal(t, model.FlightGrounded, s.FlightMode())
	assert.False(t, f.host.Object.NoGravity())
}

func TestRestore(t *testing.T) {
	t.Run("mid takeoff becomes grounded with cooldown", func(t *testing.T) {
		cfg := quiet()
		cfg.LandingCooldown = 77
		f := newFlier(t, nil, cfg)
		s := f.host.State()
		s.SetFlying(true)
		s.SetTakeoff(true)
		s.SetFlightMode(model.FlightTakeoff)

		f.dec.Restore()
		assert.Equal(t, flight.PhaseGrounded, f.dec.Phase())
		assert.False(t, s.Flying())
		assert.False(t, s.Takeoff())
		assert.Equal(t, 77, f.host.Timers().LandingCooldown)
	})

	t.Run("mid landing becomes grounded", func(t *testing.T) {
		f := newFlier(t, nil, quiet())
		s := f.host.State()
		s.SetFlying(true)
		s.SetLanding(true)

		f.dec.Restore()
		assert.False(t, s.Flying())
		assert.False(t, s.Landing())
	})

	t.Run("airborne persists", func(t *testing.T) {
		f := newFlier(t, nil, quiet())
		s := f.host.State()
		s.SetFlying(true)
		s.SetFlightMode(model.FlightPowered)

		f.dec.Restore()
		assert.Equal(t, flight.PhaseAirborne, f.dec.Phase())
		assert.True(t, s.Flying())
		assert.False(t, s.Hovering())
		assert.Zero(t, f.dec.HoverLeft())
		assert.True(t, f.host.Object.NoGravity())

		f.tick()
		assert.True(t, f.sched.IsRunning(f.dec))
	})

	t.Run("hover resumes with remaining ticks", func(t *testing.T) {
		cfg := quiet()
		cfg.HoverTicks = 30
		f := newFlier(t, nil, cfg)
		s := f.host.State()
		s.SetFlying(true)
		s.SetFlightMode(model.FlightHover)
		s.SetHovering(true)

		f.dec.Restore()
		assert.Equal(t, 30, f.dec.HoverLeft())
		f.dec.SetHoverLeft(3)
		assert.Equal(t, flight.PhaseAirborne, f.dec.Phase())
		assert.True(t, s.Hovering())
		assert.Equal(t, model.FlightHover, s.FlightMode())
		assert.Equal(t, 3, f.dec.HoverLeft())

		f.tick()
		f.tick()
		assert.True(t, s.Hovering())
		assert.Equal(t, 1, f.dec.HoverLeft())

		f.tick()
		assert.False(t, s.Hovering())
		assert.NotEqual(t, model.FlightHover, s.FlightMode())
	})

	t.Run("hover without a budget resumes plain flight", func(t *testing.T) {
		f := newFlier(t, nil, quiet())
		s := f.host.State()
		s.SetFlying(true)
		s.SetFlightMode(model.FlightHover)
		s.SetHovering(true)

		f.dec.Restore()
		f.dec.SetHoverLeft(5)
		assert.False(t, s.Hovering())
		assert.Zero(t, f.dec.HoverLeft())
		assert.NotEqual(t, model.FlightHover, s.FlightMode())
	})
}

func TestRidden(t *testing.T) {
	f := newFlier(t, nil, quiet())
	f.host.SetRidden(true)

	f.dec.RequestTakeoff()
	f.dec.TickRidden()
	assert.Equal(t, flight.PhaseTakeoff, f.dec.Phase())
	assert.False(t, f.host.Motion().Moving(), "the rider steers, not the navigator")

	for range 30 {
		f.dec.TickRidden()
	}
	assert.Equal(t, flight.PhaseAirborne, f.dec.Phase())

	// the body is still on the ground: the rider never climbed
	f.host.Object.SetContacts(true, false)
	f.dec.TickRidden()
	assert.Equal(t, flight.PhaseLanding, f.dec.Phase())
}

func TestSelectWaypoint(t *testing.T) {
	cfg := flight.DefaultConfig()

	t.Run("open sky", func(t *testing.T) {
		w := world.New(0)
		p, ok := flight.SelectWaypoint(w, ai.NewFixedRand(0.5), cfg, model.Vec3{0, 5, 0}, 0, 12)
		require.True(t, ok)
		assert.InDelta(t, 12, p.Y(), 1e-9)
		assert.InDelta(t, 18, model.Horizontal(p).Len(), 1e-9)
	})

	t.Run("ground height follows terrain", func(t *testing.T) {
		w := world.New(3)
		p, ok := flight.SelectWaypoint(w, ai.NewFixedRand(0.5), cfg, model.Vec3{0, 10, 0}, 0, 12)
		require.True(t, ok)
		assert.InDelta(t, 15, p.Y(), 1e-9)
	})

	t.Run("walled in falls back to straight up", func(t *testing.T) {
		inside := model.Vec3{0, 5, 0}
		w := world.New(0)
		w.AddObstacle(world.Box{Min: model.Vec3{-40, 0, 1}, Max: model.Vec3{40, 40, 2}})
		w.AddObstacle(world.Box{Min: model.Vec3{-40, 0, -2}, Max: model.Vec3{40, 40, -1}})
		w.AddObstacle(world.Box{Min: model.Vec3{1, 0, -40}, Max: model.Vec3{2, 40, 40}})
		w.AddObstacle(world.Box{Min: model.Vec3{-2, 0, -40}, Max: model.Vec3{-1, 40, 40}})
		p, ok := flight.SelectWaypoint(w, ai.NewFixedRand(0.1, 0.9, 0.5, 0.3), cfg, inside, 0, 12)
		assert.False(t, ok)
		assert.Equal(t, inside.Add(model.Vec3{0, 12, 0}), p)
	})
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, flight.DefaultConfig().Validate())

	bad := flight.DefaultConfig()
	bad.MinClearFraction = 0
	assert.Error(t, bad.Validate())

	bad = flight.DefaultConfig()
	bad.Rain.ContinueChance = 1.5
	assert.Error(t, bad.Validate())

	bad = flight.DefaultConfig()
	bad.WaypointInterval = 5
	assert.Error(t, bad.Validate())
}
