package creature

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/udisondev/beastmind/internal/model"
	"github.com/udisondev/beastmind/internal/snapshot"
)

// Snapshot keys besides replicated fields and timers.
const (
	keyCooldownPrefix = "cooldown."
	keyFlightStuck    = "flight.stuck"
	keyFlightHover    = "flight.hover"
	keySitOrdered     = "sit_ordered"
	keyHealth         = "health_milli"
)

// Snapshot captures the agent's persistent state: every replicated field,
// timer and cooldown.
func (a *Agent) Snapshot() snapshot.Record {
	a.mu.Lock()
	defer a.mu.Unlock()

	kv := make(snapshot.KV)
	for _, f := range model.Fields() {
		kv[f.String()] = int64(a.state.Value(f))
	}
	for key, ptr := range a.timers.Fields() {
		kv[key] = int64(*ptr)
	}
	for kind, left := range a.abilities.Cooldowns() {
		kv[keyCooldownPrefix+kind.String()] = int64(left)
	}
	if a.flight != nil {
		kv[keyFlightStuck] = int64(a.flight.Stuck())
		kv[keyFlightHover] = int64(a.flight.HoverLeft())
	}
	kv.SetBool(keySitOrdered, a.sitOrdered)
	hp, _ := a.body.Health()
	kv[keyHealth] = int64(hp * 1000)

	return snapshot.Record{
		Version:  snapshot.Version,
		Agent:    a.id,
		Species:  a.species.Name,
		Tick:     a.tick,
		Position: [3]float64(a.body.Position()),
		Yaw:      a.body.Yaw(),
		Values:   kv,
	}
}

// Restore loads rec into the agent. Transitional phases never resume:
// attacks return to Idle, sleep transitions wake up, takeoff and landing
// become grounded with a landing cooldown. The next published event is a
// full resync.
func (a *Agent) Restore(rec snapshot.Record) error {
	if rec.Version != snapshot.Version {
		return fmt.Errorf("restoring agent %s: %w: %d", a.id, snapshot.ErrVersion, rec.Version)
	}
	if rec.Species != a.species.Name {
		return fmt.Errorf("restoring agent %s: species %q does not match %q", a.id, rec.Species, a.species.Name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.rider.Dismount()
	a.sched.StopAll()
	a.motion.Stop()
	a.motion.CancelBias()

	values := make(map[model.Field]int32, len(model.Fields()))
	for _, f := range model.Fields() {
		if v, ok := rec.Values.Get(f.String()); ok {
			values[f] = int32(v)
		}
	}
	a.state.Reset()
	a.state.Load(values)

	for key, ptr := range a.timers.Fields() {
		*ptr = rec.Values.Int(key, 0)
	}
	for _, kind := range model.AttackKinds() {
		a.abilities.SetCooldown(kind, 0)
	}
	for _, key := range rec.Values.Keys() {
		name, ok := strings.CutPrefix(key, keyCooldownPrefix)
		if !ok {
			continue
		}
		kind, ok := model.ParseAttackKind(name)
		if !ok {
			slog.Warn("unknown cooldown in snapshot", "agent", a.id, "key", key)
			continue
		}
		a.abilities.SetCooldown(kind, rec.Values.Int(key, 0))
	}
	a.sitOrdered = rec.Values.Bool(keySitOrdered)
	if v, ok := rec.Values.Get(keyHealth); ok {
		a.body.SetHealth(float64(v) / 1000)
	}

	a.attack.Restore()
	if a.sleep != nil {
		a.sleep.Restore()
	} else {
		a.state.SetSleepPhase(model.SleepAwake)
	}
	if a.flight != nil {
		a.flight.Restore()
		a.flight.SetStuck(rec.Values.Int(keyFlightStuck, 0))
		a.flight.SetHoverLeft(rec.Values.Int(keyFlightHover, 0))
	} else {
		a.state.SetFlying(false)
		a.state.SetLanding(false)
		a.motion.SwitchToGround()
	}

	a.body.Teleport(model.Vec3(rec.Position))
	a.body.SetYaw(rec.Yaw)
	a.motion.Sync()
	a.tick = rec.Tick
	a.dead = !a.body.Alive()
	a.inLove.Store(a.timers.InLove > 0)
	a.publisher.ForceResync()

	slog.Info("agent restored", "agent", a.id, "tick", rec.Tick, "flying", a.state.Flying(),
		"sleep", a.state.SleepPhase())
	return nil
}
