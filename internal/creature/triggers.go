package creature

import (
	"log/slog"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/game/rider"
	"github.com/udisondev/beastmind/internal/model"
)

// External triggers. Each one runs under the agent lock and takes effect
// within the current tick.

// OnDamaged applies a hit. The attacker may be nil (environment damage).
// Sleep is interrupted at once and the hit is remembered for HurtTicks.
func (a *Agent) OnDamaged(attacker model.Entity, amount float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dead || amount <= 0 {
		return
	}
	hp, _ := a.body.Health()
	a.body.SetHealth(hp - amount)
	a.timers.HurtRecently = a.species.HurtTicks
	if attacker != nil && attacker.ID() != a.id {
		a.lastAttacker = attacker
	}
	if a.sleep != nil {
		a.sleep.WakeNow("hurt")
	}

	if ai.IsDebugEnabled() {
		slog.Debug("damaged", "agent", a.id, "amount", amount, "hp", hp-amount)
	}
	if !a.body.Alive() {
		a.die("killed")
	}
}

// Kill ends the agent. Every machine lands in its safe state within this call.
func (a *Agent) Kill() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dead {
		return
	}
	a.body.Kill()
	a.die("killed")
}

// Mount hands control to r. See rider.Layer.Mount.
func (a *Agent) Mount(r rider.Rider) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dead {
		return false
	}
	return a.rider.Mount(r)
}

// Dismount returns control to the scheduler.
func (a *Agent) Dismount() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.rider.Dismount()
}

// OrderSit sets or clears the owner's sit order. A flying agent lands first.
func (a *Agent) OrderSit(sit bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sitOrdered = sit
	if sit && a.flight != nil {
		a.flight.RequestLanding()
	}
}

// RequestTakeoff asks the flight machine to lift off on its next evaluation.
// It reports false for species without flight.
func (a *Agent) RequestTakeoff() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.flight == nil || a.dead {
		return false
	}
	a.flight.RequestTakeoff()
	return true
}

// RequestLanding asks an airborne agent to land.
func (a *Agent) RequestLanding() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.flight == nil || a.dead {
		return false
	}
	a.flight.RequestLanding()
	return true
}

// SetOwner tames the agent. A nil owner makes it wild again.
func (a *Agent) SetOwner(owner model.Entity) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.owner = owner
	if owner == nil {
		a.sitOrdered = false
	}
}

// SetTargetEntity points the agent's combat behaviors at e. A live target
// wakes a sleeping agent within the call.
func (a *Agent) SetTargetEntity(e model.Entity) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.target = e
	if e != nil && e.Alive() && a.sleep != nil {
		a.sleep.WakeNow("target")
	}
}

// Feed puts the agent in love for the species' LoveTicks.
func (a *Agent) Feed() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dead {
		return
	}
	a.timers.InLove = a.species.LoveTicks
	a.inLove.Store(true)
}
