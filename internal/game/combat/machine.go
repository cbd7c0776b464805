package combat

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/game/locomotion"
	"github.com/udisondev/beastmind/internal/model"
)

// legalTransitions is the attack cycle. Windup→Recovery is the abort edge
// taken when the target is lost before the hit.
var legalTransitions = map[model.AttackPhase][]model.AttackPhase{
	model.AttackIdle:     {model.AttackWindup},
	model.AttackWindup:   {model.AttackActive, model.AttackRecovery},
	model.AttackActive:   {model.AttackRecovery},
	model.AttackRecovery: {model.AttackIdle},
}

func legal(from, to model.AttackPhase) bool {
	for _, p := range legalTransitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// Machine is the attack phase machine: Idle → Windup → Active → Recovery → Idle.
// It is a scheduler participant claiming MOVE|LOOK and additionally holds the
// attack navigation lock for the whole Windup+Active+Recovery span.
type Machine struct {
	host      ai.Host
	table     Table
	abilities AbilityService

	phase    model.AttackPhase
	desc     model.AttackDescriptor
	pending  model.AttackKind
	targetID uuid.UUID
}

// NewMachine creates an idle attack machine.
func NewMachine(host ai.Host, table Table, abilities AbilityService) *Machine {
	return &Machine{host: host, table: table, abilities: abilities}
}

func (m *Machine) Name() string                  { return "attack" }
func (m *Machine) Flags() ai.Flag                { return ai.FlagMove | ai.FlagLook }
func (m *Machine) RequiresUpdateEveryTick() bool { return true }

// Phase returns the current phase.
func (m *Machine) Phase() model.AttackPhase {
	return m.phase
}

// Kind returns the attack in progress, AttackNone when idle.
func (m *Machine) Kind() model.AttackKind {
	if m.phase == model.AttackIdle {
		return model.AttackNone
	}
	return m.desc.Kind
}

// Idle reports whether no attack is in progress or pending.
func (m *Machine) Idle() bool {
	return m.phase == model.AttackIdle && m.pending == model.AttackNone
}

// Request asks for an attack of kind. The machine starts it on its next
// evaluation if every gate passes. Refused while an attack is in progress.
func (m *Machine) Request(kind model.AttackKind) bool {
	if m.phase != model.AttackIdle {
		return false
	}
	if _, ok := m.table.Lookup(kind); !ok {
		return false
	}
	m.pending = kind
	return true
}

// InRange reports whether target is within reach of kind, collision radii included.
func InRange(self, target model.Entity, desc model.AttackDescriptor) bool {
	reach := desc.Reach + self.Radius() + target.Radius()
	return model.DistanceSquared(self.Position(), target.Position()) <= reach*reach
}

// CanAttack evaluates the Idle→Windup gates for kind.
func (m *Machine) CanAttack(kind model.AttackKind) bool {
	desc, ok := m.table.Lookup(kind)
	if !ok {
		return false
	}
	target, ok := ai.TargetAlive(m.host)
	if !ok {
		return false
	}
	if !reachable(m.host, target, desc) {
		return false
	}
	return !m.abilities.IsOnCooldown(kind)
}

// reachable reports whether target is within desc's reach and visible.
func reachable(host ai.Host, target model.Entity, desc model.AttackDescriptor) bool {
	self := host.Body()
	if !InRange(self, target, desc) {
		return false
	}
	return host.World().LineOfSight(ai.EyePosition(self), ai.EyePosition(target))
}

func (m *Machine) CanStart() bool {
	if m.pending == model.AttackNone {
		return false
	}
	if m.host.Ridden() || !m.CanAttack(m.pending) {
		// a request lives for one evaluation
		m.pending = model.AttackNone
		return false
	}
	return true
}

func (m *Machine) CanContinue() bool {
	return m.phase != model.AttackIdle
}

func (m *Machine) Start() {
	desc, _ := m.table.Lookup(m.pending)
	m.pending = model.AttackNone
	m.desc = desc
	m.targetID = uuid.Nil
	if target, ok := ai.TargetAlive(m.host); ok {
		m.targetID = target.ID()
	}

	motion := m.host.Motion()
	motion.Stop()
	motion.Lock(locomotion.LockAttack)

	m.host.Timers().AttackPhaseTicks = 0
	m.transition(model.AttackWindup)
	m.host.Animate("attack_windup")
}

func (m *Machine) Stop() {
	if m.phase != model.AttackIdle {
		m.abort("stopped")
	}
	m.host.Motion().Unlock(locomotion.LockAttack)
}

func (m *Machine) Tick() {
	if m.phase == model.AttackIdle {
		return
	}

	target, ok := ai.TargetAlive(m.host)
	if !ok {
		m.abort("target lost")
		return
	}
	if target.ID() != m.targetID {
		m.abort("target changed")
		return
	}
	// the hit is committed on Active entry; until then the gates hold
	if m.phase == model.AttackWindup && !reachable(m.host, target, m.desc) {
		m.abort("target fled")
		return
	}

	timers := m.host.Timers()
	timers.AttackPhaseTicks++
	ticks := timers.AttackPhaseTicks

	switch m.phase {
	case model.AttackWindup:
		if ticks <= m.desc.TrackUntil {
			m.host.Motion().LookAt(ai.EyePosition(target))
		}
		if ticks >= m.desc.WindupTicks {
			m.enter(model.AttackActive)
			// exactly one activation, on the Active entry tick
			if !m.abilities.TryActivate(m.desc.Kind) && ai.IsDebugEnabled() {
				slog.Debug("ability activation refused", "agent", m.host.ID(), "kind", m.desc.Kind)
			}
		}

	case model.AttackActive:
		if ticks >= m.desc.ActiveTicks {
			m.enter(model.AttackRecovery)
			m.abilities.SetCooldown(m.desc.Kind, m.desc.CooldownTicks)
		}

	case model.AttackRecovery:
		if ticks >= m.desc.RecoveryTicks {
			m.finish()
		}
	}
}

func (m *Machine) enter(p model.AttackPhase) {
	if m.transition(p) {
		m.host.Timers().AttackPhaseTicks = 0
	}
}

func (m *Machine) transition(to model.AttackPhase) bool {
	if !legal(m.phase, to) {
		slog.Warn("illegal attack transition",
			"agent", m.host.ID(),
			"from", m.phase,
			"to", to)
		return false
	}
	m.phase = to
	m.host.State().SetAttack(to, m.desc.Kind)
	return true
}

// abort takes the Recovery→Idle fast path from any phase.
func (m *Machine) abort(reason string) {
	if m.phase == model.AttackActive {
		m.abilities.SetCooldown(m.desc.Kind, m.desc.CooldownTicks)
	}
	if m.phase != model.AttackRecovery {
		m.transition(model.AttackRecovery)
	}
	m.finish()

	if ai.IsDebugEnabled() {
		slog.Debug("attack aborted", "agent", m.host.ID(), "kind", m.desc.Kind, "reason", reason)
	}
}

func (m *Machine) finish() {
	m.targetID = uuid.Nil
	m.transition(model.AttackIdle)
	m.host.Timers().AttackPhaseTicks = 0
	m.host.Motion().Unlock(locomotion.LockAttack)
}

// Cancel forces the machine to Idle within the current tick (death, mount, damage).
func (m *Machine) Cancel() {
	m.pending = model.AttackNone
	if m.phase != model.AttackIdle {
		m.abort("canceled")
	}
	m.host.Motion().Unlock(locomotion.LockAttack)
}

// Restore normalizes a loaded phase: attacks never resume after a reload.
func (m *Machine) Restore() {
	m.phase = model.AttackIdle
	m.pending = model.AttackNone
	m.desc = model.AttackDescriptor{}
	m.targetID = uuid.Nil
	m.host.Timers().AttackPhaseTicks = 0
	m.host.State().SetAttack(model.AttackIdle, model.AttackNone)
	m.host.Motion().Unlock(locomotion.LockAttack)
}
