package combat

import (
	"maps"

	"github.com/udisondev/beastmind/internal/model"
)

// AbilityService activates abilities and tracks their cooldowns.
type AbilityService interface {
	TryActivate(kind model.AttackKind) bool
	IsOnCooldown(kind model.AttackKind) bool
	SetCooldown(kind model.AttackKind, ticks int)
}

// ActivateFunc performs the ability effect (damage, projectile spawn).
// Injected to avoid an import cycle with the world/combat resolution layer.
type ActivateFunc func(kind model.AttackKind) bool

// Abilities is the default AbilityService: a per-kind cooldown table ticked by
// the agent plus an injected activation callback.
type Abilities struct {
	cooldowns   map[model.AttackKind]int
	activations map[model.AttackKind]int
	activate    ActivateFunc
}

var _ AbilityService = (*Abilities)(nil)

// NewAbilities creates an ability table. A nil activate always succeeds.
func NewAbilities(activate ActivateFunc) *Abilities {
	return &Abilities{
		cooldowns:   make(map[model.AttackKind]int),
		activations: make(map[model.AttackKind]int),
		activate:    activate,
	}
}

// TryActivate implements AbilityService.
func (a *Abilities) TryActivate(kind model.AttackKind) bool {
	if a.IsOnCooldown(kind) {
		return false
	}
	a.activations[kind]++
	if a.activate == nil {
		return true
	}
	return a.activate(kind)
}

// IsOnCooldown implements AbilityService.
func (a *Abilities) IsOnCooldown(kind model.AttackKind) bool {
	return a.cooldowns[kind] > 0
}

// SetCooldown implements AbilityService.
func (a *Abilities) SetCooldown(kind model.AttackKind, ticks int) {
	if ticks <= 0 {
		delete(a.cooldowns, kind)
		return
	}
	a.cooldowns[kind] = ticks
}

// Cooldown returns the remaining cooldown of kind.
func (a *Abilities) Cooldown(kind model.AttackKind) int {
	return a.cooldowns[kind]
}

// Cooldowns returns a copy of every running cooldown.
func (a *Abilities) Cooldowns() map[model.AttackKind]int {
	return maps.Clone(a.cooldowns)
}

// Activations returns how many times kind was activated.
func (a *Abilities) Activations(kind model.AttackKind) int {
	return a.activations[kind]
}

// Tick decrements every cooldown.
func (a *Abilities) Tick() {
	for kind, left := range a.cooldowns {
		if left <= 1 {
			delete(a.cooldowns, kind)
			continue
		}
		a.cooldowns[kind] = left - 1
	}
}
