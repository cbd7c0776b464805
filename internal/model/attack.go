package model

// AttackKind tags one ability use. Zero value means no attack.
type AttackKind int32

const (
	AttackNone AttackKind = iota
	AttackBite
	AttackClaw
	AttackTailSwipe
	AttackSpit
	AttackBreath
)

var attackKindNames = map[AttackKind]string{
	AttackNone:      "none",
	AttackBite:      "bite",
	AttackClaw:      "claw",
	AttackTailSwipe: "tail_swipe",
	AttackSpit:      "spit",
	AttackBreath:    "breath",
}

// String returns the config/snapshot name of the kind.
func (k AttackKind) String() string {
	if name, ok := attackKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseAttackKind resolves a config name. Returns false for unknown names.
func ParseAttackKind(name string) (AttackKind, bool) {
	for k, n := range attackKindNames {
		if n == name {
			return k, true
		}
	}
	return AttackNone, false
}

// AttackKinds lists every real kind in declaration order.
func AttackKinds() []AttackKind {
	return []AttackKind{AttackBite, AttackClaw, AttackTailSwipe, AttackSpit, AttackBreath}
}

// AttackDescriptor is the static record of one ability use.
// Immutable once constructed; look up by Kind.
type AttackDescriptor struct {
	Kind          AttackKind
	Reach         float64 // ability range, collision radii are added on top
	WindupTicks   int
	ActiveTicks   int
	RecoveryTicks int
	CooldownTicks int
	TrackUntil    int // windup tick after which rotation is frozen
	Ranged        bool
}

// TotalTicks is the full Windup+Active+Recovery span.
func (d AttackDescriptor) TotalTicks() int {
	return d.WindupTicks + d.ActiveTicks + d.RecoveryTicks
}

// ThreatCandidate is a transient per-scan record of the dodge reactor.
// Never persisted.
type ThreatCandidate struct {
	Projectile     Entity
	Alignment      float64 // dot(projectile heading, direction to agent)
	PredictedSpeed float64
	LineOfSight    bool
}
