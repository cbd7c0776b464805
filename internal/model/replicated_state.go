package model

// Field identifies one replicated scalar.
type Field uint8

const (
	FieldFlying Field = iota
	FieldTakeoff
	FieldLanding
	FieldHovering
	FieldRunning
	FieldSitting
	FieldGroundMoveLevel
	FieldFlightMode
	FieldAttackPhase
	FieldAttackKind
	FieldSleepPhase

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldFlying:          "flying",
	FieldTakeoff:         "takeoff",
	FieldLanding:         "landing",
	FieldHovering:        "hovering",
	FieldRunning:         "running",
	FieldSitting:         "sitting",
	FieldGroundMoveLevel: "ground_move_level",
	FieldFlightMode:      "flight_mode",
	FieldAttackPhase:     "attack_phase",
	FieldAttackKind:      "attack_kind",
	FieldSleepPhase:      "sleep_phase",
}

// String returns the wire/snapshot name of the field.
func (f Field) String() string {
	if f < fieldCount {
		return fieldNames[f]
	}
	return "unknown"
}

// Fields lists every replicated field in application order.
// Restoring in this order keeps the setters' invariants intact.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := range fieldCount {
		out = append(out, f)
	}
	return out
}

// Component names the single writer of a replicated field.
type Component uint8

const (
	ComponentFlight Component = iota
	ComponentLocomotion
	ComponentPosture
	ComponentAttack
	ComponentSleep
)

// String returns human-readable component name
func (c Component) String() string {
	switch c {
	case ComponentFlight:
		return "flight"
	case ComponentLocomotion:
		return "locomotion"
	case ComponentPosture:
		return "posture"
	case ComponentAttack:
		return "attack"
	case ComponentSleep:
		return "sleep"
	default:
		return "unknown"
	}
}

// FieldOwner returns the component allowed to write f.
func FieldOwner(f Field) Component {
	switch f {
	case FieldFlying, FieldTakeoff, FieldLanding, FieldHovering, FieldFlightMode:
		return ComponentFlight
	case FieldRunning, FieldGroundMoveLevel:
		return ComponentLocomotion
	case FieldSitting:
		return ComponentPosture
	case FieldAttackPhase, FieldAttackKind:
		return ComponentAttack
	default:
		return ComponentSleep
	}
}

// ReplicatedState is the server-side agent state visible to observers.
// Not safe for concurrent use: one agent is ticked by one goroutine.
// Setters enforce the cross-field invariants and record dirty bits for replication.
type ReplicatedState struct {
	flying   bool
	takeoff  bool
	landing  bool
	hovering bool
	running  bool
	sitting  bool

	groundMoveLevel GroundMoveLevel
	flightMode      FlightMode
	attackPhase     AttackPhase
	attackKind      AttackKind
	sleepPhase      SleepPhase

	dirty uint32
}

// NewReplicatedState returns the spawn defaults.
func NewReplicatedState() *ReplicatedState {
	return &ReplicatedState{flightMode: FlightGrounded}
}

func (s *ReplicatedState) mark(f Field) {
	s.dirty |= 1 << f
}

func (s *ReplicatedState) setBool(dst *bool, v bool, f Field) {
	if *dst == v {
		return
	}
	*dst = v
	s.mark(f)
}

// Flying reports whether the agent navigates in air mode.
func (s *ReplicatedState) Flying() bool { return s.flying }

// Takeoff reports the takeoff transition flag.
func (s *ReplicatedState) Takeoff() bool { return s.takeoff }

// Landing reports the landing transition flag.
func (s *ReplicatedState) Landing() bool { return s.landing }

// Hovering reports the hover sub-state flag.
func (s *ReplicatedState) Hovering() bool { return s.hovering }

// Running reports the running flag.
func (s *ReplicatedState) Running() bool { return s.running }

// Sitting reports the sitting flag.
func (s *ReplicatedState) Sitting() bool { return s.sitting }

// GroundMoveLevel returns idle/walk/run.
func (s *ReplicatedState) GroundMoveLevel() GroundMoveLevel { return s.groundMoveLevel }

// FlightMode returns the flight sub-state.
func (s *ReplicatedState) FlightMode() FlightMode { return s.flightMode }

// AttackPhase returns the attack phase.
func (s *ReplicatedState) AttackPhase() AttackPhase { return s.attackPhase }

// AttackKind returns the attack kind of the current phase (AttackNone when idle).
func (s *ReplicatedState) AttackKind() AttackKind { return s.attackKind }

// SleepPhase returns the sleep phase.
func (s *ReplicatedState) SleepPhase() SleepPhase { return s.sleepPhase }

// SetFlying switches air mode. Leaving air mode forces flightMode to grounded
// and clears takeoff/hovering.
func (s *ReplicatedState) SetFlying(v bool) {
	s.setBool(&s.flying, v, FieldFlying)
	if !v {
		s.setBool(&s.takeoff, false, FieldTakeoff)
		s.setBool(&s.hovering, false, FieldHovering)
		s.setFlightMode(FlightGrounded)
	}
}

// SetFlightMode sets the flight sub-state. Non-grounded modes are rejected
// while not flying.
func (s *ReplicatedState) SetFlightMode(m FlightMode) bool {
	if !s.flying && m != FlightGrounded {
		return false
	}
	s.setFlightMode(m)
	return true
}

func (s *ReplicatedState) setFlightMode(m FlightMode) {
	if s.flightMode == m {
		return
	}
	s.flightMode = m
	s.mark(FieldFlightMode)
}

// SetTakeoff sets takeoff; raising it clears landing and hovering.
func (s *ReplicatedState) SetTakeoff(v bool) {
	if v {
		s.setBool(&s.landing, false, FieldLanding)
		s.setBool(&s.hovering, false, FieldHovering)
	}
	s.setBool(&s.takeoff, v, FieldTakeoff)
}

// SetLanding sets landing; raising it clears takeoff and hovering immediately.
func (s *ReplicatedState) SetLanding(v bool) {
	if v {
		s.setBool(&s.takeoff, false, FieldTakeoff)
		s.setBool(&s.hovering, false, FieldHovering)
	}
	s.setBool(&s.landing, v, FieldLanding)
}

// SetHovering sets hovering; raising it clears takeoff and landing.
func (s *ReplicatedState) SetHovering(v bool) {
	if v {
		s.setBool(&s.takeoff, false, FieldTakeoff)
		s.setBool(&s.landing, false, FieldLanding)
	}
	s.setBool(&s.hovering, v, FieldHovering)
}

// SetRunning sets running. Rejected while sitting.
func (s *ReplicatedState) SetRunning(v bool) bool {
	if v && s.sitting {
		return false
	}
	s.setBool(&s.running, v, FieldRunning)
	return true
}

// SetSitting sets sitting; sitting down stops running.
func (s *ReplicatedState) SetSitting(v bool) {
	if v {
		s.setBool(&s.running, false, FieldRunning)
	}
	s.setBool(&s.sitting, v, FieldSitting)
}

// SetGroundMoveLevel sets idle/walk/run.
func (s *ReplicatedState) SetGroundMoveLevel(l GroundMoveLevel) {
	if s.groundMoveLevel == l {
		return
	}
	s.groundMoveLevel = l
	s.mark(FieldGroundMoveLevel)
}

// SetAttack sets attack phase and kind together. Idle always carries AttackNone.
func (s *ReplicatedState) SetAttack(p AttackPhase, k AttackKind) {
	if p == AttackIdle {
		k = AttackNone
	}
	if s.attackPhase != p {
		s.attackPhase = p
		s.mark(FieldAttackPhase)
	}
	if s.attackKind != k {
		s.attackKind = k
		s.mark(FieldAttackKind)
	}
}

// SetSleepPhase sets the sleep phase.
func (s *ReplicatedState) SetSleepPhase(p SleepPhase) {
	if s.sleepPhase == p {
		return
	}
	s.sleepPhase = p
	s.mark(FieldSleepPhase)
}

// Reset restores spawn defaults (mount/dismount). Changed fields become dirty.
func (s *ReplicatedState) Reset() {
	s.SetFlying(false)
	s.SetTakeoff(false)
	s.SetLanding(false)
	s.SetHovering(false)
	s.SetSitting(false)
	s.SetRunning(false)
	s.SetGroundMoveLevel(GroundIdle)
	s.SetAttack(AttackIdle, AttackNone)
	s.SetSleepPhase(SleepAwake)
}

// Value returns f as an integer (bools as 0/1).
func (s *ReplicatedState) Value(f Field) int32 {
	switch f {
	case FieldFlying:
		return b2i(s.flying)
	case FieldTakeoff:
		return b2i(s.takeoff)
	case FieldLanding:
		return b2i(s.landing)
	case FieldHovering:
		return b2i(s.hovering)
	case FieldRunning:
		return b2i(s.running)
	case FieldSitting:
		return b2i(s.sitting)
	case FieldGroundMoveLevel:
		return int32(s.groundMoveLevel)
	case FieldFlightMode:
		return int32(s.flightMode)
	case FieldAttackPhase:
		return int32(s.attackPhase)
	case FieldAttackKind:
		return int32(s.attackKind)
	case FieldSleepPhase:
		return int32(s.sleepPhase)
	default:
		return 0
	}
}

// Set writes f through the invariant-preserving setters. Used by restore and
// observer mirrors.
func (s *ReplicatedState) Set(f Field, v int32) {
	switch f {
	case FieldFlying:
		s.SetFlying(v != 0)
	case FieldTakeoff:
		s.SetTakeoff(v != 0)
	case FieldLanding:
		s.SetLanding(v != 0)
	case FieldHovering:
		s.SetHovering(v != 0)
	case FieldRunning:
		s.SetRunning(v != 0)
	case FieldSitting:
		s.SetSitting(v != 0)
	case FieldGroundMoveLevel:
		s.SetGroundMoveLevel(GroundMoveLevel(v))
	case FieldFlightMode:
		s.SetFlightMode(FlightMode(v))
	case FieldAttackPhase:
		s.SetAttack(AttackPhase(v), s.attackKind)
	case FieldAttackKind:
		if s.attackPhase != AttackIdle {
			s.SetAttack(s.attackPhase, AttackKind(v))
		}
	case FieldSleepPhase:
		s.SetSleepPhase(SleepPhase(v))
	}
}

// Load writes values through the setters in field order. Some setters refuse
// an order (running while still sitting), so a second pass settles fields
// that depend on later ones.
func (s *ReplicatedState) Load(values map[Field]int32) {
	for range 2 {
		for _, f := range Fields() {
			if v, ok := values[f]; ok && s.Value(f) != v {
				s.Set(f, v)
			}
		}
	}
}

// IsDirty reports whether any field changed since the last TakeDirty.
func (s *ReplicatedState) IsDirty() bool {
	return s.dirty != 0
}

// TakeDirty returns changed fields in field order and clears the dirty set.
func (s *ReplicatedState) TakeDirty() []Field {
	if s.dirty == 0 {
		return nil
	}
	var out []Field
	for f := range fieldCount {
		if s.dirty&(1<<f) != 0 {
			out = append(out, f)
		}
	}
	s.dirty = 0
	return out
}

// Valid checks the cross-field invariants.
func (s *ReplicatedState) Valid() bool {
	if !s.flying && s.flightMode != FlightGrounded {
		return false
	}
	if s.sitting && s.running {
		return false
	}
	n := 0
	for _, b := range []bool{s.takeoff, s.landing, s.hovering} {
		if b {
			n++
		}
	}
	return n <= 1
}

func b2i(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
