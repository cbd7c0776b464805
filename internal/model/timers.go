package model

// AgentTimers consolidates every per-agent countdown and phase counter.
// Countdowns are decremented by Tick; phase counters are advanced by the
// machine that owns them.
type AgentTimers struct {
	// countdowns
	LandingCooldown      int
	SleepSuppress        int
	DodgeCooldown        int
	AmbientSoundSuppress int
	HurtRecently         int
	InLove               int
	RiderInputLock       int

	// phase counters
	AttackPhaseTicks int
	SleepPhaseTicks  int
	FlightStateTicks int
}

// Tick decrements every countdown that is still running.
func (t *AgentTimers) Tick() {
	for _, c := range t.countdowns() {
		if *c > 0 {
			*c--
		}
	}
}

func (t *AgentTimers) countdowns() []*int {
	return []*int{
		&t.LandingCooldown,
		&t.SleepSuppress,
		&t.DodgeCooldown,
		&t.AmbientSoundSuppress,
		&t.HurtRecently,
		&t.InLove,
		&t.RiderInputLock,
	}
}

// Fields exposes every timer by stable snapshot key.
func (t *AgentTimers) Fields() map[string]*int {
	return map[string]*int{
		"landing_cooldown":       &t.LandingCooldown,
		"sleep_suppress":         &t.SleepSuppress,
		"dodge_cooldown":         &t.DodgeCooldown,
		"ambient_sound_suppress": &t.AmbientSoundSuppress,
		"hurt_recently":          &t.HurtRecently,
		"in_love":                &t.InLove,
		"rider_input_lock":       &t.RiderInputLock,
		"attack_phase_ticks":     &t.AttackPhaseTicks,
		"sleep_phase_ticks":      &t.SleepPhaseTicks,
		"flight_state_ticks":     &t.FlightStateTicks,
	}
}
