package sleep

import (
	"log/slog"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/model"
)

// Machine is the sleep transition machine: Awake → Entering → Asleep →
// Exiting → Awake. Entering starts with a sit-down sub-wait unless the
// creature already sits.
//
// It owns sleepPhase and, while not awake, sitting.
type Machine struct {
	host ai.Host
	cfg  Config

	phase   model.SleepPhase
	sitWait bool
	// satDown is set when the machine made the creature sit.
	satDown bool
	// ownerSlept remembers that the owner was seen asleep during this sleep.
	ownerSlept bool
}

// NewMachine creates an awake sleep machine.
func NewMachine(host ai.Host, cfg Config) *Machine {
	return &Machine{host: host, cfg: cfg}
}

func (m *Machine) Name() string                  { return "sleep" }
func (m *Machine) Flags() ai.Flag                { return ai.FlagMove | ai.FlagLook | ai.FlagJump }
func (m *Machine) RequiresUpdateEveryTick() bool { return true }

// Phase returns the current phase.
func (m *Machine) Phase() model.SleepPhase {
	return m.phase
}

// SittingDown reports whether Entering is still in its sit-down sub-wait.
func (m *Machine) SittingDown() bool {
	return m.sitWait
}

// preconditions reports whether falling (or staying) asleep is allowed.
func (m *Machine) preconditions() bool {
	h := m.host
	state := h.State()
	view := h.World()
	pos := h.Body().Position()

	if h.Timers().SleepSuppress > 0 || h.Timers().HurtRecently > 0 {
		return false
	}
	if state.Flying() || h.Ridden() || state.AttackPhase() != model.AttackIdle {
		return false
	}
	if _, ok := ai.TargetAlive(h); ok {
		return false
	}
	if view.IsLiquid(pos) {
		return false
	}
	if m.cfg.StormAverse && view.Weather() == model.WeatherThunder {
		return false
	}
	if m.cfg.RequireShelter && !view.IsSheltered(pos) {
		return false
	}
	switch m.cfg.Schedule {
	case ScheduleNight:
		return !view.IsDaytime()
	case ScheduleDay:
		return view.IsDaytime()
	default:
		return true
	}
}

// ownerAwoke reports whether an owner that was asleep has woken up.
func (m *Machine) ownerAwoke() bool {
	if !m.cfg.WakeWithOwner {
		return false
	}
	owner, ok := ai.OwnerAlive(m.host)
	if !ok {
		return false
	}
	sleeper, ok := owner.(model.Sleeper)
	if !ok {
		return false
	}
	if sleeper.Sleeping() {
		m.ownerSlept = true
		return false
	}
	return m.ownerSlept
}

func (m *Machine) CanStart() bool {
	if m.phase != model.SleepAwake {
		// restored asleep
		return true
	}
	if !m.preconditions() {
		return false
	}
	return m.host.Rand().Float64() < m.cfg.Chance
}

func (m *Machine) CanContinue() bool {
	return m.phase != model.SleepAwake
}

func (m *Machine) Start() {
	h := m.host
	h.Motion().Stop()
	if m.phase != model.SleepAwake {
		return
	}

	m.ownerSlept = false
	m.sitWait = !h.State().Sitting()
	m.satDown = m.sitWait
	h.State().SetSitting(true)
	h.Timers().SleepPhaseTicks = 0
	m.setPhase(model.SleepEntering)
	if !m.sitWait {
		h.Animate("sleep_enter")
	}
}

func (m *Machine) Stop() {
	if m.phase != model.SleepAwake {
		m.WakeNow("stopped")
	}
}

func (m *Machine) Tick() {
	h := m.host
	timers := h.Timers()

	// a target is a hard interrupt from any non-awake phase
	if m.phase != model.SleepAwake {
		if _, ok := ai.TargetAlive(h); ok {
			m.WakeNow("target")
			return
		}
	}

	switch m.phase {
	case model.SleepEntering:
		if !m.preconditions() {
			m.exit("interrupted")
			return
		}
		timers.SleepPhaseTicks++
		if m.sitWait {
			if timers.SleepPhaseTicks >= m.cfg.SitTicks {
				m.sitWait = false
				timers.SleepPhaseTicks = 0
				h.Animate("sleep_enter")
			}
			return
		}
		if timers.SleepPhaseTicks >= m.cfg.EnterTicks {
			timers.SleepPhaseTicks = 0
			m.setPhase(model.SleepAsleep)
		}

	case model.SleepAsleep:
		if m.ownerAwoke() {
			m.exit("owner woke")
			return
		}
		if !m.preconditions() {
			m.exit("conditions changed")
		}

	case model.SleepExiting:
		timers.SleepPhaseTicks++
		if timers.SleepPhaseTicks >= m.cfg.ExitTicks {
			m.awake()
			timers.AmbientSoundSuppress = m.cfg.AmbientSuppressTicks
		}
	}
}

func (m *Machine) exit(reason string) {
	m.sitWait = false
	m.host.Timers().SleepPhaseTicks = 0
	m.setPhase(model.SleepExiting)
	m.host.Animate("sleep_exit")

	if ai.IsDebugEnabled() {
		slog.Debug("waking up", "agent", m.host.ID(), "reason", reason)
	}
}

func (m *Machine) awake() {
	m.sitWait = false
	m.ownerSlept = false
	m.host.Timers().SleepPhaseTicks = 0
	m.setPhase(model.SleepAwake)
	if m.satDown && !m.host.SitOrdered() {
		m.host.State().SetSitting(false)
	}
	m.satDown = false
}

func (m *Machine) setPhase(p model.SleepPhase) {
	m.phase = p
	m.host.State().SetSleepPhase(p)
}

// WakeNow forces Awake within the current tick (mount, damage, target),
// bypassing every timer, and suppresses falling asleep again for SuppressTicks.
// Returns false if the creature was already awake.
func (m *Machine) WakeNow(reason string) bool {
	if m.phase == model.SleepAwake {
		return false
	}
	m.awake()
	timers := m.host.Timers()
	timers.SleepSuppress = m.cfg.SuppressTicks
	timers.AmbientSoundSuppress = m.cfg.AmbientSuppressTicks
	m.host.Animate("sleep_exit")

	if ai.IsDebugEnabled() {
		slog.Debug("woken", "agent", m.host.ID(), "reason", reason)
	}
	return true
}

// Restore normalizes a loaded phase. Entering and Exiting are never resumed:
// they are forced awake and suppressed. Asleep persists.
func (m *Machine) Restore() {
	m.phase = m.host.State().SleepPhase()
	m.sitWait = false
	m.ownerSlept = false
	m.satDown = m.phase != model.SleepAwake

	switch m.phase {
	case model.SleepEntering, model.SleepExiting:
		m.WakeNow("restored mid-transition")
	case model.SleepAsleep:
		m.host.Timers().SleepPhaseTicks = 0
		m.host.State().SetSitting(true)
	default:
		m.host.Timers().SleepPhaseTicks = 0
	}
}
