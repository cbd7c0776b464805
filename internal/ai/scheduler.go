package ai

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	behavior Behavior
	priority int
	seq      int
	running  bool
	faults   int
}

// Scheduler arbitrates behaviors by priority and capability flags.
// Lower priority value wins; ties are broken by registration order.
// Not safe for concurrent use: it belongs to one agent.
type Scheduler struct {
	owner   string
	entries []*entry

	// held is the set of flags claimed by running behaviors.
	held     Flag
	disabled Flag

	evaluateInterval int
	ticks            uint64

	faultLog rate.Sometimes
}

// NewScheduler creates a scheduler. owner labels log records.
// evaluateInterval < 1 is treated as 1.
func NewScheduler(owner string, evaluateInterval int) *Scheduler {
	if evaluateInterval < 1 {
		evaluateInterval = 1
	}
	return &Scheduler{
		owner:            owner,
		evaluateInterval: evaluateInterval,
		faultLog:         rate.Sometimes{First: 3, Interval: 10 * time.Second},
	}
}

// Add registers b with priority.
func (s *Scheduler) Add(priority int, b Behavior) {
	e := &entry{behavior: b, priority: priority, seq: len(s.entries)}
	s.entries = append(s.entries, e)
	slices.SortStableFunc(s.entries, func(a, b *entry) int {
		if a.priority != b.priority {
			return a.priority - b.priority
		}
		return a.seq - b.seq
	})
}

// Len returns the number of registered behaviors.
func (s *Scheduler) Len() int {
	return len(s.entries)
}

// DisableFlags blocks flags: running holders are stopped on the next pass
// and nothing claiming them may start.
func (s *Scheduler) DisableFlags(mask Flag) {
	s.disabled |= mask
}

// EnableFlags lifts a DisableFlags block.
func (s *Scheduler) EnableFlags(mask Flag) {
	s.disabled &^= mask
}

// Disabled returns the currently disabled flags.
func (s *Scheduler) Disabled() Flag {
	return s.disabled
}

// Held returns the flags held by running behaviors.
func (s *Scheduler) Held() Flag {
	return s.held
}

// Holder returns the running behavior that holds flag.
func (s *Scheduler) Holder(flag Flag) (Behavior, bool) {
	for _, e := range s.entries {
		if e.running && e.behavior.Flags().Overlaps(flag) {
			return e.behavior, true
		}
	}
	return nil, false
}

// Running returns running behaviors in priority order.
func (s *Scheduler) Running() []Behavior {
	var out []Behavior
	for _, e := range s.entries {
		if e.running {
			out = append(out, e.behavior)
		}
	}
	return out
}

// IsRunning reports whether b is running.
func (s *Scheduler) IsRunning(b Behavior) bool {
	for _, e := range s.entries {
		if e.behavior == b {
			return e.running
		}
	}
	return false
}

// StopAll stops every running behavior synchronously.
func (s *Scheduler) StopAll() {
	for _, e := range s.entries {
		if e.running {
			s.stop(e, "stop all")
		}
	}
}

// Tick runs one scheduler step.
func (s *Scheduler) Tick() {
	s.ticks++
	if (s.ticks-1)%uint64(s.evaluateInterval) == 0 {
		s.evaluate()
		return
	}

	// between evaluation passes only per-tick behaviors advance
	for _, e := range s.entries {
		if e.running && requiresEveryTick(e.behavior) && !isPassive(e.behavior) {
			s.tick(e)
		}
	}
}

func (s *Scheduler) evaluate() {
	var claimed Flag

	for _, e := range s.entries {
		flags := e.behavior.Flags()

		if e.running {
			switch {
			case !s.call(e, "canContinue", e.behavior.CanContinue):
				s.stop(e, "cannot continue")
			case flags.Overlaps(claimed | s.disabled):
				s.stop(e, "preempted")
			default:
				claimed |= flags
				s.tick(e)
				continue
			}
		}

		if !e.running && !flags.Overlaps(claimed|s.disabled) {
			if s.call(e, "canStart", e.behavior.CanStart) {
				s.start(e)
				if e.running {
					claimed |= flags
					s.tick(e)
				}
			}
		}
	}
}

func (s *Scheduler) start(e *entry) {
	if !s.call(e, "start", func() bool { e.behavior.Start(); return true }) {
		return
	}
	e.running = true
	s.held |= e.behavior.Flags()

	if IsDebugEnabled() {
		slog.Debug("behavior started",
			"agent", s.owner,
			"behavior", e.behavior.Name(),
			"flags", e.behavior.Flags())
	}
}

func (s *Scheduler) tick(e *entry) {
	s.call(e, "tick", func() bool { e.behavior.Tick(); return true })
}

func (s *Scheduler) stop(e *entry, reason string) {
	if !e.running {
		return
	}
	e.running = false
	s.release()
	s.guard(e, "stop", func() bool { e.behavior.Stop(); return true })

	if IsDebugEnabled() {
		slog.Debug("behavior stopped",
			"agent", s.owner,
			"behavior", e.behavior.Name(),
			"reason", reason)
	}
}

// release recomputes held flags from running entries.
func (s *Scheduler) release() {
	var held Flag
	for _, e := range s.entries {
		if e.running {
			held |= e.behavior.Flags()
		}
	}
	s.held = held
}

// call runs fn with fault isolation. A fault stops the behavior and yields false.
func (s *Scheduler) call(e *entry, stage string, fn func() bool) bool {
	ok, faulted := s.protect(e, stage, fn)
	if faulted {
		if e.running {
			e.running = false
			s.release()
			s.guard(e, "stop", func() bool { e.behavior.Stop(); return true })
		}
		return false
	}
	return ok
}

// guard runs fn with fault isolation and no follow-up.
func (s *Scheduler) guard(e *entry, stage string, fn func() bool) {
	s.protect(e, stage, fn)
}

func (s *Scheduler) protect(e *entry, stage string, fn func() bool) (ok, faulted bool) {
	defer func() {
		if r := recover(); r != nil {
			e.faults++
			ok, faulted = false, true
			s.faultLog.Do(func() {
				slog.Error("behavior fault",
					"agent", s.owner,
					"behavior", e.behavior.Name(),
					"stage", stage,
					"faults", e.faults,
					"panic", fmt.Sprint(r))
			})
		}
	}()
	return fn(), false
}

// Faults returns the number of recovered faults for the behavior named name.
func (s *Scheduler) Faults(name string) int {
	for _, e := range s.entries {
		if e.behavior.Name() == name {
			return e.faults
		}
	}
	return 0
}
