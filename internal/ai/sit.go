package ai

import "github.com/udisondev/beastmind/internal/model"

// Sit holds MOVE and JUMP while the creature is ordered to sit.
// It is a passive holder: it needs no ticks between evaluation passes.
type Sit struct {
	host Host
}

// NewSit creates a Sit behavior.
func NewSit(host Host) *Sit {
	return &Sit{host: host}
}

func (s *Sit) Name() string   { return "sit" }
func (s *Sit) Flags() Flag    { return FlagMove | FlagJump }
func (s *Sit) Passive() bool  { return true }
func (s *Sit) CanStart() bool { return s.canSit() }

func (s *Sit) CanContinue() bool { return s.canSit() }

func (s *Sit) canSit() bool {
	return s.host.SitOrdered() && !s.host.State().Flying() && !s.host.Ridden()
}

func (s *Sit) Start() {
	s.host.Motion().Stop()
	s.host.State().SetSitting(true)
}

func (s *Sit) Stop() {
	// the sleep machine owns sitting while it is not awake
	if s.host.State().SleepPhase() == model.SleepAwake {
		s.host.State().SetSitting(false)
	}
}

func (s *Sit) Tick() {
	s.host.State().SetSitting(true)
}
