package ai

// Behavior is one unit of conduct arbitrated by the Scheduler.
// Callbacks are invoked only from the owning agent's tick.
type Behavior interface {
	Name() string
	// Flags returns the actuators the behavior claims while running.
	Flags() Flag

	CanStart() bool
	CanContinue() bool
	Start()
	Stop()
	Tick()
}

// EveryTicker is implemented by behaviors that must be ticked on every
// simulation step, including steps on which the scheduler does not re-evaluate.
type EveryTicker interface {
	RequiresUpdateEveryTick() bool
}

// PassiveHolder is implemented by behaviors that only hold their flags
// (e.g. a sit lock) and need no ticks between evaluation passes.
type PassiveHolder interface {
	Passive() bool
}

func requiresEveryTick(b Behavior) bool {
	e, ok := b.(EveryTicker)
	return ok && e.RequiresUpdateEveryTick()
}

func isPassive(b Behavior) bool {
	p, ok := b.(PassiveHolder)
	return ok && p.Passive()
}

// BaseBehavior provides no-op lifecycle callbacks for embedding.
type BaseBehavior struct{}

func (BaseBehavior) Start() {}
func (BaseBehavior) Stop()  {}
func (BaseBehavior) Tick()  {}
