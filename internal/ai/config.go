package ai

// SchedulerConfig holds arbitration tuning.
type SchedulerConfig struct {
	// EvaluateInterval is the number of ticks between full evaluation passes.
	EvaluateInterval int `yaml:"evaluate_interval"`
}

// WanderConfig tunes idle wandering.
type WanderConfig struct {
	Enabled bool    `yaml:"enabled"`
	Chance  float64 `yaml:"chance"` // per evaluation pass
	Radius  float64 `yaml:"radius"`
	// Attempts is how many random points are tried before giving up.
	Attempts int `yaml:"attempts"`
}

// FollowConfig tunes following the owner.
type FollowConfig struct {
	Enabled          bool    `yaml:"enabled"`
	StartDistance    float64 `yaml:"start_distance"`
	StopDistance     float64 `yaml:"stop_distance"`
	RunDistance      float64 `yaml:"run_distance"`
	TeleportDistance float64 `yaml:"teleport_distance"`
	RepathTicks      int     `yaml:"repath_ticks"`
}

// PanicConfig tunes running around after being hurt.
type PanicConfig struct {
	Enabled bool    `yaml:"enabled"`
	Radius  float64 `yaml:"radius"`
}

// FleeConfig tunes fleeing from players (or playing dead instead).
type FleeConfig struct {
	Enabled        bool    `yaml:"enabled"`
	DetectRadius   float64 `yaml:"detect_radius"`
	SafeRadius     float64 `yaml:"safe_radius"`
	PlayDeadChance float64 `yaml:"play_dead_chance"`
	PlayDeadTicks  int     `yaml:"play_dead_ticks"`
	// Cooldown is the number of evaluation passes after fleeing before the
	// creature may flee again.
	Cooldown int `yaml:"cooldown"`
}

// RetaliateConfig tunes targeting the last attacker.
type RetaliateConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ForgetRadius float64 `yaml:"forget_radius"`
	ForgetTicks  int     `yaml:"forget_ticks"`
}

// BreedConfig tunes the love/breed approach.
type BreedConfig struct {
	Enabled     bool    `yaml:"enabled"`
	MateRadius  float64 `yaml:"mate_radius"`
	BreedRange  float64 `yaml:"breed_range"`
	BreedTicks  int     `yaml:"breed_ticks"`
	RepathTicks int     `yaml:"repath_ticks"`
}

// BehaviorConfig bundles the basic behaviors of a species.
type BehaviorConfig struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Wander    WanderConfig    `yaml:"wander"`
	Follow    FollowConfig    `yaml:"follow"`
	Panic     PanicConfig     `yaml:"panic"`
	Flee      FleeConfig      `yaml:"flee"`
	Retaliate RetaliateConfig `yaml:"retaliate"`
	Breed     BreedConfig     `yaml:"breed"`
}

// DefaultBehaviorConfig returns defaults for a tameable, non-timid creature.
func DefaultBehaviorConfig() BehaviorConfig {
	return BehaviorConfig{
		Scheduler: SchedulerConfig{EvaluateInterval: 1},
		Wander:    WanderConfig{Enabled: true, Chance: 0.01, Radius: 10, Attempts: 5},
		Follow: FollowConfig{
			Enabled:          true,
			StartDistance:    10,
			StopDistance:     3,
			RunDistance:      16,
			TeleportDistance: 48,
			RepathTicks:      10,
		},
		Panic:     PanicConfig{Enabled: false, Radius: 8},
		Flee:      FleeConfig{Enabled: false, DetectRadius: 8, SafeRadius: 16, PlayDeadChance: 0, PlayDeadTicks: 100, Cooldown: 40},
		Retaliate: RetaliateConfig{Enabled: true, ForgetRadius: 32, ForgetTicks: 400},
		Breed:     BreedConfig{Enabled: true, MateRadius: 8, BreedRange: 1.5, BreedTicks: 60, RepathTicks: 10},
	}
}
