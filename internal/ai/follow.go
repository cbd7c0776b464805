package ai

import (
	"log/slog"
	"math"

	"github.com/udisondev/beastmind/internal/model"
)

// FollowOwner keeps a tamed creature near its owner, teleporting next to the
// owner when it falls too far behind.
type FollowOwner struct {
	host  Host
	cfg   FollowConfig
	timer int
}

// NewFollowOwner creates a FollowOwner behavior.
func NewFollowOwner(host Host, cfg FollowConfig) *FollowOwner {
	return &FollowOwner{host: host, cfg: cfg}
}

func (f *FollowOwner) Name() string { return "follow_owner" }
func (f *FollowOwner) Flags() Flag  { return FlagMove | FlagLook }

func (f *FollowOwner) CanStart() bool {
	owner, ok := OwnerAlive(f.host)
	if !ok || f.host.SitOrdered() || f.host.State().Sitting() {
		return false
	}
	return model.DistanceSquared(owner.Position(), f.host.Body().Position()) > f.cfg.StartDistance*f.cfg.StartDistance
}

func (f *FollowOwner) CanContinue() bool {
	owner, ok := OwnerAlive(f.host)
	if !ok || f.host.SitOrdered() || f.host.State().Sitting() {
		return false
	}
	return model.DistanceSquared(owner.Position(), f.host.Body().Position()) > f.cfg.StopDistance*f.cfg.StopDistance
}

func (f *FollowOwner) Start() {
	f.timer = 0
}

func (f *FollowOwner) Stop() {
	f.host.Motion().Stop()
}

func (f *FollowOwner) Tick() {
	owner, ok := OwnerAlive(f.host)
	if !ok {
		return
	}
	body := f.host.Body()
	motion := f.host.Motion()
	distSq := model.DistanceSquared(owner.Position(), body.Position())

	motion.LookAt(EyePosition(owner))

	if f.cfg.TeleportDistance > 0 && distSq > f.cfg.TeleportDistance*f.cfg.TeleportDistance && !f.host.State().Flying() {
		f.teleport(owner)
		return
	}

	f.timer--
	if f.timer > 0 && !motion.IsDone() {
		return
	}
	f.timer = f.cfg.RepathTicks

	speed := motion.Config().WalkSpeed
	if distSq > f.cfg.RunDistance*f.cfg.RunDistance {
		speed = motion.Config().RunSpeed
	}
	motion.MoveTo(owner.Position(), speed)
}

func (f *FollowOwner) teleport(owner model.Entity) {
	view := f.host.World()
	rnd := f.host.Rand()
	center := owner.Position()

	for range 10 {
		angle := rnd.Float64() * 2 * math.Pi
		dist := 2 + rnd.Float64()*2
		x := center.X() + math.Cos(angle)*dist
		z := center.Z() + math.Sin(angle)*dist
		p := model.Vec3{x, view.GroundHeight(x, z), z}
		if view.IsLiquid(p) || view.DangerBelow(p, 2) {
			continue
		}

		f.host.Motion().Stop()
		f.host.Body().Teleport(p)

		if IsDebugEnabled() {
			slog.Debug("teleported to owner",
				"agent", f.host.ID(),
				"owner", owner.ID(),
				"position", p)
		}
		return
	}
}
