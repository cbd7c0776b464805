package ai

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// TickManager drives every registered controller once per world tick.
type TickManager struct {
	controllers     sync.Map // map[uuid.UUID]Controller
	controllerCount atomic.Int32

	interval time.Duration
	workers  int
	ticks    atomic.Uint64

	// afterTick runs on the loop goroutine once all controllers were ticked
	// (world physics, persistence pulses).
	afterTick []func(tick uint64)

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewTickManager creates a tick manager. workers <= 0 means GOMAXPROCS.
func NewTickManager(interval time.Duration, workers int) *TickManager {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &TickManager{
		interval: interval,
		workers:  workers,
		stopCh:   make(chan struct{}),
	}
}

// AfterTick adds a hook executed after every tick. Not safe to call once Start runs.
func (m *TickManager) AfterTick(fn func(tick uint64)) {
	m.afterTick = append(m.afterTick, fn)
}

// Register registers controller and starts it.
func (m *TickManager) Register(controller Controller) {
	if _, loaded := m.controllers.LoadOrStore(controller.ID(), controller); loaded {
		slog.Warn("controller already registered", "agent", controller.ID())
		return
	}
	m.controllerCount.Add(1)
	controller.Start()

	slog.Debug("controller registered", "agent", controller.ID())
}

// Unregister stops and removes the controller.
func (m *TickManager) Unregister(id uuid.UUID) {
	value, ok := m.controllers.LoadAndDelete(id)
	if !ok {
		return
	}
	m.controllerCount.Add(-1)
	value.(Controller).Stop()

	slog.Debug("controller unregistered", "agent", id)
}

// Start runs the tick loop until ctx is canceled or Stop is called.
func (m *TickManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("tick manager started", "interval", m.interval, "workers", m.workers)

	for {
		select {
		case <-ctx.Done():
			slog.Info("tick manager stopping")
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("tick manager stopped")
			return nil

		case <-ticker.C:
			if err := m.TickOnce(ctx); err != nil {
				return err
			}
		}
	}
}

// Stop stops the tick loop. Safe to call more than once.
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// TickOnce ticks every controller in parallel, then runs the after-tick hooks.
func (m *TickManager) TickOnce(ctx context.Context) error {
	tick := m.ticks.Add(1)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	count := 0
	m.controllers.Range(func(_, value any) bool {
		if gctx.Err() != nil {
			return false
		}
		controller := value.(Controller)
		count++
		g.Go(func() error {
			return tickController(controller)
		})
		return true
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("tick %d: %w", tick, err)
	}

	for _, fn := range m.afterTick {
		fn(tick)
	}

	if count > 0 && IsDebugEnabled() {
		slog.Debug("tick completed",
			"tick", tick,
			"controllers", count,
			"elapsed", time.Since(start))
	}
	return nil
}

// tickController isolates a panicking controller from the rest of the tick.
func tickController(c Controller) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("controller tick panicked", "agent", c.ID(), "panic", fmt.Sprint(r))
		}
	}()
	c.Tick()
	return nil
}

// Ticks returns the number of completed ticks.
func (m *TickManager) Ticks() uint64 {
	return m.ticks.Load()
}

// Count returns the number of registered controllers.
func (m *TickManager) Count() int {
	return int(m.controllerCount.Load())
}

// GetController returns the controller for id.
func (m *TickManager) GetController(id uuid.UUID) (Controller, error) {
	value, ok := m.controllers.Load(id)
	if !ok {
		return nil, fmt.Errorf("controller not found for agent %s", id)
	}
	return value.(Controller), nil
}

// Range calls fn for every registered controller until fn returns false.
func (m *TickManager) Range(fn func(Controller) bool) {
	m.controllers.Range(func(_, value any) bool {
		return fn(value.(Controller))
	})
}
