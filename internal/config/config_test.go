package config_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/beastmind/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadServerDefaultsWhenMissing(t *testing.T) {
	cfg, err := config.LoadServer(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultServer(), cfg)
}

func TestLoadServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beastd.yaml")
	writeFile(t, path, `
log_level: debug
tick_interval: 25ms
resync_interval: 40
database:
  enabled: true
  host: db
snapshot:
  interval_ticks: 10
`)

	cfg, err := config.LoadServer(path)
	require.NoError(t, err)
	assert.Equal(t, 25*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 40, cfg.ResyncInterval)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "postgres://beastmind:beastmind@db:5432/beastmind?sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, 10, cfg.Snapshot.IntervalTicks)
	assert.Equal(t, "data/snapshots", cfg.Snapshot.Dir, "unset keys keep defaults")
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())

	writeFile(t, path, "tick_interval: [")
	_, err = config.LoadServer(path)
	require.Error(t, err)
}

func TestSampleConfigs(t *testing.T) {
	cfg, err := config.LoadServer("../../configs/beastd.yaml")
	require.NoError(t, err)

	species, err := config.LoadSpeciesDir("../../configs/species")
	require.NoError(t, err)
	for _, s := range cfg.Spawns {
		assert.Contains(t, species, s.Species)
	}

	wyvern := species["wyvern"]
	assert.True(t, wyvern.CanFly)
	assert.Equal(t, "glider", wyvern.Flight.Profile)
	assert.Equal(t, 0.6, wyvern.Flight.Rain.ContinueChance)
	assert.Equal(t, 0.9, wyvern.Flight.Clear.ContinueChance, "untouched sections keep defaults")

	raptor := species["raptor"]
	assert.False(t, raptor.Flight.Enabled)
	assert.Equal(t, []int{2, 4, 6}, raptor.Dodge.Backoff)
}

func TestSpeciesValidate(t *testing.T) {
	require.NoError(t, config.DefaultSpecies("test").Validate())

	tests := []struct {
		name   string
		mutate func(s *config.Species)
	}{
		{"no name", func(s *config.Species) { s.Name = "" }},
		{"flight without wings", func(s *config.Species) { s.Flight.Enabled = true }},
		{"unknown profile", func(s *config.Species) { s.Flight.Profile = "rocket" }},
		{"bad sleep schedule", func(s *config.Species) { s.Sleep.Schedule = "noon" }},
		{"bad combat band", func(s *config.Species) { s.Combat.MeleeBands[0].Kind = "headbutt" }},
		{"zero evaluate interval", func(s *config.Species) { s.Behaviors.Scheduler.EvaluateInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.DefaultSpecies("test")
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestLoadSpeciesNameFromFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "boar.yml"), "max_health: 30\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	species, err := config.LoadSpeciesDir(dir)
	require.NoError(t, err)
	require.Len(t, species, 1)
	assert.Equal(t, 30.0, species["boar"].MaxHealth)
}

func TestLoadSpeciesDirDuplicate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "name: boar\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "name: boar\n")

	_, err := config.LoadSpeciesDir(dir)
	require.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := config.NewRegistry(map[string]config.Species{"boar": config.DefaultSpecies("boar")})
	v := r.Version()

	s, err := r.Get("boar")
	require.NoError(t, err)
	assert.Equal(t, "boar", s.Name)

	_, err = r.Get("unicorn")
	require.ErrorIs(t, err, config.ErrUnknownSpecies)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "drake.yaml"), "can_fly: true\n")
	require.NoError(t, r.LoadDir(dir))
	assert.Equal(t, []string{"drake"}, r.Names())
	assert.Greater(t, r.Version(), v)

	writeFile(t, filepath.Join(dir, "drake.yaml"), "radius: -1\n")
	require.Error(t, r.LoadDir(dir))
	assert.Equal(t, []string{"drake"}, r.Names(), "failed reload keeps the previous set")
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "boar.yaml"), "max_health: 10\n")
	r := config.NewRegistry(nil)
	require.NoError(t, r.LoadDir(dir))

	reloaded := make(chan []string, 4)
	w, err := config.NewWatcher(dir, r, 20*time.Millisecond, func(names []string) { reloaded <- names })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	writeFile(t, filepath.Join(dir, "boar.yaml"), "max_health: 99\n")
	writeFile(t, filepath.Join(dir, "wolf.yaml"), "max_health: 15\n")

	require.Eventually(t, func() bool {
		s, err := r.Get("wolf")
		if err != nil {
			return false
		}
		boar, err := r.Get("boar")
		return err == nil && boar.MaxHealth == 99 && s.MaxHealth == 15
	}, 5*time.Second, 10*time.Millisecond)

	select {
	case names := <-reloaded:
		assert.NotEmpty(t, names)
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback not called")
	}
}
