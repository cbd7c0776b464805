package ai

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnableDebugLogging(t *testing.T) {
	t.Cleanup(func() { EnableDebugLogging(false) })

	EnableDebugLogging(true)
	assert.True(t, IsDebugEnabled())

	EnableDebugLogging(false)
	assert.False(t, IsDebugEnabled())
}

func TestScheduler_DebugLogsTransitions(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() {
		slog.SetDefault(prev)
		EnableDebugLogging(false)
	})

	s := NewScheduler("agent-1", 1)
	b := newFake("wander", FlagMove)
	s.Add(1, b)

	EnableDebugLogging(false)
	s.Tick()
	assert.Empty(t, buf.String(), "gate off: nothing logged")

	EnableDebugLogging(true)
	b.canContinue = false
	b.canStart = false
	s.Tick()
	assert.Contains(t, buf.String(), "behavior stopped")
	assert.Contains(t, buf.String(), "agent=agent-1")
	assert.Contains(t, buf.String(), "reason=\"cannot continue\"")
}
