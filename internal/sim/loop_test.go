package sim

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"sim3d/internal/components"
	"sim3d/internal/engine"
	"sim3d/internal/physics"
)

// fakeClock stands in for time.Now/time.Sleep so the loop schedule can
// be driven without real waiting.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) sleep(d time.Duration) {
	c.advance(d)
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLoop(t *testing.T, sink physics.MetricsSink, log *zap.Logger) (*Loop, *fakeClock) {
	t.Helper()
	scene := engine.NewScene("test")
	world := physics.NewWorld(scene.Transforms, nil)

	crate := scene.NewGameObject("crate")
	crate.AddComponent(components.NewRigidbody(world))

	l := NewLoop(scene, world, 100, sink, log)
	clock := &fakeClock{t: time.Unix(0, 0)}
	l.now = clock.now
	l.sleep = clock.sleep
	return l, clock
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLoopTickStepsWorld(t *testing.T) {
	var ticks int
	sink := func(physics.StepMetrics) { ticks++ }
	l, _ := newTestLoop(t, sink, nil)
	l.mu.Lock()
	l.scene.Start()
	l.mu.Unlock()

	require.NoError(t, l.Tick())
	require.NoError(t, l.Tick())
	require.Equal(t, 2, ticks)
	require.Equal(t, uint64(2), l.Ticks())
}

func TestLoopRunAndStop(t *testing.T) {
	l, _ := newTestLoop(t, nil, nil)

	errc := make(chan error, 1)
	go func() { errc <- l.Run() }()

	waitFor(t, func() bool { return l.Ticks() >= 3 })
	l.Stop()
	require.NoError(t, <-errc)
}

func TestLoopPauseParks(t *testing.T) {
	l, _ := newTestLoop(t, nil, nil)

	errc := make(chan error, 1)
	go func() { errc <- l.Run() }()
	waitFor(t, func() bool { return l.Ticks() >= 1 })

	l.Pause()
	parked := l.Ticks()
	time.Sleep(20 * time.Millisecond)
	require.LessOrEqual(t, l.Ticks(), parked+1, "paused loop should not keep ticking")

	l.Resume()
	waitFor(t, func() bool { return l.Ticks() > parked+1 })

	l.Stop()
	require.NoError(t, <-errc)
}

func TestLoopOverrunDropsTicksAndWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	var l *Loop
	var clock *fakeClock
	// Every tick costs 2.5 tick budgets of fake time, so the loop is
	// always behind and must drop ticks instead of sleeping.
	sink := func(physics.StepMetrics) { clock.advance(25 * time.Millisecond) }
	l, clock = newTestLoop(t, sink, log)

	errc := make(chan error, 1)
	go func() { errc <- l.Run() }()
	waitFor(t, func() bool { return l.Ticks() >= 3 })
	l.Stop()
	require.NoError(t, <-errc)

	dropped := logs.FilterMessage("tick overran its budget, dropping missed ticks")
	require.NotZero(t, dropped.Len(), "overrun should be logged")
	for _, entry := range dropped.All() {
		m := entry.ContextMap()
		require.Positive(t, m["skipped"].(int64))
	}
}
