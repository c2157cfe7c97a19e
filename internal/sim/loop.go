package sim

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"sim3d/internal/engine"
	"sim3d/internal/physics"
)

// DefaultTickRate is the fixed simulation frequency in ticks per second.
const DefaultTickRate = 60

// Loop drives the scene and physics world at a fixed timestep on its
// own goroutine. The render side shares state with the simulation by
// taking the loop's lock around its reads; the loop holds the same
// lock for the duration of each tick.
//
// When a tick overruns its budget the loop does not run extra substeps
// to catch up. It drops the missed ticks, logs a warning, and carries
// on at the fixed rate, so a slow machine slows the simulation down
// instead of spiraling.
type Loop struct {
	mu sync.Mutex

	scene *engine.Scene
	world *physics.World

	tick time.Duration
	dt   float32
	sink physics.MetricsSink
	log  *zap.Logger

	paused   bool
	stopping bool
	unpause  *sync.Cond

	done chan struct{}

	// injectable for tests
	now   func() time.Time
	sleep func(time.Duration)

	ticked uint64
}

func NewLoop(scene *engine.Scene, world *physics.World, tickRate int, sink physics.MetricsSink, log *zap.Logger) *Loop {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	if log == nil {
		log = zap.NewNop()
	}
	l := &Loop{
		scene: scene,
		world: world,
		tick:  time.Second / time.Duration(tickRate),
		dt:    1 / float32(tickRate),
		sink:  sink,
		log:   log,
		done:  make(chan struct{}),
		now:   time.Now,
		sleep: time.Sleep,
	}
	l.unpause = sync.NewCond(&l.mu)
	return l
}

// Lock takes the simulation lock. The render side brackets its state
// reads with Lock/Unlock so it never observes a half-finished tick.
func (l *Loop) Lock() { l.mu.Lock() }

func (l *Loop) Unlock() { l.mu.Unlock() }

// Tick runs exactly one fixed step under the lock: scene component
// updates first, then the physics pipeline.
func (l *Loop) Tick() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tickLocked()
}

func (l *Loop) tickLocked() error {
	l.scene.Update(l.dt)
	if err := l.world.Step(l.dt, l.sink); err != nil {
		return err
	}
	l.ticked++
	return nil
}

// Ticks reports how many fixed steps have run.
func (l *Loop) Ticks() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticked
}

// Pause parks the loop after the current tick finishes. Safe to call
// repeatedly.
func (l *Loop) Pause() {
	l.mu.Lock()
	l.paused = true
	l.mu.Unlock()
}

// Resume unparks a paused loop. The schedule restarts from now, so
// time spent paused is not replayed.
func (l *Loop) Resume() {
	l.mu.Lock()
	l.paused = false
	l.mu.Unlock()
	l.unpause.Broadcast()
}

// Run starts the scene and steps it until Stop is called. It blocks;
// callers run it on its own goroutine.
func (l *Loop) Run() error {
	defer close(l.done)

	l.mu.Lock()
	l.scene.Start()
	l.mu.Unlock()

	next := l.now().Add(l.tick)
	for {
		l.mu.Lock()
		for l.paused && !l.stopping {
			l.unpause.Wait()
			next = l.now().Add(l.tick)
		}
		if l.stopping {
			l.mu.Unlock()
			return nil
		}
		err := l.tickLocked()
		l.mu.Unlock()
		if err != nil {
			return err
		}

		now := l.now()
		if behind := now.Sub(next); behind > 0 {
			skipped := int64(behind/l.tick) + 1
			next = next.Add(time.Duration(skipped) * l.tick)
			l.log.Warn("tick overran its budget, dropping missed ticks",
				zap.Duration("behind", behind),
				zap.Int64("skipped", skipped))
		} else {
			l.sleep(next.Sub(now))
			next = next.Add(l.tick)
		}
	}
}

// Stop asks the loop to exit and waits for Run to return.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopping = true
	l.mu.Unlock()
	l.unpause.Broadcast()
	<-l.done
}
