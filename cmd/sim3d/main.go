// Headless simulation runner: loads a scene from YAML, steps it at a
// fixed rate, and reports per-second metrics until interrupted.
package main

import (
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sim3d/internal/config"
	"sim3d/internal/physics"
	"sim3d/internal/sim"
)

func main() {
	configPath := flag.String("config", "", "path to scene YAML; empty runs a built-in drop scene")
	duration := flag.Duration("duration", 0, "stop after this long; 0 runs until interrupted")
	dev := flag.Bool("dev", false, "use the development logger")
	flag.Parse()

	log, err := newLogger(*dev)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal("loading config", zap.Error(err))
	}

	scene, world, err := cfg.Build()
	if err != nil {
		log.Fatal("building scene", zap.Error(err))
	}
	log.Info("scene built",
		zap.String("scene", scene.Name),
		zap.Int("objects", len(scene.GameObjects)),
		zap.Int("tick_rate", cfg.TickRate))

	var mu sync.Mutex
	var window physics.StepMetrics
	var windowTicks int
	sink := func(m physics.StepMetrics) {
		mu.Lock()
		window.Bodies = m.Bodies
		window.BroadPairs += m.BroadPairs
		window.Contacts += m.Contacts
		window.Integrate += m.Integrate
		window.Broad += m.Broad
		window.Resolve += m.Resolve
		windowTicks++
		mu.Unlock()
	}

	loop := sim.NewLoop(scene, world, cfg.TickRate, sink, log)
	errc := make(chan error, 1)
	go func() { errc <- loop.Run() }()

	report := time.NewTicker(time.Second)
	defer report.Stop()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

	var timeout <-chan time.Time
	if *duration > 0 {
		timeout = time.After(*duration)
	}

	for {
		select {
		case <-report.C:
			mu.Lock()
			if windowTicks > 0 {
				n := time.Duration(windowTicks)
				log.Info("tick report",
					zap.Int("ticks", windowTicks),
					zap.Int("bodies", window.Bodies),
					zap.Int("broad_pairs", window.BroadPairs/windowTicks),
					zap.Int("contacts", window.Contacts/windowTicks),
					zap.Duration("integrate", window.Integrate/n),
					zap.Duration("broad", window.Broad/n),
					zap.Duration("resolve", window.Resolve/n))
			}
			window = physics.StepMetrics{}
			windowTicks = 0
			mu.Unlock()
		case <-sigc:
			log.Info("interrupted, stopping")
			loop.Stop()
			<-errc
			return
		case <-timeout:
			loop.Stop()
			<-errc
			return
		case err := <-errc:
			if err != nil {
				log.Fatal("simulation failed", zap.Error(err))
			}
			return
		}
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return defaultConfig(), nil
}

// defaultConfig is a small drop scene: a floor slab and a stack of
// crates falling onto it.
func defaultConfig() *config.Config {
	slab := func(v float32) *config.Vec3 { return &config.Vec3{X: v, Y: 1, Z: v} }
	return &config.Config{
		TickRate: sim.DefaultTickRate,
		Scene: config.Scene{
			Name: "drop",
			Objects: []config.Object{
				{Name: "floor", Static: true, Position: config.Vec3{Y: -2}, Scale: slab(20), Tags: []string{"ground"}},
				{Name: "crate-1", Mass: 1, Position: config.Vec3{Y: 2}},
				{Name: "crate-2", Mass: 1, Position: config.Vec3{X: 0.4, Y: 5}},
				{Name: "crate-3", Mass: 2, Position: config.Vec3{X: -0.3, Y: 8}},
			},
		},
	}
}
