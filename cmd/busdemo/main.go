// Package main demonstrates the event bus: priority ordering, scoped
// registrations, one-shot handlers and concurrent publishing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/eventbus"
)

// Demo event types.

type PlayerLogin struct {
	Username string
	PlayerID int
}

type PhysicsTick struct {
	Delta float64
}

type KeyPress struct {
	Code int
}

func main() {
	os.Exit(run())
}

func run() int {
	debug := flag.Bool("debug", false, "enable bus debug logging")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
	if *debug {
		logger.SetLevel(log.DebugLevel)
	}

	bus := eventbus.New(eventbus.WithLogger(logger))
	ctx := context.Background()

	for _, demo := range []func(context.Context, *eventbus.Bus, *log.Logger) error{
		demoPriorities,
		demoScoped,
		demoOneShot,
		demoStress,
		demoOneShotRace,
	} {
		if err := demo(ctx, bus, logger); err != nil {
			logger.Error("demo failed", "err", err)
			return 1
		}
	}

	logger.Info("all demos finished", "stats", fmt.Sprintf("%+v", bus.Stats()))
	return 0
}

// demoPriorities subscribes in mixed order and shows High -> Normal -> Low
// delivery.
func demoPriorities(ctx context.Context, bus *eventbus.Bus, logger *log.Logger) error {
	logger.Info("--- demo 1: priorities ---")

	subs := make([]eventbus.HandlerID, 0, 3)
	for _, reg := range []struct {
		pri  eventbus.Priority
		what string
	}{
		{eventbus.PriorityLow, "logging"},
		{eventbus.PriorityHigh, "immediate action"},
		{eventbus.PriorityNormal, "ui update"},
	} {
		pri, what := reg.pri, reg.what
		id, err := eventbus.Subscribe(ctx, bus, pri,
			func(ctx context.Context, e KeyPress) error {
				logger.Info("handling input", "priority", pri, "purpose", what, "code", e.Code)
				return nil
			})
		if err != nil {
			return err
		}
		subs = append(subs, id)
	}
	defer func() {
		for _, id := range subs {
			bus.Unsubscribe(id)
		}
	}()

	return eventbus.Publish(ctx, bus, KeyPress{Code: 32})
}

// demoScoped shows a registration bounded by its enclosing scope.
func demoScoped(ctx context.Context, bus *eventbus.Bus, logger *log.Logger) error {
	logger.Info("--- demo 2: scoped registration ---")

	err := func() error {
		sub, err := eventbus.SubscribeScoped(ctx, bus, eventbus.PriorityNormal,
			func(ctx context.Context, e PlayerLogin) error {
				logger.Info("player logged in", "username", e.Username, "id", e.PlayerID)
				return nil
			})
		if err != nil {
			return err
		}
		defer sub.Close()

		return eventbus.Publish(ctx, bus, PlayerLogin{Username: "Nagibator2000", PlayerID: 1})
	}()
	if err != nil {
		return err
	}

	logger.Info("publishing after scope exit (should be silent)")
	return eventbus.Publish(ctx, bus, PlayerLogin{Username: "NoobMaster69", PlayerID: 2})
}

// demoOneShot shows a handler that fires on the first tick only.
func demoOneShot(ctx context.Context, bus *eventbus.Bus, logger *log.Logger) error {
	logger.Info("--- demo 3: one-shot handler ---")

	if _, err := eventbus.SubscribeOnce(ctx, bus, eventbus.PriorityNormal,
		func(ctx context.Context, e PhysicsTick) error {
			logger.Info("one-time initialization", "delta", e.Delta)
			return nil
		}); err != nil {
		return err
	}

	for tick := 1; tick <= 2; tick++ {
		logger.Info("tick", "n", tick)
		if err := eventbus.Publish(ctx, bus, PhysicsTick{Delta: 0.016}); err != nil {
			return err
		}
	}
	return nil
}

// demoStress publishes from several goroutines while churning one-shot
// subscriptions to contend on the dispatcher locks.
func demoStress(ctx context.Context, bus *eventbus.Bus, logger *log.Logger) error {
	logger.Info("--- demo 4: concurrent stress ---")

	const (
		workers    = 4
		iterations = 1000
	)

	var counter atomic.Int64
	sub, err := eventbus.SubscribeScoped(ctx, bus, eventbus.PriorityNormal,
		func(ctx context.Context, e PhysicsTick) error {
			counter.Add(1)
			return nil
		})
	if err != nil {
		return err
	}
	defer sub.Close()

	g, ctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			for j := range iterations {
				if err := eventbus.Publish(ctx, bus, PhysicsTick{Delta: 0.1}); err != nil {
					return err
				}
				if j%100 == 0 {
					if _, err := eventbus.SubscribeOnce(ctx, bus, eventbus.PriorityLow,
						func(ctx context.Context, e PhysicsTick) error { return nil }); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("stress done", "events_seen", counter.Load())
	return nil
}

// demoOneShotRace races several publishers for a single one-shot handler.
func demoOneShotRace(ctx context.Context, bus *eventbus.Bus, logger *log.Logger) error {
	logger.Info("--- demo 5: one-shot race ---")

	var fired atomic.Int64
	if _, err := eventbus.SubscribeOnce(ctx, bus, eventbus.PriorityNormal,
		func(ctx context.Context, e PhysicsTick) error {
			fired.Add(1)
			return nil
		}); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for range 4 {
		g.Go(func() error {
			return eventbus.Publish(ctx, bus, PhysicsTick{Delta: 0.1})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("one-shot race done", "fired", fired.Load())
	return nil
}
