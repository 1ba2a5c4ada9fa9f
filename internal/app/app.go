// Package app runs the process lifecycle: it starts every registered
// dependency, waits for a shutdown signal or a dependency failure, and stops
// them within a bounded timeout.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// Dependency is one component of the running service.
type Dependency interface {
	// Start brings the dependency up. Long-running dependencies block inside
	// Start until shutdown.
	Start() error
	// Stop releases whatever Start acquired.
	Stop() error
	// Name identifies the dependency in logs.
	Name() string
}

type App struct {
	serviceName string
	deps        []Dependency

	// one slot per dependency so no failing Start can block
	depFailChan  chan error
	osSignalChan chan os.Signal

	runCalled   *atomic.Bool
	stopCalled  *atomic.Bool
	stopTimeout time.Duration
}

type Config struct {
	ServiceName string
	// StopTimeout bounds the whole shutdown pass across all dependencies.
	StopTimeout time.Duration
}

func (c *Config) validate() error {
	var errGrp []error
	if c.ServiceName == "" {
		errGrp = append(errGrp, errors.New("service name is required"))
	}
	if c.StopTimeout <= 0 {
		errGrp = append(errGrp, errors.New("stop timeout is required"))
	}
	return errors.Join(errGrp...)
}

// CreateApp wires the dependencies into a runnable application. Dependencies
// start concurrently and stop in registration order.
func CreateApp(cfg *Config, deps ...Dependency) (*App, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &App{
		serviceName:  cfg.ServiceName,
		deps:         deps,
		stopTimeout:  cfg.StopTimeout,
		runCalled:    &atomic.Bool{},
		stopCalled:   &atomic.Bool{},
		depFailChan:  make(chan error, len(deps)),
		osSignalChan: make(chan os.Signal, 1),
	}, nil
}

// Run starts every dependency and blocks until the context is cancelled, a
// dependency fails, or the OS asks the process to stop. It then runs one
// shutdown pass and returns its outcome. Run may only be called once.
func (a *App) Run(ctx context.Context) error {
	if !a.runCalled.CompareAndSwap(false, true) {
		return errors.New("run has already been called")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer func() {
		close(a.depFailChan)
		close(a.osSignalChan)
		cancel()
	}()

	for _, dep := range a.deps {
		go func(dep Dependency) {
			defer func() {
				if r := recover(); r != nil {
					a.depFailChan <- fmt.Errorf("panic in Start() for dependency %s: %v", dep.Name(), r)
				}
			}()

			log.Info().Str("dependency", dep.Name()).Msg("starting dependency")
			if err := dep.Start(); err != nil {
				a.depFailChan <- fmt.Errorf("failure in Start() for dependency %s: %w", dep.Name(), err)
			}
		}(dep)
	}

	signal.Notify(a.osSignalChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-runCtx.Done():
		log.Info().Str("service", a.serviceName).Msg("context cancelled, shutting down")
	case depErr := <-a.depFailChan:
		log.Error().Err(depErr).Msg("dependency failed")
	case sig := <-a.osSignalChan:
		log.Info().Str("signal", sig.String()).Msg("os signal received, shutting down")
	}

	signal.Stop(a.osSignalChan)
	return a.stop()
}

// stop runs Stop on each dependency in registration order, bounded by the
// configured timeout.
func (a *App) stop() error {
	if !a.stopCalled.CompareAndSwap(false, true) {
		return errors.New("stop has already been called")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), a.stopTimeout)

	// guarded: a stop pass that outlives the deadline may still be appending
	// when the timeout path reads the collected errors
	var mu sync.Mutex
	var errGrp []error
	go func() {
		defer cancel()
		for _, dep := range a.deps {
			log.Info().Str("dependency", dep.Name()).Msg("stopping dependency")
			if err := dep.Stop(); err != nil {
				mu.Lock()
				errGrp = append(errGrp, fmt.Errorf("failure in Stop() for dependency %s: %w", dep.Name(), err))
				mu.Unlock()
			}
		}
	}()

	<-stopCtx.Done()
	mu.Lock()
	defer mu.Unlock()
	if err := stopCtx.Err(); errors.Is(err, context.DeadlineExceeded) {
		errGrp = append(errGrp, err)
	}
	return errors.Join(errGrp...)
}
