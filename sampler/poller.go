// Package sampler drives the device: on every tick it feeds source readings
// into the bound objects, drains the runtime's notification queue and hands
// the changes to every sink.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"ipso-client-coap/lwm2m"
)

// Sink receives drained resource changes.
type Sink interface {
	Deliver(ctx context.Context, snaps []lwm2m.Snapshot) error
	Name() string
}

// Drainer empties the runtime's notification queue.
type Drainer interface {
	Drain() []lwm2m.Snapshot
}

// Binding feeds a source into an object.
type Binding struct {
	Name   string
	Source Source
	Apply  func(v float64) error
}

type Poller struct {
	drainer  Drainer
	bindings []Binding
	sinks    []Sink
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

func NewPoller(drainer Drainer, bindings []Binding, sinks []Sink, interval time.Duration, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		drainer:  drainer,
		bindings: bindings,
		sinks:    sinks,
		interval: interval,
		logger:   logger,
	}
}

// Start begins ticking every interval until Stop.
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}
	if p.interval <= 0 {
		return fmt.Errorf("sampler: interval must be positive, got %v", p.interval)
	}

	p.running = true
	p.stopChan = make(chan struct{})
	p.wg.Add(1)

	go p.pollLoop(p.stopChan)

	p.logger.Info("sampler started",
		zap.Int("bindings", len(p.bindings)),
		zap.Int("sinks", len(p.sinks)),
		zap.Duration("interval", p.interval))

	return nil
}

// Stop halts the loop and waits for a running tick to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	p.logger.Info("sampler stopped")
}

func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) pollLoop(stop <-chan struct{}) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), p.interval)
			_ = p.Tick(ctx) // failures are logged per binding and sink
			cancel()
		}
	}
}

// Tick samples every binding, then drains and delivers. A failing binding or
// sink does not stop the others.
func (p *Poller) Tick(ctx context.Context) error {
	var errs []error

	for _, b := range p.bindings {
		v, err := b.Source.Read(ctx)
		if err == nil {
			err = b.Apply(v)
		}
		if err != nil {
			p.logger.Error("sample failed", zap.String("binding", b.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrSample, b.Name, err))
		}
	}

	if err := p.Flush(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Flush drains pending notifications and delivers them to every sink.
func (p *Poller) Flush(ctx context.Context) error {
	snaps := p.drainer.Drain()
	if len(snaps) == 0 {
		return nil
	}

	var errs []error
	for _, s := range p.sinks {
		if err := s.Deliver(ctx, snaps); err != nil {
			p.logger.Error("delivery failed", zap.String("sink", s.Name()), zap.Int("changes", len(snaps)), zap.Error(err))
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrDeliver, s.Name(), err))
		}
	}
	p.logger.Debug("flushed", zap.Int("changes", len(snaps)), zap.Int("sinks", len(p.sinks)))
	return errors.Join(errs...)
}
