package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/tillpoint/tillpoint-api/internal/application/service"
	"github.com/tillpoint/tillpoint-api/internal/config"
)

// Scheduler drives the time-based shift sweeps. It owns two tickers: a
// one-minute tick for end-of-day auto close and a five-minute tick for the
// inactivity close. Each tick runs inside its own error boundary, so a
// panicking or failing sweep never stops the ticker loop.
type Scheduler struct {
	shiftService *service.ShiftService
	cfg          config.ShiftConfig

	autoCloseInterval  time.Duration
	inactivityInterval time.Duration

	stop chan struct{}
	done chan struct{}
}

// New creates a scheduler for the given shift service
func New(shiftService *service.ShiftService, cfg config.ShiftConfig) *Scheduler {
	return &Scheduler{
		shiftService:       shiftService,
		cfg:                cfg,
		autoCloseInterval:  time.Minute,
		inactivityInterval: 5 * time.Minute,
		stop:               make(chan struct{}),
		done:               make(chan struct{}),
	}
}

// Start launches the ticker loop in its own goroutine
func (s *Scheduler) Start() {
	go s.run()
	log.Println("Shift scheduler started")
}

// Stop terminates the ticker loop and waits for the current tick to finish
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
	log.Println("Shift scheduler stopped")
}

func (s *Scheduler) run() {
	defer close(s.done)

	autoClose := time.NewTicker(s.autoCloseInterval)
	defer autoClose.Stop()
	inactivity := time.NewTicker(s.inactivityInterval)
	defer inactivity.Stop()

	timeout := time.Duration(s.cfg.InactivityTimeoutMinutes) * time.Minute

	for {
		select {
		case <-s.stop:
			return
		case <-autoClose.C:
			s.runTick("auto-close", func(ctx context.Context) error {
				return s.shiftService.AutoCloseShifts(ctx)
			})
		case <-inactivity.C:
			s.runTick("inactivity-close", func(ctx context.Context) error {
				return s.shiftService.CloseInactiveShifts(ctx, timeout)
			})
		}
	}
}

// runTick executes one sweep with panic recovery and a bounded deadline
func (s *Scheduler) runTick(name string, fn func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("scheduler: %s tick panicked: %v", name, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := fn(ctx); err != nil {
		log.Printf("scheduler: %s tick failed: %v", name, err)
	}
}
