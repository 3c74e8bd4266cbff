// Package scheduler periodically prefetches the default selection through the
// fetch cache so the first interactive request hits warm entries.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/ewanvin/seaicemod/internal/seaice"
)

// Warmup runs the configured selection on a fixed interval.
type Warmup struct {
	scheduler *gocron.Scheduler
	service   *seaice.Service
	selection seaice.Selection
	interval  time.Duration
	timeout   time.Duration
}

// New creates a Warmup. An interval of zero disables scheduling.
func New(service *seaice.Service, selection seaice.Selection, interval, timeout time.Duration) *Warmup {
	return &Warmup{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		selection: selection,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the warmup job and starts the underlying scheduler.
func (w *Warmup) Start() error {
	if w.interval <= 0 {
		log.Println("warmup: disabled")
		return nil
	}

	_, err := w.scheduler.Every(w.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()

		if _, err := w.service.BuildView(ctx, w.selection); err != nil {
			log.Printf("warmup: prefetch failed: %v", err)
			return
		}
		log.Println("warmup: prefetch completed")
	})
	if err != nil {
		return err
	}

	w.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (w *Warmup) Stop() {
	if w.scheduler != nil {
		w.scheduler.Stop()
	}
}
