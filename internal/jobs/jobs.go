// internal/jobs/jobs.go
//
// Fire-and-forget background jobs.
// Responsibilities:
//   - A named-handler registry (Runner).
//   - Queue implementations: in-process worker (LocalQueue) and RabbitMQ (AMQPQueue).
//   - A periodic scheduler standing in for cron entries.
//
// Submit never blocks the caller and never reports job failure to it; failures
// are logged by whoever runs the job.

package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Known job names.
const (
	CacheAverageAttempts = "cache_average_attempts"
	SendReminders        = "send_reminder"
)

// Handler executes one job.
type Handler func(ctx context.Context) error

// Queue accepts job submissions.
type Queue interface {
	Submit(name string)
}

// Runner maps job names to handlers.
type Runner struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRunner returns an empty registry.
func NewRunner() *Runner {
	return &Runner{handlers: make(map[string]Handler)}
}

// Handle registers h under name, replacing any earlier handler.
func (r *Runner) Handle(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Run executes the named job.
func (r *Runner) Run(ctx context.Context, name string) error {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("jobs: no handler for %q", name)
	}
	start := time.Now()
	err := h(ctx)
	log.Debug().Str("job", name).Dur("took", time.Since(start)).Err(err).Msg("job finished")
	return err
}

// Every submits name to q on each tick until ctx is done. A non-positive
// interval disables the schedule.
func Every(ctx context.Context, q Queue, name string, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				q.Submit(name)
			}
		}
	}()
}
