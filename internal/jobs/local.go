package jobs

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// LocalQueue runs jobs on a single in-process worker goroutine.
type LocalQueue struct {
	runner *Runner
	ch     chan string
	wg     sync.WaitGroup
}

// NewLocalQueue creates a queue buffering up to size pending jobs. Submissions
// beyond that are dropped with a warning.
func NewLocalQueue(r *Runner, size int) *LocalQueue {
	if size <= 0 {
		size = 1
	}
	return &LocalQueue{runner: r, ch: make(chan string, size)}
}

// Start launches the worker. It stops when ctx is cancelled.
func (q *LocalQueue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case name := <-q.ch:
				if err := q.runner.Run(ctx, name); err != nil {
					log.Warn().Err(err).Str("job", name).Msg("job failed")
				}
			}
		}
	}()
}

// Wait blocks until the worker has exited.
func (q *LocalQueue) Wait() { q.wg.Wait() }

// Submit enqueues name without blocking.
func (q *LocalQueue) Submit(name string) {
	select {
	case q.ch <- name:
	default:
		log.Warn().Str("job", name).Msg("job queue full, dropping")
	}
}
