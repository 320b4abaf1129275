package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Task is a function that represents a background job
type Task func(ctx context.Context) error

// Pool runs fire-and-forget work off the request path: broadcast fan-out,
// cache writes, view-count bumps. Tasks are best-effort and may be dropped
// under pressure.
type Pool struct {
	taskQueue chan Task
	wg        sync.WaitGroup
	isClosing atomic.Bool
}

func NewPool(size int) *Pool {
	wp := &Pool{
		taskQueue: make(chan Task, 1000), // Buffer for 1000 pending tasks
	}

	for i := 0; i < size; i++ {
		wp.wg.Add(1)
		go wp.startWorker()
	}

	return wp
}

func (wp *Pool) startWorker() {
	defer wp.wg.Done()
	for task := range wp.taskQueue {
		ctx := context.Background()
		if err := task(ctx); err != nil {
			log.Warn().Err(err).Msg("worker task failed")
		}
	}
}

func (wp *Pool) Submit(t Task) {
	if wp.isClosing.Load() {
		log.Warn().Msg("task submitted during shutdown, dropping")
		return
	}
	select {
	case wp.taskQueue <- t:
	default:
		log.Warn().Msg("task queue full, dropping task")
	}
}

// Shutdown closes the queue and waits for workers to finish
func (wp *Pool) Shutdown() {
	wp.isClosing.Store(true)
	close(wp.taskQueue)
	wp.wg.Wait()
}
