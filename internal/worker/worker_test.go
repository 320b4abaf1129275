package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPool_RunsSubmittedTasks(t *testing.T) {
	pool := NewPool(2)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		pool.Submit(func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	pool.Shutdown()
	assert.Equal(t, int32(5), ran.Load())
}

func TestPool_SubmitAfterShutdownIsDropped(t *testing.T) {
	pool := NewPool(1)
	pool.Shutdown()

	var ran atomic.Bool
	pool.Submit(func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	time.Sleep(20 * time.Millisecond)
	assert.False(t, ran.Load())
}

func TestPool_FailedTaskDoesNotStopWorkers(t *testing.T) {
	pool := NewPool(1)

	pool.Submit(func(ctx context.Context) error {
		return assert.AnError
	})

	var ran atomic.Bool
	pool.Submit(func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	pool.Shutdown()
	assert.True(t, ran.Load())
}
