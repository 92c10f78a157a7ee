package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshWorkerRunsImmediatelyAndTicks(t *testing.T) {
	var calls atomic.Int64
	w := NewRefreshWorker(20*time.Millisecond, nil, RefreshFunc{
		Label: "finance",
		Fn: func(ctx context.Context) error {
			calls.Add(1)
			return nil
		},
	})

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop(context.Background())

	assert.Eventually(t, func() bool { return calls.Load() >= 3 },
		2*time.Second, 5*time.Millisecond,
		"first refresh fires at startup, then once per tick")
}

func TestRefreshWorkerFailureDoesNotStopOthers(t *testing.T) {
	var healthy atomic.Int64
	w := NewRefreshWorker(10*time.Millisecond, nil,
		RefreshFunc{Label: "broken", Fn: func(ctx context.Context) error {
			return errors.New("backend down")
		}},
		RefreshFunc{Label: "healthy", Fn: func(ctx context.Context) error {
			healthy.Add(1)
			return nil
		}},
	)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop(context.Background())

	assert.Eventually(t, func() bool { return healthy.Load() >= 2 },
		2*time.Second, 5*time.Millisecond)
}

func TestRefreshWorkerDoubleStart(t *testing.T) {
	w := NewRefreshWorker(time.Hour, nil)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop(context.Background())

	assert.Error(t, w.Start(context.Background()))
	assert.True(t, w.IsRunning())
}

func TestRefreshWorkerStop(t *testing.T) {
	var calls atomic.Int64
	w := NewRefreshWorker(10*time.Millisecond, nil, RefreshFunc{
		Label: "finance",
		Fn: func(ctx context.Context) error {
			calls.Add(1)
			return nil
		},
	})

	require.NoError(t, w.Start(context.Background()))
	require.Eventually(t, func() bool { return calls.Load() >= 1 },
		2*time.Second, 5*time.Millisecond)

	require.NoError(t, w.Stop(context.Background()))
	assert.False(t, w.IsRunning())

	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, calls.Load(), "no refresh after stop")

	// Stopping twice is a no-op.
	require.NoError(t, w.Stop(context.Background()))
}

func TestRefreshWorkerConcurrentStop(t *testing.T) {
	w := NewRefreshWorker(time.Hour, nil, RefreshFunc{
		Label: "finance",
		Fn:    func(ctx context.Context) error { return nil },
	})
	require.NoError(t, w.Start(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.Stop(context.Background()))
		}()
	}
	wg.Wait()
	assert.False(t, w.IsRunning())
}

func TestRefreshWorkerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewRefreshWorker(10*time.Millisecond, nil, RefreshFunc{
		Label: "finance",
		Fn:    func(ctx context.Context) error { return nil },
	})

	require.NoError(t, w.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool {
		select {
		case <-w.doneCh:
			return true
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond, "loop exits when the context is cancelled")
}
