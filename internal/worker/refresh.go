// Package worker runs the periodic background refresh that keeps the local
// stores in step with the backend while the process is long-lived (watch
// mode). One-shot commands never start it.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lifeassistant/internal/log"
)

// Refresher is any store that can pull fresh state from the backend.
type Refresher interface {
	Name() string
	Refresh(ctx context.Context) error
}

// RefreshFunc adapts a named function to the Refresher interface.
type RefreshFunc struct {
	Label string
	Fn    func(ctx context.Context) error
}

func (r RefreshFunc) Name() string                      { return r.Label }
func (r RefreshFunc) Refresh(ctx context.Context) error { return r.Fn(ctx) }

// RefreshWorker periodically refreshes a set of stores. A failing store is
// logged and skipped; the others still run, and the next tick retries all
// of them.
type RefreshWorker struct {
	refreshers []Refresher
	interval   time.Duration
	logger     *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewRefreshWorker(interval time.Duration, logger *log.Logger, refreshers ...Refresher) *RefreshWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &RefreshWorker{
		refreshers: refreshers,
		interval:   interval,
		logger:     logger.WithComponent(log.ComponentWorker),
	}
}

// Start begins the refresh loop. Returns an error if already running.
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("refresh worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	w.logger.InfoContext(ctx, "Refresh worker started",
		log.FieldOperation, log.OpStartup,
		log.FieldInterval, w.interval.String())
	return nil
}

// Stop signals the loop and waits for the in-flight cycle to finish, or for
// ctx to expire. Concurrent and repeated calls are safe; only the first one
// closes the stop channel.
func (w *RefreshWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		w.logger.InfoContext(ctx, "Refresh worker stopped",
			log.FieldOperation, log.OpShutdown)
	case <-ctx.Done():
		w.logger.WarnContext(ctx, "Refresh worker stop timed out")
		return ctx.Err()
	}
	return nil
}

// IsRunning reports whether the loop is active.
func (w *RefreshWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *RefreshWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Refresh immediately on startup so watch mode never shows an empty
	// state for a full interval.
	w.refreshAll(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.refreshAll(ctx)
		}
	}
}

func (w *RefreshWorker) refreshAll(ctx context.Context) {
	for _, r := range w.refreshers {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := r.Refresh(ctx); err != nil {
			w.logger.WarnContext(ctx, "Refresh failed",
				log.FieldOperation, log.OpRefresh,
				log.FieldTarget, r.Name(),
				log.FieldError, err.Error())
			continue
		}
		w.logger.DebugContext(ctx, "Refreshed",
			log.FieldOperation, log.OpRefresh,
			log.FieldTarget, r.Name())
	}
}
