package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/damilare/otc-exchange/internal/observability"
	"github.com/damilare/otc-exchange/internal/service"
	"go.uber.org/zap"
)

// ExpiryWorker auto-cancels awaiting orders that outlived the expiry
// window. It polls at regular intervals and sweeps a bounded batch each
// tick; per-order locking in the service makes concurrent instances safe.
type ExpiryWorker struct {
	orders       *service.OrderService
	pollInterval time.Duration
	maxAge       time.Duration
	batchSize    int
	stopCh       chan struct{}
}

// NewExpiryWorker creates a worker with the default cadence.
func NewExpiryWorker(orders *service.OrderService) *ExpiryWorker {
	return &ExpiryWorker{
		orders:       orders,
		pollInterval: 5 * time.Minute,
		maxAge:       24 * time.Hour,
		batchSize:    50,
		stopCh:       make(chan struct{}),
	}
}

// WithPollInterval sets how often the sweep runs.
func (w *ExpiryWorker) WithPollInterval(interval time.Duration) *ExpiryWorker {
	w.pollInterval = interval
	return w
}

// WithMaxAge sets how old an awaiting order may grow before expiry.
func (w *ExpiryWorker) WithMaxAge(maxAge time.Duration) *ExpiryWorker {
	w.maxAge = maxAge
	return w
}

// WithBatchSize caps how many orders one sweep cancels.
func (w *ExpiryWorker) WithBatchSize(size int) *ExpiryWorker {
	w.batchSize = size
	return w
}

// Start runs the sweep loop until Stop is called or ctx is canceled.
func (w *ExpiryWorker) Start(ctx context.Context) {
	zap.L().Info("expiry worker starting",
		zap.Duration("poll_interval", w.pollInterval),
		zap.Duration("max_age", w.maxAge),
		zap.Int("batch_size", w.batchSize),
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("expiry worker stopping", zap.String("reason", "context canceled"))
			return
		case <-w.stopCh:
			zap.L().Info("expiry worker stopping", zap.String("reason", "stop signal"))
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// Stop signals the worker to stop.
func (w *ExpiryWorker) Stop() {
	close(w.stopCh)
}

// Run starts the worker in a goroutine and returns its stop function.
func (w *ExpiryWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	expired, err := w.orders.ExpireStale(ctx, w.maxAge, w.batchSize)
	if err != nil {
		observability.IncrementWorkerRun("expiry", "error")
		zap.L().Error("expiry sweep failed", zap.Error(err))
		return
	}
	observability.IncrementWorkerRun("expiry", "ok")
	if expired > 0 {
		zap.L().Info("expiry sweep cancelled stale orders", zap.Int("expired", expired))
	}
}

// SweepOnce runs a single sweep immediately. Useful for tests and manual
// triggering.
func (w *ExpiryWorker) SweepOnce(ctx context.Context) (int, error) {
	return w.orders.ExpireStale(ctx, w.maxAge, w.batchSize)
}

// String returns a string representation of the worker.
func (w *ExpiryWorker) String() string {
	return fmt.Sprintf("ExpiryWorker(interval=%v, max_age=%v, batch=%d)", w.pollInterval, w.maxAge, w.batchSize)
}
