package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/damilare/otc-exchange/internal/observability"
	"github.com/damilare/otc-exchange/internal/service"
	"go.uber.org/zap"
)

// PriceWorker pushes catalog price snapshots to feed subscribers on a
// fixed cadence so websocket clients see admin price edits without
// polling.
type PriceWorker struct {
	feed         *service.PriceFeed
	pollInterval time.Duration
	stopCh       chan struct{}
}

func NewPriceWorker(feed *service.PriceFeed) *PriceWorker {
	return &PriceWorker{
		feed:         feed,
		pollInterval: 10 * time.Second,
		stopCh:       make(chan struct{}),
	}
}

// WithPollInterval sets the publish cadence.
func (w *PriceWorker) WithPollInterval(interval time.Duration) *PriceWorker {
	w.pollInterval = interval
	return w
}

// Start runs the publish loop until Stop is called or ctx is canceled.
func (w *PriceWorker) Start(ctx context.Context) {
	zap.L().Info("price worker starting", zap.Duration("poll_interval", w.pollInterval))

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("price worker stopping", zap.String("reason", "context canceled"))
			return
		case <-w.stopCh:
			zap.L().Info("price worker stopping", zap.String("reason", "stop signal"))
			return
		case <-ticker.C:
			w.publish(ctx)
		}
	}
}

// Stop signals the worker to stop.
func (w *PriceWorker) Stop() {
	close(w.stopCh)
}

// Run starts the worker in a goroutine and returns its stop function.
func (w *PriceWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

func (w *PriceWorker) publish(ctx context.Context) {
	if err := w.feed.Publish(ctx); err != nil {
		observability.IncrementWorkerRun("price_feed", "error")
		zap.L().Error("price publish failed", zap.Error(err))
		return
	}
	observability.IncrementWorkerRun("price_feed", "ok")
}

// String returns a string representation of the worker.
func (w *PriceWorker) String() string {
	return fmt.Sprintf("PriceWorker(interval=%v)", w.pollInterval)
}
