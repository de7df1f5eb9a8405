package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpDurationHistogram *prometheus.HistogramVec
	orderCreatedCounter   *prometheus.CounterVec
	orderTransitionCount  *prometheus.CounterVec
	quoteCounter          *prometheus.CounterVec
	expiredOrderCounter   prometheus.Counter
	activeOrdersGauge     prometheus.Gauge
	idempotencyCounter    *prometheus.CounterVec
	workerRunCounter      *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		orderCreatedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders created by direction",
		}, []string{"direction"})

		orderTransitionCount = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_transitions_total",
			Help: "Order state machine transitions",
		}, []string{"from", "to"})

		quoteCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_events_total",
			Help: "Quote token issue and redeem outcomes",
		}, []string{"outcome"})

		expiredOrderCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_expired_total",
			Help: "Awaiting orders auto-cancelled by the expiry sweeper",
		})

		activeOrdersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orders_active",
			Help: "Current number of non-terminal orders",
		})

		idempotencyCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idempotency_events_total",
			Help: "Idempotency middleware outcomes",
		}, []string{"outcome"})

		workerRunCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_runs_total",
			Help: "Background worker run outcomes",
		}, []string{"worker", "result"})

		prometheus.MustRegister(
			httpDurationHistogram,
			orderCreatedCounter,
			orderTransitionCount,
			quoteCounter,
			expiredOrderCounter,
			activeOrdersGauge,
			idempotencyCounter,
			workerRunCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementOrderCreated(direction string) {
	if orderCreatedCounter == nil {
		return
	}
	orderCreatedCounter.WithLabelValues(direction).Inc()
}

func IncrementOrderTransition(from, to string) {
	if orderTransitionCount == nil {
		return
	}
	orderTransitionCount.WithLabelValues(from, to).Inc()
}

func IncrementQuoteEvent(outcome string) {
	if quoteCounter == nil {
		return
	}
	quoteCounter.WithLabelValues(outcome).Inc()
}

func IncrementExpiredOrders(n int) {
	if expiredOrderCounter == nil {
		return
	}
	expiredOrderCounter.Add(float64(n))
}

func SetActiveOrders(n int64) {
	if activeOrdersGauge == nil {
		return
	}
	activeOrdersGauge.Set(float64(n))
}

func IncrementIdempotencyEvent(outcome string) {
	if idempotencyCounter == nil {
		return
	}
	idempotencyCounter.WithLabelValues(outcome).Inc()
}

func IncrementWorkerRun(worker, result string) {
	if workerRunCounter == nil {
		return
	}
	workerRunCounter.WithLabelValues(worker, result).Inc()
}
