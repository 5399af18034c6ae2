package middleware

import (
	"context"
	"time"

	"github.com/absmach/pkgbench/pkg/sdk"
	"github.com/absmach/pkgbench/task"
	"github.com/go-kit/kit/metrics"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

var _ sdk.SDK = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     sdk.SDK
}

// MakeMetrics returns request counter and latency histogram registered
// with the default Prometheus registerer.
func MakeMetrics(namespace, subsystem string) (*kitprometheus.Counter, *kitprometheus.Summary) {
	counter := kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_count",
		Help:      "Number of requests received.",
	}, []string{"method"})
	latency := kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_latency_microseconds",
		Help:      "Total duration of requests in microseconds.",
	}, []string{"method"})

	return counter, latency
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc sdk.SDK) sdk.SDK {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) SearchPackages(ctx context.Context, query string) (task.SearchResponse, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "search-packages").Add(1)
		mm.latency.With("method", "search-packages").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.SearchPackages(ctx, query)
}

func (mm *metricsMiddleware) StartAnalysis(ctx context.Context, tc task.TaskCreate) (task.Task, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "start-analysis").Add(1)
		mm.latency.With("method", "start-analysis").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.StartAnalysis(ctx, tc)
}

func (mm *metricsMiddleware) GetTaskStatus(ctx context.Context, id string) (task.StatusResponse, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "get-task-status").Add(1)
		mm.latency.With("method", "get-task-status").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.GetTaskStatus(ctx, id)
}

func (mm *metricsMiddleware) CancelTask(ctx context.Context, id string) (task.CancelResponse, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "cancel-task").Add(1)
		mm.latency.With("method", "cancel-task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.CancelTask(ctx, id)
}

func (mm *metricsMiddleware) DownloadMetrics(ctx context.Context, id string) ([]byte, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "download-metrics").Add(1)
		mm.latency.With("method", "download-metrics").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.DownloadMetrics(ctx, id)
}
