package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	pkgerrors "github.com/absmach/pkgbench/pkg/errors"
	"github.com/absmach/pkgbench/pkg/sdk/middleware"
	"github.com/absmach/pkgbench/pkg/sdk/mocks"
	"github.com/absmach/pkgbench/task"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	svc := &mocks.SDK{}
	svc.On("StartAnalysis", mock.Anything, mock.Anything).
		Return(task.Task{ID: "task-1", Status: task.Pending}, nil)
	svc.On("CancelTask", mock.Anything, "task-1").
		Return(task.CancelResponse{}, &pkgerrors.APIError{StatusCode: 404, Message: "Task not found"})

	lm := middleware.Logging(logger, svc)

	_, err := lm.StartAnalysis(context.Background(), task.TaskCreate{AnalyzerName: "ruff"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Start analysis completed successfully")
	assert.Contains(t, buf.String(), `"task_id":"task-1"`)

	buf.Reset()
	_, err = lm.CancelTask(context.Background(), "task-1")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Cancel task failed")
	assert.Contains(t, buf.String(), "Task not found")

	svc.AssertExpectations(t)
}

func TestMetricsMiddleware(t *testing.T) {
	counterVec := stdprometheus.NewCounterVec(stdprometheus.CounterOpts{
		Name: "request_count",
	}, []string{"method"})
	latencyVec := stdprometheus.NewSummaryVec(stdprometheus.SummaryOpts{
		Name: "request_latency_microseconds",
	}, []string{"method"})

	svc := &mocks.SDK{}
	svc.On("GetTaskStatus", mock.Anything, "task-1").
		Return(task.StatusResponse{TaskID: "task-1", Status: task.Running}, nil)
	svc.On("CancelTask", mock.Anything, "task-1").
		Return(task.CancelResponse{}, errors.New("boom"))

	mm := middleware.Metrics(kitprometheus.NewCounter(counterVec), kitprometheus.NewSummary(latencyVec), svc)

	for range 3 {
		_, err := mm.GetTaskStatus(context.Background(), "task-1")
		require.NoError(t, err)
	}
	_, err := mm.CancelTask(context.Background(), "task-1")
	require.Error(t, err)

	cases := []struct {
		desc   string
		method string
		count  float64
	}{
		{desc: "successful calls", method: "get-task-status", count: 3},
		{desc: "failed calls are counted too", method: "cancel-task", count: 1},
		{desc: "untouched method", method: "download-metrics", count: 0},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.count, testutil.ToFloat64(counterVec.WithLabelValues(tc.method)))
		})
	}

	// One latency series per method that was called.
	assert.Equal(t, 2, testutil.CollectAndCount(latencyVec))
	svc.AssertNumberOfCalls(t, "GetTaskStatus", 3)
}

func TestTracingMiddleware(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	svc := &mocks.SDK{}
	svc.On("DownloadMetrics", mock.Anything, "task-1").Return([]byte("Tool\n"), nil)
	svc.On("DownloadMetrics", mock.Anything, "task-2").Return(nil, errors.New("boom"))

	tm := middleware.Tracing(tp.Tracer("test"), svc)

	_, err := tm.DownloadMetrics(context.Background(), "task-1")
	require.NoError(t, err)
	_, err = tm.DownloadMetrics(context.Background(), "task-2")
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "download-metrics", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
