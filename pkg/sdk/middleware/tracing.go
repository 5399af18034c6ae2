package middleware

import (
	"context"

	"github.com/absmach/pkgbench/pkg/sdk"
	"github.com/absmach/pkgbench/task"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ sdk.SDK = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    sdk.SDK
}

func Tracing(tracer trace.Tracer, svc sdk.SDK) sdk.SDK {
	return &tracing{tracer, svc}
}

func (tm *tracing) SearchPackages(ctx context.Context, query string) (resp task.SearchResponse, err error) {
	ctx, span := tm.tracer.Start(ctx, "search-packages", trace.WithAttributes(
		attribute.String("query", query),
	))
	defer endSpan(span, &err)

	return tm.svc.SearchPackages(ctx, query)
}

func (tm *tracing) StartAnalysis(ctx context.Context, tc task.TaskCreate) (resp task.Task, err error) {
	ctx, span := tm.tracer.Start(ctx, "start-analysis", trace.WithAttributes(
		attribute.String("analyzer_name", tc.AnalyzerName),
		attribute.String("repository_url", tc.RepositoryURL),
	))
	defer endSpan(span, &err)

	return tm.svc.StartAnalysis(ctx, tc)
}

func (tm *tracing) GetTaskStatus(ctx context.Context, id string) (resp task.StatusResponse, err error) {
	ctx, span := tm.tracer.Start(ctx, "get-task-status", trace.WithAttributes(
		attribute.String("id", id),
	))
	defer endSpan(span, &err)

	return tm.svc.GetTaskStatus(ctx, id)
}

func (tm *tracing) CancelTask(ctx context.Context, id string) (resp task.CancelResponse, err error) {
	ctx, span := tm.tracer.Start(ctx, "cancel-task", trace.WithAttributes(
		attribute.String("id", id),
	))
	defer endSpan(span, &err)

	return tm.svc.CancelTask(ctx, id)
}

func (tm *tracing) DownloadMetrics(ctx context.Context, id string) (data []byte, err error) {
	ctx, span := tm.tracer.Start(ctx, "download-metrics", trace.WithAttributes(
		attribute.String("id", id),
	))
	defer endSpan(span, &err)

	return tm.svc.DownloadMetrics(ctx, id)
}

func endSpan(span trace.Span, err *error) {
	if *err != nil {
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	}
	span.End()
}
