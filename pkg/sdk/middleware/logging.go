package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/absmach/pkgbench/pkg/sdk"
	"github.com/absmach/pkgbench/task"
)

var _ sdk.SDK = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    sdk.SDK
}

func Logging(logger *slog.Logger, svc sdk.SDK) sdk.SDK {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) SearchPackages(ctx context.Context, query string) (resp task.SearchResponse, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("query", query),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Search packages failed", args...)

			return
		}
		args = append(args, slog.Int("results", len(resp.Packages)))
		lm.logger.Info("Search packages completed successfully", args...)
	}(time.Now())

	return lm.svc.SearchPackages(ctx, query)
}

func (lm *loggingMiddleware) StartAnalysis(ctx context.Context, tc task.TaskCreate) (resp task.Task, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("task",
				slog.String("analyzer", tc.AnalyzerName),
				slog.String("repository_url", tc.RepositoryURL),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Start analysis failed", args...)

			return
		}
		args = append(args, slog.String("task_id", resp.ID), slog.String("status", resp.Status.String()))
		lm.logger.Info("Start analysis completed successfully", args...)
	}(time.Now())

	return lm.svc.StartAnalysis(ctx, tc)
}

func (lm *loggingMiddleware) GetTaskStatus(ctx context.Context, id string) (resp task.StatusResponse, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("task",
				slog.String("id", id),
				slog.String("status", resp.Status.String()),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get task status failed", args...)

			return
		}
		lm.logger.Debug("Get task status completed successfully", args...)
	}(time.Now())

	return lm.svc.GetTaskStatus(ctx, id)
}

func (lm *loggingMiddleware) CancelTask(ctx context.Context, id string) (resp task.CancelResponse, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("task",
				slog.String("id", id),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Cancel task failed", args...)

			return
		}
		args = append(args, slog.String("reported_status", resp.Status.String()))
		lm.logger.Info("Cancel task completed successfully", args...)
	}(time.Now())

	return lm.svc.CancelTask(ctx, id)
}

func (lm *loggingMiddleware) DownloadMetrics(ctx context.Context, id string) (data []byte, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("task",
				slog.String("id", id),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Download metrics failed", args...)

			return
		}
		args = append(args, slog.Int("size_bytes", len(data)))
		lm.logger.Info("Download metrics completed successfully", args...)
	}(time.Now())

	return lm.svc.DownloadMetrics(ctx, id)
}
