package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/absmach/pkgbench/pkg/stats"
	"github.com/absmach/supermq/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const maxParallelDownloads = 4

var (
	errFailedDownload = errors.New("failed to download metrics")
	errFailedProcess  = errors.New("failed to process metrics")
)

var (
	outputDir = ""
	showStats = false
	aggregate = false
	summaryOf = ""
)

type metricsResult struct {
	TaskID     string                         `json:"task_id"`
	File       string                         `json:"file,omitempty"`
	Rows       int                            `json:"rows"`
	Stats      stats.StatsData                `json:"stats,omitempty"`
	Aggregates map[string]stats.ToolAggregate `json:"aggregates,omitempty"`
	Summary    *stats.Summary                 `json:"summary,omitempty"`

	data []byte
}

// MetricsFileName matches the attachment name the metrics endpoint sends in
// its Content-Disposition header.
func MetricsFileName(taskID string) string {
	return fmt.Sprintf("metrics_comparison_%s.csv", taskID)
}

func newMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics <task_id> [task_id...]",
		Short: "Download task metrics",
		Long: `Download the metrics CSV of completed tasks. The service hands the
artifact out once; later downloads report data_already_retrieved.

Examples:
  # Print the raw CSV
  pkgbench tasks metrics 0b8e...

  # Save several artifacts and print per tool statistics
  pkgbench tasks metrics 0b8e... 77f1... --output-dir ./metrics --stats

  # Min, max and average execution time over all tools
  pkgbench tasks metrics 0b8e... --summary execution`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			var metric stats.Metric
			if summaryOf != "" {
				m, err := stats.ParseMetric(summaryOf)
				if err != nil {
					logErrorCmd(*cmd, err)

					return
				}
				metric = m
			}

			results := make([]metricsResult, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(maxParallelDownloads)
			for i, id := range args {
				g.Go(func() error {
					data, err := psdk.DownloadMetrics(ctx, id)
					if err != nil {
						return errors.Wrap(errFailedDownload, fmt.Errorf("task %s: %w", id, err))
					}
					res, err := processMetrics(id, data, metric)
					if err != nil {
						return errors.Wrap(errFailedProcess, fmt.Errorf("task %s: %w", id, err))
					}
					results[i] = res

					return nil
				})
			}
			if err := g.Wait(); err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			for _, res := range results {
				if outputDir == "" && !showStats && !aggregate && summaryOf == "" {
					fmt.Fprint(cmd.OutOrStdout(), string(res.data))

					continue
				}
				if res.File != "" {
					logSuccessCmd(*cmd, fmt.Sprintf("saved %s", res.File))
				}
				logJSONCmd(*cmd, res)
			}
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory the CSV files are written to")
	cmd.Flags().BoolVar(&showStats, "stats", false, "Print quartile statistics per tool")
	cmd.Flags().BoolVar(&aggregate, "aggregate", false, "Print average metrics per tool")
	cmd.Flags().StringVar(&summaryOf, "summary", "", "Print min, max and average of a metric (execution, cpu, memory)")

	return cmd
}

func processMetrics(id string, data []byte, metric stats.Metric) (metricsResult, error) {
	res := metricsResult{TaskID: id, data: data}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return res, err
		}
		res.File = filepath.Join(outputDir, MetricsFileName(id))
		if err := os.WriteFile(res.File, data, filePermission); err != nil {
			return res, err
		}
	}

	if !showStats && !aggregate && metric == "" {
		return res, nil
	}

	rows, err := stats.ParseCSVBytes(data)
	if err != nil {
		return res, err
	}
	res.Rows = len(rows)
	if showStats {
		res.Stats = stats.GenerateStats(rows)
	}
	if aggregate {
		res.Aggregates = stats.AggregateByTool(rows)
	}
	if metric != "" {
		sum := stats.MetricStatistics(rows, metric)
		res.Summary = &sum
	}

	return res, nil
}
