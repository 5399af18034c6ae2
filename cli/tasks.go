package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/absmach/pkgbench/analyzer"
	pkgerrors "github.com/absmach/pkgbench/pkg/errors"
	"github.com/absmach/pkgbench/pkg/stats"
	"github.com/absmach/pkgbench/pkg/validate"
	"github.com/absmach/pkgbench/task"
	"github.com/absmach/supermq/pkg/errors"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var errAnalyzerRequired = errors.New("analyzer is required")

var (
	commandTemplate = ""
	wait            = false
	interactive     = false
	withReport      = false
)

// analysisResult is printed once a waited analysis finishes.
type analysisResult struct {
	State  analyzer.State `json:"state"`
	Report *stats.Report  `json:"report,omitempty"`
}

func NewTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks [analyze|status|cancel|metrics]",
		Short: "Analysis tasks",
		Long:  `Start, inspect and cancel analysis tasks and download their metrics.`,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze <analyzer> <repository_url>",
		Short: "Start analysis",
		Long: `Start an analysis of a GitHub repository with the given analyzer.

Examples:
  # Submit and return immediately
  pkgbench tasks analyze ruff https://github.com/astral-sh/ruff

  # Submit, follow the task until it finishes and print its statistics
  pkgbench tasks analyze ruff https://github.com/astral-sh/ruff --wait --report

  # Fill the request in a form
  pkgbench tasks analyze --interactive`,
		Run: func(cmd *cobra.Command, args []string) {
			in := task.TaskCreate{CommandTemplate: commandTemplate}

			switch {
			case interactive:
				form := analyzeForm(&in).
					WithInput(cmd.InOrStdin()).
					WithOutput(cmd.OutOrStdout())
				if err := form.RunWithContext(cmd.Context()); err != nil {
					logErrorCmd(*cmd, err)

					return
				}
			case len(args) == 2:
				in.AnalyzerName, in.RepositoryURL = args[0], args[1]
			default:
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			if !validate.IsValidGithubURL(in.RepositoryURL) {
				logErrorCmd(*cmd, fmt.Errorf("%w: %s", pkgerrors.ErrInvalidRepositoryURL, in.RepositoryURL))

				return
			}

			if !wait {
				t, err := psdk.StartAnalysis(cmd.Context(), in)
				if err != nil {
					logErrorCmd(*cmd, err)

					return
				}
				logJSONCmd(*cmd, t)

				return
			}

			res, err := runAnalysis(cmd, in)
			if err != nil {
				logErrorCmd(*cmd, err)
			}
			logJSONCmd(*cmd, res)
		},
	}

	analyzeCmd.Flags().StringVar(
		&commandTemplate,
		"command-template",
		"",
		fmt.Sprintf("Command run for every package (default %q)", task.DefaultCommandTemplate),
	)
	analyzeCmd.Flags().BoolVarP(&wait, "wait", "w", false, "Poll the task until it reaches a terminal status")
	analyzeCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for the analysis parameters")
	analyzeCmd.Flags().BoolVar(&withReport, "report", false, "With --wait, download the metrics and print statistics")

	statusCmd := &cobra.Command{
		Use:   "status <task_id>",
		Short: "Task status",
		Long:  `Get the current status of a task.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			st, err := psdk.GetTaskStatus(cmd.Context(), args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, st)
		},
	}

	cancelCmd := &cobra.Command{
		Use:   "cancel <task_id>",
		Short: "Cancel task",
		Long:  `Cancel a pending or running task.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			resp, err := psdk.CancelTask(cmd.Context(), args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			if resp.Status != task.Cancelled {
				logWarnCmd(*cmd, fmt.Sprintf("task %s reported status %s", args[0], resp.Status))
			}
			logJSONCmd(*cmd, resp)
		},
	}

	cmd.AddCommand(analyzeCmd)
	cmd.AddCommand(statusCmd)
	cmd.AddCommand(cancelCmd)
	cmd.AddCommand(newMetricsCmd())

	return cmd
}

func analyzeForm(in *task.TaskCreate) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Analyzer").
				Value(&in.AnalyzerName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errAnalyzerRequired
					}

					return nil
				}),
			huh.NewInput().
				Title("Repository URL").
				Placeholder("https://github.com/owner/repo").
				Value(&in.RepositoryURL).
				Validate(func(s string) error {
					if !validate.IsValidGithubURL(s) {
						return pkgerrors.ErrInvalidRepositoryURL
					}

					return nil
				}),
			huh.NewInput().
				Title("Command template").
				Placeholder(task.DefaultCommandTemplate).
				Value(&in.CommandTemplate),
		),
	)
}

// runAnalysis starts the task and follows it until polling ends. An
// interrupt cancels the task on the service before returning.
func runAnalysis(cmd *cobra.Command, in task.TaskCreate) (analysisResult, error) {
	done := make(chan struct{}, 1)
	s := analyzer.NewSession(psdk, logger,
		analyzer.WithPollInterval(settings.PollInterval),
		analyzer.WithObserver(func(ev analyzer.Event) {
			switch ev.Kind {
			case analyzer.StatusChanged:
				logSuccessCmd(*cmd, fmt.Sprintf("task %s: %s", ev.TaskID, ev.Status))
			case analyzer.PollStopped:
				select {
				case done <- struct{}{}:
				default:
				}
			}
		}),
	)
	defer s.Close()

	ctx := cmd.Context()
	if _, err := s.StartAnalysis(ctx, in); err != nil {
		return analysisResult{State: s.State()}, err
	}

	select {
	case <-done:
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), settings.Timeout)
		defer cancel()
		if _, err := s.CancelCurrentTask(cctx); err != nil {
			return analysisResult{State: s.State()}, err
		}

		return analysisResult{State: s.State()}, ctx.Err()
	}

	st := s.State()
	res := analysisResult{State: st}
	if st.ErrorMessage != "" {
		return res, errors.New(st.ErrorMessage)
	}
	if !withReport || st.TaskStatus != task.Completed {
		return res, nil
	}

	report, err := s.LoadReport(ctx, st.CurrentTask.ID)
	if err != nil {
		return res, err
	}
	res.Report = &report

	return res, nil
}
