// Package analyzer implements the client side lifecycle of an analysis
// task: submission, periodic status polling, cancellation and retrieval of
// the resulting metrics.
package analyzer

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/0x6flab/namegenerator"
	pkgerrors "github.com/absmach/pkgbench/pkg/errors"
	"github.com/absmach/pkgbench/pkg/sdk"
	"github.com/absmach/pkgbench/pkg/stats"
	"github.com/absmach/pkgbench/pkg/validate"
	"github.com/absmach/pkgbench/task"
	"github.com/google/uuid"
	"k8s.io/utils/clock"
)

// State is a point in time copy of the session state.
type State struct {
	Packages     []task.Package `json:"packages"`
	SearchQuery  string         `json:"search_query"`
	IsSearching  bool           `json:"is_searching"`
	CurrentTask  *task.Task     `json:"current_task,omitempty"`
	TaskStatus   task.Status    `json:"task_status,omitempty"`
	IsPolling    bool           `json:"is_polling"`
	ErrorMessage string         `json:"error_message,omitempty"`
	IsLoading    bool           `json:"is_loading"`
}

// IsTaskRunning reports whether the current task is pending or running.
func (st State) IsTaskRunning() bool {
	return st.TaskStatus.IsActive()
}

// CanStartAnalysis is true when nothing is loading and no task is running.
func (st State) CanStartAnalysis() bool {
	return !st.IsLoading && !st.IsTaskRunning()
}

// Session owns the state of one analysis workflow. A Session is safe for
// concurrent use; it must be released with Close.
type Session struct {
	ID   string
	Name string

	sdk          sdk.SDK
	logger       *slog.Logger
	clock        clock.WithTickerAndDelayedExecution
	pollInterval time.Duration
	searchWait   time.Duration
	observers    []Observer
	search       *validate.Debouncer[string]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	state     State
	poll      *pollLoop
	searchSeq uint64
}

func NewSession(client sdk.SDK, logger *slog.Logger, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		ID:           uuid.NewString(),
		Name:         namegenerator.NewGenerator().Generate(),
		sdk:          client,
		clock:        clock.RealClock{},
		pollInterval: DefPollInterval,
		searchWait:   DefSearchDebounce,
		ctx:          ctx,
		cancel:       cancel,
		state:        State{Packages: []task.Package{}},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger = logger.With(
		slog.Group("session",
			slog.String("id", s.ID),
			slog.String("name", s.Name),
		),
	)
	s.search = validate.NewDebouncerWithClock(s.clock, s.searchWait, func(query string) {
		_, _ = s.SearchPackages(s.ctx, query)
	})

	return s
}

// State returns a snapshot of the session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Packages = slices.Clone(s.state.Packages)
	if s.state.CurrentTask != nil {
		t := *s.state.CurrentTask
		st.CurrentTask = &t
	}
	st.IsPolling = s.poll != nil

	return st
}

func (s *Session) IsTaskRunning() bool {
	return s.State().IsTaskRunning()
}

func (s *Session) CanStartAnalysis() bool {
	return s.State().CanStartAnalysis()
}

func (s *Session) IsPolling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.poll != nil
}

// SearchPackages looks up PyPI packages. A blank query clears the results
// without calling the API. Results of a search superseded by a newer one
// are dropped.
func (s *Session) SearchPackages(ctx context.Context, query string) ([]task.Package, error) {
	s.mu.Lock()
	s.searchSeq++
	seq := s.searchSeq
	s.state.SearchQuery = query
	if strings.TrimSpace(query) == "" {
		s.state.Packages = []task.Package{}
		s.state.IsSearching = false
		s.mu.Unlock()
		s.emit(Event{Kind: PackagesUpdated})

		return []task.Package{}, nil
	}
	s.state.IsSearching = true
	s.state.ErrorMessage = ""
	s.mu.Unlock()

	resp, err := s.sdk.SearchPackages(ctx, query)

	s.mu.Lock()
	if seq != s.searchSeq {
		s.mu.Unlock()

		return resp.Packages, err
	}
	s.state.IsSearching = false
	if err != nil {
		s.state.Packages = []task.Package{}
		ev := s.recordErrorLocked(err, "Failed to search packages")
		s.mu.Unlock()
		s.logger.Error("Failed to search packages", slog.String("query", query), slog.Any("error", err))
		s.emit(ev)

		return nil, err
	}
	s.state.Packages = slices.Clone(resp.Packages)
	s.mu.Unlock()
	s.emit(Event{Kind: PackagesUpdated})

	return resp.Packages, nil
}

// SearchDebounced schedules a search that runs once the caller has stopped
// typing for the debounce period.
func (s *Session) SearchDebounced(query string) {
	s.search.Call(query)
}

// StartAnalysis submits a task and starts polling its status.
func (s *Session) StartAnalysis(ctx context.Context, input task.TaskCreate) (task.Task, error) {
	if !validate.IsValidGithubURL(input.RepositoryURL) {
		return task.Task{}, pkgerrors.ErrInvalidRepositoryURL
	}

	s.mu.Lock()
	if !s.state.CanStartAnalysis() {
		s.mu.Unlock()

		return task.Task{}, pkgerrors.ErrTaskInProgress
	}
	s.state.IsLoading = true
	s.state.ErrorMessage = ""
	s.mu.Unlock()

	created, err := s.sdk.StartAnalysis(ctx, input)

	s.mu.Lock()
	s.state.IsLoading = false
	if err != nil {
		ev := s.recordErrorLocked(err, "Failed to start analysis")
		s.mu.Unlock()
		s.logger.Error("Failed to start analysis",
			slog.String("analyzer", input.AnalyzerName),
			slog.String("repository_url", input.RepositoryURL),
			slog.Any("error", err))
		s.emit(ev)

		return task.Task{}, err
	}
	t := created
	s.state.CurrentTask = &t
	s.state.TaskStatus = created.Status
	s.mu.Unlock()

	s.logger.Info("Analysis started",
		slog.String("task_id", created.ID),
		slog.String("status", created.Status.String()))
	s.emit(Event{Kind: StatusChanged, TaskID: created.ID, Status: created.Status})

	s.StartPolling(created.ID)

	return created, nil
}

// CheckTaskStatus refreshes the status of taskID and stops polling once the
// task is terminal. A failed check is recorded and also stops polling.
func (s *Session) CheckTaskStatus(ctx context.Context, taskID string) (task.Status, error) {
	return s.checkTaskStatus(ctx, taskID, nil)
}

// CancelCurrentTask cancels the current task. On success the local status
// becomes cancelled whatever the API reports back.
func (s *Session) CancelCurrentTask(ctx context.Context) (task.CancelResponse, error) {
	s.mu.Lock()
	if s.state.CurrentTask == nil || s.state.CurrentTask.ID == "" {
		s.mu.Unlock()

		return task.CancelResponse{}, pkgerrors.ErrNoCurrentTask
	}
	id := s.state.CurrentTask.ID
	s.state.IsLoading = true
	s.state.ErrorMessage = ""
	s.mu.Unlock()

	resp, err := s.sdk.CancelTask(ctx, id)

	s.mu.Lock()
	s.state.IsLoading = false
	if err != nil {
		ev := s.recordErrorLocked(err, "Failed to cancel task")
		s.mu.Unlock()
		s.logger.Error("Failed to cancel task", slog.String("task_id", id), slog.Any("error", err))
		s.emit(ev)

		return task.CancelResponse{}, err
	}
	s.state.TaskStatus = task.Cancelled
	stopped := s.stopPollingLocked()
	s.mu.Unlock()

	if resp.Status != task.Cancelled {
		s.logger.Warn("Cancel acknowledged with a different status",
			slog.String("task_id", id),
			slog.String("reported_status", resp.Status.String()),
			slog.String("message", resp.Message))
	}

	s.emit(Event{Kind: StatusChanged, TaskID: id, Status: task.Cancelled})
	if stopped {
		s.emit(Event{Kind: PollStopped, TaskID: id})
	}

	return resp, nil
}

// DownloadMetrics fetches the CSV artifact of taskID. The caller is
// responsible for knowing the task completed.
func (s *Session) DownloadMetrics(ctx context.Context, taskID string) ([]byte, error) {
	s.mu.Lock()
	s.state.IsLoading = true
	s.state.ErrorMessage = ""
	s.mu.Unlock()

	data, err := s.sdk.DownloadMetrics(ctx, taskID)

	s.mu.Lock()
	s.state.IsLoading = false
	if err != nil {
		ev := s.recordErrorLocked(err, "Failed to download metrics")
		s.mu.Unlock()
		s.logger.Error("Failed to download metrics", slog.String("task_id", taskID), slog.Any("error", err))
		s.emit(ev)

		return nil, err
	}
	s.mu.Unlock()

	return data, nil
}

// LoadReport downloads the metrics of taskID and computes its statistics.
func (s *Session) LoadReport(ctx context.Context, taskID string) (stats.Report, error) {
	data, err := s.DownloadMetrics(ctx, taskID)
	if err != nil {
		return stats.Report{}, err
	}

	rows, err := stats.ParseCSVBytes(data)
	if err != nil {
		s.mu.Lock()
		ev := s.recordErrorLocked(err, "Failed to parse metrics")
		s.mu.Unlock()
		s.emit(ev)

		return stats.Report{}, err
	}

	return stats.BuildReport(rows), nil
}

// ResetState stops polling and returns the session to idle.
func (s *Session) ResetState() {
	s.mu.Lock()
	var id string
	if s.state.CurrentTask != nil {
		id = s.state.CurrentTask.ID
	}
	stopped := s.stopPollingLocked()
	s.state.CurrentTask = nil
	s.state.TaskStatus = ""
	s.state.ErrorMessage = ""
	s.mu.Unlock()

	if stopped {
		s.emit(Event{Kind: PollStopped, TaskID: id})
	}
	s.emit(Event{Kind: StatusChanged, TaskID: id})
}

// Close stops polling and pending searches and aborts in-flight requests
// issued by the session itself.
func (s *Session) Close() {
	s.search.Stop()
	s.StopPolling()
	s.cancel()
	s.wg.Wait()
}

func (s *Session) recordErrorLocked(err error, fallback string) Event {
	msg := pkgerrors.Message(err, fallback)
	s.state.ErrorMessage = msg

	var id string
	if s.state.CurrentTask != nil {
		id = s.state.CurrentTask.ID
	}

	return Event{Kind: ErrorRecorded, TaskID: id, Status: s.state.TaskStatus, Message: msg}
}

func (s *Session) emit(ev Event) {
	for _, o := range s.observers {
		o(ev)
	}
}
