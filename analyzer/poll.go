package analyzer

import (
	"context"
	"log/slog"

	"github.com/absmach/pkgbench/task"
)

type pollLoop struct {
	ctx    context.Context
	cancel context.CancelFunc
	taskID string
}

// StartPolling begins checking taskID every poll interval. It is a no-op
// returning false while another poll loop is active.
func (s *Session) StartPolling(taskID string) bool {
	s.mu.Lock()
	if s.poll != nil || s.ctx.Err() != nil {
		s.mu.Unlock()

		return false
	}
	ctx, cancel := context.WithCancel(s.ctx)
	p := &pollLoop{ctx: ctx, cancel: cancel, taskID: taskID}
	s.poll = p
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Debug("Polling started", slog.String("task_id", taskID), slog.Duration("interval", s.pollInterval))
	s.emit(Event{Kind: PollStarted, TaskID: taskID})

	go s.runPoll(p)

	return true
}

// StopPolling cancels the active poll loop. A status request already in
// flight is not aborted; its result is discarded.
func (s *Session) StopPolling() {
	s.mu.Lock()
	var id string
	if s.poll != nil {
		id = s.poll.taskID
	}
	stopped := s.stopPollingLocked()
	s.mu.Unlock()

	if stopped {
		s.emit(Event{Kind: PollStopped, TaskID: id})
	}
}

func (s *Session) stopPollingLocked() bool {
	if s.poll == nil {
		return false
	}
	s.poll.cancel()
	s.poll = nil

	return true
}

// runPoll performs the status checks inline, so a tick never starts while
// the previous check is in flight.
func (s *Session) runPoll(p *pollLoop) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(s.pollInterval)
	defer ticker.Stop()

	defer func() {
		// Session closed underneath the loop.
		s.mu.Lock()
		stopped := false
		if s.poll == p {
			stopped = s.stopPollingLocked()
		}
		s.mu.Unlock()
		if stopped {
			s.emit(Event{Kind: PollStopped, TaskID: p.taskID})
		}
		s.logger.Debug("Polling finished", slog.String("task_id", p.taskID))
	}()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C():
			if p.ctx.Err() != nil {
				return
			}
			_, _ = s.checkTaskStatus(s.ctx, p.taskID, p)
		}
	}
}

// checkTaskStatus applies one status check. When owner is set the result is
// only applied if owner is still the active poll loop.
func (s *Session) checkTaskStatus(ctx context.Context, taskID string, owner *pollLoop) (task.Status, error) {
	if taskID == "" {
		return "", nil
	}

	resp, err := s.sdk.GetTaskStatus(ctx, taskID)

	s.mu.Lock()
	if owner != nil && s.poll != owner {
		s.mu.Unlock()
		s.logger.Debug("Discarding status of stopped poll", slog.String("task_id", taskID))

		return resp.Status, err
	}

	if err != nil {
		ev := s.recordErrorLocked(err, "Failed to check task status")
		stopped := s.stopPollingLocked()
		s.mu.Unlock()

		s.logger.Error("Failed to check task status", slog.String("task_id", taskID), slog.Any("error", err))
		s.emit(ev)
		if stopped {
			s.emit(Event{Kind: PollStopped, TaskID: taskID})
		}

		return "", err
	}

	changed := s.state.TaskStatus != resp.Status
	s.state.TaskStatus = resp.Status
	stopped := false
	if resp.Status.IsTerminal() {
		stopped = s.stopPollingLocked()
	}
	s.mu.Unlock()

	if changed {
		s.logger.Info("Task status changed", slog.String("task_id", taskID), slog.String("status", resp.Status.String()))
		s.emit(Event{Kind: StatusChanged, TaskID: taskID, Status: resp.Status})
	}
	if stopped {
		s.emit(Event{Kind: PollStopped, TaskID: taskID})
	}

	return resp.Status, nil
}
