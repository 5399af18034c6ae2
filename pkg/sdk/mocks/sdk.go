package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/absmach/pkgbench/pkg/sdk"
	"github.com/absmach/pkgbench/task"
)

var _ sdk.SDK = (*SDK)(nil)

// SDK is a mock implementation of the sdk.SDK interface
type SDK struct {
	mock.Mock
}

// SearchPackages searches packages
func (m *SDK) SearchPackages(ctx context.Context, query string) (task.SearchResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(task.SearchResponse), args.Error(1)
}

// StartAnalysis submits an analysis task
func (m *SDK) StartAnalysis(ctx context.Context, tc task.TaskCreate) (task.Task, error) {
	args := m.Called(ctx, tc)
	return args.Get(0).(task.Task), args.Error(1)
}

// GetTaskStatus gets a task status
func (m *SDK) GetTaskStatus(ctx context.Context, id string) (task.StatusResponse, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(task.StatusResponse), args.Error(1)
}

// CancelTask cancels a task
func (m *SDK) CancelTask(ctx context.Context, id string) (task.CancelResponse, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(task.CancelResponse), args.Error(1)
}

// DownloadMetrics downloads a task metrics artifact
func (m *SDK) DownloadMetrics(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
