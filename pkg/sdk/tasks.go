package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	pkgerrors "github.com/absmach/pkgbench/pkg/errors"
	"github.com/absmach/pkgbench/task"
)

const (
	analyzeEndpoint = "/analyze"
	tasksEndpoint   = "/tasks"
)

func (sdk *pkgSDK) StartAnalysis(ctx context.Context, tc task.TaskCreate) (task.Task, error) {
	if tc.CommandTemplate == "" {
		tc.CommandTemplate = task.DefaultCommandTemplate
	}

	data, err := json.Marshal(tc)
	if err != nil {
		return task.Task{}, err
	}

	body, err := sdk.processRequest(ctx, request{
		method:   http.MethodPost,
		url:      sdk.apiURL + analyzeEndpoint,
		body:     data,
		expected: []int{http.StatusCreated, http.StatusOK},
	})
	if err != nil {
		return task.Task{}, err
	}

	return decode[task.Task](body)
}

func (sdk *pkgSDK) GetTaskStatus(ctx context.Context, id string) (task.StatusResponse, error) {
	reqURL, err := sdk.taskURL(id, "status")
	if err != nil {
		return task.StatusResponse{}, err
	}

	body, err := sdk.processRequest(ctx, request{
		method:   http.MethodGet,
		url:      reqURL,
		expected: []int{http.StatusOK},
	})
	if err != nil {
		return task.StatusResponse{}, err
	}

	return decode[task.StatusResponse](body)
}

func (sdk *pkgSDK) CancelTask(ctx context.Context, id string) (task.CancelResponse, error) {
	reqURL, err := sdk.taskURL(id, "cancel")
	if err != nil {
		return task.CancelResponse{}, err
	}

	body, err := sdk.processRequest(ctx, request{
		method:   http.MethodPost,
		url:      reqURL,
		expected: []int{http.StatusOK},
	})
	if err != nil {
		return task.CancelResponse{}, err
	}

	return decode[task.CancelResponse](body)
}

func (sdk *pkgSDK) DownloadMetrics(ctx context.Context, id string) ([]byte, error) {
	reqURL, err := sdk.taskURL(id, "metrics")
	if err != nil {
		return nil, err
	}

	return sdk.processRequest(ctx, request{
		method:   http.MethodGet,
		url:      reqURL,
		accept:   CTCSV,
		timeout:  sdk.downloadTimeout,
		expected: []int{http.StatusOK},
	})
}

func (sdk *pkgSDK) taskURL(id, action string) (string, error) {
	if id == "" {
		return "", pkgerrors.ErrEmptyID
	}

	return fmt.Sprintf("%s%s/%s/%s", sdk.apiURL, tasksEndpoint, url.PathEscape(id), action), nil
}
