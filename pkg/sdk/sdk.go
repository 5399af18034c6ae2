package sdk

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	pkgerrors "github.com/absmach/pkgbench/pkg/errors"
	"github.com/absmach/pkgbench/task"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	CTJSON string = "application/json"
	CTCSV  string = "text/csv"

	DefAPIURL          = "http://localhost:8000/api/v1"
	DefTimeout         = 30 * time.Second
	DefDownloadTimeout = 60 * time.Second
)

type SDK interface {
	// SearchPackages searches PyPI packages by name.
	//
	// example:
	//  resp, _ := sdk.SearchPackages(ctx, "requests")
	//  fmt.Println(resp.Packages)
	SearchPackages(ctx context.Context, query string) (task.SearchResponse, error)

	// StartAnalysis submits an analysis task for a repository.
	//
	// example:
	//  t, _ := sdk.StartAnalysis(ctx, task.TaskCreate{
	//    AnalyzerName:  "ruff",
	//    RepositoryURL: "https://github.com/astral-sh/ruff",
	//  })
	//  fmt.Println(t.ID, t.Status)
	StartAnalysis(ctx context.Context, tc task.TaskCreate) (task.Task, error)

	// GetTaskStatus gets the current status of a task.
	//
	// example:
	//  st, _ := sdk.GetTaskStatus(ctx, "b1d10738-c5d7-4ff1-8f4d-b9328ce6f040")
	//  fmt.Println(st.Status)
	GetTaskStatus(ctx context.Context, id string) (task.StatusResponse, error)

	// CancelTask asks the API to cancel a task.
	//
	// example:
	//  resp, _ := sdk.CancelTask(ctx, "b1d10738-c5d7-4ff1-8f4d-b9328ce6f040")
	//  fmt.Println(resp.Message)
	CancelTask(ctx context.Context, id string) (task.CancelResponse, error)

	// DownloadMetrics downloads the CSV metrics artifact of a completed task.
	//
	// example:
	//  csv, _ := sdk.DownloadMetrics(ctx, "b1d10738-c5d7-4ff1-8f4d-b9328ce6f040")
	//  fmt.Println(string(csv))
	DownloadMetrics(ctx context.Context, id string) ([]byte, error)
}

type pkgSDK struct {
	apiURL          string
	timeout         time.Duration
	downloadTimeout time.Duration
	client          *http.Client
}

type Config struct {
	APIURL          string
	TLSVerification bool
	Timeout         time.Duration
	DownloadTimeout time.Duration
	// Transport overrides the default instrumented transport.
	Transport http.RoundTripper
}

func NewSDK(cfg Config) SDK {
	if cfg.APIURL == "" {
		cfg.APIURL = DefAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefTimeout
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = DefDownloadTimeout
	}

	transport := cfg.Transport
	if transport == nil {
		transport = otelhttp.NewTransport(&http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: !cfg.TLSVerification,
			},
		})
	}

	return &pkgSDK{
		apiURL:          strings.TrimSuffix(cfg.APIURL, "/"),
		timeout:         cfg.Timeout,
		downloadTimeout: cfg.DownloadTimeout,
		client:          &http.Client{Transport: transport},
	}
}

type request struct {
	method   string
	url      string
	accept   string
	body     []byte
	timeout  time.Duration
	expected []int
}

func (sdk *pkgSDK) processRequest(ctx context.Context, r request) ([]byte, error) {
	if r.timeout <= 0 {
		r.timeout = sdk.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var body io.Reader = http.NoBody
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, err
	}

	if r.body != nil {
		req.Header.Add("Content-Type", CTJSON)
	}
	accept := r.accept
	if accept == "" {
		accept = CTJSON
	}
	req.Header.Add("Accept", accept)

	resp, err := sdk.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkgerrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkgerrors.ErrTransport, err)
	}

	if !slices.Contains(r.expected, resp.StatusCode) {
		return nil, &pkgerrors.APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
		}
	}

	return respBody, nil
}

type errorBody struct {
	Detail  any `json:"detail"`
	Message any `json:"message"`
}

// errorMessage extracts the message an API error body carries.
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return pkgerrors.DefaultMessage
	}

	if s, ok := eb.Detail.(string); ok && s != "" {
		return s
	}
	if s, ok := eb.Message.(string); ok && s != "" {
		return s
	}

	return pkgerrors.DefaultMessage
}

func decode[T any](body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("%w: %w", pkgerrors.ErrDecode, err)
	}

	return v, nil
}
