package sdk

import (
	"context"
	"net/http"
	"net/url"

	"github.com/absmach/pkgbench/task"
)

const searchEndpoint = "/pypi/search"

func (sdk *pkgSDK) SearchPackages(ctx context.Context, query string) (task.SearchResponse, error) {
	reqURL := sdk.apiURL + searchEndpoint
	if query != "" {
		reqURL += "?" + url.Values{"query": []string{query}}.Encode()
	}

	body, err := sdk.processRequest(ctx, request{
		method:   http.MethodGet,
		url:      reqURL,
		expected: []int{http.StatusOK},
	})
	if err != nil {
		return task.SearchResponse{}, err
	}

	resp, err := decode[task.SearchResponse](body)
	if err != nil {
		return task.SearchResponse{}, err
	}
	if resp.Packages == nil {
		resp.Packages = []task.Package{}
	}

	return resp, nil
}
