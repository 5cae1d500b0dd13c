package venv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type (
	// Index answers questions about releases published on a PyPI-compatible JSON API.
	Index struct {
		client  *http.Client
		baseURL string
	}

	releaseInfo struct {
		Info struct {
			Version string `json:"version"`
		} `json:"info"`
	}
)

var pypiURL = "https://pypi.org/pypi"

func NewIndex(timeout time.Duration) *Index {
	return &Index{client: &http.Client{Timeout: timeout}, baseURL: pypiURL}
}

// ReleaseExists reports whether version of project is published. A missing release is not an
// error; an unreachable index is, and wraps [ErrNetwork].
func (ix *Index) ReleaseExists(ctx context.Context, project string, version Version) (ok bool, err error) {
	url := fmt.Sprintf("%s/%s/%s/json", ix.baseURL, project, version)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to prepare GET request to endpoint %s: %w", url, err)
	}

	resp, err := ix.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: failed to GET from endpoint %q: %w", ErrNetwork, url, err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch rc := resp.StatusCode; {
	case rc == http.StatusNotFound:
		return false, nil
	case rc != http.StatusOK:
		return false, fmt.Errorf("%w: failed to GET from endpoint %q, status code %d", ErrNetwork, url, rc)
	}

	var info releaseInfo

	if err = json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return false, fmt.Errorf("failed to decode response body from endpoint %q: %w", url, err)
	}

	return info.Info.Version == version.String(), nil
}

// Verify turns a missing release into [ErrVersionNotFound].
func (ix *Index) Verify(ctx context.Context, project string, version Version) error {
	ok, err := ix.ReleaseExists(ctx, project, version)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: %s %s is not published on the package index", ErrVersionNotFound, project, version)
	}

	return nil
}
