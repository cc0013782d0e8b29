// Package client talks to the MPE backend: one HTTP request per logical
// operation, JSON in and out, no authentication.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/iafilius/MPEViewer/src/logging"
	"github.com/iafilius/MPEViewer/src/types"
)

// DefaultBaseURL is where the backend listens when started locally.
const DefaultBaseURL = "http://127.0.0.1:5000"

// Chart data paths.
const (
	PathUpload           = "/upload"
	PathHealth           = "/health"
	PathTimepointScatter = "/data/timepoint/scatter"
	PathRegression       = "/data/regression"
	PathChangeScatter    = "/data/change/scatter"
	PathTimepointBars    = "/data/timepoint/bars"
	PathChangeBars       = "/data/change/bars"
)

// StatusError is returned for non-2xx responses. Its message is the response
// body so the user sees what the backend said.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, http.StatusText(e.StatusCode))
}

// Client is a thin wrapper around http.Client bound to one backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client for baseURL; an empty base selects DefaultBaseURL and a
// zero timeout leaves requests bounded only by their context.
func New(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) url(path string) string { return c.BaseURL + path }

// Upload posts the measurement workbook and the selected degree sheet.
func (c *Client) Upload(ctx context.Context, fileName string, r io.Reader, degree string) (*types.UploadResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("upload: create form file: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("upload: copy %s: %w", fileName, err)
	}
	if err := mw.WriteField("degree", degree); err != nil {
		return nil, fmt.Errorf("upload: write degree: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("upload: close form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(PathUpload), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var out types.UploadResponse
	if err := c.do(req, PathUpload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks that the backend is reachable.
func (c *Client) Health(ctx context.Context) (*types.HealthResponse, error) {
	var out types.HealthResponse
	if err := c.getJSON(ctx, PathHealth, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TimepointScatter fetches absolute thresholds per time point.
func (c *Client) TimepointScatter(ctx context.Context) (*types.DatasetsPayload, error) {
	return c.datasets(ctx, PathTimepointScatter)
}

// ChangeScatter fetches per-point changes against baseline.
func (c *Client) ChangeScatter(ctx context.Context) (*types.DatasetsPayload, error) {
	return c.datasets(ctx, PathChangeScatter)
}

// Regression fetches point-wise regression slopes.
func (c *Client) Regression(ctx context.Context) (*types.PointsPayload, error) {
	var out types.PointsPayload
	if err := c.getJSON(ctx, PathRegression, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TimepointBars fetches category counts per time point.
func (c *Client) TimepointBars(ctx context.Context) (*types.BarsPayload, error) {
	return c.bars(ctx, PathTimepointBars)
}

// ChangeBars fetches category counts against baseline.
func (c *Client) ChangeBars(ctx context.Context) (*types.BarsPayload, error) {
	return c.bars(ctx, PathChangeBars)
}

func (c *Client) datasets(ctx context.Context, path string) (*types.DatasetsPayload, error) {
	var out types.DatasetsPayload
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) bars(ctx context.Context, path string) (*types.BarsPayload, error) {
	var out types.BarsPayload
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out interface{}) error {
	start := time.Now()
	defer logging.TimeTrack(start, req.Method+" "+path)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", req.Method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Debugf("%s %s -> %d", req.Method, path, resp.StatusCode)
		return &StatusError{Method: req.Method, Path: path, StatusCode: resp.StatusCode, Body: errorBody(b)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", req.Method, path, err)
	}
	return nil
}

// errorBody prefers the backend's {"error": "..."} message over the raw text.
func errorBody(b []byte) string {
	var e types.ErrorResponse
	if err := json.Unmarshal(b, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(b))
}
