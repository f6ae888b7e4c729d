// Package remote talks to the GrabTube download server: a small REST
// surface for submitting and managing jobs, and a websocket stream for
// live state updates.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/grabtube/grabtube/pkg/gtlib"
)

const defaultTimeout = 30 * time.Second

// Client is a REST client for the download server. It implements
// gtlib.Submitter, so the execution service can submit scheduled jobs
// through it directly.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		hc:      &http.Client{Timeout: defaultTimeout},
	}
}

// BaseURL returns the normalized server URL the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

type addResponse struct {
	DownloadId string `json:"download_id"`
}

// Submit creates a download job on the server and returns its identifier.
func (c *Client) Submit(ctx context.Context, req *gtlib.SubmitRequest) (string, error) {
	if req == nil || req.URL == "" {
		return "", gtlib.ErrNoActionableURL
	}
	var resp addResponse
	if err := c.do(ctx, http.MethodPost, "/add", req, &resp); err != nil {
		return "", fmt.Errorf("submit download: %w", err)
	}
	if resp.DownloadId == "" {
		return "", fmt.Errorf("submit download: server returned no download id")
	}
	return resp.DownloadId, nil
}

// Downloads fetches the server's full download list.
func (c *Client) Downloads(ctx context.Context) ([]*gtlib.Download, error) {
	var out []*gtlib.Download
	if err := c.do(ctx, http.MethodGet, "/downloads", nil, &out); err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	return out, nil
}

// Download fetches one job by id.
func (c *Client) Download(ctx context.Context, id string) (*gtlib.Download, error) {
	var out gtlib.Download
	if err := c.do(ctx, http.MethodGet, "/downloads/"+id, nil, &out); err != nil {
		return nil, fmt.Errorf("get download: %w", err)
	}
	return &out, nil
}

// Cancel stops a running or queued job.
func (c *Client) Cancel(ctx context.Context, downloadId string) error {
	if err := c.do(ctx, http.MethodPost, "/downloads/"+downloadId+"/cancel", nil, nil); err != nil {
		return fmt.Errorf("cancel download: %w", err)
	}
	return nil
}

type clearResponse struct {
	Removed int64 `json:"removed"`
}

// ClearCompleted removes finished jobs from the server's list.
func (c *Client) ClearCompleted(ctx context.Context) (int64, error) {
	var resp clearResponse
	if err := c.do(ctx, http.MethodPost, "/downloads/clear_completed", nil, &resp); err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return resp.Removed, nil
}

type serverError struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var se serverError
		if json.Unmarshal(data, &se) == nil && se.Error != "" {
			return fmt.Errorf("server: %s", se.Error)
		}
		return fmt.Errorf("server: %s", resp.Status)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
