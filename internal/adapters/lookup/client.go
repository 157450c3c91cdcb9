package lookup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/scamshield/contact-monitor/internal/core"
	"go.uber.org/zap"
)

// Client talks to the remote scammer-lookup/report HTTP service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewClient creates a remote lookup client with a bounded per-request
// timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

type checkRequest struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type checkResponse struct {
	Success   bool                `json:"success"`
	IsScammer bool                `json:"isScammer"`
	Data      *core.ScammerRecord `json:"data,omitempty"`
	Message   string              `json:"message"`
}

type reportResponse struct {
	Success bool                `json:"success"`
	Data    *core.ScammerRecord `json:"data"`
	Message string              `json:"message"`
}

type statsResponse struct {
	Success bool             `json:"success"`
	Data    core.RemoteStats `json:"data"`
	Message string           `json:"message"`
}

// Check queries the remote service for an identifier's scammer status.
// Any transport, timeout or non-2xx failure comes back as a
// core.LookupError so the caller can skip alerting without caching a
// bogus verdict.
func (c *Client) Check(ctx context.Context, identifier string) (*core.LookupResult, error) {
	var resp checkResponse
	err := c.post(ctx, "/check", checkRequest{Type: "phone", Identifier: identifier}, &resp)
	if err != nil {
		return nil, &core.LookupError{Identifier: identifier, Err: err}
	}
	if !resp.Success {
		return nil, &core.LookupError{Identifier: identifier, Err: fmt.Errorf("service rejected check: %s", resp.Message)}
	}
	if resp.IsScammer && resp.Data == nil {
		// A match must carry its detail; treat a bare flag as a
		// malformed response rather than alerting with nothing to show.
		return nil, &core.LookupError{Identifier: identifier, Err: fmt.Errorf("match response missing scammer record")}
	}

	result := &core.LookupResult{
		Identifier: identifier,
		IsMatch:    resp.IsScammer,
		Match:      resp.Data,
		ResolvedAt: time.Now(),
	}
	if !result.IsMatch {
		result.Match = nil
	}

	c.logger.Debug("Remote check resolved",
		zap.String("identifier", identifier),
		zap.Bool("is_match", result.IsMatch))
	return result, nil
}

// Report submits a scammer report to the remote service.
func (c *Client) Report(ctx context.Context, req core.ReportRequest) (*core.ScammerRecord, error) {
	if len(req.Description) < 10 {
		return nil, fmt.Errorf("report description must be at least 10 characters")
	}
	if req.Type == "" {
		req.Type = "phone"
	}

	var resp reportResponse
	if err := c.post(ctx, "/report", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to submit report: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("service rejected report: %s", resp.Message)
	}
	return resp.Data, nil
}

// RemoteStats fetches aggregate counts from the service. It doubles as
// a connectivity probe at daemon startup.
func (c *Client) RemoteStats(ctx context.Context) (*core.RemoteStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build stats request: %w", err)
	}
	c.setHeaders(req)

	var resp statsResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("service rejected stats request: %s", resp.Message)
	}
	return &resp.Data, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	c.setHeaders(req)

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
