// Package client provides the upstream HTTP client for the Microburbs API.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"microburbs-dashboard-go/internal/config"
	"microburbs-dashboard-go/internal/metrics"
	"microburbs-dashboard-go/internal/model"
)

// RedactedToken replaces the access_token value wherever the token would
// otherwise leak into traces or logs.
const RedactedToken = "[REDACTED]"

const userAgent = "microburbs-dashboard-go/1.0"

// defaultMaxBodyBytes bounds upstream response bodies when no limit is
// configured; anything larger is rejected rather than truncated.
const defaultMaxBodyBytes = 10 * 1024 * 1024

// MicroburbsClient executes single fetch attempts against the Microburbs API.
type MicroburbsClient struct {
	httpClient   *http.Client
	apiKey       string
	maxBodyBytes int64
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// NewMicroburbsClient creates a MicroburbsClient with connection pooling and timeouts.
// The metrics parameter is optional; pass nil to disable upstream metrics recording.
func NewMicroburbsClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *MicroburbsClient {
	transport := &http.Transport{
		MaxIdleConns:        cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost: cfg.Upstream.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	maxBody := cfg.Upstream.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	return &MicroburbsClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
		},
		apiKey:       cfg.Microburbs.APIKey,
		maxBodyBytes: maxBody,
		logger:       logger.With("component", "microburbs_client"),
		metrics:      m,
	}
}

// Attempt executes one fetch for the given candidate and reports the outcome
// in the returned Attempt. Transport failures land in Attempt.Err rather than
// an error return, so a sweep over many candidates handles every outcome
// uniformly. SentParams always carries the query parameters with the token
// value already redacted; the real key never leaves this package.
func (c *MicroburbsClient) Attempt(ctx context.Context, cand model.Candidate) *model.Attempt {
	sentParams := make(map[string]string, len(cand.Params)+1)
	values := url.Values{}
	for k, v := range cand.Params {
		values.Set(k, v)
		sentParams[k] = v
	}

	header := make(http.Header)
	header.Set("Accept", "application/json")
	header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		switch cand.Style {
		case model.StyleQuery:
			values.Set("access_token", c.apiKey)
			sentParams["access_token"] = RedactedToken
		case model.StyleXAPIKey:
			header.Set("x-api-key", c.apiKey)
		case model.StyleBearer:
			header.Set("Authorization", "Bearer "+c.apiKey)
		}
	}

	att := &model.Attempt{SentParams: sentParams}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cand.URL(), nil)
	if err != nil {
		att.Err = fmt.Errorf("build upstream request: %w", err)
		c.record(cand, att, 0)
		return att
	}
	req.URL.RawQuery = values.Encode()
	req.Header = header

	c.logger.Debug("upstream attempt",
		"url", cand.URL(),
		"style", cand.Style,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Seconds()

	if err != nil {
		att.Err = fmt.Errorf("upstream request: %w", err)
		c.record(cand, att, duration)
		return att
	}
	defer resp.Body.Close()

	att.StatusCode = resp.StatusCode
	att.ContentType = resp.Header.Get("Content-Type")

	// Read one byte past the cap so an over-limit body is detectable.
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		att.Err = fmt.Errorf("read upstream body: %w", err)
		c.record(cand, att, duration)
		return att
	}
	if int64(len(body)) > c.maxBodyBytes {
		att.Err = fmt.Errorf("upstream body exceeds %d byte limit", c.maxBodyBytes)
		c.record(cand, att, duration)
		return att
	}
	att.Body = body

	c.record(cand, att, duration)
	return att
}

// record publishes attempt metrics. Transport failures use the "error" status label.
func (c *MicroburbsClient) record(cand model.Candidate, att *model.Attempt, duration float64) {
	if c.metrics == nil {
		return
	}
	status := "error"
	if att.Err == nil {
		status = strconv.Itoa(att.StatusCode)
	}
	endpoint := metrics.NormalizeEndpoint(cand.Endpoint)
	c.metrics.UpstreamAttempts.WithLabelValues(endpoint, cand.Style, status).Inc()
	c.metrics.UpstreamAttemptDuration.WithLabelValues(endpoint).Observe(duration)
}
