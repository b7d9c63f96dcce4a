// Package service implements the upstream candidate sweep.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"microburbs-dashboard-go/internal/client"
	"microburbs-dashboard-go/internal/config"
	"microburbs-dashboard-go/internal/model"
	"microburbs-dashboard-go/internal/strictjson"
)

// allowedUpstreamHosts restricts which hosts the service will fetch from.
var allowedUpstreamHosts = map[string]bool{
	"www.microburbs.com.au": true,
}

// accessTokenPattern matches access_token values embedded in URLs that leak
// into transport error strings.
var accessTokenPattern = regexp.MustCompile(`(?i)(access_token=)[^&\s"]+`)

// MarketService sweeps upstream candidates until one yields valid JSON.
//
// The candidate list for a request is fully built up front: every variant of
// the query parameters, crossed with every base URL, crossed with every auth
// style. Attempts run in that fixed order and the first acceptable JSON
// response wins. Nothing is retried.
type MarketService struct {
	client   *client.MicroburbsClient
	baseURLs []string
	logger   *slog.Logger
}

// NewMarketService creates a MarketService. Every configured base URL must
// point at an allowlisted host.
func NewMarketService(c *client.MicroburbsClient, cfg *config.Config, logger *slog.Logger) (*MarketService, error) {
	for _, base := range cfg.Upstream.BaseURLs {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse upstream base URL %q: %w", base, err)
		}
		if !allowedUpstreamHosts[u.Hostname()] {
			return nil, fmt.Errorf("upstream host %q is not in the allowlist", u.Hostname())
		}
	}

	return &MarketService{
		client:   c,
		baseURLs: append([]string(nil), cfg.Upstream.BaseURLs...),
		logger:   logger.With("component", "market_service"),
	}, nil
}

// NewMarketServiceForTest creates a MarketService without host allowlist validation.
// This is intended only for tests that use httptest servers on localhost.
func NewMarketServiceForTest(c *client.MicroburbsClient, cfg *config.Config, logger *slog.Logger) *MarketService {
	return &MarketService{
		client:   c,
		baseURLs: append([]string(nil), cfg.Upstream.BaseURLs...),
		logger:   logger.With("component", "market_service"),
	}
}

// FirstJSON attempts each candidate in order and returns the first response
// that is acceptable (status below 300, JSON content type) and survives a
// strict decode/re-encode round trip. When every candidate fails, the result
// carries the trace of the last attempt; when there were no attempts at all,
// the trace is zero and serializes as an empty object.
func (s *MarketService) FirstJSON(ctx context.Context, endpoint string, variants []model.Variant) model.Result {
	var lastTrace model.Trace

	for _, cand := range s.buildCandidates(endpoint, variants) {
		if ctx.Err() != nil {
			break
		}

		att := s.client.Attempt(ctx, cand)
		trace := traceOf(cand, att)

		if att.Err != nil {
			s.logger.Debug("candidate transport failure",
				"url", cand.URL(),
				"style", cand.Style,
				"error", trace.Error,
			)
			lastTrace = trace
			continue
		}

		if !acceptable(att) {
			s.logger.Debug("candidate rejected",
				"url", cand.URL(),
				"style", cand.Style,
				"status", att.StatusCode,
				"content_type", att.ContentType,
			)
			lastTrace = trace
			continue
		}

		data, err := strictjson.Reencode(att.Body)
		if err != nil {
			s.logger.Debug("candidate body failed strict decode",
				"url", cand.URL(),
				"style", cand.Style,
				"error", err.Error(),
			)
			lastTrace = trace
			continue
		}

		s.logger.Debug("candidate accepted",
			"url", cand.URL(),
			"style", cand.Style,
			"status", att.StatusCode,
		)
		return model.Result{OK: true, Data: data, Trace: trace}
	}

	return model.Result{Trace: lastTrace}
}

// buildCandidates expands the full attempt order for one endpoint: each
// variant outermost, then each base URL, then each auth style.
func (s *MarketService) buildCandidates(endpoint string, variants []model.Variant) []model.Candidate {
	cands := make([]model.Candidate, 0, len(variants)*len(s.baseURLs)*len(model.Styles))
	for _, variant := range variants {
		for _, base := range s.baseURLs {
			for _, style := range model.Styles {
				cands = append(cands, model.Candidate{
					Endpoint: endpoint,
					Base:     base,
					Style:    style,
					Params:   variant,
				})
			}
		}
	}
	return cands
}

// acceptable reports whether an attempt's response is worth decoding:
// any status below 300 with a JSON content type.
func acceptable(att *model.Attempt) bool {
	return att.StatusCode < 300 &&
		strings.Contains(strings.ToLower(att.ContentType), "application/json")
}

// traceOf summarizes one attempt for the response trace. Transport failures
// have no status or content type; their error string is carried instead,
// with any embedded token value redacted.
func traceOf(cand model.Candidate, att *model.Attempt) model.Trace {
	tr := model.Trace{
		Status:      att.StatusCode,
		URL:         cand.URL(),
		Style:       cand.Style,
		Params:      att.SentParams,
		ContentType: att.ContentType,
	}
	if att.Err != nil {
		tr.Error = sanitizeError(att.Err)
	}
	return tr
}

// sanitizeError redacts access_token values from error strings. Transport
// errors include the full request URL, which carries the token in query
// auth style.
func sanitizeError(err error) string {
	return accessTokenPattern.ReplaceAllString(err.Error(), "${1}"+client.RedactedToken)
}
