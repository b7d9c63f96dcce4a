// Package model defines shared types for the dashboard proxy.
package model

import (
	"strings"

	"github.com/goccy/go-json"
)

// Auth styles, in the order they are attempted for each base URL.
const (
	StyleQuery   = "query"   // access_token query parameter
	StyleXAPIKey = "xapikey" // x-api-key header
	StyleBearer  = "bearer"  // Authorization: Bearer header
)

// Styles lists the auth styles in attempt order.
var Styles = []string{StyleQuery, StyleXAPIKey, StyleBearer}

// Variant is one parameter mapping tried in an upstream query,
// e.g. {"suburb": "Belmont North", "state": "NSW"}.
type Variant map[string]string

// Candidate is one fully-determined upstream request descriptor: a single
// endpoint × base URL × auth style × variant combination. The candidate list
// for a query is produced eagerly and walked in order until one attempt
// yields usable JSON.
type Candidate struct {
	Endpoint string  // upstream path, e.g. "/suburb/market"
	Base     string  // base URL the endpoint is appended to
	Style    string  // auth style for this attempt
	Params   Variant // query parameters before auth is attached
}

// URL returns the resolved endpoint URL without the query string, as
// recorded in the attempt trace.
func (c Candidate) URL() string {
	return strings.TrimSuffix(c.Base, "/") + c.Endpoint
}

// Attempt is the outcome of executing one candidate. A transport-level
// failure is carried in Err rather than a separate error return, so the
// record exists even when nothing was received and the last attempt can
// always be traced.
type Attempt struct {
	StatusCode  int
	ContentType string
	Body        []byte
	SentParams  map[string]string // query params as sent, secrets redacted
	Err         error
}

// Trace is the diagnostic record of the last upstream attempt, returned to
// the caller for debugging. Every field is omitempty so the zero Trace
// serializes as {} when no attempt was made.
type Trace struct {
	Status      int               `json:"status,omitempty"`
	URL         string            `json:"url,omitempty"`
	Style       string            `json:"style,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
	ContentType string            `json:"content_type,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// Result is the outcome of one first-JSON candidate sweep.
type Result struct {
	OK    bool
	Data  json.RawMessage
	Trace Trace
}

// Envelope is the fixed response shape returned to the browser. Data is
// either the re-encoded upstream payload or an empty object; Trace is the
// last attempt made, successful or not.
type Envelope struct {
	Data  json.RawMessage `json:"__data"`
	Trace Trace           `json:"__trace"`
}
