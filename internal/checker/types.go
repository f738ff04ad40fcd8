// Package checker implements the link probing engine: canonical URL
// construction, single-hop HTTP probes, and the redirect/method
// resolution state machine that turns probes into verdicts.
package checker

import (
	"context"
	"net/http"
)

// ProbeResult is the terminal verdict for one record's link. Exactly
// one is produced per record; it is immutable once returned.
type ProbeResult struct {
	ID         string
	Name       string
	URL        string
	Valid      bool
	Reason     string
	StatusCode int
}

// ProbeResponse is the outcome of a single successful HTTP hop.
type ProbeResponse struct {
	StatusCode int
	Header     http.Header
}

// Prober issues exactly one HTTP request per call and never follows
// redirects on its own.
type Prober interface {
	Probe(ctx context.Context, url, method string) (ProbeResponse, error)
}
