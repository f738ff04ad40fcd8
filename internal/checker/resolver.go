package checker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// Resolver drives the prober across redirects and method fallback
// until a terminal verdict is reached.
//
// Every hop starts with HEAD. A 403 or 405 triggers a single GET
// fallback on the same URL; the method drops back to HEAD after each
// redirect because the next origin may accept HEAD even when the
// previous one did not. A second 403/405 after the GET fallback is
// terminal.
type Resolver struct {
	prober       Prober
	maxRedirects int
	logger       *zap.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(prober Prober, maxRedirects int, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		prober:       prober,
		maxRedirects: maxRedirects,
		logger:       logger,
	}
}

// Resolve probes target until it settles on Valid or Invalid. Timeouts
// and transport errors are immediately terminal; nothing is retried
// beyond the per-hop method fallback.
func (r *Resolver) Resolve(ctx context.Context, target string) ProbeResult {
	method := http.MethodHead
	current := target
	redirects := 0

	for {
		resp, err := r.prober.Probe(ctx, current, method)
		if err != nil {
			return invalid(current, err.Error(), 0)
		}

		status := resp.StatusCode
		location := resp.Header.Get("Location")
		switch {
		case status >= 200 && status < 300:
			return ProbeResult{URL: current, Valid: true, StatusCode: status}

		case (status == http.StatusForbidden || status == http.StatusMethodNotAllowed) &&
			method == http.MethodHead:
			r.logger.Debug("method fallback",
				zap.String("url", current),
				zap.Int("status", status),
			)
			method = http.MethodGet

		case status >= 300 && status < 400 && location != "":
			if redirects >= r.maxRedirects {
				return invalid(current, "too many redirects", status)
			}
			next, err := resolveLocation(current, location)
			if err != nil {
				return invalid(current, "invalid redirect location", status)
			}
			r.logger.Debug("following redirect",
				zap.String("from", current),
				zap.String("to", next),
				zap.Int("redirects", redirects+1),
			)
			current = next
			redirects++
			method = http.MethodHead

		default:
			return invalid(current, fmt.Sprintf("HTTP %d", status), status)
		}
	}
}

func invalid(url, reason string, status int) ProbeResult {
	return ProbeResult{URL: url, Valid: false, Reason: reason, StatusCode: status}
}

// resolveLocation resolves a Location header value, which may be a
// relative reference, against the URL that produced it.
func resolveLocation(current, location string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("parse current url: %w", err)
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse location: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}
