package checker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Bodies are discarded, but draining a little keeps connections
// reusable across probes to the same host.
const maxDrainBytes = 4 << 10

// HTTPProber performs single-hop requests. The underlying client never
// follows redirects; 3xx responses are returned to the caller so the
// resolver can handle the Location itself.
type HTTPProber struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewHTTPProber builds a prober enforcing the given per-hop timeout.
func NewHTTPProber(userAgent string, timeout time.Duration, logger *zap.Logger) *HTTPProber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPProber{
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: userAgent,
		timeout:   timeout,
		logger:    logger,
	}
}

// Probe issues one request and returns its status and headers. All
// transport failures come back as error values; a timeout aborts the
// in-flight request.
func (p *HTTPProber) Probe(ctx context.Context, url, method string) (ProbeResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, url, nil)
	if err != nil {
		return ProbeResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProbeResponse{}, fmt.Errorf("timeout after %s", p.timeout)
		}
		return ProbeResponse{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	p.logger.Debug("probe completed",
		zap.String("url", url),
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)),
	)
	return ProbeResponse{StatusCode: resp.StatusCode, Header: resp.Header.Clone()}, nil
}
