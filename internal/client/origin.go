// Package client provides the HTTP client used to reach the origin.
package client

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"origin-proxy-go/internal/config"
	"origin-proxy-go/internal/metrics"
	"origin-proxy-go/internal/model"
)

// OriginClient sends rewritten requests to the backend origin.
type OriginClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewOriginClient creates an OriginClient with connection pooling and a
// bounded per-request timeout. The metrics parameter is optional; pass nil
// to disable origin metrics recording.
func NewOriginClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *OriginClient {
	transport := &http.Transport{
		MaxIdleConns:        cfg.Origin.IdleConnections,
		MaxIdleConnsPerHost: cfg.Origin.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &OriginClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Origin.TimeoutSeconds) * time.Second,
			// The origin answers for itself; redirects relay to the caller
			// untouched rather than being chased by the proxy.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger:  logger.With("component", "origin_client"),
		metrics: m,
	}
}

// Do executes an HTTP request against the origin and returns the raw response.
// The caller is responsible for closing the response body. The request's
// context controls its lifetime: when the context is canceled (e.g. the
// client disconnects), the origin call is canceled too.
func (c *OriginClient) Do(req *http.Request) (*model.ProxyResponse, error) {
	c.logger.Debug("origin request",
		"method", req.Method,
		"path", req.URL.Path,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:bodyclose // body ownership transfers to caller via ProxyResponse
	duration := time.Since(start).Seconds()

	method := metrics.NormalizeMethod(req.Method)

	if err != nil {
		if c.metrics != nil {
			c.metrics.OriginDuration.WithLabelValues(method).Observe(duration)
		}
		return nil, fmt.Errorf("origin request: %w", err)
	}

	if c.metrics != nil {
		status := strconv.Itoa(resp.StatusCode)
		c.metrics.OriginDuration.WithLabelValues(method).Observe(duration)
		c.metrics.OriginResponses.WithLabelValues(method, status).Inc()
	}

	return &model.ProxyResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}
