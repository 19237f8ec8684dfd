package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"origin-proxy-go/internal/model"
	"origin-proxy-go/internal/service"
)

// ProxyHandler relays every inbound request to the origin via the rewriter.
type ProxyHandler struct {
	rewriter *service.Rewriter
	logger   *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(rw *service.Rewriter, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		rewriter: rw,
		logger:   logger.With("component", "proxy_handler"),
	}
}

// Handle forwards the request to the origin and streams the response back.
// Whatever the origin answers — including its own 4xx/5xx — is relayed
// verbatim. Only failures of the forwarding itself produce a response
// authored by the proxy, and that is always a plain-text 500.
func (h *ProxyHandler) Handle(c echo.Context) error {
	req := c.Request()

	pr := &model.ProxyRequest{
		Ctx:           req.Context(),
		Method:        req.Method,
		URL:           req.URL,
		Header:        req.Header,
		Body:          req.Body,
		ContentLength: req.ContentLength,
	}

	resp, err := h.rewriter.Forward(pr)
	if err != nil {
		return h.fail(c, err)
	}
	defer func() { _ = resp.Body.Close() }()

	for key, vals := range resp.Header {
		for _, v := range vals {
			c.Response().Header().Add(key, v)
		}
	}

	c.Response().WriteHeader(resp.StatusCode)

	// Stream the origin body directly to the client. If io.Copy fails
	// mid-stream (e.g. client disconnect, network error), the HTTP status
	// code has already been sent, so the client receives a truncated
	// response with the original status. This is an inherent trade-off of
	// streaming proxies, so the error is only logged.
	if _, err := io.Copy(c.Response(), resp.Body); err != nil {
		h.logger.Error("streaming response body",
			"err", err,
			"path", req.URL.Path,
		)
	}

	return nil
}

// fail converts any forwarding failure into a plain-text 500 with a short
// diagnostic. The caller always gets a well-formed HTTP response; there is
// no generic error page upstream of this handler to fall back on.
func (h *ProxyHandler) fail(c echo.Context, err error) error {
	h.logger.Error("proxy error",
		"err", err,
		"path", c.Request().URL.Path,
	)

	return c.String(http.StatusInternalServerError, diagnostic(err))
}

// diagnostic maps a forwarding failure to a short caller-facing message.
// Messages never include internal paths or stack traces.
func diagnostic(err error) string {
	if errors.Is(err, service.ErrInvalidRequestURL) {
		return "proxy error: " + service.ErrInvalidRequestURL.Error()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "proxy error: origin request timed out"
	}

	if errors.Is(err, context.Canceled) {
		return "proxy error: request canceled"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "proxy error: origin host unreachable"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "proxy error: origin request timed out"
		}
		return "proxy error: origin connection failed"
	}

	return "proxy error: forwarding failed"
}
