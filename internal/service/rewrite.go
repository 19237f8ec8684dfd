// Package service implements the host-rewriting core of the proxy.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"origin-proxy-go/internal/client"
	"origin-proxy-go/internal/config"
	"origin-proxy-go/internal/model"
)

// ErrInvalidRequestURL is returned when the inbound request carries no usable URL.
var ErrInvalidRequestURL = errors.New("invalid request URL")

// hopByHopHeaders are connection-management headers that must not be relayed
// from the origin response: the proxy frames its own response to the caller.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"TE",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Rewriter forwards inbound requests to a fixed origin, swapping the URL's
// scheme and host and filtering edge-injected headers. It holds no mutable
// state and is safe for concurrent use.
type Rewriter struct {
	client *client.OriginClient
	logger *slog.Logger
	scheme string
	host   string
	strip  map[string]struct{} // lowercase header names removed before forwarding
}

// NewRewriter creates a Rewriter targeting the configured origin.
// The strip set always contains "host": the Host header is never copied,
// it is replaced with the origin host on every outbound request.
func NewRewriter(c *client.OriginClient, cfg *config.Config, logger *slog.Logger) *Rewriter {
	strip := make(map[string]struct{}, len(cfg.Headers.Strip)+1)
	strip["host"] = struct{}{}
	for _, h := range cfg.Headers.Strip {
		strip[strings.ToLower(h)] = struct{}{}
	}

	return &Rewriter{
		client: c,
		logger: logger.With("component", "rewriter"),
		scheme: cfg.Origin.Scheme,
		host:   cfg.Origin.Host,
		strip:  strip,
	}
}

// Forward rewrites pr into a request against the origin, issues it exactly
// once, and returns the origin's response with hop-by-hop headers removed.
// The caller is responsible for closing the response body.
//
// An origin 4xx/5xx is not an error: it is returned as a normal response
// for verbatim relay. Errors mean the request never completed (bad URL,
// connection failure, timeout).
func (r *Rewriter) Forward(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	if pr.URL == nil {
		return nil, ErrInvalidRequestURL
	}

	target := r.RewriteURL(pr.URL)
	header := r.filterRequestHeaders(pr.Header)
	body := pr.Body
	if pr.Method == http.MethodGet || pr.Method == http.MethodHead {
		// Origins can reject GET/HEAD requests that carry a body.
		body = nil
	}

	req, err := http.NewRequestWithContext(pr.Ctx, pr.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequestURL, err)
	}
	req.Header = header
	// Virtual-hosted origins route by Host and reject mismatches; req.Host
	// wins over anything copied above, so a duplicate inbound Host entry
	// cannot leak through.
	req.Host = r.host
	if body != nil && pr.ContentLength > 0 {
		req.ContentLength = pr.ContentLength
	}

	r.logger.Debug("forwarding request",
		"method", pr.Method,
		"path", pr.URL.Path,
		"origin", r.host,
	)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forward to origin: %w", err)
	}

	resp.Header = filterResponseHeaders(resp.Header)
	return resp, nil
}

// RewriteURL returns a copy of in pointing at the origin. Path, raw query
// and fragment pass through untouched; only scheme and host change.
func (r *Rewriter) RewriteURL(in *url.URL) *url.URL {
	out := *in
	out.Scheme = r.scheme
	out.Host = r.host
	return &out
}

// filterRequestHeaders copies every inbound header whose lowercase name is
// not in the strip set. Multi-valued headers keep all values.
func (r *Rewriter) filterRequestHeaders(src http.Header) http.Header {
	dst := make(http.Header, len(src))
	for key, vals := range src {
		if _, drop := r.strip[strings.ToLower(key)]; drop {
			continue
		}
		dst[key] = append([]string(nil), vals...)
	}
	return dst
}

// filterResponseHeaders removes hop-by-hop headers, plus any headers the
// origin's Connection header nominates, from an origin response. Everything
// substantive (Content-Type, ETag, Cache-Control, ...) passes through.
func filterResponseHeaders(src http.Header) http.Header {
	dst := make(http.Header, len(src))
	for key, vals := range src {
		dst[key] = vals
	}
	for _, name := range src.Values("Connection") {
		for _, h := range strings.Split(name, ",") {
			if h = strings.TrimSpace(h); h != "" {
				dst.Del(h)
			}
		}
	}
	for _, h := range hopByHopHeaders {
		dst.Del(h)
	}
	return dst
}
