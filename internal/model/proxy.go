// Package model defines shared types for the proxy.
package model

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// ProxyRequest represents a client request to be rewritten and forwarded
// to the origin. URL is the server-parsed request URL; its path, raw query
// and fragment are carried verbatim into the outbound request.
type ProxyRequest struct {
	Ctx           context.Context
	Method        string
	URL           *url.URL
	Header        http.Header
	Body          io.ReadCloser
	ContentLength int64
}

// ProxyResponse represents the origin response to be streamed back.
type ProxyResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}
