package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"

	"origin-proxy-go/internal/client"
	"origin-proxy-go/internal/config"
	"origin-proxy-go/internal/service"
)

func TestRegisterRoutes_Wiring(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer origin.Close()

	u, err := url.Parse(origin.URL)
	if err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		Origin: config.OriginConfig{
			Host:            u.Host,
			Scheme:          u.Scheme,
			TimeoutSeconds:  10,
			IdleConnections: 10,
		},
		Headers: config.HeadersConfig{
			Strip: []string{"cf-ray", "cf-connecting-ip"},
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	oc := client.NewOriginClient(cfg, logger, nil)
	rw := service.NewRewriter(oc, cfg, logger)

	proxy := NewProxyHandler(rw, logger)
	health := NewHealthHandler(cfg, "test")

	e := echo.New()
	RegisterRoutes(e, proxy, health)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"GET /healthz", http.MethodGet, "/healthz", http.StatusOK},
		{"GET /proxy/status", http.MethodGet, "/proxy/status", http.StatusOK},
		{"GET / goes to origin", http.MethodGet, "/", http.StatusOK},
		{"GET /index.html goes to origin", http.MethodGet, "/index.html", http.StatusOK},
		{"GET /deep/nested/page goes to origin", http.MethodGet, "/deep/nested/page.html", http.StatusOK},
		{"POST /submit goes to origin", http.MethodPost, "/submit", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRegisterRoutes_OwnRoutesGetSecurityHeaders(t *testing.T) {
	cfg := &config.Config{
		Origin:  config.OriginConfig{Host: "origin.example.net", Scheme: "https", TimeoutSeconds: 1, IdleConnections: 1},
		Headers: config.HeadersConfig{Strip: []string{"cf-ray"}},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	oc := client.NewOriginClient(cfg, logger, nil)
	rw := service.NewRewriter(oc, cfg, logger)

	e := echo.New()
	RegisterRoutes(e, NewProxyHandler(rw, logger), NewHealthHandler(cfg, "test"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want %q", got, "DENY")
	}
}
