package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/bookshelf/internal/actorctx"
	"github.com/geocoder89/bookshelf/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

const allowedOrigin = "http://localhost:5173"

func newCORSRouter() *gin.Engine {
	r := gin.New()
	r.Use(middlewares.CORSMiddleware([]string{allowedOrigin}))
	r.GET("/books", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.OPTIONS("/books", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	return r
}

func TestCORS_Preflight(t *testing.T) {
	tests := []struct {
		name       string
		origin     string
		wantStatus int
		wantAllow  string
		wantMaxAge string
	}{
		{name: "listed origin", origin: allowedOrigin, wantStatus: http.StatusNoContent, wantAllow: allowedOrigin, wantMaxAge: "600"},
		{name: "unlisted origin", origin: "https://evil.com", wantStatus: http.StatusForbidden},
		{name: "no origin", origin: "", wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/books", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")

			w := httptest.NewRecorder()
			newCORSRouter().ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Fatalf("allow-origin = %q, want %q", got, tt.wantAllow)
			}
			if got := w.Header().Get("Access-Control-Max-Age"); got != tt.wantMaxAge {
				t.Fatalf("max-age = %q, want %q", got, tt.wantMaxAge)
			}
			if tt.wantAllow != "" && !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut) {
				t.Fatalf("allow-methods = %q", w.Header().Get("Access-Control-Allow-Methods"))
			}
		})
	}
}

func TestCORS_SimpleRequestExposesETag(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Origin", allowedOrigin)

	w := httptest.NewRecorder()
	newCORSRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(got, "ETag") {
		t.Fatalf("expose-headers = %q, want ETag listed", got)
	}
	if got := w.Header().Values("Vary"); len(got) != 1 || got[0] != "Origin" {
		t.Fatalf("vary = %v", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name     string
		hsts     bool
		path     string
		wantHSTS bool
		wantCSP  string
	}{
		{name: "dev api", hsts: false, path: "/books", wantCSP: "default-src 'none'"},
		{name: "prod api", hsts: true, path: "/books", wantHSTS: true, wantCSP: "default-src 'none'"},
		{name: "docs page", hsts: true, path: "/docs", wantHSTS: true, wantCSP: "https://unpkg.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middlewares.SecurityHeaders(tt.hsts))
			r.GET(tt.path, func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Fatalf("nosniff missing, got %q", got)
			}
			if got := w.Header().Get("Strict-Transport-Security") != ""; got != tt.wantHSTS {
				t.Fatalf("hsts present = %v, want %v", got, tt.wantHSTS)
			}
			if got := w.Header().Get("Content-Security-Policy"); !strings.Contains(got, tt.wantCSP) {
				t.Fatalf("csp = %q, want it to contain %q", got, tt.wantCSP)
			}
		})
	}
}

func TestRequireJSON(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		wantStatus  int
	}{
		{name: "json", method: http.MethodPost, contentType: "application/json", body: "{}", wantStatus: http.StatusOK},
		{name: "json with charset", method: http.MethodPut, contentType: "Application/JSON; charset=utf-8", body: "{}", wantStatus: http.StatusOK},
		{name: "lookalike media type", method: http.MethodPost, contentType: "application/jsonp", body: "{}", wantStatus: http.StatusUnsupportedMediaType},
		{name: "form", method: http.MethodPost, contentType: "application/x-www-form-urlencoded", body: "a=b", wantStatus: http.StatusUnsupportedMediaType},
		{name: "missing", method: http.MethodPost, body: "{}", wantStatus: http.StatusUnsupportedMediaType},
		{name: "bodiless delete", method: http.MethodDelete, wantStatus: http.StatusOK},
		{name: "delete with text body", method: http.MethodDelete, contentType: "text/plain", body: "x", wantStatus: http.StatusUnsupportedMediaType},
		{name: "get", method: http.MethodGet, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middlewares.RequireJSON())
			r.Handle(tt.method, "/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, "/x", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestMaxBodyBytes_NonPositiveDisablesCap(t *testing.T) {
	for _, max := range []int64{0, -1} {
		r := gin.New()
		r.Use(middlewares.MaxBodyBytes(max))
		r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(strings.Repeat("a", 1024)))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("max=%d: status %d, want 200", max, w.Code)
		}
	}
}

func TestMaxBodyBytes_IgnoresBodilessMethods(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.MaxBodyBytes(8))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.ContentLength = 64
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "caller id kept", incoming: "abc-123", keep: true},
		{name: "missing id minted", incoming: ""},
		{name: "oversized id replaced", incoming: strings.Repeat("a", 129)},
		{name: "id with spaces replaced", incoming: "two words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fromCtx string

			r := gin.New()
			r.Use(middlewares.RequestID())
			r.GET("/x", func(c *gin.Context) {
				fromCtx, _ = actorctx.RequestIDFrom(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.incoming != "" {
				req.Header.Set("X-Request-Id", tt.incoming)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-Id")
			if got == "" || got != fromCtx {
				t.Fatalf("header id %q, context id %q", got, fromCtx)
			}
			if (got == tt.incoming) != tt.keep {
				t.Fatalf("id %q, incoming %q, keep=%v", got, tt.incoming, tt.keep)
			}
		})
	}
}
