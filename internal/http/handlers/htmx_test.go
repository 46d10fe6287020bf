package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
)

func newTestContext(method, target string) (*echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func parseVaryHeader(value string) map[string]int {
	parts := strings.Split(value, ",")
	out := make(map[string]int, len(parts))
	for _, part := range parts {
		token := strings.ToLower(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		out[token]++
	}
	return out
}

func TestAddVary(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "http://example.com/")
	c.Response().Header().Set(echo.HeaderVary, "Accept-Encoding")

	addVary(c, "HX-Request", "hx-target", "Accept-Encoding")

	got := parseVaryHeader(c.Response().Header().Get(echo.HeaderVary))
	if got["accept-encoding"] != 1 {
		t.Fatalf("Vary missing accept-encoding: %v", got)
	}
	if got["hx-request"] != 1 {
		t.Fatalf("Vary missing hx-request: %v", got)
	}
	if got["hx-target"] != 1 {
		t.Fatalf("Vary missing hx-target: %v", got)
	}
}

func TestAddVaryPreservesWildcard(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "http://example.com/")
	c.Response().Header().Set(echo.HeaderVary, "*")

	addVary(c, "HX-Request")

	if got := c.Response().Header().Get(echo.HeaderVary); got != "*" {
		t.Fatalf("Vary = %q, want *", got)
	}
}

func TestIsHXTarget(t *testing.T) {
	c, _ := newTestContext(http.MethodPost, "http://example.com/vendor/login")
	c.Request().Header.Set("HX-Request", "true")
	c.Request().Header.Set("HX-Target", " auth-card ")

	if !isHX(c) {
		t.Fatal("isHX() = false")
	}
	if !isHXTarget(c, authCardTarget) {
		t.Fatal("isHXTarget(auth-card) = false")
	}
	if isHXTarget(c, "toast") {
		t.Fatal("isHXTarget(toast) = true")
	}
}

func TestRedirectAfterPost(t *testing.T) {
	t.Run("plain request uses see other", func(t *testing.T) {
		c, rec := newTestContext(http.MethodPost, "http://example.com/vendor/login")
		if err := redirectAfterPost(c, "/vendor/dashboard"); err != nil {
			t.Fatalf("redirectAfterPost() error = %v", err)
		}
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/vendor/dashboard" {
			t.Fatalf("status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("htmx request uses HX-Redirect", func(t *testing.T) {
		c, rec := newTestContext(http.MethodPost, "http://example.com/vendor/login")
		c.Request().Header.Set("HX-Request", "true")
		if err := redirectAfterPost(c, "/vendor/dashboard"); err != nil {
			t.Fatalf("redirectAfterPost() error = %v", err)
		}
		if rec.Code != http.StatusOK || rec.Header().Get("HX-Redirect") != "/vendor/dashboard" {
			t.Fatalf("status = %d, HX-Redirect = %q", rec.Code, rec.Header().Get("HX-Redirect"))
		}
		if vary := parseVaryHeader(rec.Header().Get(echo.HeaderVary)); vary["hx-request"] != 1 {
			t.Fatalf("Vary header missing hx-request: %v", vary)
		}
	})
}
