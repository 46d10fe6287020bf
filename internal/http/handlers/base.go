// Package handlers contains HTTP handler logic split by page.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/authscreen"
	"github.com/bazaarhq/bazaar/internal/http/authn"
	"github.com/bazaarhq/bazaar/internal/http/viewmodels"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
)

const (
	// ContextKeyRequestID stores the request id (X-Request-ID) for logging and client error references.
	ContextKeyRequestID = "request_id"

	// InternalErrorCode is a stable error code safe to return to clients.
	InternalErrorCode = "INTERNAL_ERROR"
)

// Handlers groups all HTTP handlers and shared dependencies.
type Handlers struct {
	Sessions *authn.Sessions
	// Screens holds one auth screen per role, in display order.
	Screens []*authscreen.Screen
}

// Screen returns the auth screen for role.
func (h *Handlers) Screen(role auth.Role) (*authscreen.Screen, bool) {
	for _, s := range h.Screens {
		if s.Role() == role {
			return s, true
		}
	}
	return nil, false
}

// screenForRequest resolves the screen from the first path segment, e.g. /vendor/login.
func (h *Handlers) screenForRequest(c *echo.Context) (*authscreen.Screen, bool) {
	path := strings.TrimPrefix(c.Request().URL.Path, "/")
	segment, _, _ := strings.Cut(path, "/")
	role, err := auth.ParseRole(segment)
	if err != nil {
		return nil, false
	}
	return h.Screen(role)
}

func (h *Handlers) sessionState() authn.SessionState {
	if h.Sessions == nil {
		return nil
	}
	return h.Sessions
}

// LayoutData builds the common layout data for page rendering.
func (h *Handlers) LayoutData(ctx context.Context, c *echo.Context, title string) viewmodels.LayoutData {
	csrfToken, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	layout := viewmodels.LayoutData{
		Title:      title,
		CSRFToken:  csrfToken,
		Toast:      popFlashToast(c),
		ActivePath: c.Request().URL.Path,
	}
	if state := h.sessionState(); state != nil {
		if identity, ok := state.Identity(ctx); ok {
			layout.SignedIn = true
			layout.UserEmail = identity.Email
			layout.UserRole = identity.UserType.String()
		}
	}
	return layout
}

// RenderComponent renders a templ component as the response.
func (h *Handlers) RenderComponent(c *echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(c.Request().Context(), c.Response()); err != nil {
		return h.RenderError(c, err)
	}
	return nil
}

// RenderError returns a plain text error response.
func (h *Handlers) RenderError(c *echo.Context, err error) error {
	requestID, _ := c.Get(ContextKeyRequestID).(string)
	path := ""
	if req := c.Request(); req != nil && req.URL != nil {
		path = req.URL.Path
	}
	method := ""
	if req := c.Request(); req != nil {
		method = req.Method
	}
	c.Logger().Error("http error",
		"request_id", requestID,
		"method", method,
		"path", path,
		"ip", c.RealIP(),
		"error", err,
	)

	msg := "Internal server error."
	if requestID != "" {
		msg = fmt.Sprintf("%s Reference: %s.", msg, requestID)
	}
	msg = fmt.Sprintf("%s Code: %s.", msg, InternalErrorCode)
	return c.String(http.StatusInternalServerError, msg)
}

// RenderNotFound returns a 404 response.
func RenderNotFound(c *echo.Context) error {
	return c.String(http.StatusNotFound, "404 page not found")
}

func (h *Handlers) HandleHealthz(c *echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
