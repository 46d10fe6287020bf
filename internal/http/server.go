package httpapp

import (
	"errors"
	"net/http"

	"github.com/bazaarhq/bazaar/internal/authscreen"
	"github.com/bazaarhq/bazaar/internal/http/authn"
	"github.com/bazaarhq/bazaar/internal/http/handlers"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
)

// EchoServer is the HTTP server wrapper.
type EchoServer struct {
	h *handlers.Handlers
	e *echo.Echo
}

// Options configures NewEchoServer.
type Options struct {
	Sessions *authn.Sessions
	Screens  []*authscreen.Screen
	// StaticDir is served under /static. Empty disables static files.
	StaticDir string
}

// NewEchoServer creates a new HTTP server.
func NewEchoServer(opts Options) (*EchoServer, error) {
	if opts.Sessions == nil {
		return nil, errors.New("sessions are required")
	}
	if len(opts.Screens) == 0 {
		return nil, errors.New("at least one auth screen is required")
	}
	h := &handlers.Handlers{Sessions: opts.Sessions, Screens: opts.Screens}
	es := &EchoServer{h: h, e: echo.New()}
	es.e.HTTPErrorHandler = es.httpErrorHandler
	es.registerRoutes(opts.StaticDir)
	return es, nil
}

func (es *EchoServer) registerRoutes(staticDir string) {
	es.e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
		RequestIDHandler: func(c *echo.Context, id string) {
			c.Set(handlers.ContextKeyRequestID, id)
		},
	}))
	es.e.Use(middleware.Recover())

	es.e.GET("/healthz", es.h.HandleHealthz)
	if staticDir != "" {
		es.e.Static("/static", staticDir)
	}

	app := es.e.Group("")
	app.Use(echo.WrapMiddleware(es.h.Sessions.Manager().LoadAndSave))
	app.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:" + echo.HeaderXCSRFToken + ",form:csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	}))
	app.GET("/", es.h.HandleHome)
	app.POST("/logout", es.h.HandleLogoutPost)

	for _, screen := range es.h.Screens {
		switch screen.ModeSource() {
		case authscreen.ModeSourcePath:
			app.GET(screen.LoginPath(), es.h.HandleAuthScreenGet)
			app.POST(screen.LoginPath(), es.h.HandleAuthScreenPost)
			app.GET(screen.SignupPath(), es.h.HandleAuthScreenGet)
			app.POST(screen.SignupPath(), es.h.HandleAuthScreenPost)
		default:
			app.GET(screen.AuthPath(), es.h.HandleAuthScreenGet)
			app.POST(screen.AuthPath(), es.h.HandleAuthScreenPost)
			app.POST(screen.ModePath(), es.h.HandleAuthModePost)
		}

		guard := authn.RequireRole(es.h.Sessions, screen.Role(), screen.EntryPath())
		app.GET(screen.DashboardPath(), es.h.HandleDashboard, guard)
		app.GET(screen.ProfileSetupPath(), es.h.HandleProfileSetup, guard)
	}
}

// Handler exposes the router for use with an http.Server.
func (es *EchoServer) Handler() http.Handler {
	return es.e
}

func (es *EchoServer) httpErrorHandler(c *echo.Context, err error) {
	if err == nil {
		return
	}
	if resp, uErr := echo.UnwrapResponse(c.Response()); uErr == nil && resp.Committed {
		return
	}

	status := httpStatusFromError(err)
	switch {
	case status == http.StatusNotFound:
		_ = handlers.RenderNotFound(c)
	case status >= http.StatusInternalServerError:
		_ = es.h.RenderError(c, err)
	default:
		_ = c.String(status, http.StatusText(status))
	}
}

func httpStatusFromError(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= 400 && code <= 599 {
			return code
		}
	}
	return http.StatusInternalServerError
}
