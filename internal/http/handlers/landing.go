package handlers

import (
	"github.com/bazaarhq/bazaar/internal/http/viewmodels"
	"github.com/bazaarhq/bazaar/internal/http/views"
	"github.com/labstack/echo/v5"
)

// HandleDashboard is the login destination. authn.RequireRole guards it.
func (h *Handlers) HandleDashboard(c *echo.Context) error {
	return h.renderLanding(c, viewmodels.LandingPageDashboard, "Dashboard")
}

// HandleProfileSetup is the signup destination. authn.RequireRole guards it.
func (h *Handlers) HandleProfileSetup(c *echo.Context) error {
	return h.renderLanding(c, viewmodels.LandingPageProfileSetup, "Profile Setup")
}

func (h *Handlers) renderLanding(c *echo.Context, page, heading string) error {
	screen, ok := h.screenForRequest(c)
	if !ok {
		return RenderNotFound(c)
	}
	ctx := c.Request().Context()
	heading = screen.Role().Label() + " " + heading

	data := viewmodels.LandingViewData{
		Layout:           h.LayoutData(ctx, c, heading),
		Role:             screen.Role().String(),
		Page:             page,
		Heading:          heading,
		DashboardHref:    screen.DashboardPath(),
		ProfileSetupHref: screen.ProfileSetupPath(),
	}
	if state := h.sessionState(); state != nil {
		if identity, ok := state.Identity(ctx); ok {
			data.Email = identity.Email
		}
		data.ProfileCompleted = state.ProfileCompleted(ctx)
	}
	return h.RenderComponent(c, views.LandingPage(data))
}
