package handlers

import (
	"errors"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/authscreen"
	"github.com/bazaarhq/bazaar/internal/http/viewmodels"
	"github.com/bazaarhq/bazaar/internal/http/views"
	"github.com/bazaarhq/bazaar/internal/logging"
	"github.com/labstack/echo/v5"
)

const authCardTarget = "auth-card"

var errSessionsNotConfigured = errors.New("auth sessions not configured")

// HandleAuthScreenGet renders a role's auth form in the mode its screen resolves for the request.
func (h *Handlers) HandleAuthScreenGet(c *echo.Context) error {
	if h.Sessions == nil {
		return errSessionsNotConfigured
	}
	screen, ok := h.screenForRequest(c)
	if !ok {
		return RenderNotFound(c)
	}

	ctx := c.Request().Context()
	mode := screen.ResolveMode(c.Request().URL.Path, h.Sessions.Mode(ctx, screen.Role()))
	data := h.authScreenData(c, screen, mode)
	data.Submitting = screen.Status(h.Sessions.ClientID(ctx)) == authscreen.StatusSubmitting
	return h.renderAuthScreen(c, data)
}

// HandleAuthScreenPost submits the form to the identity provider.
func (h *Handlers) HandleAuthScreenPost(c *echo.Context) error {
	if h.Sessions == nil {
		return errSessionsNotConfigured
	}
	screen, ok := h.screenForRequest(c)
	if !ok {
		return RenderNotFound(c)
	}

	ctx := c.Request().Context()
	stored, err := auth.ParseMode(c.FormValue("mode"))
	if err != nil {
		stored = h.Sessions.Mode(ctx, screen.Role())
	}
	mode := screen.ResolveMode(c.Request().URL.Path, stored)
	creds := auth.Credentials{
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
	}

	requestID, _ := c.Get(ContextKeyRequestID).(string)
	submitCtx := logging.WithLogger(ctx, c.Logger().With("request_id", requestID))
	out := screen.Submit(submitCtx, h.Sessions.ClientID(ctx), creds, mode)

	if out.Status != authscreen.StatusSucceeded {
		data := h.authScreenData(c, screen, out.Mode)
		data.Email = creds.Email
		data.Password = creds.Password
		if out.Err != nil {
			data.ErrorMessage = out.Err.Message
		}
		return h.renderAuthScreen(c, data)
	}

	if err := h.Sessions.SignIn(ctx, screen.Role(), out.Identity); err != nil {
		return err
	}
	setFlashToast(c, successToast(out.Mode))
	return redirectAfterPost(c, out.Redirect)
}

// HandleAuthModePost flips the mode of a toggle-source screen. The provider is not involved.
func (h *Handlers) HandleAuthModePost(c *echo.Context) error {
	if h.Sessions == nil {
		return errSessionsNotConfigured
	}
	screen, ok := h.screenForRequest(c)
	if !ok || screen.ModeSource() != authscreen.ModeSourceToggle {
		return RenderNotFound(c)
	}

	ctx := c.Request().Context()
	mode, err := auth.ParseMode(c.FormValue("mode"))
	if err != nil {
		mode = screen.ResolveMode(c.Request().URL.Path, h.Sessions.Mode(ctx, screen.Role())).Toggle()
	}
	h.Sessions.SetMode(ctx, screen.Role(), mode)

	if isHX(c) && isHXTarget(c, authCardTarget) {
		return h.renderAuthScreen(c, h.authScreenData(c, screen, mode))
	}
	return redirectAfterPost(c, screen.AuthPath())
}

func (h *Handlers) HandleLogoutPost(c *echo.Context) error {
	if h.Sessions == nil {
		return errSessionsNotConfigured
	}

	if err := h.Sessions.SignOut(c.Request().Context()); err != nil {
		return err
	}
	setFlashToast(c, viewmodels.ToastViewData{
		Category: viewmodels.ToastSuccess,
		Title:    "Signed out",
	})
	return redirectAfterPost(c, "/")
}

func successToast(mode auth.Mode) viewmodels.ToastViewData {
	if mode == auth.ModeSignup {
		return viewmodels.ToastViewData{Category: viewmodels.ToastSuccess, Title: "Account created", Description: "Finish your profile to start trading."}
	}
	return viewmodels.ToastViewData{Category: viewmodels.ToastSuccess, Title: "Signed in"}
}

func (h *Handlers) authScreenData(c *echo.Context, screen *authscreen.Screen, mode auth.Mode) viewmodels.AuthScreenViewData {
	v := screen.View(mode)
	autocomplete := "current-password"
	if v.Mode == auth.ModeSignup {
		autocomplete = "new-password"
	}
	return viewmodels.AuthScreenViewData{
		Layout:               h.LayoutData(c.Request().Context(), c, v.Title),
		Role:                 v.Role.String(),
		Mode:                 v.Mode.String(),
		Title:                v.Title,
		Description:          v.Description,
		FormAction:           v.FormAction,
		SubmitLabel:          v.SubmitLabel,
		HomeHref:             v.HomeHref,
		ToggleLabel:          v.ToggleLabel,
		ToggleHref:           v.ToggleHref,
		TogglePostPath:       v.TogglePostPath,
		ToggleMode:           v.ToggleMode.String(),
		PasswordAutocomplete: autocomplete,
	}
}

// renderAuthScreen renders only the card for htmx swaps and the full page otherwise.
func (h *Handlers) renderAuthScreen(c *echo.Context, data viewmodels.AuthScreenViewData) error {
	addVary(c, "HX-Request", "HX-Target")
	if isHX(c) && isHXTarget(c, authCardTarget) {
		return h.RenderComponent(c, views.AuthCard(data))
	}
	return h.RenderComponent(c, views.AuthPage(data))
}
