package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bazaarhq/bazaar/internal/http/viewmodels"
	"github.com/labstack/echo/v5"
)

const (
	flashToastCookieName = "bazaar_toast"
	// A toast only has to survive the redirect after a sign-in, signup or logout.
	flashToastMaxAge = 30
)

// setFlashToast queues toast for the next rendered page. Empty toasts are dropped.
func setFlashToast(c *echo.Context, toast viewmodels.ToastViewData) {
	toast, ok := cleanToast(toast)
	if !ok {
		return
	}
	payload, err := json.Marshal(toast)
	if err != nil {
		return
	}
	c.SetCookie(flashToastCookie(base64.RawURLEncoding.EncodeToString(payload), flashToastMaxAge))
}

// popFlashToast returns the queued toast, if any, and expires its cookie.
func popFlashToast(c *echo.Context) *viewmodels.ToastViewData {
	cookie, err := c.Cookie(flashToastCookieName)
	if err != nil || cookie == nil {
		return nil
	}
	expired := flashToastCookie("", -1)
	expired.Expires = time.Unix(0, 0)
	c.SetCookie(expired)

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var toast viewmodels.ToastViewData
	if err := json.Unmarshal(raw, &toast); err != nil {
		return nil
	}
	toast, ok := cleanToast(toast)
	if !ok {
		return nil
	}
	return &toast
}

func flashToastCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     flashToastCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func cleanToast(toast viewmodels.ToastViewData) (viewmodels.ToastViewData, bool) {
	toast.Category = normalizeToastCategory(toast.Category)
	toast.Title = strings.TrimSpace(toast.Title)
	toast.Description = strings.TrimSpace(toast.Description)
	return toast, toast.Title != "" || toast.Description != ""
}

func normalizeToastCategory(category string) string {
	switch c := strings.ToLower(strings.TrimSpace(category)); c {
	case viewmodels.ToastSuccess, viewmodels.ToastError, viewmodels.ToastWarning, viewmodels.ToastInfo:
		return c
	default:
		return viewmodels.ToastInfo
	}
}
