package handlers

import (
	"github.com/bazaarhq/bazaar/internal/http/viewmodels"
	"github.com/bazaarhq/bazaar/internal/http/views"
	"github.com/labstack/echo/v5"
)

var screenDescriptions = map[string]string{
	"supplier": "List your products and manage wholesale orders.",
	"vendor":   "Source products from suppliers for your store.",
}

func (h *Handlers) HandleHome(c *echo.Context) error {
	links := make([]viewmodels.HomeScreenLink, 0, len(h.Screens))
	for _, s := range h.Screens {
		links = append(links, viewmodels.HomeScreenLink{
			Role:        s.Role().String(),
			Label:       "Continue as " + s.Role().Label(),
			Description: screenDescriptions[s.Role().String()],
			Href:        s.EntryPath(),
		})
	}
	data := viewmodels.HomeViewData{
		Layout:  h.LayoutData(c.Request().Context(), c, ""),
		Screens: links,
	}
	return h.RenderComponent(c, views.HomePage(data))
}
