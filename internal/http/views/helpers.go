package views

import (
	"encoding/json"
	"strings"
)

const siteName = "Bazaar"

func PageTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return siteName
	}
	return title + " · " + siteName
}

// CSRFHeaders is the hx-headers value that makes htmx send the CSRF token on every request.
func CSRFHeaders(token string) string {
	payload, err := json.Marshal(map[string]string{"X-CSRF-Token": token})
	if err != nil {
		return "{}"
	}
	return string(payload)
}
