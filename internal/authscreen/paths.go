package authscreen

import (
	"strings"

	"github.com/bazaarhq/bazaar/internal/auth"
)

func (s *Screen) base() string {
	return "/" + s.role.String()
}

// AuthPath is the single page of a toggle-source screen.
func (s *Screen) AuthPath() string {
	return s.base() + "/auth"
}

// ModePath receives the toggle post of a toggle-source screen.
func (s *Screen) ModePath() string {
	return s.base() + "/auth/mode"
}

func (s *Screen) LoginPath() string {
	return s.base() + "/login"
}

func (s *Screen) SignupPath() string {
	return s.base() + "/signup"
}

func (s *Screen) DashboardPath() string {
	return s.base() + "/dashboard"
}

func (s *Screen) ProfileSetupPath() string {
	return s.base() + "/profile-setup"
}

// EntryPath is where visitors land on this screen.
func (s *Screen) EntryPath() string {
	if s.source == ModeSourcePath {
		return s.LoginPath()
	}
	return s.AuthPath()
}

// FormPath is where the form for mode is served and posted.
func (s *Screen) FormPath(mode auth.Mode) string {
	if s.source != ModeSourcePath {
		return s.AuthPath()
	}
	if mode == auth.ModeSignup {
		return s.SignupPath()
	}
	return s.LoginPath()
}

// Destination is the redirect target after a successful submission in mode.
func (s *Screen) Destination(mode auth.Mode) string {
	if mode == auth.ModeSignup {
		return s.ProfileSetupPath()
	}
	return s.DashboardPath()
}

// ModeForPath reports the mode selected by path, when path is one of this screen's mode routes.
func (s *Screen) ModeForPath(path string) (auth.Mode, bool) {
	path = strings.TrimRight(path, "/")
	switch path {
	case s.LoginPath():
		return auth.ModeLogin, true
	case s.SignupPath():
		return auth.ModeSignup, true
	default:
		return "", false
	}
}

// ResolveMode picks the mode to present. A path-source screen always follows the request path,
// overriding any stored toggle; a toggle-source screen uses the stored mode, defaulting to login.
func (s *Screen) ResolveMode(path string, stored auth.Mode) auth.Mode {
	if s.source == ModeSourcePath {
		if mode, ok := s.ModeForPath(path); ok {
			return mode
		}
		return auth.ModeLogin
	}
	if mode, err := auth.ParseMode(stored.String()); err == nil {
		return mode
	}
	return auth.ModeLogin
}
