package authscreen

import (
	"github.com/bazaarhq/bazaar/internal/auth"
)

// View is the mode dependent text and navigation of a screen.
type View struct {
	Role        auth.Role
	Mode        auth.Mode
	Title       string
	Description string
	SubmitLabel string
	ToggleLabel string
	// ToggleHref is set for path-source screens; the toggle is a plain link.
	ToggleHref string
	// TogglePostPath is set for toggle-source screens; the toggle posts the next mode there.
	TogglePostPath string
	ToggleMode     auth.Mode
	FormAction     string
	HomeHref       string
}

func (s *Screen) View(mode auth.Mode) View {
	if mode != auth.ModeSignup {
		mode = auth.ModeLogin
	}
	label := s.role.Label()
	v := View{
		Role:       s.role,
		Mode:       mode,
		ToggleMode: mode.Toggle(),
		FormAction: s.FormPath(mode),
		HomeHref:   "/",
	}
	if mode == auth.ModeSignup {
		v.Title = label + " Signup"
		v.Description = "Create your " + s.role.String() + " account"
		v.SubmitLabel = "Sign Up"
		v.ToggleLabel = "Already have an account? Login"
	} else {
		v.Title = label + " Login"
		v.Description = "Access your " + s.role.String() + " dashboard"
		v.SubmitLabel = "Login"
		v.ToggleLabel = "Don't have an account? Sign Up"
	}
	if s.source == ModeSourcePath {
		v.ToggleHref = s.FormPath(v.ToggleMode)
	} else {
		v.TogglePostPath = s.ModePath()
	}
	return v
}
