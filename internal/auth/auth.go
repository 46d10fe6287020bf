package auth

import (
	"fmt"
	"strings"
)

// Role is the marketplace account type a screen signs users into.
type Role string

const (
	RoleSupplier Role = "supplier"
	RoleVendor   Role = "vendor"
)

// Roles lists every role with an auth screen, in display order.
var Roles = []Role{RoleSupplier, RoleVendor}

func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleSupplier:
		return RoleSupplier, nil
	case RoleVendor:
		return RoleVendor, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

func (r Role) String() string {
	return string(r)
}

// Label is the capitalized role name used in headings.
func (r Role) Label() string {
	s := string(r)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Mode selects between the login and signup presentation of a screen.
type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeLogin:
		return ModeLogin, nil
	case ModeSignup:
		return ModeSignup, nil
	default:
		return "", fmt.Errorf("unknown mode %q", raw)
	}
}

func (m Mode) String() string {
	return string(m)
}

// Toggle returns the other mode. Anything that is not signup toggles to signup.
func (m Mode) Toggle() Mode {
	if m == ModeSignup {
		return ModeLogin
	}
	return ModeSignup
}

// Credentials are the values entered into an auth form.
type Credentials struct {
	Email    string
	Password string
}

// Metadata is attached to a signup request.
type Metadata struct {
	UserType Role
}

// Identity is what the identity provider reports about an authenticated account.
type Identity struct {
	Subject          string
	Email            string
	UserType         Role
	ProfileCompleted bool
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
