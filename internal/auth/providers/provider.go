// Package providers adapts external identity providers to the sign-in and sign-up calls made by the
// auth screens.
package providers

import (
	"context"

	"github.com/bazaarhq/bazaar/internal/auth"
)

// Provider is the external identity service. Both calls block on the provider and return an
// *auth.Error on failure.
type Provider interface {
	Name() string
	SignIn(ctx context.Context, creds auth.Credentials) (auth.Identity, error)
	SignUp(ctx context.Context, creds auth.Credentials, meta auth.Metadata) (auth.Identity, error)
}

const (
	NameMemory   = "memory"
	NameSupabase = "supabase"
	NameCognito  = "cognito"
)
