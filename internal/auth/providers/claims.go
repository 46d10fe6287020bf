package providers

import (
	"fmt"
	"strings"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/golang-jwt/jwt/v5"
)

// identityClaims covers the claims both supported providers put in their tokens.
// Supabase nests custom attributes under user_metadata; Cognito flattens them with a custom: prefix.
type identityClaims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	CognitoType  string         `json:"custom:userType"`
	jwt.RegisteredClaims
}

// identityFromToken reads the identity claims of a token the provider just issued to us over TLS.
// The signature is not checked here; the token is never accepted from a client.
func identityFromToken(token string) (auth.Identity, error) {
	var claims identityClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return auth.Identity{}, fmt.Errorf("parse provider token: %w", err)
	}

	identity := auth.Identity{
		Subject:          claims.Subject,
		Email:            claims.Email,
		ProfileCompleted: metadataBool(claims.UserMetadata, "profile_completed"),
	}
	userType := claims.CognitoType
	if v := metadataString(claims.UserMetadata, "userType"); v != "" {
		userType = v
	}
	if role, err := auth.ParseRole(userType); err == nil {
		identity.UserType = role
	}
	return identity, nil
}

func metadataString(m map[string]any, key string) string {
	v, ok := m[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func metadataBool(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}
