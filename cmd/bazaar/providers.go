package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/auth/providers"
	"github.com/bazaarhq/bazaar/internal/authscreen"
	"github.com/bazaarhq/bazaar/internal/config"
	"github.com/bazaarhq/bazaar/internal/secrets"
)

// loadProviderSecrets fills provider secrets missing from the environment from Vault.
func loadProviderSecrets(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if !cfg.VaultEnabled() {
		return nil
	}
	vault, err := secrets.NewVault(secrets.Options{
		Address: cfg.VaultAddr,
		Token:   cfg.VaultToken,
		Mount:   cfg.VaultKVMount,
		Path:    cfg.VaultSecretPath,
	})
	if err != nil {
		return err
	}
	values, err := vault.Read(ctx)
	if err != nil {
		return fmt.Errorf("read provider secrets: %w", err)
	}
	filled := secrets.Fill(values, map[string]*string{
		secrets.KeySupabaseAnonKey:     &cfg.SupabaseAnonKey,
		secrets.KeyCognitoClientSecret: &cfg.CognitoClientSecret,
	})
	logger.Info("provider secrets loaded from vault", "path", cfg.VaultSecretPath, "keys", filled)
	return nil
}

func buildProvider(ctx context.Context, cfg config.Config) (providers.Provider, error) {
	switch cfg.AuthProvider {
	case providers.NameSupabase:
		return providers.NewSupabaseProvider(providers.SupabaseOptions{
			URL:     cfg.SupabaseURL,
			AnonKey: cfg.SupabaseAnonKey,
		})
	case providers.NameCognito:
		return providers.NewCognitoProvider(ctx, providers.CognitoOptions{
			Region:          cfg.CognitoRegion,
			ClientID:        cfg.CognitoClientID,
			ClientSecret:    cfg.CognitoClientSecret,
			AccessKeyID:     cfg.CognitoAccessKeyID,
			SecretAccessKey: cfg.CognitoSecretAccessKey,
		})
	case providers.NameMemory:
		return providers.ParseMemoryUsers(cfg.MemoryUsers)
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.AuthProvider)
	}
}

// buildScreens returns the supplier and vendor screens, in that order.
func buildScreens(cfg config.Config, provider providers.Provider) ([]*authscreen.Screen, error) {
	sources := []struct {
		role   auth.Role
		source string
	}{
		{role: auth.RoleSupplier, source: cfg.SupplierModeSource},
		{role: auth.RoleVendor, source: cfg.VendorModeSource},
	}

	screens := make([]*authscreen.Screen, 0, len(sources))
	for _, s := range sources {
		source, err := authscreen.ParseModeSource(s.source)
		if err != nil {
			return nil, fmt.Errorf("%s screen: %w", s.role, err)
		}
		screen, err := authscreen.New(authscreen.Config{
			Role:       s.role,
			ModeSource: source,
			Timeout:    cfg.AuthTimeout,
		}, provider)
		if err != nil {
			return nil, err
		}
		screens = append(screens, screen)
	}
	return screens, nil
}
