// Package secrets fills identity provider secrets that were not set in the environment from a
// Vault KV v2 secret.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	vaultapi "github.com/hashicorp/vault/api"
)

const vaultRequestTimeout = 30 * time.Second

// Keys read from the Vault secret. They match the env var names they stand in for.
const (
	KeySupabaseAnonKey     = "SUPABASE_ANON_KEY"
	KeyCognitoClientSecret = "COGNITO_CLIENT_SECRET"
)

type Options struct {
	Address string
	Token   string
	Mount   string
	Path    string
}

// Vault reads a single KV v2 secret.
type Vault struct {
	client *vaultapi.Client
	mount  string
	path   string
}

func NewVault(opts Options) (*Vault, error) {
	address := strings.TrimSpace(opts.Address)
	if address == "" {
		return nil, errors.New("vault address is required")
	}
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil, errors.New("vault token is required")
	}
	path := strings.Trim(strings.TrimSpace(opts.Path), "/")
	if path == "" {
		return nil, errors.New("vault secret path is required")
	}
	mount := strings.Trim(strings.TrimSpace(opts.Mount), "/")
	if mount == "" {
		mount = "secret"
	}

	cfg := vaultapi.DefaultConfig()
	cfg.Address = address
	cfg.HttpClient = cleanhttp.DefaultPooledClient()
	cfg.HttpClient.Timeout = vaultRequestTimeout
	cfg.MaxRetries = 1

	client, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault client setup: %w", err)
	}
	client.SetToken(token)

	return &Vault{client: client, mount: mount, path: path}, nil
}

// Read returns the string values of the secret. A missing secret is an error.
func (v *Vault) Read(ctx context.Context) (map[string]string, error) {
	secret, err := v.client.KVv2(v.mount).Get(ctx, v.path)
	if err != nil {
		return nil, fmt.Errorf("vault read %s/%s: %w", v.mount, v.path, err)
	}
	out := make(map[string]string, len(secret.Data))
	for key, raw := range secret.Data {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out[key] = s
		}
	}
	return out, nil
}

// Fill sets every empty target whose key is present in values. It returns the keys it filled.
func Fill(values map[string]string, targets map[string]*string) []string {
	var filled []string
	for key, dst := range targets {
		if dst == nil || strings.TrimSpace(*dst) != "" {
			continue
		}
		if v, ok := values[key]; ok {
			*dst = v
			filled = append(filled, key)
		}
	}
	return filled
}
