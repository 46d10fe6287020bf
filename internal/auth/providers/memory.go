package providers

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"sync"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/google/uuid"
)

// MemoryProvider is an in-process stand-in for the identity provider, used for local development
// and tests. Accounts live only as long as the process.
type MemoryProvider struct {
	mu       sync.Mutex
	accounts map[string]memoryAccount
}

type memoryAccount struct {
	password string
	identity auth.Identity
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{accounts: make(map[string]memoryAccount)}
}

// ParseMemoryUsers builds a MemoryProvider from a comma separated list of
// email:password:role entries.
func ParseMemoryUsers(raw string) (*MemoryProvider, error) {
	p := NewMemoryProvider()
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("memory user %q: want email:password:role", entry)
		}
		role, err := auth.ParseRole(parts[2])
		if err != nil {
			return nil, fmt.Errorf("memory user %q: %w", parts[0], err)
		}
		if _, err := p.SignUp(context.Background(), auth.Credentials{Email: parts[0], Password: parts[1]}, auth.Metadata{UserType: role}); err != nil {
			return nil, fmt.Errorf("memory user %q: %w", parts[0], err)
		}
	}
	return p, nil
}

func (p *MemoryProvider) Name() string {
	return NameMemory
}

func (p *MemoryProvider) SignIn(ctx context.Context, creds auth.Credentials) (auth.Identity, error) {
	if err := ctx.Err(); err != nil {
		return auth.Identity{}, err
	}

	p.mu.Lock()
	acct, ok := p.accounts[auth.NormalizeEmail(creds.Email)]
	p.mu.Unlock()
	if !ok {
		return auth.Identity{}, auth.ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(acct.password), []byte(creds.Password)) != 1 {
		return auth.Identity{}, auth.ErrInvalidCredentials
	}
	return acct.identity, nil
}

func (p *MemoryProvider) SignUp(ctx context.Context, creds auth.Credentials, meta auth.Metadata) (auth.Identity, error) {
	if err := ctx.Err(); err != nil {
		return auth.Identity{}, err
	}

	email := auth.NormalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return auth.Identity{}, auth.NewError(auth.KindInvalidInput, "Email and password are required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.accounts[email]; exists {
		return auth.Identity{}, auth.NewError(auth.KindConflict, "User already registered")
	}
	identity := auth.Identity{
		Subject:  uuid.NewString(),
		Email:    email,
		UserType: meta.UserType,
	}
	p.accounts[email] = memoryAccount{password: creds.Password, identity: identity}
	return identity, nil
}
