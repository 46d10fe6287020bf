package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/hashicorp/go-cleanhttp"
)

const (
	supabaseDefaultTimeout = 15 * time.Second
	supabaseMaxBody        = 1 << 20

	supabaseUnavailableMessage = "The sign-in service is unavailable. Please try again."
)

type SupabaseOptions struct {
	URL        string
	AnonKey    string
	HTTPClient *http.Client
}

// SupabaseProvider talks to the GoTrue REST API behind a Supabase project.
type SupabaseProvider struct {
	baseURL string
	anonKey string
	client  *http.Client
}

func NewSupabaseProvider(opts SupabaseOptions) (*SupabaseProvider, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.URL), "/")
	if baseURL == "" {
		return nil, errors.New("supabase url is required")
	}
	anonKey := strings.TrimSpace(opts.AnonKey)
	if anonKey == "" {
		return nil, errors.New("supabase anon key is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
		client.Timeout = supabaseDefaultTimeout
	}
	return &SupabaseProvider{baseURL: baseURL, anonKey: anonKey, client: client}, nil
}

func (p *SupabaseProvider) Name() string {
	return NameSupabase
}

type supabasePasswordRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// supabaseUser is the user object GoTrue returns, either nested under "user" or at the top
// level when signup still awaits email confirmation.
type supabaseUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type supabaseSessionResponse struct {
	AccessToken string        `json:"access_token"`
	User        *supabaseUser `json:"user"`
	supabaseUser
}

type supabaseErrorResponse struct {
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorCode        string `json:"error_code"`
}

func (p *SupabaseProvider) SignIn(ctx context.Context, creds auth.Credentials) (auth.Identity, error) {
	return p.post(ctx, "/auth/v1/token?grant_type=password", supabasePasswordRequest{
		Email:    creds.Email,
		Password: creds.Password,
	})
}

func (p *SupabaseProvider) SignUp(ctx context.Context, creds auth.Credentials, meta auth.Metadata) (auth.Identity, error) {
	return p.post(ctx, "/auth/v1/signup", supabasePasswordRequest{
		Email:    creds.Email,
		Password: creds.Password,
		Data:     map[string]any{"userType": meta.UserType.String()},
	})
}

func (p *SupabaseProvider) post(ctx context.Context, path string, body supabasePasswordRequest) (auth.Identity, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return auth.Identity{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return auth.Identity{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", p.anonKey)
	req.Header.Set("Authorization", "Bearer "+p.anonKey)

	res, err := p.client.Do(req)
	if err != nil {
		return auth.Identity{}, supabaseTransportError("supabase request", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, supabaseMaxBody))
	if err != nil {
		return auth.Identity{}, supabaseTransportError("supabase response", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return auth.Identity{}, supabaseError(res.StatusCode, raw)
	}

	var out supabaseSessionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return auth.Identity{}, supabaseTransportError("decode supabase response", err)
	}
	if out.AccessToken != "" {
		identity, err := identityFromToken(out.AccessToken)
		if err == nil {
			return identity, nil
		}
	}
	user := out.User
	if user == nil {
		user = &out.supabaseUser
	}
	return identityFromSupabaseUser(*user), nil
}

// supabaseTransportError hides transport details, which carry the project URL, behind a fixed
// message. The cause stays available through Unwrap for logs.
func supabaseTransportError(op string, err error) *auth.Error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	if errors.Is(err, context.DeadlineExceeded) {
		return auth.AsError(wrapped)
	}
	return &auth.Error{Kind: auth.KindUnavailable, Message: supabaseUnavailableMessage, Err: wrapped}
}

func identityFromSupabaseUser(u supabaseUser) auth.Identity {
	identity := auth.Identity{
		Subject:          u.ID,
		Email:            u.Email,
		ProfileCompleted: metadataBool(u.UserMetadata, "profile_completed"),
	}
	if role, err := auth.ParseRole(metadataString(u.UserMetadata, "userType")); err == nil {
		identity.UserType = role
	}
	return identity
}

func supabaseError(status int, raw []byte) *auth.Error {
	var body supabaseErrorResponse
	_ = json.Unmarshal(raw, &body)

	msg := firstNonEmpty(body.Msg, body.ErrorDescription, body.Message, body.Error)
	if msg == "" {
		msg = fmt.Sprintf("Authentication failed (%d %s)", status, http.StatusText(status))
	}

	kind := auth.KindRejected
	switch {
	case status >= 500:
		kind = auth.KindUnavailable
	case status == http.StatusUnprocessableEntity && body.ErrorCode == "user_already_exists":
		kind = auth.KindConflict
	case body.Error == "invalid_grant" || body.ErrorCode == "invalid_credentials":
		kind = auth.KindInvalidCredentials
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		kind = auth.KindInvalidInput
	}
	return &auth.Error{Kind: kind, Message: msg, Err: fmt.Errorf("supabase status %d", status)}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
