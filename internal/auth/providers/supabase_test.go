package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/golang-jwt/jwt/v5"
)

func newTestSupabase(t *testing.T, handler http.HandlerFunc) *SupabaseProvider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewSupabaseProvider(SupabaseOptions{URL: srv.URL + "/", AnonKey: "anon", HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewSupabaseProvider() error = %v", err)
	}
	return p
}

func TestSupabaseSignIn(t *testing.T) {
	t.Parallel()

	token := signedTestToken(t, jwt.MapClaims{
		"sub":           "user-1",
		"email":         "a@b.com",
		"user_metadata": map[string]any{"userType": "supplier"},
	})

	var gotBody supabasePasswordRequest
	p := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.String())
		}
		if r.Header.Get("apikey") != "anon" || r.Header.Get("Authorization") != "Bearer anon" {
			t.Errorf("missing api key headers: %v", r.Header)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": token})
	})

	identity, err := p.SignIn(context.Background(), auth.Credentials{Email: "a@b.com", Password: "secret"})
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if gotBody.Email != "a@b.com" || gotBody.Password != "secret" || gotBody.Data != nil {
		t.Fatalf("request body = %+v", gotBody)
	}
	want := auth.Identity{Subject: "user-1", Email: "a@b.com", UserType: auth.RoleSupplier}
	if identity != want {
		t.Fatalf("SignIn() = %+v, want %+v", identity, want)
	}
}

func TestSupabaseSignUpAwaitingConfirmation(t *testing.T) {
	t.Parallel()

	var gotBody supabasePasswordRequest
	p := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/signup" {
			t.Errorf("path = %q, want /auth/v1/signup", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		// No session until the email is confirmed; the user object is top level.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "user-9",
			"email":         "a@b.com",
			"user_metadata": map[string]any{"userType": "vendor"},
		})
	})

	identity, err := p.SignUp(context.Background(), auth.Credentials{Email: "a@b.com", Password: "secret"}, auth.Metadata{UserType: auth.RoleVendor})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if gotBody.Data["userType"] != "vendor" {
		t.Fatalf("signup data = %#v, want userType vendor", gotBody.Data)
	}
	want := auth.Identity{Subject: "user-9", Email: "a@b.com", UserType: auth.RoleVendor}
	if identity != want {
		t.Fatalf("SignUp() = %+v, want %+v", identity, want)
	}
}

func TestSupabaseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantKind auth.ErrorKind
		wantMsg  string
	}{
		{
			name:     "invalid grant",
			status:   http.StatusBadRequest,
			body:     `{"error":"invalid_grant","error_description":"Invalid login credentials"}`,
			wantKind: auth.KindInvalidCredentials,
			wantMsg:  "Invalid login credentials",
		},
		{
			name:     "invalid credentials code",
			status:   http.StatusBadRequest,
			body:     `{"code":400,"error_code":"invalid_credentials","msg":"Invalid credentials"}`,
			wantKind: auth.KindInvalidCredentials,
			wantMsg:  "Invalid credentials",
		},
		{
			name:     "already registered",
			status:   http.StatusUnprocessableEntity,
			body:     `{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`,
			wantKind: auth.KindConflict,
			wantMsg:  "User already registered",
		},
		{
			name:     "weak password",
			status:   http.StatusUnprocessableEntity,
			body:     `{"code":422,"error_code":"weak_password","msg":"Password should be at least 6 characters."}`,
			wantKind: auth.KindInvalidInput,
			wantMsg:  "Password should be at least 6 characters.",
		},
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			body:     `{"message":"Email rate limit exceeded"}`,
			wantKind: auth.KindRejected,
			wantMsg:  "Email rate limit exceeded",
		},
		{
			name:     "server error without body",
			status:   http.StatusBadGateway,
			body:     ``,
			wantKind: auth.KindUnavailable,
			wantMsg:  "Authentication failed (502 Bad Gateway)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := p.SignIn(context.Background(), auth.Credentials{Email: "a@b.com", Password: "x"})
			authErr := auth.AsError(err)
			if authErr == nil {
				t.Fatal("expected error")
			}
			if authErr.Kind != tt.wantKind {
				t.Fatalf("kind = %q, want %q", authErr.Kind, tt.wantKind)
			}
			if authErr.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", authErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestNewSupabaseProviderRequiresSettings(t *testing.T) {
	t.Parallel()

	if _, err := NewSupabaseProvider(SupabaseOptions{AnonKey: "anon"}); err == nil {
		t.Fatal("expected error for missing url")
	}
	if _, err := NewSupabaseProvider(SupabaseOptions{URL: "https://x.supabase.co"}); err == nil {
		t.Fatal("expected error for missing anon key")
	}
}

func TestSupabaseTransportErrorsHideProjectURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	closed, err := NewSupabaseProvider(SupabaseOptions{URL: url, AnonKey: "anon"})
	if err != nil {
		t.Fatalf("NewSupabaseProvider() error = %v", err)
	}
	garbled := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{not json`))
	})

	tests := []struct {
		name string
		p    *SupabaseProvider
	}{
		{name: "connection refused", p: closed},
		{name: "undecodable response", p: garbled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.p.SignIn(context.Background(), auth.Credentials{Email: "a@b.com", Password: "pw"})
			authErr := auth.AsError(err)
			if authErr == nil || authErr.Kind != auth.KindUnavailable {
				t.Fatalf("err = %v, want unavailable", err)
			}
			if authErr.Message != supabaseUnavailableMessage {
				t.Fatalf("Message = %q, want %q", authErr.Message, supabaseUnavailableMessage)
			}
			if strings.Contains(authErr.Message, "127.0.0.1") || strings.Contains(authErr.Message, "/auth/v1") {
				t.Fatalf("Message leaks the endpoint: %q", authErr.Message)
			}
			if authErr.Err == nil {
				t.Fatal("cause dropped; want it kept for logging")
			}
		})
	}
}
