package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/authscreen"
	"github.com/bazaarhq/bazaar/internal/http/authn"
	"github.com/labstack/echo/v5"
)

type signUpCall struct {
	creds auth.Credentials
	meta  auth.Metadata
}

type recordingProvider struct {
	mu       sync.Mutex
	signIns  []auth.Credentials
	signUps  []signUpCall
	identity auth.Identity
	err      error
}

func (p *recordingProvider) Name() string { return "recording" }

func (p *recordingProvider) SignIn(ctx context.Context, creds auth.Credentials) (auth.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signIns = append(p.signIns, creds)
	return p.identity, p.err
}

func (p *recordingProvider) SignUp(ctx context.Context, creds auth.Credentials, meta auth.Metadata) (auth.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signUps = append(p.signUps, signUpCall{creds: creds, meta: meta})
	return p.identity, p.err
}

func (p *recordingProvider) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.signIns), len(p.signUps)
}

// testApp is a Handlers value with a supplier toggle screen, a vendor path screen and one
// browser session shared across requests.
type testApp struct {
	h          *Handlers
	provider   *recordingProvider
	sessionCtx context.Context
}

func newTestApp(t *testing.T, provider *recordingProvider) *testApp {
	t.Helper()

	supplier, err := authscreen.New(authscreen.Config{Role: auth.RoleSupplier, ModeSource: authscreen.ModeSourceToggle}, provider)
	if err != nil {
		t.Fatalf("authscreen.New(supplier) error = %v", err)
	}
	vendor, err := authscreen.New(authscreen.Config{Role: auth.RoleVendor, ModeSource: authscreen.ModeSourcePath}, provider)
	if err != nil {
		t.Fatalf("authscreen.New(vendor) error = %v", err)
	}

	sessions := authn.New(authn.NewManager(nil, 0, false))
	sessionCtx, err := sessions.Manager().Load(context.Background(), "")
	if err != nil {
		t.Fatalf("sessions.Load() error = %v", err)
	}

	return &testApp{
		h:          &Handlers{Sessions: sessions, Screens: []*authscreen.Screen{supplier, vendor}},
		provider:   provider,
		sessionCtx: sessionCtx,
	}
}

// request builds an echo context for target carrying the app's session. form may be nil.
func (a *testApp) request(method, target string, form url.Values, headers map[string]string) (*echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body).WithContext(a.sessionCtx)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func credentialsForm(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

func assertBodyContains(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("expected body to contain %q, got:\n%s", want, rec.Body.String())
	}
}

func assertBodyNotContains(t *testing.T, rec *httptest.ResponseRecorder, disallowed string) {
	t.Helper()
	if strings.Contains(rec.Body.String(), disallowed) {
		t.Fatalf("expected body to not contain %q", disallowed)
	}
}

