package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/labstack/echo/v5"
)

func TestAuthScreenPostLoginRedirectsToDashboard(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &recordingProvider{identity: auth.Identity{Subject: "sub-1", Email: "a@b.com"}})
	c, rec := app.request(http.MethodPost, "/supplier/auth", credentialsForm("a@b.com", "secret"), nil)

	if err := app.h.HandleAuthScreenPost(c); err != nil {
		t.Fatalf("HandleAuthScreenPost() error = %v", err)
	}

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != "/supplier/dashboard" {
		t.Fatalf("Location = %q, want /supplier/dashboard", got)
	}
	signIns, signUps := app.provider.counts()
	if signIns != 1 || signUps != 0 {
		t.Fatalf("calls = signIn %d signUp %d, want 1 0", signIns, signUps)
	}
	if got := app.provider.signIns[0]; got != (auth.Credentials{Email: "a@b.com", Password: "secret"}) {
		t.Fatalf("SignIn creds = %+v", got)
	}

	identity, ok := app.h.Sessions.Identity(app.sessionCtx)
	if !ok || identity.Subject != "sub-1" {
		t.Fatalf("session identity = %+v, %v", identity, ok)
	}
	if role, _ := app.h.Sessions.Role(app.sessionCtx); role != auth.RoleSupplier {
		t.Fatalf("session role = %q, want supplier", role)
	}
}

func TestAuthScreenPostSignupSendsUserType(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &recordingProvider{identity: auth.Identity{Subject: "sub-2"}})
	c, rec := app.request(http.MethodPost, "/vendor/signup", credentialsForm("a@b.com", "secret"), nil)

	if err := app.h.HandleAuthScreenPost(c); err != nil {
		t.Fatalf("HandleAuthScreenPost() error = %v", err)
	}

	if got := rec.Header().Get("Location"); got != "/vendor/profile-setup" {
		t.Fatalf("Location = %q, want /vendor/profile-setup", got)
	}
	signIns, signUps := app.provider.counts()
	if signIns != 0 || signUps != 1 {
		t.Fatalf("calls = signIn %d signUp %d, want 0 1", signIns, signUps)
	}
	call := app.provider.signUps[0]
	if call.creds != (auth.Credentials{Email: "a@b.com", Password: "secret"}) || call.meta.UserType != auth.RoleVendor {
		t.Fatalf("SignUp call = %+v", call)
	}
}

func TestAuthScreenPostRejectionShowsMessageAndKeepsValues(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &recordingProvider{err: auth.NewError(auth.KindInvalidCredentials, "Invalid credentials")})
	c, rec := app.request(http.MethodPost, "/supplier/auth", credentialsForm("a@b.com", "secret"), nil)

	if err := app.h.HandleAuthScreenPost(c); err != nil {
		t.Fatalf("HandleAuthScreenPost() error = %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Location"); got != "" {
		t.Fatalf("Location = %q, want no redirect", got)
	}
	assertBodyContains(t, rec, `role="alert">Invalid credentials</p>`)
	assertBodyContains(t, rec, `value="a@b.com"`)
	assertBodyContains(t, rec, `value="secret"`)
	assertBodyContains(t, rec, `<!doctype html>`)
	if _, ok := app.h.Sessions.Identity(app.sessionCtx); ok {
		t.Fatal("failed submission must not sign the session in")
	}
}

func TestAuthScreenPostHTMXFailureRendersCardOnly(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &recordingProvider{err: errors.New("upstream exploded")})
	c, rec := app.request(http.MethodPost, "/vendor/login", credentialsForm("a@b.com", "secret"), map[string]string{
		"HX-Request": "true",
		"HX-Target":  "auth-card",
	})

	if err := app.h.HandleAuthScreenPost(c); err != nil {
		t.Fatalf("HandleAuthScreenPost() error = %v", err)
	}

	assertBodyContains(t, rec, `<section id="auth-card"`)
	assertBodyContains(t, rec, `upstream exploded`)
	assertBodyNotContains(t, rec, `<!doctype html>`)
	vary := parseVaryHeader(rec.Header().Get(echo.HeaderVary))
	if vary["hx-request"] != 1 || vary["hx-target"] != 1 {
		t.Fatalf("Vary = %v", vary)
	}
}

func TestAuthScreenPostHTMXSuccessUsesHXRedirect(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &recordingProvider{identity: auth.Identity{Subject: "sub-1"}})
	c, rec := app.request(http.MethodPost, "/vendor/login", credentialsForm("a@b.com", "secret"), map[string]string{
		"HX-Request": "true",
		"HX-Target":  "auth-card",
	})

	if err := app.h.HandleAuthScreenPost(c); err != nil {
		t.Fatalf("HandleAuthScreenPost() error = %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/vendor/dashboard" {
		t.Fatalf("HX-Redirect = %q, want /vendor/dashboard", got)
	}
}

func TestAuthScreenPostEmptyFieldsSkipProvider(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &recordingProvider{})
	c, rec := app.request(http.MethodPost, "/vendor/login", credentialsForm("  ", ""), nil)

	if err := app.h.HandleAuthScreenPost(c); err != nil {
		t.Fatalf("HandleAuthScreenPost() error = %v", err)
	}

	assertBodyContains(t, rec, `Email and password are required`)
	if signIns, signUps := app.provider.counts(); signIns+signUps != 0 {
		t.Fatal("provider called for empty credentials")
	}
}

func TestAuthScreenPostModeResolution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		formMode   string
		wantSignIn int
		wantSignUp int
	}{
		{name: "toggle screen uses posted mode", target: "/supplier/auth", formMode: "signup", wantSignUp: 1},
		{name: "toggle screen defaults to login", target: "/supplier/auth", wantSignIn: 1},
		{name: "path screen ignores posted mode", target: "/vendor/login", formMode: "signup", wantSignIn: 1},
		{name: "path screen signup path", target: "/vendor/signup", formMode: "login", wantSignUp: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := newTestApp(t, &recordingProvider{})
			form := credentialsForm("a@b.com", "secret")
			if tt.formMode != "" {
				form.Set("mode", tt.formMode)
			}
			c, _ := app.request(http.MethodPost, tt.target, form, nil)
			if err := app.h.HandleAuthScreenPost(c); err != nil {
				t.Fatalf("HandleAuthScreenPost() error = %v", err)
			}
			signIns, signUps := app.provider.counts()
			if signIns != tt.wantSignIn || signUps != tt.wantSignUp {
				t.Fatalf("calls = signIn %d signUp %d, want %d %d", signIns, signUps, tt.wantSignIn, tt.wantSignUp)
			}
		})
	}
}

func TestAuthModeToggleFlipsLabelsWithoutProviderCall(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &recordingProvider{})

	c, rec := app.request(http.MethodGet, "/supplier/auth", nil, nil)
	if err := app.h.HandleAuthScreenGet(c); err != nil {
		t.Fatalf("HandleAuthScreenGet() error = %v", err)
	}
	assertBodyContains(t, rec, `Supplier Login`)
	assertBodyContains(t, rec, `>Login</button>`)

	c, rec = app.request(http.MethodPost, "/supplier/auth/mode", url.Values{"mode": {"signup"}}, nil)
	if err := app.h.HandleAuthModePost(c); err != nil {
		t.Fatalf("HandleAuthModePost() error = %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/supplier/auth" {
		t.Fatalf("toggle response = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	c, rec = app.request(http.MethodGet, "/supplier/auth", nil, nil)
	if err := app.h.HandleAuthScreenGet(c); err != nil {
		t.Fatalf("HandleAuthScreenGet() error = %v", err)
	}
	assertBodyContains(t, rec, `Supplier Signup`)
	assertBodyContains(t, rec, `>Sign Up</button>`)
	assertBodyContains(t, rec, `Already have an account? Login`)

	if signIns, signUps := app.provider.counts(); signIns+signUps != 0 {
		t.Fatal("toggling must not call the provider")
	}
}

func TestAuthModeToggleHTMXRendersCard(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &recordingProvider{})
	c, rec := app.request(http.MethodPost, "/supplier/auth/mode", url.Values{}, map[string]string{
		"HX-Request": "true",
		"HX-Target":  "auth-card",
	})
	if err := app.h.HandleAuthModePost(c); err != nil {
		t.Fatalf("HandleAuthModePost() error = %v", err)
	}

	assertBodyContains(t, rec, `data-mode="signup"`)
	assertBodyNotContains(t, rec, `<!doctype html>`)
	if got := app.h.Sessions.Mode(app.sessionCtx, auth.RoleSupplier); got != auth.ModeSignup {
		t.Fatalf("stored mode = %q, want signup", got)
	}
}

func TestAuthModePostRejectedForPathScreen(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &recordingProvider{})
	c, rec := app.request(http.MethodPost, "/vendor/auth/mode", url.Values{"mode": {"signup"}}, nil)
	if err := app.h.HandleAuthModePost(c); err != nil {
		t.Fatalf("HandleAuthModePost() error = %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestVendorPathOverridesStoredMode(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &recordingProvider{})
	app.h.Sessions.SetMode(app.sessionCtx, auth.RoleVendor, auth.ModeSignup)

	c, rec := app.request(http.MethodGet, "/vendor/login", nil, nil)
	if err := app.h.HandleAuthScreenGet(c); err != nil {
		t.Fatalf("HandleAuthScreenGet() error = %v", err)
	}
	assertBodyContains(t, rec, `Vendor Login`)
	assertBodyContains(t, rec, `href="/vendor/signup"`)

	c, rec = app.request(http.MethodGet, "/vendor/signup", nil, nil)
	if err := app.h.HandleAuthScreenGet(c); err != nil {
		t.Fatalf("HandleAuthScreenGet() error = %v", err)
	}
	assertBodyContains(t, rec, `Vendor Signup`)
	assertBodyContains(t, rec, `Create your vendor account`)
}

func TestAuthScreenUnknownRoleIsNotFound(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &recordingProvider{})
	c, rec := app.request(http.MethodGet, "/admin/login", nil, nil)
	if err := app.h.HandleAuthScreenGet(c); err != nil {
		t.Fatalf("HandleAuthScreenGet() error = %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleLogoutPostRedirectsNormallyForNonHTMX(t *testing.T) {
	app := newTestApp(t, &recordingProvider{})
	if err := app.h.Sessions.SignIn(app.sessionCtx, auth.RoleVendor, auth.Identity{Subject: "sub"}); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	c, rec := app.request(http.MethodPost, "/logout", url.Values{}, nil)

	if err := app.h.HandleLogoutPost(c); err != nil {
		t.Fatalf("HandleLogoutPost() error = %v", err)
	}

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != "/" {
		t.Fatalf("Location = %q, want %q", got, "/")
	}
	if _, ok := app.h.Sessions.Identity(app.sessionCtx); ok {
		t.Fatal("session still signed in after logout")
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), flashToastCookieName) {
		t.Fatalf("Set-Cookie = %q, want flash toast", rec.Header().Get("Set-Cookie"))
	}
}

func TestHandleLogoutPostUsesHXRedirectForHTMX(t *testing.T) {
	app := newTestApp(t, &recordingProvider{})
	c, rec := app.request(http.MethodPost, "/logout", url.Values{}, map[string]string{"HX-Request": "true"})

	if err := app.h.HandleLogoutPost(c); err != nil {
		t.Fatalf("HandleLogoutPost() error = %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/" {
		t.Fatalf("HX-Redirect = %q, want %q", got, "/")
	}
}

func TestHandlersWithoutSessionsFail(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/vendor/login")
	h := &Handlers{}
	if err := h.HandleAuthScreenGet(c); !errors.Is(err, errSessionsNotConfigured) {
		t.Fatalf("error = %v, want errSessionsNotConfigured", err)
	}
}

