package authn

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
)

const (
	CookieName = "bazaar_session"

	sessionKeyClientID         = "client_id"
	sessionKeyRole             = "auth_role"
	sessionKeySubject          = "auth_subject"
	sessionKeyEmail            = "auth_email"
	sessionKeyUserType         = "auth_user_type"
	sessionKeyProfileCompleted = "auth_profile_completed"
	sessionKeyModePrefix       = "auth_mode_"
)

// SessionState is the read-only view of the signed-in account that screens and pages consume.
type SessionState interface {
	Identity(ctx context.Context) (auth.Identity, bool)
	ProfileCompleted(ctx context.Context) bool
}

// Sessions stores browser session data in scs. It is the web session only; identity tokens stay
// with the provider.
type Sessions struct {
	manager *scs.SessionManager
}

var _ SessionState = (*Sessions)(nil)

// NewManager returns a session manager using store. A nil store keeps sessions in memory.
func NewManager(store scs.Store, lifetime time.Duration, secure bool) *scs.SessionManager {
	m := scs.New()
	if store != nil {
		m.Store = store
	}
	if lifetime > 0 {
		m.Lifetime = lifetime
	}
	m.Cookie.Name = CookieName
	m.Cookie.Path = "/"
	m.Cookie.HttpOnly = true
	m.Cookie.SameSite = http.SameSiteLaxMode
	m.Cookie.Secure = secure
	return m
}

func New(manager *scs.SessionManager) *Sessions {
	return &Sessions{manager: manager}
}

func (s *Sessions) Manager() *scs.SessionManager {
	return s.manager
}

// ClientID returns a stable random id for the browser session, creating one on first use.
func (s *Sessions) ClientID(ctx context.Context) string {
	if id := s.manager.GetString(ctx, sessionKeyClientID); id != "" {
		return id
	}
	id := uuid.NewString()
	s.manager.Put(ctx, sessionKeyClientID, id)
	return id
}

// Mode returns the toggled mode stored for role, or "" when none was stored.
func (s *Sessions) Mode(ctx context.Context, role auth.Role) auth.Mode {
	mode, err := auth.ParseMode(s.manager.GetString(ctx, sessionKeyModePrefix+role.String()))
	if err != nil {
		return ""
	}
	return mode
}

func (s *Sessions) SetMode(ctx context.Context, role auth.Role, mode auth.Mode) {
	s.manager.Put(ctx, sessionKeyModePrefix+role.String(), mode.String())
}

// SignIn records identity as signed in to the role screen it came through. The session token is
// renewed first.
func (s *Sessions) SignIn(ctx context.Context, role auth.Role, identity auth.Identity) error {
	if err := s.manager.RenewToken(ctx); err != nil {
		return err
	}
	s.manager.Put(ctx, sessionKeyRole, role.String())
	s.manager.Put(ctx, sessionKeySubject, identity.Subject)
	s.manager.Put(ctx, sessionKeyEmail, identity.Email)
	s.manager.Put(ctx, sessionKeyUserType, identity.UserType.String())
	s.manager.Put(ctx, sessionKeyProfileCompleted, identity.ProfileCompleted)
	return nil
}

func (s *Sessions) SignOut(ctx context.Context) error {
	return s.manager.Destroy(ctx)
}

func (s *Sessions) Identity(ctx context.Context) (auth.Identity, bool) {
	if _, ok := s.Role(ctx); !ok {
		return auth.Identity{}, false
	}
	identity := auth.Identity{
		Subject:          s.manager.GetString(ctx, sessionKeySubject),
		Email:            s.manager.GetString(ctx, sessionKeyEmail),
		ProfileCompleted: s.manager.GetBool(ctx, sessionKeyProfileCompleted),
	}
	if userType, err := auth.ParseRole(s.manager.GetString(ctx, sessionKeyUserType)); err == nil {
		identity.UserType = userType
	}
	return identity, true
}

// Role is the role screen the session signed in through.
func (s *Sessions) Role(ctx context.Context) (auth.Role, bool) {
	role, err := auth.ParseRole(s.manager.GetString(ctx, sessionKeyRole))
	if err != nil {
		return "", false
	}
	return role, true
}

func (s *Sessions) ProfileCompleted(ctx context.Context) bool {
	return s.manager.GetBool(ctx, sessionKeyProfileCompleted)
}

// RequireRole redirects to entryPath unless the session signed in through role.
func RequireRole(sessions *Sessions, role auth.Role, entryPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			got, ok := sessions.Role(c.Request().Context())
			if !ok || got != role {
				return c.Redirect(http.StatusSeeOther, entryPath)
			}
			return next(c)
		}
	}
}
