package authscreen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/logging"
	"github.com/bazaarhq/bazaar/internal/metrics"
)

const requiredFieldsMessage = "Email and password are required"

// Outcome is the result of one submission.
type Outcome struct {
	Status   Status
	Mode     auth.Mode
	Redirect string
	Identity auth.Identity
	Err      *auth.Error
	// Shared is true when the submission joined a provider call started by an earlier request.
	Shared bool
}

type formInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type flightResult struct {
	identity auth.Identity
	elapsed  time.Duration
}

// Submit validates creds and sends them to the provider: SignIn for login, SignUp with the
// screen's role as userType for signup. Concurrent submissions with the same key, mode and
// credentials share a single provider call. The provider call is detached from ctx cancellation and bounded by the
// screen timeout.
func (s *Screen) Submit(ctx context.Context, key string, creds auth.Credentials, mode auth.Mode) Outcome {
	if mode != auth.ModeSignup {
		mode = auth.ModeLogin
	}
	logger := logging.FromContext(ctx).With("role", s.role.String(), "mode", mode.String())

	if err := s.validate.Struct(formInput{Email: strings.TrimSpace(creds.Email), Password: creds.Password}); err != nil {
		authErr := &auth.Error{Kind: auth.KindInvalidInput, Message: requiredFieldsMessage, Err: err}
		metrics.AuthAttemptsTotal.WithLabelValues(s.role.String(), mode.String(), metrics.OutcomeFailed).Inc()
		logger.Warn("auth attempt failed", "kind", authErr.Kind, "error", authErr.Message)
		return Outcome{Status: StatusFailed, Mode: mode, Err: authErr}
	}

	group := flightKey(key, s.role, mode, creds)
	s.begin(key)
	defer s.end(key)

	ran := false
	v, err, _ := s.flights.Do(group, func() (any, error) {
		ran = true
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		start := time.Now()
		identity, err := s.call(callCtx, creds, mode)
		elapsed := time.Since(start)
		metrics.AuthDuration.WithLabelValues(s.role.String(), mode.String()).Observe(elapsed.Seconds())
		return flightResult{identity: identity, elapsed: elapsed}, err
	})
	shared := !ran
	if shared {
		metrics.AuthInflightCollapsedTotal.WithLabelValues(s.role.String()).Inc()
	}
	res, _ := v.(flightResult)

	if err != nil {
		authErr := auth.AsError(err)
		if ran {
			metrics.AuthAttemptsTotal.WithLabelValues(s.role.String(), mode.String(), metrics.OutcomeFailed).Inc()
		}
		logger.Warn("auth attempt failed",
			"kind", authErr.Kind,
			"error", authErr.Message,
			"shared", shared,
			"duration_ms", res.elapsed.Milliseconds(),
		)
		return Outcome{Status: StatusFailed, Mode: mode, Err: authErr, Shared: shared}
	}

	if ran {
		metrics.AuthAttemptsTotal.WithLabelValues(s.role.String(), mode.String(), metrics.OutcomeSucceeded).Inc()
	}
	identity := res.identity
	if identity.UserType == "" {
		identity.UserType = s.role
	}
	if identity.Email == "" {
		identity.Email = strings.TrimSpace(creds.Email)
	}
	logger.Info("auth attempt succeeded",
		"subject", identity.Subject,
		"shared", shared,
		"duration_ms", res.elapsed.Milliseconds(),
	)
	return Outcome{
		Status:   StatusSucceeded,
		Mode:     mode,
		Redirect: s.Destination(mode),
		Identity: identity,
		Shared:   shared,
	}
}

// flightKey groups submissions that are identical: same browser session, role, mode and
// credentials. The credentials enter the key only as a digest.
func flightKey(key string, role auth.Role, mode auth.Mode, creds auth.Credentials) string {
	h := sha256.New()
	h.Write([]byte(creds.Email))
	h.Write([]byte{0})
	h.Write([]byte(creds.Password))
	return key + "|" + role.String() + "|" + mode.String() + "|" + hex.EncodeToString(h.Sum(nil))
}

func (s *Screen) call(ctx context.Context, creds auth.Credentials, mode auth.Mode) (auth.Identity, error) {
	if mode == auth.ModeSignup {
		return s.provider.SignUp(ctx, creds, auth.Metadata{UserType: s.role})
	}
	return s.provider.SignIn(ctx, creds)
}
