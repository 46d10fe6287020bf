// Package authscreen implements the role-parameterized login and signup screens: mode resolution,
// submission to the identity provider, and the redirect or error that follows.
package authscreen

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/auth/providers"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
)

const defaultTimeout = 10 * time.Second

// ModeSource decides where a screen's login/signup mode comes from.
type ModeSource string

const (
	// ModeSourcePath derives the mode from /<role>/login and /<role>/signup.
	ModeSourcePath ModeSource = "path"
	// ModeSourceToggle keeps the mode in the browser session behind a single /<role>/auth page.
	ModeSourceToggle ModeSource = "toggle"
)

func ParseModeSource(raw string) (ModeSource, error) {
	switch ModeSource(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeSourcePath:
		return ModeSourcePath, nil
	case ModeSourceToggle:
		return ModeSourceToggle, nil
	default:
		return "", fmt.Errorf("unknown mode source %q", raw)
	}
}

// Status is the submission state of a screen.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

type Config struct {
	Role       auth.Role
	ModeSource ModeSource
	// Timeout bounds a single provider call. Zero means 10s.
	Timeout time.Duration
}

type Screen struct {
	role     auth.Role
	source   ModeSource
	timeout  time.Duration
	provider providers.Provider
	validate *validator.Validate

	flights singleflight.Group

	mu       sync.Mutex
	inflight map[string]int
}

func New(cfg Config, provider providers.Provider) (*Screen, error) {
	if provider == nil {
		return nil, errors.New("auth screen requires a provider")
	}
	if _, err := auth.ParseRole(cfg.Role.String()); err != nil {
		return nil, err
	}
	source := cfg.ModeSource
	if source == "" {
		source = ModeSourceToggle
	}
	if _, err := ParseModeSource(string(source)); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Screen{
		role:     cfg.Role,
		source:   source,
		timeout:  timeout,
		provider: provider,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		inflight: make(map[string]int),
	}, nil
}

func (s *Screen) Role() auth.Role {
	return s.role
}

func (s *Screen) ModeSource() ModeSource {
	return s.source
}

// Status reports StatusSubmitting while a submission for key is in flight and StatusIdle otherwise.
func (s *Screen) Status(key string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[key] > 0 {
		return StatusSubmitting
	}
	return StatusIdle
}

func (s *Screen) begin(key string) {
	s.mu.Lock()
	s.inflight[key]++
	s.mu.Unlock()
}

func (s *Screen) end(key string) {
	s.mu.Lock()
	if s.inflight[key] <= 1 {
		delete(s.inflight, key)
	} else {
		s.inflight[key]--
	}
	s.mu.Unlock()
}
