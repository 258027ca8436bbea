package service

import (
	"context"
	"errors"
	"strings"

	"traceper/internal/apiclient"
	"traceper/internal/logger"
)

const (
	defaultDisplayName   = "User"
	msgInvalidCredential = "Invalid credentials"
	msgMissingFields     = "Email and password are required"
	msgRegisterFailed    = "Registration failed"
)

// Domain errors for auth flows.
var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrNoToken            = errors.New("login response carried no token")
)

// AuthError is a failed login or registration with a message fit for the form.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

// AuthService runs the login, logout and registration actions.
type AuthService struct {
	api     API
	session SessionWriter
	log     *logger.Logger
}

func NewAuthService(api API, session SessionWriter, log *logger.Logger) *AuthService {
	return &AuthService{api: api, session: session, log: logger.OrNop(log)}
}

// Login authenticates against the remote API and, only on success, writes the
// session. A rejected login leaves the session untouched.
func (s *AuthService) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return &AuthError{Message: msgMissingFields, Err: ErrMissingCredentials}
	}

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.log.Infow("auth_login_failed", "email", email, "err", err)
		return &AuthError{Message: messageOf(err, msgInvalidCredential), Err: err}
	}
	if res.Token == "" {
		s.log.Warnw("auth_login_failed", "email", email, "err", ErrNoToken)
		return &AuthError{Message: msgInvalidCredential, Err: ErrNoToken}
	}

	name := strings.TrimSpace(res.User.Name)
	if name == "" {
		name = defaultDisplayName
	}
	// The remote session exists now; a client that went away must not lose it.
	s.session.SetSession(context.WithoutCancel(ctx), res.Token, name)
	return nil
}

// Register creates an account on the remote API. It never touches the session.
func (s *AuthService) Register(ctx context.Context, name, email, password string) error {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return &AuthError{Message: "Name, email and password are required", Err: ErrMissingCredentials}
	}
	if err := s.api.Register(ctx, name, email, password); err != nil {
		s.log.Infow("auth_register_failed", "email", email, "err", err)
		return &AuthError{Message: messageOf(err, msgRegisterFailed), Err: err}
	}
	return nil
}

// Logout tells the remote API (best effort) and always clears the session.
func (s *AuthService) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.log.Warnw("auth_logout_remote_failed", "err", err)
	}
	s.session.ClearSession(context.WithoutCancel(ctx))
}

// messageOf picks the API's own message when there is one.
func messageOf(err error, fallback string) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
