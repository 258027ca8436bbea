package service

import (
	"context"

	"traceper/internal/apiclient"
	"traceper/internal/logger"
	"traceper/internal/models"
)

// Authorization covers the two session writers (login, logout) and registration.
type Authorization interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, name, email, password string) error
	Logout(ctx context.Context)
}

// Resources exposes the remote collections shown on protected pages.
type Resources interface {
	List(ctx context.Context, resource string) ([]models.Record, error)
	Stats(ctx context.Context) (models.Stats, error)
	Delete(ctx context.Context, resource, id string) error
}

// API is the subset of the remote API client the services call.
type API interface {
	Login(ctx context.Context, email, password string) (apiclient.LoginResult, error)
	Register(ctx context.Context, name, email, password string) error
	Logout(ctx context.Context) error
	List(ctx context.Context, resource string) ([]models.Record, error)
	Stats(ctx context.Context) (models.Stats, error)
	Delete(ctx context.Context, resource, id string) error
}

// SessionWriter is the write side of the session store.
type SessionWriter interface {
	SetSession(ctx context.Context, token, displayName string)
	ClearSession(ctx context.Context)
}

// Service aggregates one tab's services.
type Service struct {
	Authorization
	Resources
}

var _ API = (*apiclient.Client)(nil)

// NewService wires the remote API and the tab's session store into services.
func NewService(api API, session SessionWriter, log *logger.Logger) *Service {
	return &Service{
		Authorization: NewAuthService(api, session, log),
		Resources:     NewResourceService(api),
	}
}
