package service

import (
	"context"
	"errors"
	"fmt"

	"traceper/internal/models"
)

var (
	ErrUnknownResource = errors.New("unknown resource")
	ErrMissingID       = errors.New("missing record id")
)

// ResourceService reads and deletes remote collections for protected pages.
type ResourceService struct {
	api API
}

func NewResourceService(api API) *ResourceService {
	return &ResourceService{api: api}
}

func (s *ResourceService) List(ctx context.Context, resource string) ([]models.Record, error) {
	if !models.IsResource(resource) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	recs, err := s.api.List(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", resource, err)
	}
	return recs, nil
}

func (s *ResourceService) Stats(ctx context.Context) (models.Stats, error) {
	st, err := s.api.Stats(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("dashboard stats: %w", err)
	}
	return st, nil
}

func (s *ResourceService) Delete(ctx context.Context, resource, id string) error {
	if !models.IsResource(resource) {
		return fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	if id == "" {
		return ErrMissingID
	}
	if err := s.api.Delete(ctx, resource, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", resource, id, err)
	}
	return nil
}
