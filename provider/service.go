package provider

import (
	"context"
	"fmt"
	"strings"
)

// Service handles provider business logic.
type Service struct {
	repo Repository
}

// NewService creates a new provider service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Provider, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Provider, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a new provider for an existing user.
func (s *Service) Create(ctx context.Context, params CreateParams) (Provider, error) {
	if strings.TrimSpace(params.Name) == "" {
		return Provider{}, fmt.Errorf("provider: name is required")
	}
	if params.UserID <= 0 {
		return Provider{}, fmt.Errorf("provider: user id is required")
	}
	return s.repo.Create(ctx, params)
}

func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (Provider, error) {
	if strings.TrimSpace(params.Name) == "" {
		return Provider{}, fmt.Errorf("provider: name is required")
	}
	return s.repo.Update(ctx, id, params)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// SetImage records the public URL of a stored profile image.
func (s *Service) SetImage(ctx context.Context, id int64, url string) (Provider, error) {
	return s.repo.SetImageURL(ctx, id, url)
}
