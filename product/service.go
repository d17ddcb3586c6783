package product

import (
	"context"
	"fmt"
	"strings"
)

// Service handles product business logic.
type Service struct {
	repo Repository
}

// NewService creates a new product service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds a catalog item under an existing provider.
func (s *Service) Create(ctx context.Context, params CreateParams) (Product, error) {
	if err := validate(params.Name, params.Price, params.StockQuantity); err != nil {
		return Product{}, err
	}
	if params.ProviderID <= 0 {
		return Product{}, fmt.Errorf("product: provider id is required")
	}
	return s.repo.Create(ctx, params)
}

func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (Product, error) {
	if err := validate(params.Name, params.Price, params.StockQuantity); err != nil {
		return Product{}, err
	}
	return s.repo.Update(ctx, id, params)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// SetImage records the public URL of a stored product image.
func (s *Service) SetImage(ctx context.Context, id int64, url string) (Product, error) {
	return s.repo.SetImageURL(ctx, id, url)
}

func validate(name string, price, stock int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("product: name is required")
	}
	if price < 0 {
		return fmt.Errorf("product: price must not be negative")
	}
	if stock < 0 {
		return fmt.Errorf("product: stock quantity must not be negative")
	}
	return nil
}
