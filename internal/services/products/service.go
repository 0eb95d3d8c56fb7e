// Package products implements catalog management on top of the product
// store. Products are immutable once created.
package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopcore/storefront/internal/apperr"
	"github.com/shopcore/storefront/internal/domain/product"
	"github.com/shopcore/storefront/internal/storage"
	"github.com/shopcore/storefront/internal/storage/table"
	"github.com/shopcore/storefront/pkg/logger"
)

// Service manages the product catalog.
type Service struct {
	store storage.ProductStore
	log   *logger.Logger
}

// New constructs a product service.
func New(store storage.ProductStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("products")
	}
	return &Service{store: store, log: log}
}

// Create adds a catalog entry. Name uniqueness is pre-checked here and backed
// by the schema constraint for racing writers.
func (s *Service) Create(ctx context.Context, name string, price float64) (*product.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.BadRequest("name is required")
	}
	if price < 0 {
		return nil, apperr.BadRequest("price must not be negative")
	}

	existing, err := s.store.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check name: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("there's a product with this name already")
	}

	created, err := s.store.Create(ctx, product.Product{Name: name, Price: price})
	if err != nil {
		if errors.Is(err, table.ErrUniqueViolation) {
			return nil, apperr.Conflict("there's a product with this name already")
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	if created == nil {
		return nil, apperr.Internal("product was not created", nil)
	}

	s.log.WithField("product_id", created.ID).WithField("name", created.Name).Info("product created")
	return created, nil
}

// Get looks up one product by id.
func (s *Service) Get(ctx context.Context, id int64) (*product.Product, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	if p == nil {
		return nil, apperr.NotFound("product not found")
	}
	return p, nil
}

// List returns the whole catalog.
func (s *Service) List(ctx context.Context) ([]product.Product, error) {
	return s.store.FindAll(ctx)
}
