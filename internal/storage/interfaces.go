// Package storage defines the persistence interfaces the services depend on.
// Lookups report absence with a nil record and nil error; only storage faults
// are errors.
package storage

import (
	"context"

	"github.com/shopcore/storefront/internal/domain/order"
	"github.com/shopcore/storefront/internal/domain/product"
	"github.com/shopcore/storefront/internal/domain/user"
)

// UserStore persists user accounts.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	// FindAll returns all users without password hashes.
	FindAll(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, u user.User) (*user.User, error)
}

// ProductStore persists catalog entries.
type ProductStore interface {
	FindByID(ctx context.Context, id int64) (*product.Product, error)
	FindByName(ctx context.Context, name string) (*product.Product, error)
	FindAll(ctx context.Context) ([]product.Product, error)
	Create(ctx context.Context, p product.Product) (*product.Product, error)
}

// OrderStore persists orders and their line items.
type OrderStore interface {
	FindByID(ctx context.Context, id int64) (*order.Order, error)
	// ActiveOrder returns the user's single Active order, or nil.
	ActiveOrder(ctx context.Context, userID int64) (*order.Order, error)
	// ListByUser returns a user's orders, optionally filtered by status
	// (empty status matches all).
	ListByUser(ctx context.Context, userID int64, status order.Status) ([]order.Order, error)
	// ListAll returns every order with the fixed administrative projection.
	ListAll(ctx context.Context) ([]order.Order, error)
	Create(ctx context.Context, userID int64) (*order.Order, error)
	// Complete flips the order's status to Completed, keyed by id. It
	// reports false when no row matched.
	Complete(ctx context.Context, id int64) (bool, error)
	AddLineItem(ctx context.Context, item order.LineItem) (*order.LineItem, error)
	LineItems(ctx context.Context, orderID int64) ([]order.LineItem, error)
}
