// Package orders implements the order lifecycle: the cart-singleton rule,
// line-item attachment and the Active -> Completed transition.
package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopcore/storefront/internal/apperr"
	"github.com/shopcore/storefront/internal/domain/order"
	"github.com/shopcore/storefront/internal/metrics"
	"github.com/shopcore/storefront/internal/storage"
	"github.com/shopcore/storefront/internal/storage/table"
	"github.com/shopcore/storefront/pkg/logger"
)

// Service drives the order state machine. The check-then-write sequences in
// Create and Complete are not atomic; the schema's partial unique index on
// active orders backs the singleton rule under concurrent writers.
type Service struct {
	store    storage.OrderStore
	products storage.ProductStore
	log      *logger.Logger
}

// New constructs an order service.
func New(store storage.OrderStore, products storage.ProductStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("orders")
	}
	return &Service{store: store, products: products, log: log}
}

// ActiveOrder returns the user's cart with line items attached.
func (s *Service) ActiveOrder(ctx context.Context, userID int64) (*order.Order, error) {
	o, err := s.store.ActiveOrder(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("active order: %w", err)
	}
	if o == nil {
		return nil, apperr.NotFound("no active order created")
	}

	items, err := s.store.LineItems(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("line items: %w", err)
	}
	o.LineItems = items
	return o, nil
}

// Create opens a new Active order for the user. If the user already has one,
// creation is refused and the conflict message carries the existing cart's id.
func (s *Service) Create(ctx context.Context, userID int64) (*order.Order, error) {
	active, err := s.store.ActiveOrder(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("active order: %w", err)
	}
	if active != nil {
		return nil, apperr.Conflict(fmt.Sprintf(
			"there's an active order (with id: %d) for this user already", active.ID))
	}

	created, err := s.store.Create(ctx, userID)
	if err != nil {
		// A racing creation can slip past the check above and hit the
		// partial unique index instead.
		if errors.Is(err, table.ErrUniqueViolation) {
			return nil, apperr.Conflict("there's an active order for this user already")
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	if created == nil {
		return nil, apperr.Internal("order was not created", nil)
	}

	metrics.OrderCreated()
	s.log.WithField("order_id", created.ID).WithField("user_id", userID).Info("order created")
	return created, nil
}

// Get looks up one order by id.
func (s *Service) Get(ctx context.Context, id int64) (*order.Order, error) {
	o, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if o == nil {
		return nil, apperr.NotFound("order not found")
	}
	return o, nil
}

// AddLineItem appends a line item to an order. Both the order and the product
// must exist; items for the same product are never merged.
func (s *Service) AddLineItem(ctx context.Context, orderID, productID, quantity int64) (*order.LineItem, error) {
	if quantity < 1 {
		return nil, apperr.BadRequest("quantity must be a positive integer")
	}

	o, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if o == nil {
		return nil, apperr.NotFound("order not found")
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	if p == nil {
		return nil, apperr.NotFound("product not found")
	}

	item, err := s.store.AddLineItem(ctx, order.LineItem{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("add line item: %w", err)
	}
	if item == nil {
		return nil, apperr.Internal("line item was not created", nil)
	}

	s.log.WithField("order_id", orderID).WithField("product_id", productID).Info("line item added")
	return item, nil
}

// LineItems returns an order's line items; an empty order yields an empty
// slice.
func (s *Service) LineItems(ctx context.Context, orderID int64) ([]order.LineItem, error) {
	return s.store.LineItems(ctx, orderID)
}

// Complete flips an order from Active to Completed. The order must exist, be
// Active and hold at least one line item. The precondition checks and the
// status update are separate statements; a concurrent AddLineItem may
// interleave with them.
func (s *Service) Complete(ctx context.Context, orderID int64) error {
	o, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("find order: %w", err)
	}
	if o == nil {
		return apperr.NotFound("order not found")
	}
	if o.Status == order.StatusCompleted {
		return apperr.InvalidState("order is already completed")
	}

	items, err := s.store.LineItems(ctx, orderID)
	if err != nil {
		return fmt.Errorf("line items: %w", err)
	}
	if len(items) == 0 {
		return apperr.InvalidState("order has no items")
	}

	updated, err := s.store.Complete(ctx, orderID)
	if err != nil {
		return fmt.Errorf("complete order: %w", err)
	}
	if !updated {
		return apperr.Internal("order was not updated", nil)
	}

	metrics.OrderCompleted()
	s.log.WithField("order_id", orderID).Info("order completed")
	return nil
}

// ListForUser returns a user's orders, optionally restricted to one status.
func (s *Service) ListForUser(ctx context.Context, userID int64, status order.Status) ([]order.Order, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.BadRequest(fmt.Sprintf("unknown order status %q", status))
	}
	return s.store.ListByUser(ctx, userID, status)
}

// ListAll returns every order with the fixed administrative projection.
func (s *Service) ListAll(ctx context.Context) ([]order.Order, error) {
	return s.store.ListAll(ctx)
}
