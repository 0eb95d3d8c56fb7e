package sqlstore

import (
	"context"

	"github.com/shopcore/storefront/internal/domain/order"
	"github.com/shopcore/storefront/internal/storage"
	"github.com/shopcore/storefront/internal/storage/table"
)

const (
	ordersTable        = "orders"
	orderProductsTable = "order_products"
)

// orderProjection is the fixed column set for order listings; line items are
// never inlined here.
var orderProjection = []string{"id", "status", "user_id", "created_at"}

// OrderStore persists orders and line items through the table accessor.
type OrderStore struct {
	tables *table.Accessor
}

var _ storage.OrderStore = (*OrderStore)(nil)

// NewOrderStore creates an order store over the accessor.
func NewOrderStore(tables *table.Accessor) *OrderStore {
	return &OrderStore{tables: tables}
}

func (s *OrderStore) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	return s.findOne(ctx, table.Filter{"id": id})
}

func (s *OrderStore) ActiveOrder(ctx context.Context, userID int64) (*order.Order, error) {
	return s.findOne(ctx, table.Filter{"user_id": userID, "status": string(order.StatusActive)})
}

func (s *OrderStore) findOne(ctx context.Context, filter table.Filter) (*order.Order, error) {
	rows, err := s.tables.Fetch(ctx, ordersTable, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	o := decodeOrder(rows[0])
	return &o, nil
}

func (s *OrderStore) ListByUser(ctx context.Context, userID int64, status order.Status) ([]order.Order, error) {
	filter := table.Filter{"user_id": userID}
	if status != "" {
		filter["status"] = string(status)
	}
	return s.list(ctx, filter)
}

func (s *OrderStore) ListAll(ctx context.Context) ([]order.Order, error) {
	return s.list(ctx, nil)
}

func (s *OrderStore) list(ctx context.Context, filter table.Filter) ([]order.Order, error) {
	rows, err := s.tables.Fetch(ctx, ordersTable, filter, orderProjection...)
	if err != nil {
		return nil, err
	}
	orders := make([]order.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, decodeOrder(row))
	}
	return orders, nil
}

func (s *OrderStore) Create(ctx context.Context, userID int64) (*order.Order, error) {
	res, err := s.tables.Insert(ctx, ordersTable, table.Row{
		"user_id": userID,
		"status":  string(order.StatusActive),
	})
	if err != nil {
		return nil, err
	}
	if !res.Inserted {
		return nil, nil
	}
	created := decodeOrder(res.Data[0])
	return &created, nil
}

func (s *OrderStore) Complete(ctx context.Context, id int64) (bool, error) {
	res, err := s.tables.Update(ctx, ordersTable,
		table.Row{"status": string(order.StatusCompleted)},
		table.Filter{"id": id})
	if err != nil {
		return false, err
	}
	return res.Updated, nil
}

func (s *OrderStore) AddLineItem(ctx context.Context, item order.LineItem) (*order.LineItem, error) {
	res, err := s.tables.Insert(ctx, orderProductsTable, table.Row{
		"order_id":   item.OrderID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	})
	if err != nil {
		return nil, err
	}
	if !res.Inserted {
		return nil, nil
	}
	created := decodeLineItem(res.Data[0])
	return &created, nil
}

func (s *OrderStore) LineItems(ctx context.Context, orderID int64) ([]order.LineItem, error) {
	rows, err := s.tables.Fetch(ctx, orderProductsTable, table.Filter{"order_id": orderID})
	if err != nil {
		return nil, err
	}
	items := make([]order.LineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, decodeLineItem(row))
	}
	return items, nil
}

func decodeOrder(row table.Row) order.Order {
	return order.Order{
		ID:        row.Int64("id"),
		UserID:    row.Int64("user_id"),
		Status:    order.Status(row.String("status")),
		CreatedAt: row.Time("created_at"),
	}
}

func decodeLineItem(row table.Row) order.LineItem {
	return order.LineItem{
		ID:        row.Int64("id"),
		OrderID:   row.Int64("order_id"),
		ProductID: row.Int64("product_id"),
		Quantity:  row.Int64("quantity"),
	}
}
