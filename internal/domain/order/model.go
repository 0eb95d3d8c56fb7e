package order

import "time"

// Status is the order lifecycle tag. The only transition is
// Active -> Completed; Completed is terminal.
type Status string

const (
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusCompleted
}

// Order is a user's order. An Active order is the user's cart; each user has
// at most one Active order at a time.
type Order struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	LineItems []LineItem `json:"order_products,omitempty"`
}

// LineItem associates a product and quantity with an order. The same product
// may appear in multiple line items of one order; items are never merged.
type LineItem struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}
