package orders

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/shopcore/storefront/internal/apperr"
	"github.com/shopcore/storefront/internal/domain/order"
	"github.com/shopcore/storefront/internal/domain/product"
	"github.com/shopcore/storefront/internal/storage/memory"
)

func newService(t *testing.T) (*Service, *memory.Orders, *memory.Products) {
	t.Helper()
	orderStore := memory.NewOrders()
	productStore := memory.NewProducts()
	return New(orderStore, productStore, nil), orderStore, productStore
}

func seedProduct(t *testing.T, store *memory.Products) *product.Product {
	t.Helper()
	p, err := store.Create(context.Background(), product.Product{Name: "widget", Price: 4.99})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func TestCreateEnforcesCartSingleton(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, 7)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Status != order.StatusActive {
		t.Fatalf("expected Active, got %s", first.Status)
	}

	_, err = svc.Create(ctx, 7)
	if !apperr.IsCode(err, apperr.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	// The conflict message must surface the existing cart's id.
	if !strings.Contains(err.Error(), strconv.FormatInt(first.ID, 10)) {
		t.Fatalf("conflict message should reference order %d: %q", first.ID, err.Error())
	}

	// A different user is unaffected.
	if _, err := svc.Create(ctx, 8); err != nil {
		t.Fatalf("create for other user: %v", err)
	}
}

func TestActiveOrderIncludesLineItems(t *testing.T) {
	svc, _, productStore := newService(t)
	ctx := context.Background()
	p := seedProduct(t, productStore)

	o, err := svc.Create(ctx, 7)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.AddLineItem(ctx, o.ID, p.ID, 2); err != nil {
		t.Fatalf("add line item: %v", err)
	}

	cart, err := svc.ActiveOrder(ctx, 7)
	if err != nil {
		t.Fatalf("active order: %v", err)
	}
	if cart.ID != o.ID || len(cart.LineItems) != 1 {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if cart.LineItems[0].Quantity != 2 {
		t.Fatalf("unexpected quantity %d", cart.LineItems[0].Quantity)
	}
}

func TestActiveOrderAbsent(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.ActiveOrder(context.Background(), 99)
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddLineItemValidations(t *testing.T) {
	svc, _, productStore := newService(t)
	ctx := context.Background()
	p := seedProduct(t, productStore)

	o, err := svc.Create(ctx, 7)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.AddLineItem(ctx, o.ID, p.ID, 0); !apperr.IsCode(err, apperr.CodeBadRequest) {
		t.Fatalf("expected bad request for zero quantity, got %v", err)
	}
	if _, err := svc.AddLineItem(ctx, 999, p.ID, 1); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found for missing order, got %v", err)
	}
	if _, err := svc.AddLineItem(ctx, o.ID, 999, 1); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found for missing product, got %v", err)
	}
}

func TestAddLineItemDoesNotMergeDuplicates(t *testing.T) {
	svc, _, productStore := newService(t)
	ctx := context.Background()
	p := seedProduct(t, productStore)

	o, _ := svc.Create(ctx, 7)
	if _, err := svc.AddLineItem(ctx, o.ID, p.ID, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.AddLineItem(ctx, o.ID, p.ID, 3); err != nil {
		t.Fatalf("add again: %v", err)
	}

	items, err := svc.LineItems(ctx, o.ID)
	if err != nil {
		t.Fatalf("line items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 separate line items, got %d", len(items))
	}
}

func TestCompleteTransition(t *testing.T) {
	svc, _, productStore := newService(t)
	ctx := context.Background()
	p := seedProduct(t, productStore)

	o, _ := svc.Create(ctx, 7)
	if _, err := svc.AddLineItem(ctx, o.ID, p.ID, 2); err != nil {
		t.Fatalf("add line item: %v", err)
	}

	if err := svc.Complete(ctx, o.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, err := svc.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != order.StatusCompleted {
		t.Fatalf("expected Completed, got %s", got.Status)
	}

	// Completed is terminal.
	if err := svc.Complete(ctx, o.ID); !apperr.IsCode(err, apperr.CodeInvalidState) {
		t.Fatalf("expected invalid state on second complete, got %v", err)
	}
}

func TestCompleteEmptyOrder(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	o, _ := svc.Create(ctx, 7)
	if err := svc.Complete(ctx, o.ID); !apperr.IsCode(err, apperr.CodeInvalidState) {
		t.Fatalf("expected invalid state for empty order, got %v", err)
	}
}

func TestCompleteMissingOrder(t *testing.T) {
	svc, _, _ := newService(t)
	if err := svc.Complete(context.Background(), 404); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCompleteFreesTheCartSlot(t *testing.T) {
	svc, _, productStore := newService(t)
	ctx := context.Background()
	p := seedProduct(t, productStore)

	first, _ := svc.Create(ctx, 7)
	svc.AddLineItem(ctx, first.ID, p.ID, 1)
	if err := svc.Complete(ctx, first.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	second, err := svc.Create(ctx, 7)
	if err != nil {
		t.Fatalf("create after completion: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("expected a new order")
	}
}

func TestListForUserByStatus(t *testing.T) {
	svc, _, productStore := newService(t)
	ctx := context.Background()
	p := seedProduct(t, productStore)

	first, _ := svc.Create(ctx, 7)
	svc.AddLineItem(ctx, first.ID, p.ID, 1)
	svc.Complete(ctx, first.ID)
	second, _ := svc.Create(ctx, 7)

	completed, err := svc.ListForUser(ctx, 7, order.StatusCompleted)
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != first.ID {
		t.Fatalf("unexpected completed orders %+v", completed)
	}

	all, err := svc.ListForUser(ctx, 7, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(all))
	}
	_ = second

	if _, err := svc.ListForUser(ctx, 7, order.Status("Pending")); !apperr.IsCode(err, apperr.CodeBadRequest) {
		t.Fatalf("expected bad request for unknown status, got %v", err)
	}
}

func TestReadsAreIdempotent(t *testing.T) {
	svc, _, productStore := newService(t)
	ctx := context.Background()
	p := seedProduct(t, productStore)

	o, _ := svc.Create(ctx, 7)
	svc.AddLineItem(ctx, o.ID, p.ID, 2)

	first, err := svc.ActiveOrder(ctx, 7)
	if err != nil {
		t.Fatalf("active order: %v", err)
	}
	second, err := svc.ActiveOrder(ctx, 7)
	if err != nil {
		t.Fatalf("active order again: %v", err)
	}
	if first.ID != second.ID || len(first.LineItems) != len(second.LineItems) {
		t.Fatalf("repeated reads disagree: %+v vs %+v", first, second)
	}
}
