// Package memory provides thread-safe in-memory implementations of the
// storage interfaces, intended for tests and prototyping. They mirror the
// schema's uniqueness constraints so conflict paths can be exercised without
// a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopcore/storefront/internal/domain/order"
	"github.com/shopcore/storefront/internal/domain/product"
	"github.com/shopcore/storefront/internal/domain/user"
	"github.com/shopcore/storefront/internal/storage"
	"github.com/shopcore/storefront/internal/storage/table"
)

// Users is an in-memory storage.UserStore.
type Users struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]user.User
}

var _ storage.UserStore = (*Users)(nil)

// NewUsers creates an empty user store.
func NewUsers() *Users {
	return &Users{nextID: 1, byID: make(map[int64]user.User)}
}

func (s *Users) FindByID(_ context.Context, id int64) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.byID[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Users) FindAll(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]user.User, 0, len(s.byID))
	for _, u := range s.byID {
		u.Password = ""
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Users) Create(_ context.Context, u user.User) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("insert users: %w: email %s", table.ErrUniqueViolation, u.Email)
		}
	}
	u.ID = s.nextID
	s.nextID++
	u.CreatedAt = time.Now().UTC()
	s.byID[u.ID] = u
	return &u, nil
}

// Products is an in-memory storage.ProductStore.
type Products struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]product.Product
}

var _ storage.ProductStore = (*Products)(nil)

// NewProducts creates an empty product store.
func NewProducts() *Products {
	return &Products{nextID: 1, byID: make(map[int64]product.Product)}
}

func (s *Products) FindByID(_ context.Context, id int64) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.byID[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *Products) FindByName(_ context.Context, name string) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.byID {
		if p.Name == name {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (s *Products) FindAll(_ context.Context) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	products := make([]product.Product, 0, len(s.byID))
	for _, p := range s.byID {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (s *Products) Create(_ context.Context, p product.Product) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Name == p.Name {
			return nil, fmt.Errorf("insert products: %w: name %s", table.ErrUniqueViolation, p.Name)
		}
	}
	p.ID = s.nextID
	s.nextID++
	p.CreatedAt = time.Now().UTC()
	s.byID[p.ID] = p
	return &p, nil
}

// Orders is an in-memory storage.OrderStore.
type Orders struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]order.Order
	items  map[int64]order.LineItem
}

var _ storage.OrderStore = (*Orders)(nil)

// NewOrders creates an empty order store.
func NewOrders() *Orders {
	return &Orders{
		nextID: 1,
		byID:   make(map[int64]order.Order),
		items:  make(map[int64]order.LineItem),
	}
}

func (s *Orders) FindByID(_ context.Context, id int64) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o, ok := s.byID[id]; ok {
		return &o, nil
	}
	return nil, nil
}

func (s *Orders) ActiveOrder(_ context.Context, userID int64) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.byID {
		if o.UserID == userID && o.Status == order.StatusActive {
			o := o
			return &o, nil
		}
	}
	return nil, nil
}

func (s *Orders) ListByUser(_ context.Context, userID int64, status order.Status) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := []order.Order{}
	for _, o := range s.byID {
		if o.UserID != userID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func (s *Orders) ListAll(_ context.Context) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := make([]order.Order, 0, len(s.byID))
	for _, o := range s.byID {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func (s *Orders) Create(_ context.Context, userID int64) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.byID {
		if o.UserID == userID && o.Status == order.StatusActive {
			return nil, fmt.Errorf("insert orders: %w: active order for user %d", table.ErrUniqueViolation, userID)
		}
	}
	o := order.Order{
		ID:        s.nextID,
		UserID:    userID,
		Status:    order.StatusActive,
		CreatedAt: time.Now().UTC(),
	}
	s.nextID++
	s.byID[o.ID] = o
	return &o, nil
}

func (s *Orders) Complete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	o.Status = order.StatusCompleted
	s.byID[id] = o
	return true, nil
}

func (s *Orders) AddLineItem(_ context.Context, item order.LineItem) (*order.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = s.nextID
	s.nextID++
	s.items[item.ID] = item
	return &item, nil
}

func (s *Orders) LineItems(_ context.Context, orderID int64) ([]order.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := []order.LineItem{}
	for _, item := range s.items {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}
