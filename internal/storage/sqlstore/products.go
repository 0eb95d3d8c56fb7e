package sqlstore

import (
	"context"

	"github.com/shopcore/storefront/internal/domain/product"
	"github.com/shopcore/storefront/internal/storage"
	"github.com/shopcore/storefront/internal/storage/table"
)

const productsTable = "products"

// ProductStore persists catalog entries through the table accessor.
type ProductStore struct {
	tables *table.Accessor
}

var _ storage.ProductStore = (*ProductStore)(nil)

// NewProductStore creates a product store over the accessor.
func NewProductStore(tables *table.Accessor) *ProductStore {
	return &ProductStore{tables: tables}
}

func (s *ProductStore) FindByID(ctx context.Context, id int64) (*product.Product, error) {
	return s.findOne(ctx, table.Filter{"id": id})
}

func (s *ProductStore) FindByName(ctx context.Context, name string) (*product.Product, error) {
	return s.findOne(ctx, table.Filter{"name": name})
}

func (s *ProductStore) findOne(ctx context.Context, filter table.Filter) (*product.Product, error) {
	rows, err := s.tables.Fetch(ctx, productsTable, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	p := decodeProduct(rows[0])
	return &p, nil
}

func (s *ProductStore) FindAll(ctx context.Context) ([]product.Product, error) {
	rows, err := s.tables.Fetch(ctx, productsTable, nil,
		"id", "name", "price", "created_at")
	if err != nil {
		return nil, err
	}
	products := make([]product.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, decodeProduct(row))
	}
	return products, nil
}

func (s *ProductStore) Create(ctx context.Context, p product.Product) (*product.Product, error) {
	res, err := s.tables.Insert(ctx, productsTable, table.Row{
		"name":  p.Name,
		"price": p.Price,
	})
	if err != nil {
		return nil, err
	}
	if !res.Inserted {
		return nil, nil
	}
	created := decodeProduct(res.Data[0])
	return &created, nil
}

func decodeProduct(row table.Row) product.Product {
	return product.Product{
		ID:        row.Int64("id"),
		Name:      row.String("name"),
		Price:     row.Float64("price"),
		CreatedAt: row.Time("created_at"),
	}
}
