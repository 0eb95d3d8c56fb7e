// Package sqlstore implements the storage interfaces as thin typed veneers
// over the generic table accessor. Each store method is a single statement;
// multi-step workflows composed by the services are not atomic.
package sqlstore

import (
	"context"

	"github.com/shopcore/storefront/internal/domain/user"
	"github.com/shopcore/storefront/internal/storage"
	"github.com/shopcore/storefront/internal/storage/table"
)

const usersTable = "users"

// UserStore persists users through the table accessor.
type UserStore struct {
	tables *table.Accessor
}

var _ storage.UserStore = (*UserStore)(nil)

// NewUserStore creates a user store over the accessor.
func NewUserStore(tables *table.Accessor) *UserStore {
	return &UserStore{tables: tables}
}

func (s *UserStore) FindByID(ctx context.Context, id int64) (*user.User, error) {
	return s.findOne(ctx, table.Filter{"id": id})
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.findOne(ctx, table.Filter{"email": email})
}

func (s *UserStore) findOne(ctx context.Context, filter table.Filter) (*user.User, error) {
	rows, err := s.tables.Fetch(ctx, usersTable, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	u := decodeUser(rows[0])
	return &u, nil
}

func (s *UserStore) FindAll(ctx context.Context) ([]user.User, error) {
	// Password hash deliberately excluded from the projection.
	rows, err := s.tables.Fetch(ctx, usersTable, nil,
		"id", "firstname", "lastname", "email", "created_at")
	if err != nil {
		return nil, err
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, decodeUser(row))
	}
	return users, nil
}

func (s *UserStore) Create(ctx context.Context, u user.User) (*user.User, error) {
	res, err := s.tables.Insert(ctx, usersTable, table.Row{
		"firstname": u.Firstname,
		"lastname":  u.Lastname,
		"email":     u.Email,
		"password":  u.Password,
	})
	if err != nil {
		return nil, err
	}
	if !res.Inserted {
		return nil, nil
	}
	created := decodeUser(res.Data[0])
	return &created, nil
}

func decodeUser(row table.Row) user.User {
	return user.User{
		ID:        row.Int64("id"),
		Firstname: row.String("firstname"),
		Lastname:  row.String("lastname"),
		Email:     row.String("email"),
		Password:  row.String("password"),
		CreatedAt: row.Time("created_at"),
	}
}
