package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kcmvp/crm/entity"
	"github.com/kcmvp/crm/sqlx"
	"github.com/samber/mo"
)

var customerFields = []entity.FieldProvider[entity.Customer]{
	entity.CustomerID,
	entity.CustomerName,
	entity.CustomerEmail,
	entity.CustomerPhone,
	entity.CustomerCreatedAt,
}

func scanCustomer(row scanner) (entity.Customer, error) {
	var c entity.Customer
	var phone sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &phone, &c.CreatedAt); err != nil {
		return c, err
	}
	c.Phone = mo.TupleToOption(phone.String, phone.Valid)
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

// Now is the clock used for created_at and default order dates, in UTC with microsecond
// precision so every dialect round-trips it unchanged.
var Now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// InsertCustomer stores c and fills in its id and, when unset, its creation time.
// A duplicate email fails with ErrUniqueViolation.
func (s *Store) InsertCustomer(ctx context.Context, c *entity.Customer) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = Now()
	}
	phone, ok := c.Phone.Get()
	query, args, err := sqlx.InsertSQL[entity.Customer](
		sqlx.Set[entity.Customer](entity.CustomerName, c.Name),
		sqlx.Set[entity.Customer](entity.CustomerEmail, c.Email),
		sqlx.Set[entity.Customer](entity.CustomerPhone, sql.NullString{String: phone, Valid: ok}),
		sqlx.Set[entity.Customer](entity.CustomerCreatedAt, c.CreatedAt.UTC()),
	)
	if err != nil {
		return err
	}
	id, err := s.insert(ctx, query, args)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	c.ID = id
	return nil
}

func (s *Store) Customer(ctx context.Context, id int64) (entity.Customer, error) {
	return one(ctx, s.ex, customerFields, sqlx.Eq[entity.Customer](entity.CustomerID, id), scanCustomer)
}

// EmailTaken reports whether a customer already uses email.
func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := one(ctx, s.ex, customerFields[:1], sqlx.Eq[entity.Customer](entity.CustomerEmail, email), func(row scanner) (entity.Customer, error) {
		var c entity.Customer
		return c, row.Scan(&c.ID)
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	}
	return false, err
}

// Customers lists customers matching where, ordered by sorts (id when empty).
func (s *Store) Customers(ctx context.Context, where sqlx.Where[entity.Customer], sorts ...sqlx.Sort[entity.Customer]) ([]entity.Customer, error) {
	if len(sorts) == 0 {
		sorts = []sqlx.Sort[entity.Customer]{sqlx.Asc[entity.Customer](entity.CustomerID)}
	}
	return list(ctx, s.ex, customerFields, where, sorts, scanCustomer)
}
