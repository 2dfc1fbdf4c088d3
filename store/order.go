package store

import (
	"context"
	"fmt"

	"github.com/kcmvp/crm/entity"
	"github.com/kcmvp/crm/sqlx"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var orderFields = []entity.FieldProvider[entity.Order]{
	entity.OrderID,
	entity.OrderCustomerID,
	entity.OrderTotalAmount,
	entity.OrderDate,
}

func scanOrder(row scanner) (entity.Order, error) {
	var o entity.Order
	if err := row.Scan(&o.ID, &o.CustomerID, &o.TotalAmount, &o.OrderDate); err != nil {
		return o, err
	}
	o.TotalAmount = o.TotalAmount.Round(entity.PriceScale)
	o.OrderDate = o.OrderDate.UTC()
	return o, nil
}

// InsertOrder stores o and fills in its id and, when unset, its order date.
func (s *Store) InsertOrder(ctx context.Context, o *entity.Order) error {
	if o.OrderDate.IsZero() {
		o.OrderDate = Now()
	}
	query, args, err := sqlx.InsertSQL[entity.Order](
		sqlx.Set[entity.Order](entity.OrderCustomerID, o.CustomerID),
		sqlx.Set[entity.Order](entity.OrderTotalAmount, o.TotalAmount),
		sqlx.Set[entity.Order](entity.OrderDate, o.OrderDate.UTC()),
	)
	if err != nil {
		return err
	}
	id, err := s.insert(ctx, query, args)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	o.ID = id
	return nil
}

// AttachProducts links the distinct productIDs to the order.
func (s *Store) AttachProducts(ctx context.Context, orderID int64, productIDs []int64) error {
	for _, pid := range lo.Uniq(productIDs) {
		query, args, err := sqlx.InsertSQL[entity.OrderProduct](
			sqlx.Set[entity.OrderProduct](entity.OrderProductOrderID, orderID),
			sqlx.Set[entity.OrderProduct](entity.OrderProductProductID, pid),
		)
		if err != nil {
			return err
		}
		if _, err := s.exec(ctx, query, args); err != nil {
			return fmt.Errorf("failed to attach product %d to order %d: %w", pid, orderID, err)
		}
	}
	return nil
}

// OrderProducts lists the products linked to an order.
func (s *Store) OrderProducts(ctx context.Context, orderID int64) ([]entity.Product, error) {
	return s.Products(ctx, sqlx.Exists[entity.Product, entity.OrderProduct](
		sqlx.Join[entity.Product, entity.OrderProduct](entity.ProductID, entity.OrderProductProductID),
		sqlx.Eq[entity.OrderProduct](entity.OrderProductOrderID, orderID),
	))
}

// OrderTotal sums the prices of the products linked to an order.
// Prices are added as decimals so the total is exact on every dialect.
func (s *Store) OrderTotal(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	products, err := s.OrderProducts(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	prices := lo.Map(products, func(p entity.Product, _ int) decimal.Decimal { return p.Price })
	if len(prices) == 0 {
		return decimal.Zero, nil
	}
	return decimal.Sum(prices[0], prices[1:]...).Round(entity.PriceScale), nil
}

func (s *Store) SetOrderTotal(ctx context.Context, orderID int64, total decimal.Decimal) error {
	query, args, err := sqlx.UpdateSQL[entity.Order](sqlx.Eq[entity.Order](entity.OrderID, orderID), sqlx.Set[entity.Order](entity.OrderTotalAmount, total))
	if err != nil {
		return err
	}
	n, err := s.exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("failed to update total of order %d: %w", orderID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Order(ctx context.Context, id int64) (entity.Order, error) {
	return one(ctx, s.ex, orderFields, sqlx.Eq[entity.Order](entity.OrderID, id), scanOrder)
}

// Orders lists orders matching where, ordered by sorts (id when empty).
func (s *Store) Orders(ctx context.Context, where sqlx.Where[entity.Order], sorts ...sqlx.Sort[entity.Order]) ([]entity.Order, error) {
	if len(sorts) == 0 {
		sorts = []sqlx.Sort[entity.Order]{sqlx.Asc[entity.Order](entity.OrderID)}
	}
	return list(ctx, s.ex, orderFields, where, sorts, scanOrder)
}
