package crm

import (
	"context"
	"errors"
	"time"

	"github.com/kcmvp/crm/constraint"
	"github.com/kcmvp/crm/entity"
	"github.com/kcmvp/crm/store"
	"github.com/samber/mo"
)

// OrderInput references a customer and products by the ids the API received.
type OrderInput struct {
	CustomerID string
	ProductIDs []string
	OrderDate  mo.Option[time.Time]
}

// CreateOrder checks the customer, then each product in input order, then that at least one
// product was given. The order row, its product links and its total are written in one
// transaction.
func (s *Service) CreateOrder(ctx context.Context, in OrderInput) (entity.Order, error) {
	var order entity.Order
	err := s.store.InTx(ctx, func(tx *store.Store) error {
		customerID, err := lookup(ctx, in.CustomerID, "Customer", tx.Customer)
		if err != nil {
			return err
		}
		productIDs := make([]int64, 0, len(in.ProductIDs))
		for _, raw := range in.ProductIDs {
			id, err := lookup(ctx, raw, "Product", tx.Product)
			if err != nil {
				return err
			}
			productIDs = append(productIDs, id)
		}
		if len(productIDs) == 0 {
			return &ValidationError{
				Message: MsgNoProducts,
				Violations: constraint.Violations{{
					Field: "products", Reason: constraint.ReasonRequired, Err: constraint.ErrRequired,
				}},
			}
		}

		order = entity.Order{CustomerID: customerID, OrderDate: in.OrderDate.OrEmpty()}
		if err := tx.InsertOrder(ctx, &order); err != nil {
			return err
		}
		if err := tx.AttachProducts(ctx, order.ID, productIDs); err != nil {
			return err
		}
		if order.TotalAmount, err = tx.OrderTotal(ctx, order.ID); err != nil {
			return err
		}
		return tx.SetOrderTotal(ctx, order.ID, order.TotalAmount)
	})
	if err != nil {
		return entity.Order{}, err
	}
	s.logger.InfoContext(ctx, "order created", "id", order.ID, "customer", order.CustomerID, "total", order.TotalAmount)
	return order, nil
}

// lookup resolves raw to the id of an existing row. Unparsable ids do not exist.
func lookup[T any](ctx context.Context, raw, name string, get func(context.Context, int64) (T, error)) (int64, error) {
	id, ok := parseID(raw)
	if !ok {
		return 0, &NotFoundError{Entity: name, ID: raw}
	}
	if _, err := get(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, &NotFoundError{Entity: name, ID: raw}
		}
		return 0, err
	}
	return id, nil
}
