package crm

import (
	"context"
	"fmt"

	"github.com/kcmvp/crm/constraint"
	"github.com/kcmvp/crm/entity"
	"github.com/kcmvp/crm/filter"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// ProductInput is a new product; an absent Stock means 0.
type ProductInput struct {
	Name  string
	Price decimal.Decimal
	Stock mo.Option[int]
}

// RestockResult lists the products topped up by UpdateLowStockProducts.
type RestockResult struct {
	Products []entity.Product
	Message  string
}

var lowStock = filter.Product{LowStock: mo.Some(true)}

func productMessage(vs constraint.Violations) string {
	switch {
	case vs.Has(entity.ProductPrice.Name(), constraint.ReasonRange):
		return MsgPriceNotPositive
	case vs.Has(entity.ProductStock.Name(), constraint.ReasonRange):
		return MsgStockNegative
	}
	return genericMessage(vs)
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (entity.Product, error) {
	p := entity.Product{Name: in.Name, Price: in.Price, Stock: in.Stock.OrElse(0)}
	if vs := p.Validate(); len(vs) > 0 {
		return p, &ValidationError{Message: productMessage(vs), Violations: vs}
	}
	if err := s.store.InsertProduct(ctx, &p); err != nil {
		return p, err
	}
	s.logger.InfoContext(ctx, "product created", "id", p.ID, "name", p.Name)
	return p, nil
}

// UpdateLowStockProducts adds entity.RestockIncrement to every product whose stock is
// below entity.LowStockThreshold. Each product is saved on its own, so a failure keeps the
// products restocked before it.
func (s *Service) UpdateLowStockProducts(ctx context.Context) (RestockResult, error) {
	updated, err := s.store.Products(ctx, lowStock.Where())
	if err != nil {
		return RestockResult{}, err
	}
	for i := range updated {
		updated[i].Stock += entity.RestockIncrement
		if err := s.store.UpdateStock(ctx, updated[i].ID, updated[i].Stock); err != nil {
			s.logger.ErrorContext(ctx, "restock stopped", "id", updated[i].ID, "restocked", i, "err", err)
			return RestockResult{}, fmt.Errorf("failed to restock product %d: %w", updated[i].ID, err)
		}
	}
	s.logger.InfoContext(ctx, "low stock products restocked", "count", len(updated))
	return RestockResult{Products: updated, Message: restockedMessage(len(updated))}, nil
}
