package store

import (
	"context"
	"fmt"

	"github.com/kcmvp/crm/entity"
	"github.com/kcmvp/crm/sqlx"
)

var productFields = []entity.FieldProvider[entity.Product]{
	entity.ProductID,
	entity.ProductName,
	entity.ProductPrice,
	entity.ProductStock,
}

func scanProduct(row scanner) (entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
		return p, err
	}
	p.Price = p.Price.Round(entity.PriceScale)
	return p, nil
}

func (s *Store) InsertProduct(ctx context.Context, p *entity.Product) error {
	query, args, err := sqlx.InsertSQL[entity.Product](
		sqlx.Set[entity.Product](entity.ProductName, p.Name),
		sqlx.Set[entity.Product](entity.ProductPrice, p.Price),
		sqlx.Set[entity.Product](entity.ProductStock, p.Stock),
	)
	if err != nil {
		return err
	}
	id, err := s.insert(ctx, query, args)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	p.ID = id
	return nil
}

func (s *Store) Product(ctx context.Context, id int64) (entity.Product, error) {
	return one(ctx, s.ex, productFields, sqlx.Eq[entity.Product](entity.ProductID, id), scanProduct)
}

// Products lists products matching where, ordered by sorts (id when empty).
func (s *Store) Products(ctx context.Context, where sqlx.Where[entity.Product], sorts ...sqlx.Sort[entity.Product]) ([]entity.Product, error) {
	if len(sorts) == 0 {
		sorts = []sqlx.Sort[entity.Product]{sqlx.Asc[entity.Product](entity.ProductID)}
	}
	return list(ctx, s.ex, productFields, where, sorts, scanProduct)
}

// UpdateStock persists the stock of one product.
func (s *Store) UpdateStock(ctx context.Context, id int64, stock int) error {
	query, args, err := sqlx.UpdateSQL[entity.Product](sqlx.Eq[entity.Product](entity.ProductID, id), sqlx.Set[entity.Product](entity.ProductStock, stock))
	if err != nil {
		return err
	}
	n, err := s.exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("failed to update stock of product %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
