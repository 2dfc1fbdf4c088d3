// Package filter turns list query arguments into sqlx predicates. Every filter is a
// conjunction of its present fields; an empty filter matches every row.
package filter

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kcmvp/crm/constraint"
	"github.com/kcmvp/crm/entity"
	"github.com/kcmvp/crm/sqlx"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

type Customer struct {
	Name         mo.Option[string]
	Email        mo.Option[string]
	CreatedAtGte mo.Option[time.Time]
	CreatedAtLte mo.Option[time.Time]
	PhonePattern mo.Option[string]
}

func (f Customer) Where() sqlx.Where[entity.Customer] {
	return sqlx.And[entity.Customer](
		optional(f.Name, func(v string) sqlx.Where[entity.Customer] { return sqlx.ContainsFold[entity.Customer](entity.CustomerName, v) }),
		optional(f.Email, func(v string) sqlx.Where[entity.Customer] { return sqlx.ContainsFold[entity.Customer](entity.CustomerEmail, v) }),
		optional(f.CreatedAtGte, func(v time.Time) sqlx.Where[entity.Customer] { return sqlx.Gte[entity.Customer](entity.CustomerCreatedAt, v.UTC()) }),
		optional(f.CreatedAtLte, func(v time.Time) sqlx.Where[entity.Customer] { return sqlx.Lte[entity.Customer](entity.CustomerCreatedAt, v.UTC()) }),
		optional(f.PhonePattern, func(v string) sqlx.Where[entity.Customer] { return sqlx.HasPrefix[entity.Customer](entity.CustomerPhone, v) }),
	)
}

type Product struct {
	Name     mo.Option[string]
	PriceGte mo.Option[decimal.Decimal]
	PriceLte mo.Option[decimal.Decimal]
	StockGte mo.Option[int]
	StockLte mo.Option[int]
	// LowStock restricts to stock below entity.LowStockThreshold when true; false means no restriction.
	LowStock mo.Option[bool]
}

func (f Product) Where() sqlx.Where[entity.Product] {
	return sqlx.And[entity.Product](
		optional(f.Name, func(v string) sqlx.Where[entity.Product] { return sqlx.ContainsFold[entity.Product](entity.ProductName, v) }),
		optional(f.PriceGte, func(v decimal.Decimal) sqlx.Where[entity.Product] { return sqlx.Gte[entity.Product](entity.ProductPrice, v) }),
		optional(f.PriceLte, func(v decimal.Decimal) sqlx.Where[entity.Product] { return sqlx.Lte[entity.Product](entity.ProductPrice, v) }),
		optional(f.StockGte, func(v int) sqlx.Where[entity.Product] { return sqlx.Gte[entity.Product](entity.ProductStock, v) }),
		optional(f.StockLte, func(v int) sqlx.Where[entity.Product] { return sqlx.Lte[entity.Product](entity.ProductStock, v) }),
		optional(f.LowStock, func(v bool) sqlx.Where[entity.Product] {
			return lo.Ternary[sqlx.Where[entity.Product]](v, sqlx.Lt[entity.Product](entity.ProductStock, entity.LowStockThreshold), nil)
		}),
	)
}

type Order struct {
	TotalAmountGte mo.Option[decimal.Decimal]
	TotalAmountLte mo.Option[decimal.Decimal]
	OrderDateGte   mo.Option[time.Time]
	OrderDateLte   mo.Option[time.Time]
	CustomerID     mo.Option[int64]
	CustomerName   mo.Option[string]
	ProductName    mo.Option[string]
	ProductID      mo.Option[int64]
}

func (f Order) Where() sqlx.Where[entity.Order] {
	byCustomer := sqlx.Join[entity.Order, entity.Customer](entity.OrderCustomerID, entity.CustomerID)
	byLink := sqlx.Join[entity.Order, entity.OrderProduct](entity.OrderID, entity.OrderProductOrderID)
	linkToProduct := sqlx.Join[entity.OrderProduct, entity.Product](entity.OrderProductProductID, entity.ProductID)
	return sqlx.And[entity.Order](
		optional(f.TotalAmountGte, func(v decimal.Decimal) sqlx.Where[entity.Order] { return sqlx.Gte[entity.Order](entity.OrderTotalAmount, v) }),
		optional(f.TotalAmountLte, func(v decimal.Decimal) sqlx.Where[entity.Order] { return sqlx.Lte[entity.Order](entity.OrderTotalAmount, v) }),
		optional(f.OrderDateGte, func(v time.Time) sqlx.Where[entity.Order] { return sqlx.Gte[entity.Order](entity.OrderDate, v.UTC()) }),
		optional(f.OrderDateLte, func(v time.Time) sqlx.Where[entity.Order] { return sqlx.Lte[entity.Order](entity.OrderDate, v.UTC()) }),
		optional(f.CustomerID, func(v int64) sqlx.Where[entity.Order] { return sqlx.Eq[entity.Order](entity.OrderCustomerID, v) }),
		optional(f.CustomerName, func(v string) sqlx.Where[entity.Order] {
			return sqlx.Exists[entity.Order, entity.Customer](byCustomer, sqlx.ContainsFold[entity.Customer](entity.CustomerName, v))
		}),
		optional(f.ProductName, func(v string) sqlx.Where[entity.Order] {
			return sqlx.Exists[entity.Order, entity.OrderProduct](byLink, sqlx.Exists[entity.OrderProduct, entity.Product](linkToProduct, sqlx.ContainsFold[entity.Product](entity.ProductName, v)))
		}),
		optional(f.ProductID, func(v int64) sqlx.Where[entity.Order] {
			return sqlx.Exists[entity.Order, entity.OrderProduct](byLink, sqlx.Eq[entity.OrderProduct](entity.OrderProductProductID, v))
		}),
	)
}

func optional[T any, E entity.Entity](opt mo.Option[T], fn func(T) sqlx.Where[E]) sqlx.Where[E] {
	if v, ok := opt.Get(); ok {
		return fn(v)
	}
	return nil
}

var (
	customerColumns = map[string]entity.FieldProvider[entity.Customer]{
		"id":        entity.CustomerID,
		"name":      entity.CustomerName,
		"email":     entity.CustomerEmail,
		"createdAt": entity.CustomerCreatedAt,
	}
	productColumns = map[string]entity.FieldProvider[entity.Product]{
		"id":    entity.ProductID,
		"name":  entity.ProductName,
		"price": entity.ProductPrice,
		"stock": entity.ProductStock,
	}
	orderColumns = map[string]entity.FieldProvider[entity.Order]{
		"id":          entity.OrderID,
		"totalAmount": entity.OrderTotalAmount,
		"orderDate":   entity.OrderDate,
	}
)

// CustomerOrder parses an orderBy argument such as "name" or "-createdAt".
func CustomerOrder(orderBy string) ([]sqlx.Sort[entity.Customer], error) {
	return sortBy[entity.Customer](orderBy, customerColumns)
}

func ProductOrder(orderBy string) ([]sqlx.Sort[entity.Product], error) {
	return sortBy[entity.Product](orderBy, productColumns)
}

func OrderOrder(orderBy string) ([]sqlx.Sort[entity.Order], error) {
	return sortBy[entity.Order](orderBy, orderColumns)
}

// sortBy maps one whitelisted column name, optionally prefixed with '-' for descending order.
// An empty orderBy yields no sort terms and the store falls back to ascending id.
func sortBy[E entity.Entity](orderBy string, columns map[string]entity.FieldProvider[E]) ([]sqlx.Sort[E], error) {
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" {
		return nil, nil
	}
	name, desc := strings.CutPrefix(orderBy, "-")
	keys := lo.Keys(columns)
	slices.Sort(keys)
	if v := constraint.Check("orderBy", name, constraint.OneOf(keys...)); v.IsPresent() {
		return nil, fmt.Errorf("invalid orderBy %q: %w", orderBy, v.MustGet())
	}
	field := columns[name]
	return []sqlx.Sort[E]{lo.Ternary(desc, sqlx.Desc[E](field), sqlx.Asc[E](field))}, nil
}
