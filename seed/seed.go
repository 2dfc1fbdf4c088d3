// Package seed replaces the CRM data with a fixed sample set.
package seed

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/kcmvp/crm/entity"
	"github.com/kcmvp/crm/store"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

const Done = "Database seeded successfully!"

func Customers() []entity.Customer {
	return []entity.Customer{
		{Name: "Alice Johnson", Email: "alice@example.com", Phone: mo.Some("+1234567890")},
		{Name: "Bob Smith", Email: "bob@example.com", Phone: mo.Some("123-456-7890")},
		{Name: "Carol Williams", Email: "carol@example.com"},
	}
}

func Products() []entity.Product {
	return []entity.Product{
		{Name: "Laptop", Price: decimal.RequireFromString("999.99"), Stock: 10},
		{Name: "Mouse", Price: decimal.RequireFromString("19.99"), Stock: 50},
		{Name: "Keyboard", Price: decimal.RequireFromString("49.99"), Stock: 30},
	}
}

// Run wipes every table and inserts the sample customers, products and one order of a Laptop
// and a Mouse for Alice, all in one transaction.
func Run(ctx context.Context, st *store.Store, out io.Writer) error {
	err := st.InTx(ctx, func(tx *store.Store) error {
		if err := tx.Reset(ctx); err != nil {
			return err
		}
		customers := Customers()
		for i := range customers {
			if err := tx.InsertCustomer(ctx, &customers[i]); err != nil {
				return err
			}
		}
		products := Products()
		for i := range products {
			if err := tx.InsertProduct(ctx, &products[i]); err != nil {
				return err
			}
		}
		order := entity.Order{CustomerID: customers[0].ID}
		if err := tx.InsertOrder(ctx, &order); err != nil {
			return err
		}
		ids := lo.Map(products[:2], func(p entity.Product, _ int) int64 { return p.ID })
		if err := tx.AttachProducts(ctx, order.ID, ids); err != nil {
			return err
		}
		total, err := tx.OrderTotal(ctx, order.ID)
		if err != nil {
			return err
		}
		return tx.SetOrderTotal(ctx, order.ID, total)
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	_, err = color.New(color.FgGreen).Fprintln(out, Done)
	return err
}
