package entity

import (
	"github.com/kcmvp/crm/constraint"
	"github.com/shopspring/decimal"
)

const (
	NameMaxLength  = 255
	EmailMaxLength = 254
	PhoneMaxLength = 20

	// PricePrecision and PriceScale mirror the DECIMAL(10,2) money columns.
	PricePrecision = 10
	PriceScale     = 2

	// LowStockThreshold is the stock level below which a product counts as low stock.
	LowStockThreshold = 10
	// RestockIncrement is added to every low-stock product by a restock run.
	RestockIncrement = 10
)

type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
	Stock int
}

func (Product) Table() string { return "crm_product" }

var _ Entity = Product{}

var (
	ProductID    = Field[Product]("id")
	ProductName  = Field[Product]("name")
	ProductPrice = Field[Product]("price")
	ProductStock = Field[Product]("stock")
)

// LowStock reports whether p is under LowStockThreshold.
func (p Product) LowStock() bool { return p.Stock < LowStockThreshold }

func (p Product) Validate() constraint.Violations {
	return constraint.Collect(
		constraint.Check(ProductName.Name(), p.Name, constraint.Required(), constraint.MaxLength(NameMaxLength)),
		constraint.Check(ProductPrice.Name(), p.Price, constraint.Positive(), constraint.Digits(PricePrecision, PriceScale)),
		constraint.Check(ProductStock.Name(), p.Stock, constraint.Gte(0)),
	)
}
