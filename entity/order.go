package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order belongs to one customer and links one or more products through OrderProduct.
// TotalAmount is fixed when the order is created.
type Order struct {
	ID          int64
	CustomerID  int64
	TotalAmount decimal.Decimal
	OrderDate   time.Time
}

func (Order) Table() string { return "crm_order" }

// OrderProduct is a row of the order/product link table.
type OrderProduct struct {
	ID        int64
	OrderID   int64
	ProductID int64
}

func (OrderProduct) Table() string { return "crm_order_products" }

var (
	_ Entity = Order{}
	_ Entity = OrderProduct{}
)

var (
	OrderID          = Field[Order]("id")
	OrderCustomerID  = Field[Order]("customer_id")
	OrderTotalAmount = Field[Order]("total_amount")
	OrderDate        = Field[Order]("order_date")

	OrderProductID        = Field[OrderProduct]("id")
	OrderProductOrderID   = Field[OrderProduct]("order_id")
	OrderProductProductID = Field[OrderProduct]("product_id")
)
