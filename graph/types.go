package graph

import (
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/kcmvp/crm/entity"
	"github.com/kcmvp/crm/filter"
	"github.com/samber/mo"
)

type objects struct {
	customer *graphql.Object
	product  *graphql.Object
	order    *graphql.Object
}

// field resolves one column of a T source value.
func field[T any](typ graphql.Output, fn func(T) any) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			src, ok := p.Source.(T)
			if !ok {
				return nil, nil
			}
			return fn(src), nil
		},
	}
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

func (r *resolver) objects() objects {
	customer := graphql.NewObject(graphql.ObjectConfig{
		Name: "CustomerType",
		Fields: graphql.Fields{
			"id":    field(graphql.NewNonNull(graphql.ID), func(c entity.Customer) any { return formatID(c.ID) }),
			"name":  field(graphql.NewNonNull(graphql.String), func(c entity.Customer) any { return c.Name }),
			"email": field(graphql.NewNonNull(graphql.String), func(c entity.Customer) any { return c.Email }),
			"phone": field(graphql.String, func(c entity.Customer) any {
				if v, ok := c.Phone.Get(); ok {
					return v
				}
				return nil
			}),
			"createdAt": field(graphql.NewNonNull(graphql.DateTime), func(c entity.Customer) any { return c.CreatedAt }),
		},
	})

	product := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProductType",
		Fields: graphql.Fields{
			"id":    field(graphql.NewNonNull(graphql.ID), func(p entity.Product) any { return formatID(p.ID) }),
			"name":  field(graphql.NewNonNull(graphql.String), func(p entity.Product) any { return p.Name }),
			"price": field(graphql.NewNonNull(Decimal), func(p entity.Product) any { return p.Price }),
			"stock": field(graphql.NewNonNull(graphql.Int), func(p entity.Product) any { return p.Stock }),
		},
	})

	order := graphql.NewObject(graphql.ObjectConfig{
		Name: "OrderType",
		Fields: graphql.Fields{
			"id":          field(graphql.NewNonNull(graphql.ID), func(o entity.Order) any { return formatID(o.ID) }),
			"totalAmount": field(graphql.NewNonNull(Decimal), func(o entity.Order) any { return o.TotalAmount }),
			"orderDate":   field(graphql.NewNonNull(graphql.DateTime), func(o entity.Order) any { return o.OrderDate }),
			"customer": &graphql.Field{
				Type: graphql.NewNonNull(customer),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					o, ok := p.Source.(entity.Order)
					if !ok {
						return nil, nil
					}
					return r.svc.Customer(p.Context, o.CustomerID)
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(product))),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					o, ok := p.Source.(entity.Order)
					if !ok {
						return nil, nil
					}
					return r.svc.OrderProducts(p.Context, o.ID)
				},
			},
		},
	})

	customer.AddFieldConfig("orders", &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(order))),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			c, ok := p.Source.(entity.Customer)
			if !ok {
				return nil, nil
			}
			return r.svc.Orders(p.Context, filter.Order{CustomerID: mo.Some(c.ID)}, "")
		},
	})

	return objects{customer: customer, product: product, order: order}
}

var customerInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CustomerInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"email": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"phone": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var productInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ProductInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"price": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(Decimal)},
		"stock": &graphql.InputObjectFieldConfig{Type: graphql.Int},
	},
})

var orderInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "OrderInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"customerId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		"productIds": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.ID))},
		"orderDate":  &graphql.InputObjectFieldConfig{Type: graphql.DateTime},
	},
})
