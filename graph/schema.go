// Package graph exposes the CRM service as a GraphQL schema served over HTTP.
package graph

import (
	"net/http"
	"strconv"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
	"github.com/kcmvp/crm/crm"
	"github.com/kcmvp/crm/filter"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

const Hello = "Hello, GraphQL!"

type resolver struct {
	svc *crm.Service
}

// NewSchema builds the query and mutation schema over svc.
func NewSchema(svc *crm.Service) (graphql.Schema, error) {
	r := &resolver{svc: svc}
	objs := r.objects()
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    r.query(objs),
		Mutation: r.mutation(objs),
	})
}

// NewHandler serves schema for POST bodies and GET query strings.
func NewHandler(schema *graphql.Schema) http.Handler {
	return handler.New(&handler.Config{Schema: schema})
}

// arg returns the argument key when it is present and of type T.
func arg[T any](args map[string]any, key string) mo.Option[T] {
	v, ok := args[key].(T)
	return mo.TupleToOption(v, ok)
}

// productID parses the productId argument. Ids are positive, so an unparsable one becomes 0
// and matches no order.
func productID(args map[string]any) mo.Option[int64] {
	raw, ok := arg[string](args, "productId").Get()
	if !ok {
		return mo.None[int64]()
	}
	id, _ := strconv.ParseInt(raw, 10, 64)
	return mo.Some(id)
}

func orderBy(args map[string]any) string {
	return arg[string](args, "orderBy").OrEmpty()
}

var orderByArg = &graphql.ArgumentConfig{
	Type:        graphql.String,
	Description: "Column to sort by, prefixed with '-' for descending order.",
}

func (r *resolver) query(objs objects) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"hello": &graphql.Field{
				Type: graphql.String,
				Resolve: func(graphql.ResolveParams) (any, error) {
					return Hello, nil
				},
			},
			"customers": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(objs.customer))),
				Args: graphql.FieldConfigArgument{
					"name":         {Type: graphql.String},
					"email":        {Type: graphql.String},
					"createdAtGte": {Type: graphql.DateTime},
					"createdAtLte": {Type: graphql.DateTime},
					"phonePattern": {Type: graphql.String},
					"orderBy":      orderByArg,
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					f := filter.Customer{
						Name:         arg[string](p.Args, "name"),
						Email:        arg[string](p.Args, "email"),
						CreatedAtGte: arg[time.Time](p.Args, "createdAtGte"),
						CreatedAtLte: arg[time.Time](p.Args, "createdAtLte"),
						PhonePattern: arg[string](p.Args, "phonePattern"),
					}
					return r.svc.Customers(p.Context, f, orderBy(p.Args))
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(objs.product))),
				Args: graphql.FieldConfigArgument{
					"name":     {Type: graphql.String},
					"priceGte": {Type: Decimal},
					"priceLte": {Type: Decimal},
					"stockGte": {Type: graphql.Int},
					"stockLte": {Type: graphql.Int},
					"lowStock": {Type: graphql.Boolean},
					"orderBy":  orderByArg,
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					f := filter.Product{
						Name:     arg[string](p.Args, "name"),
						PriceGte: arg[decimal.Decimal](p.Args, "priceGte"),
						PriceLte: arg[decimal.Decimal](p.Args, "priceLte"),
						StockGte: arg[int](p.Args, "stockGte"),
						StockLte: arg[int](p.Args, "stockLte"),
						LowStock: arg[bool](p.Args, "lowStock"),
					}
					return r.svc.Products(p.Context, f, orderBy(p.Args))
				},
			},
			"orders": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(objs.order))),
				Args: graphql.FieldConfigArgument{
					"totalAmountGte": {Type: Decimal},
					"totalAmountLte": {Type: Decimal},
					"orderDateGte":   {Type: graphql.DateTime},
					"orderDateLte":   {Type: graphql.DateTime},
					"customerName":   {Type: graphql.String},
					"productName":    {Type: graphql.String},
					"productId":      {Type: graphql.ID},
					"orderBy":        orderByArg,
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					f := filter.Order{
						TotalAmountGte: arg[decimal.Decimal](p.Args, "totalAmountGte"),
						TotalAmountLte: arg[decimal.Decimal](p.Args, "totalAmountLte"),
						OrderDateGte:   arg[time.Time](p.Args, "orderDateGte"),
						OrderDateLte:   arg[time.Time](p.Args, "orderDateLte"),
						CustomerName:   arg[string](p.Args, "customerName"),
						ProductName:    arg[string](p.Args, "productName"),
						ProductID:      productID(p.Args),
					}
					return r.svc.Orders(p.Context, f, orderBy(p.Args))
				},
			},
		},
	})
}
