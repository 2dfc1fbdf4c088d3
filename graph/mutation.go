package graph

import (
	"time"

	"github.com/graphql-go/graphql"
	"github.com/kcmvp/crm/crm"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

func customerInputOf(raw any) crm.CustomerInput {
	in, _ := raw.(map[string]any)
	return crm.CustomerInput{
		Name:  arg[string](in, "name").OrEmpty(),
		Email: arg[string](in, "email").OrEmpty(),
		Phone: arg[string](in, "phone"),
	}
}

func productInputOf(raw any) crm.ProductInput {
	in, _ := raw.(map[string]any)
	return crm.ProductInput{
		Name:  arg[string](in, "name").OrEmpty(),
		Price: arg[decimal.Decimal](in, "price").OrEmpty(),
		Stock: arg[int](in, "stock"),
	}
}

func orderInputOf(raw any) crm.OrderInput {
	in, _ := raw.(map[string]any)
	ids, _ := in["productIds"].([]any)
	return crm.OrderInput{
		CustomerID: arg[string](in, "customerId").OrEmpty(),
		// null list items name no product
		ProductIDs: lo.FilterMap(ids, func(v any, _ int) (string, bool) {
			s, ok := v.(string)
			return s, ok
		}),
		OrderDate: arg[time.Time](in, "orderDate"),
	}
}

func payload(name string, fields graphql.Fields) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{Name: name, Fields: fields})
}

func (r *resolver) mutation(objs objects) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createCustomer": &graphql.Field{
				Type: payload("CreateCustomer", graphql.Fields{
					"customer": {Type: objs.customer},
					"message":  {Type: graphql.String},
				}),
				Args: graphql.FieldConfigArgument{
					"input": {Type: graphql.NewNonNull(customerInput)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					c, err := r.svc.CreateCustomer(p.Context, customerInputOf(p.Args["input"]))
					if err != nil {
						return nil, err
					}
					return map[string]any{"customer": c, "message": crm.MsgCustomerCreated}, nil
				},
			},
			"bulkCreateCustomers": &graphql.Field{
				Type: payload("BulkCreateCustomers", graphql.Fields{
					"customers": {Type: graphql.NewList(objs.customer)},
					"errors":    {Type: graphql.NewList(graphql.String)},
				}),
				Args: graphql.FieldConfigArgument{
					"inputs": {Type: graphql.NewNonNull(graphql.NewList(customerInput))},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					raw, _ := p.Args["inputs"].([]any)
					res, err := r.svc.BulkCreateCustomers(p.Context, lo.Map(raw, func(v any, _ int) crm.CustomerInput {
						return customerInputOf(v)
					}))
					if err != nil {
						return nil, err
					}
					return map[string]any{"customers": res.Customers, "errors": res.Errors}, nil
				},
			},
			"createProduct": &graphql.Field{
				Type: payload("CreateProduct", graphql.Fields{
					"product": {Type: objs.product},
				}),
				Args: graphql.FieldConfigArgument{
					"input": {Type: graphql.NewNonNull(productInput)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					product, err := r.svc.CreateProduct(p.Context, productInputOf(p.Args["input"]))
					if err != nil {
						return nil, err
					}
					return map[string]any{"product": product}, nil
				},
			},
			"createOrder": &graphql.Field{
				Type: payload("CreateOrder", graphql.Fields{
					"order": {Type: objs.order},
				}),
				Args: graphql.FieldConfigArgument{
					"input": {Type: graphql.NewNonNull(orderInput)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					order, err := r.svc.CreateOrder(p.Context, orderInputOf(p.Args["input"]))
					if err != nil {
						return nil, err
					}
					return map[string]any{"order": order}, nil
				},
			},
			"updateLowStockProducts": &graphql.Field{
				Type: payload("UpdateLowStockProducts", graphql.Fields{
					"updatedProducts": {Type: graphql.NewList(objs.product)},
					"message":         {Type: graphql.String},
				}),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					res, err := r.svc.UpdateLowStockProducts(p.Context)
					if err != nil {
						return nil, err
					}
					return map[string]any{"updatedProducts": res.Products, "message": res.Message}, nil
				},
			},
		},
	})
}
