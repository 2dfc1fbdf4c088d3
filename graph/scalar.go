package graph

import (
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/kcmvp/crm/entity"
	"github.com/shopspring/decimal"
)

// Decimal carries money as a string with two decimal places. Inputs may be strings or numbers.
var Decimal = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Decimal",
	Description: "A fixed point number serialized as a string, e.g. \"19.99\".",
	Serialize: func(value any) any {
		switch v := value.(type) {
		case decimal.Decimal:
			return v.StringFixed(entity.PriceScale)
		case *decimal.Decimal:
			if v == nil {
				return nil
			}
			return v.StringFixed(entity.PriceScale)
		}
		return nil
	},
	ParseValue: parseDecimal,
	ParseLiteral: func(valueAST ast.Value) any {
		switch v := valueAST.(type) {
		case *ast.StringValue:
			return parseDecimal(v.Value)
		case *ast.IntValue:
			return parseDecimal(v.Value)
		case *ast.FloatValue:
			return parseDecimal(v.Value)
		}
		return nil
	},
})

func parseDecimal(value any) any {
	switch v := value.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case decimal.Decimal:
		return v
	}
	return nil
}
