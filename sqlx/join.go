package sqlx

import (
	"fmt"
	"strings"

	"github.com/kcmvp/crm/entity"
)

// Joint is the ON predicate between exactly 2 tables (E1 and E2).
//
// E1 is the driven/base table; E2 is the joined table. Joints are consumed by Exists, so the
// same relation can filter E1 rows without multiplying them.
type Joint[E1 entity.Entity, E2 entity.Entity] interface {
	// On returns the parenthesized predicate, e.g. "(crm_order.id = crm_order_products.order_id)".
	On() string
	seal()
}

type join[E1 entity.Entity, E2 entity.Entity] struct {
	onParts []string
}

func (j join[E1, E2]) On() string {
	return "(" + strings.Join(j.onParts, " AND ") + ")"
}

func (j join[E1, E2]) seal() {}

// Join creates a join with a single column equality predicate. Self joins are not supported.
func Join[E1 entity.Entity, E2 entity.Entity](l entity.FieldProvider[E1], r entity.FieldProvider[E2]) Joint[E1, E2] {
	var e1 E1
	var e2 E2
	if e1.Table() == e2.Table() {
		panic(fmt.Sprintf("sqlx: self join on %s is not supported", e1.Table()))
	}
	pred := fmt.Sprintf("%s = %s", l.QualifiedName(), r.QualifiedName())
	return join[E1, E2]{onParts: []string{pred}}
}
