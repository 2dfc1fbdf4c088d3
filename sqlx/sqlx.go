package sqlx

import (
	"strings"

	"github.com/kcmvp/crm/entity"
)

// -----------------------------
// Public DSL (end-user API)
// -----------------------------

// Where is a generic, single-method interface representing a query condition.
// It is bound to a specific entity type T.
type Where[T entity.Entity] interface {
	// Build returns the SQL clause string and its corresponding arguments.
	Build() (string, []any)
}

// And combines multiple Where conditions with the AND operator.
// It filters out any nil or empty Where functions.
func And[T entity.Entity](wheres ...Where[T]) Where[T] {
	return and[T](wheres...)
}

// All matches every row. DeleteSQL requires an explicit condition, so wiping a table reads
// DeleteSQL(All[T]()).
func All[T entity.Entity]() Where[T] {
	return whereFunc[T](func() (string, []any) { return "1=1", nil })
}

func Eq[E entity.Entity](field entity.FieldProvider[E], value any) Where[E] {
	return op[E](field, "=", value)
}
func Gte[E entity.Entity](field entity.FieldProvider[E], value any) Where[E] {
	return op[E](field, ">=", value)
}
func Lt[E entity.Entity](field entity.FieldProvider[E], value any) Where[E] {
	return op[E](field, "<", value)
}
func Lte[E entity.Entity](field entity.FieldProvider[E], value any) Where[E] {
	return op[E](field, "<=", value)
}

// ContainsFold matches rows whose column contains value, ignoring case.
// LIKE wildcards inside value match literally.
func ContainsFold[E entity.Entity](field entity.FieldProvider[E], value string) Where[E] {
	return like[E]("LOWER("+field.QualifiedName()+")", "%"+escapeLike(strings.ToLower(value))+"%")
}

// HasPrefix matches rows whose column starts with value.
func HasPrefix[E entity.Entity](field entity.FieldProvider[E], value string) Where[E] {
	return like[E](field.QualifiedName(), escapeLike(value)+"%")
}

// Exists keeps rows of E1 that have at least one related E2 row matching where.
// The relation is the ON predicate of j. A nil where only requires the relation.
func Exists[E1 entity.Entity, E2 entity.Entity](j Joint[E1, E2], where Where[E2]) Where[E1] {
	return existsWhere[E1, E2](j, where)
}

// Sort is one ORDER BY term on a column of T.
type Sort[T entity.Entity] struct {
	field entity.FieldProvider[T]
	desc  bool
}

func Asc[T entity.Entity](field entity.FieldProvider[T]) Sort[T] {
	return Sort[T]{field: field}
}

func Desc[T entity.Entity](field entity.FieldProvider[T]) Sort[T] {
	return Sort[T]{field: field, desc: true}
}

func (s Sort[T]) String() string {
	if s.desc {
		return s.field.QualifiedName() + " DESC"
	}
	return s.field.QualifiedName() + " ASC"
}

// Assignment is a column/value pair for INSERT and UPDATE statements.
type Assignment[T entity.Entity] struct {
	field entity.FieldProvider[T]
	value any
}

func Set[T entity.Entity](field entity.FieldProvider[T], value any) Assignment[T] {
	return Assignment[T]{field: field, value: value}
}

// SelectSQL builds "SELECT <fields> FROM <table> [WHERE ...] [ORDER BY ...]".
func SelectSQL[T entity.Entity](fields []entity.FieldProvider[T], where Where[T], sorts ...Sort[T]) (string, []any, error) {
	return selectSQL[T](fields, where, sorts...)
}

// InsertSQL builds "INSERT INTO <table> (...) VALUES (...)".
func InsertSQL[T entity.Entity](sets ...Assignment[T]) (string, []any, error) {
	return insertSQL[T](sets...)
}

// UpdateSQL builds "UPDATE <table> SET ... WHERE ...". A where clause is required.
func UpdateSQL[T entity.Entity](where Where[T], sets ...Assignment[T]) (string, []any, error) {
	return updateSQL[T](where, sets...)
}

// DeleteSQL builds "DELETE FROM <table> WHERE ...". A where clause is required.
func DeleteSQL[T entity.Entity](where Where[T]) (string, []any, error) {
	return deleteSQL[T](where)
}
