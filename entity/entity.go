package entity

import (
	"fmt"
)

// Entity defines the contract for database-aware models.
type Entity interface {
	Table() string
}

// FieldProvider is a column of entity E.
// The unexported method ensures that only types from this package can implement it.
type FieldProvider[E Entity] interface {
	// Name is the bare column name.
	Name() string
	// QualifiedName is "table.column".
	QualifiedName() string
	seal()
}

// persistentField is the private generic struct that implements FieldProvider.
type persistentField[E Entity] struct {
	name  string
	table string
}

func (f persistentField[E]) seal() {}

func (f persistentField[E]) Name() string { return f.name }

func (f persistentField[E]) QualifiedName() string {
	return fmt.Sprintf("%s.%s", f.table, f.name)
}

// Field returns a entity.FieldProvider for use in persistence-layer schemas.
// The returned provider is strictly typed to the entity `E`, preventing cross-entity field mixing.
func Field[E Entity](name string) FieldProvider[E] {
	var entity E
	return persistentField[E]{name: name, table: entity.Table()}
}
