package sqlx

import (
	"fmt"
	"strings"

	"github.com/kcmvp/crm/entity"
	"github.com/samber/lo"
)

// -----------------------------
// Internal WHERE helpers
// -----------------------------

type whereFunc[T entity.Entity] func() (string, []any)

func (f whereFunc[T]) Build() (string, []any) { return f() }

func and[T entity.Entity](wheres ...Where[T]) Where[T] {
	f := func() (string, []any) {
		clauses := make([]string, 0, len(wheres))
		var allArgs []any
		for _, w := range wheres {
			if w == nil {
				continue
			}
			clause, args := w.Build()
			if clause == "" {
				continue
			}
			clauses = append(clauses, clause)
			allArgs = append(allArgs, args...)
		}
		if len(clauses) == 0 {
			return "", nil
		}
		return fmt.Sprintf("(%s)", strings.Join(clauses, " AND ")), allArgs
	}
	return whereFunc[T](f)
}

// makePlaceholders returns a comma-separated list of n '?' placeholders.
func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Join(lo.RepeatBy(n, func(int) string { return "?" }), ",")
}

func op[E entity.Entity](field entity.FieldProvider[E], operator string, value any) Where[E] {
	f := func() (string, []any) {
		clause := fmt.Sprintf("%s %s ?", field.QualifiedName(), operator)
		return clause, []any{value}
	}
	return whereFunc[E](f)
}

// likeEscape is an escape character every supported dialect accepts without quoting rules;
// a backslash would need doubling in MySQL string literals.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func like[E entity.Entity](expr string, pattern string) Where[E] {
	return whereFunc[E](func() (string, []any) {
		return fmt.Sprintf("%s LIKE ? ESCAPE '%s'", expr, likeEscape), []any{pattern}
	})
}

// existsWhere translates a join into an EXISTS subquery so that the related rows filter E1
// without multiplying it.
func existsWhere[E1 entity.Entity, E2 entity.Entity](j Joint[E1, E2], where Where[E2]) Where[E1] {
	return whereFunc[E1](func() (string, []any) {
		if j == nil {
			return "", nil
		}
		conds := []string{j.On()}
		var args []any
		if where != nil {
			if clause, wArgs := where.Build(); clause != "" {
				conds = append(conds, clause)
				args = wArgs
			}
		}
		var e2 E2
		return fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE %s)", e2.Table(), strings.Join(conds, " AND ")), args
	})
}

// -----------------------------
// Internal SELECT builder
// -----------------------------

func selectSQL[T entity.Entity](fields []entity.FieldProvider[T], where Where[T], sorts ...Sort[T]) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("no fields to select")
	}

	var ent T
	table := ent.Table()

	cols := lo.Map(fields, func(f entity.FieldProvider[T], _ int) string { return f.QualifiedName() })
	sql := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table)

	var args []any
	if where != nil {
		if clause, wArgs := where.Build(); clause != "" {
			sql += " WHERE " + clause
			args = wArgs
		}
	}
	if len(sorts) > 0 {
		sql += " ORDER BY " + strings.Join(lo.Map(sorts, func(s Sort[T], _ int) string { return s.String() }), ", ")
	}
	return sql, args, nil
}

// -----------------------------
// Internal CRUD builders
// -----------------------------

func insertSQL[T entity.Entity](sets ...Assignment[T]) (string, []any, error) {
	if len(sets) == 0 {
		return "", nil, fmt.Errorf("no fields to insert")
	}

	var ent T
	table := ent.Table()

	cols := make([]string, 0, len(sets))
	args := make([]any, 0, len(sets))
	for _, s := range sets {
		cols = append(cols, s.field.Name())
		args = append(args, s.value)
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(cols, ", "),
		makePlaceholders(len(sets)),
	)
	return sql, args, nil
}

func updateSQL[T entity.Entity](where Where[T], sets ...Assignment[T]) (string, []any, error) {
	if where == nil {
		return "", nil, fmt.Errorf("where is required")
	}
	whereClause, whereArgs := where.Build()
	if whereClause == "" {
		return "", nil, fmt.Errorf("where is required")
	}
	if len(sets) == 0 {
		return "", nil, fmt.Errorf("no fields to update")
	}

	var ent T
	table := ent.Table()

	// SET takes bare column names; postgres rejects qualified targets.
	assignments := make([]string, 0, len(sets))
	args := make([]any, 0, len(sets)+len(whereArgs))
	for _, s := range sets {
		assignments = append(assignments, s.field.Name()+" = ?")
		args = append(args, s.value)
	}

	sql := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s",
		table,
		strings.Join(assignments, ", "),
		whereClause,
	)
	args = append(args, whereArgs...)
	return sql, args, nil
}

func deleteSQL[T entity.Entity](where Where[T]) (string, []any, error) {
	if where == nil {
		return "", nil, fmt.Errorf("where is required")
	}
	clause, args := where.Build()
	if clause == "" {
		return "", nil, fmt.Errorf("where is required")
	}

	var ent T
	table := ent.Table()
	return fmt.Sprintf("DELETE FROM %s WHERE %s", table, clause), args, nil
}
