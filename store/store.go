package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/kcmvp/crm/entity"
	"github.com/kcmvp/crm/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrUniqueViolation = errors.New("unique constraint violated")
)

// Store reads and writes CRM rows. A Store returned by InTx is bound to the running
// transaction; every other Store talks to the datasource directly.
type Store struct {
	db sqlx.DB
	ex sqlx.Executor
}

func New(db sqlx.DB) *Store {
	return &Store{db: db, ex: db}
}

func (s *Store) DB() sqlx.DB { return s.db }

// InTx runs fn with a Store bound to a new transaction. Calling InTx on a transactional
// Store joins the running transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	if _, ok := s.ex.(sqlx.Tx); ok {
		return fn(s)
	}
	return sqlx.WithTx(ctx, s.db, func(tx sqlx.Tx) error {
		return fn(&Store{db: s.db, ex: tx})
	})
}

// Savepoint runs fn inside a savepoint of the running transaction.
func (s *Store) Savepoint(ctx context.Context, name string, fn func() error) error {
	if _, ok := s.ex.(sqlx.Tx); !ok {
		return fmt.Errorf("savepoint %s requires a transaction", name)
	}
	return sqlx.Savepoint(ctx, s.ex, name, fn)
}

// insert runs an INSERT and returns the generated id.
func (s *Store) insert(ctx context.Context, query string, args []any) (int64, error) {
	if s.db.Dialect().Returning() {
		var id int64
		if err := s.ex.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, mapError(err)
		}
		return id, nil
	}
	res, err := s.ex.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	return res.LastInsertId()
}

func (s *Store) exec(ctx context.Context, query string, args []any) (int64, error) {
	res, err := s.ex.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func list[T entity.Entity](ctx context.Context, ex sqlx.Executor, fields []entity.FieldProvider[T], where sqlx.Where[T], sorts []sqlx.Sort[T], scan func(scanner) (T, error)) ([]T, error) {
	query, args, err := sqlx.SelectSQL[T](fields, where, sorts...)
	if err != nil {
		return nil, err
	}
	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func one[T entity.Entity](ctx context.Context, ex sqlx.Executor, fields []entity.FieldProvider[T], where sqlx.Where[T], scan func(scanner) (T, error)) (T, error) {
	var zero T
	query, args, err := sqlx.SelectSQL[T](fields, where)
	if err != nil {
		return zero, err
	}
	v, err := scan(ex.QueryRowContext(ctx, query, args...))
	if err != nil {
		return zero, mapError(err)
	}
	return v, nil
}

// mapError translates driver errors into the package sentinels.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	return err
}

// IsUniqueViolation reports whether err is a UNIQUE constraint failure of sqlite, postgres or mysql.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, ErrUniqueViolation) {
		return true
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}
