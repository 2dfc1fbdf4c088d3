package sqlx

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kcmvp/crm/app"
	"github.com/spf13/viper"
)

// Executor is what *sql.DB and *sql.Tx have in common. Queries are written with '?'
// placeholders and rebound to the datasource dialect before they reach the driver.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is a running transaction.
type Tx interface {
	Executor
	Commit() error
	Rollback() error
}

// DB is the minimal database contract used by this module.
//
// This indirection lets us add cross-cutting features (SQL logging, placeholder rebinding)
// without changing the higher-level query builder APIs.
type DB interface {
	Executor
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
	PingContext(ctx context.Context) error
	Close() error
	Dialect() Dialect
}

// stdDB adapts *sql.DB to the DB interface.
type stdDB struct {
	raw     *sql.DB
	dialect Dialect
}

// Wrap adapts an opened *sql.DB.
func Wrap(raw *sql.DB, dialect Dialect) DB {
	return stdDB{raw: raw, dialect: dialect}
}

func (d stdDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.raw.ExecContext(ctx, d.dialect.Rebind(query), args...)
}

func (d stdDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.raw.QueryContext(ctx, d.dialect.Rebind(query), args...)
}

func (d stdDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.raw.QueryRowContext(ctx, d.dialect.Rebind(query), args...)
}

func (d stdDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	tx, err := d.raw.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return stdTx{raw: tx, dialect: d.dialect}, nil
}

func (d stdDB) PingContext(ctx context.Context) error { return d.raw.PingContext(ctx) }

func (d stdDB) Close() error { return d.raw.Close() }

func (d stdDB) Dialect() Dialect { return d.dialect }

type stdTx struct {
	raw     *sql.Tx
	dialect Dialect
}

func (t stdTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.raw.ExecContext(ctx, t.dialect.Rebind(query), args...)
}

func (t stdTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.raw.QueryContext(ctx, t.dialect.Rebind(query), args...)
}

func (t stdTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.raw.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
}

func (t stdTx) Commit() error   { return t.raw.Commit() }
func (t stdTx) Rollback() error { return t.raw.Rollback() }

// loggingDB is a thin wrapper around DB that logs SQL statements at debug level.
// It does not attempt to pretty-print SQL.
type loggingDB struct {
	inner  DB
	logger *slog.Logger
}

func (d loggingDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := d.inner.ExecContext(ctx, query, args...)
	logStatement(ctx, d.logger, "exec", query, args, start, err)
	return res, err
}

func (d loggingDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.inner.QueryContext(ctx, query, args...)
	logStatement(ctx, d.logger, "query", query, args, start, err)
	return rows, err
}

func (d loggingDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := d.inner.QueryRowContext(ctx, query, args...)
	logStatement(ctx, d.logger, "query_row", query, args, start, row.Err())
	return row
}

func (d loggingDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	tx, err := d.inner.BeginTx(ctx, opts)
	d.logger.DebugContext(ctx, "sqlx begin", "err", err)
	if err != nil {
		return nil, err
	}
	return loggingTx{inner: tx, logger: d.logger}, nil
}

func (d loggingDB) PingContext(ctx context.Context) error {
	start := time.Now()
	err := d.inner.PingContext(ctx)
	d.logger.DebugContext(ctx, "sqlx ping", "dur", time.Since(start), "err", err)
	return err
}

func (d loggingDB) Close() error {
	err := d.inner.Close()
	d.logger.Debug("sqlx close", "err", err)
	return err
}

func (d loggingDB) Dialect() Dialect { return d.inner.Dialect() }

type loggingTx struct {
	inner  Tx
	logger *slog.Logger
}

func (t loggingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := t.inner.ExecContext(ctx, query, args...)
	logStatement(ctx, t.logger, "tx exec", query, args, start, err)
	return res, err
}

func (t loggingTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.inner.QueryContext(ctx, query, args...)
	logStatement(ctx, t.logger, "tx query", query, args, start, err)
	return rows, err
}

func (t loggingTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.inner.QueryRowContext(ctx, query, args...)
	logStatement(ctx, t.logger, "tx query_row", query, args, start, row.Err())
	return row
}

func (t loggingTx) Commit() error {
	err := t.inner.Commit()
	t.logger.Debug("sqlx commit", "err", err)
	return err
}

func (t loggingTx) Rollback() error {
	err := t.inner.Rollback()
	t.logger.Debug("sqlx rollback", "err", err)
	return err
}

func logStatement(ctx context.Context, logger *slog.Logger, kind, query string, args []any, start time.Time, err error) {
	logger.DebugContext(ctx, "sqlx "+kind, "dur", time.Since(start), "err", err, "sql", query, "args", args)
}

// WithSQLLogger wraps db with a SQL logger if logger is not nil.
func WithSQLLogger(db DB, logger *slog.Logger) DB {
	if logger == nil {
		return db
	}
	return loggingDB{inner: db, logger: logger}
}

var (
	defaultDS DB
	// registry holds named datasource
	dsRegistry = map[string]DB{}
	dsMu       sync.RWMutex

	initOnce sync.Once
	initErr  error

	// sqlLogger, when set, enables SQL logging for all registered datasources.
	sqlLogger *slog.Logger
)

// SetSQLLogger enables SQL logging for all datasources registered after this call.
// Call this early (e.g., in main) before any DefaultDS call.
func SetSQLLogger(l *slog.Logger) {
	sqlLogger = l
}

// Open opens and pings a database. In-memory sqlite databases are pinned to one
// connection so every statement sees the same database.
func Open(ctx context.Context, driver, dsn string) (DB, error) {
	dialect, err := DialectOf(driver)
	if err != nil {
		return nil, err
	}
	raw, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if dialect == SQLite && (strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")) {
		raw.SetMaxOpenConns(1)
	}
	if err := raw.PingContext(ctx); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	db := Wrap(raw, dialect)
	if sqlLogger != nil {
		db = WithSQLLogger(db, sqlLogger)
	}
	return db, nil
}

// registerDataSource opens a database connection from cfg and registers it under the provided name.
// If name is empty, default is used.
func registerDataSource(name string, cfg dataSource) error {
	if name == "" {
		name = defaultDsName
	}
	if cfg.Driver == "" {
		return fmt.Errorf("driver is required to register datasource %q", name)
	}

	dsn, err := cfg.DSNChecked()
	if err != nil {
		return fmt.Errorf("invalid dsn for datasource %q: %w", name, err)
	}
	db, err := Open(context.Background(), cfg.Driver, dsn)
	if err != nil {
		return fmt.Errorf("datasource %q: %w", name, err)
	}
	register(name, db)
	return nil
}

// register adds db to the registry under name, replacing any previous entry.
func register(name string, db DB) {
	if name == "" {
		name = defaultDsName
	}
	dsMu.Lock()
	defer dsMu.Unlock()
	dsRegistry[name] = db
	if name == defaultDsName {
		defaultDS = db
	}
}

func initDataSources() error {
	initOnce.Do(func() {
		res := app.Config()
		if res.IsError() {
			initErr = res.Error()
			return
		}
		cfg := res.MustGet()

		raw := cfg.GetStringMap(dsKey)
		if len(raw) == 0 {
			return
		}

		for name, val := range raw {
			child := viper.New()
			if m, ok := val.(map[string]any); ok {
				if err := child.MergeConfigMap(m); err != nil {
					initErr = fmt.Errorf("merge datasource %s: %w", name, err)
					return
				}
			} else {
				child.Set("_", val)
			}

			var ds dataSource
			if err := child.Unmarshal(&ds); err != nil {
				initErr = fmt.Errorf("unmarshal datasource %s: %w", name, err)
				return
			}

			if err := registerDataSource(name, ds); err != nil {
				initErr = fmt.Errorf("register datasource %s: %w", name, err)
				return
			}
		}
	})
	return initErr
}

// DefaultDS returns the default datasource if registered.
func DefaultDS() (DB, bool) {
	_ = initDataSources()
	dsMu.RLock()
	defer dsMu.RUnlock()
	if defaultDS == nil {
		db, ok := dsRegistry[defaultDsName]
		return db, ok
	}
	return defaultDS, true
}

// InitErr reports why configured datasources could not be registered, if they could not.
func InitErr() error {
	return initDataSources()
}

// CloseAllDataSources closes and removes all registered datasources from the registry.
// It returns the first error encountered while closing any datasource, or nil on success.
func CloseAllDataSources() error {
	dsMu.Lock()
	defer dsMu.Unlock()
	var firstErr error
	for name, db := range dsRegistry {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(dsRegistry, name)
	}
	defaultDS = nil
	return firstErr
}
