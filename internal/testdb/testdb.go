// Package testdb opens throwaway sqlite databases for package tests.
package testdb

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kcmvp/crm/sqlx"
	"github.com/kcmvp/crm/store"
	"github.com/stretchr/testify/require"
)

// Open returns a migrated store over an in-memory sqlite database private to t.
func Open(t testing.TB) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := sqlx.Open(context.Background(), "sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	st := store.New(db)
	require.NoError(t, st.Migrate(context.Background()))
	return st
}
