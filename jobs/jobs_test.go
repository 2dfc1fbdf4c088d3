package jobs

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/kcmvp/crm/crm"
	"github.com/kcmvp/crm/gqlclient"
	"github.com/kcmvp/crm/graph"
	"github.com/kcmvp/crm/internal/testdb"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

var noWait = gqlclient.WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} })

// crmServer serves the real schema over a fresh database.
func crmServer(t *testing.T) (*httptest.Server, *crm.Service) {
	t.Helper()
	svc := crm.NewService(testdb.Open(t), nil)
	schema, err := graph.NewSchema(svc)
	require.NoError(t, err)
	srv := httptest.NewServer(graph.NewHandler(&schema))
	t.Cleanup(srv.Close)
	return srv, svc
}

// failingServer answers every request with a GraphQL error.
func failingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"boom"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func config(t *testing.T, endpoint string) Config {
	return Config{
		Endpoint:      endpoint,
		Retries:       1,
		LogPath:       filepath.Join(t.TempDir(), "job.log"),
		Now:           func() time.Time { return fixed },
		Out:           &bytes.Buffer{},
		ClientOptions: []gqlclient.Option{noWait},
	}
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestRegistry(t *testing.T) {
	assert.ElementsMatch(t, []string{HeartbeatJob, RestockJob, ReportJob, RemindersJob}, lo.Keys(Registry))
}

func TestAppendLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	require.NoError(t, appendLines(path, "one"))
	require.NoError(t, appendLines(path, "two", "three"))
	require.NoError(t, appendLines(path))
	assert.Equal(t, "one\ntwo\nthree\n", readLog(t, path))

	require.Error(t, appendLines(filepath.Join(t.TempDir(), "missing", "audit.log"), "x"))
}

func TestHeartbeat(t *testing.T) {
	srv, _ := crmServer(t)
	cfg := config(t, srv.URL)
	require.NoError(t, Heartbeat(context.Background(), cfg))
	require.NoError(t, Heartbeat(context.Background(), cfg))
	line := "14/10/2026-09:30:00 CRM is alive - GraphQL status: OK\n"
	assert.Equal(t, line+line, readLog(t, cfg.LogPath))

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	cfg = config(t, down.URL)
	require.NoError(t, Heartbeat(context.Background(), cfg))
	assert.True(t, strings.HasPrefix(readLog(t, cfg.LogPath), "14/10/2026-09:30:00 CRM is alive - GraphQL status: Error: "))
}

func TestRestock(t *testing.T) {
	srv, svc := crmServer(t)
	ctx := context.Background()
	for name, stock := range map[string]int{"Pen": 3, "Desk": 15} {
		_, err := svc.CreateProduct(ctx, crm.ProductInput{Name: name, Price: decimal.RequireFromString("2.50"), Stock: mo.Some(stock)})
		require.NoError(t, err)
	}
	cfg := config(t, srv.URL)
	require.NoError(t, Restock(ctx, cfg))
	assert.Equal(t, "2026-10-14 09:30:00 - Restocked 1 low-stock product(s)\n    Product: Pen - Stock: 13\n", readLog(t, cfg.LogPath))

	cfg = config(t, failingServer(t).URL)
	require.NoError(t, Restock(ctx, cfg))
	assert.Equal(t, "2026-10-14 09:30:00 - ERROR running update_low_stock: GraphQL error: boom\n", readLog(t, cfg.LogPath))
}

func TestReport(t *testing.T) {
	srv, svc := crmServer(t)
	ctx := context.Background()
	alice, err := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	_, err = svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	laptop, err := svc.CreateProduct(ctx, crm.ProductInput{Name: "Laptop", Price: decimal.RequireFromString("999.99")})
	require.NoError(t, err)
	mouse, err := svc.CreateProduct(ctx, crm.ProductInput{Name: "Mouse", Price: decimal.RequireFromString("19.99")})
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, crm.OrderInput{CustomerID: id(alice.ID), ProductIDs: []string{id(laptop.ID), id(mouse.ID)}})
	require.NoError(t, err)

	cfg := config(t, srv.URL)
	require.NoError(t, Report(ctx, cfg))
	assert.Equal(t, "2026-10-14 09:30:00 - Report: 2 customers, 1 orders, $1019.98 revenue\n", readLog(t, cfg.LogPath))

	cfg = config(t, failingServer(t).URL)
	require.NoError(t, Report(ctx, cfg))
	assert.Equal(t, "2026-10-14 09:30:00 - ERROR: GraphQL error: boom\n", readLog(t, cfg.LogPath))
}

func TestReport_Empty(t *testing.T) {
	srv, _ := crmServer(t)
	cfg := config(t, srv.URL)
	require.NoError(t, Report(context.Background(), cfg))
	assert.Equal(t, "2026-10-14 09:30:00 - Report: 0 customers, 0 orders, $0.00 revenue\n", readLog(t, cfg.LogPath))
}

func TestReminders(t *testing.T) {
	srv, svc := crmServer(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	alice, err := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	bob, err := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	mouse, err := svc.CreateProduct(ctx, crm.ProductInput{Name: "Mouse", Price: decimal.RequireFromString("19.99")})
	require.NoError(t, err)
	recent, err := svc.CreateOrder(ctx, crm.OrderInput{CustomerID: id(alice.ID), ProductIDs: []string{id(mouse.ID)}, OrderDate: mo.Some(now.Add(-48 * time.Hour))})
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, crm.OrderInput{CustomerID: id(bob.ID), ProductIDs: []string{id(mouse.ID)}, OrderDate: mo.Some(now.AddDate(0, 0, -30))})
	require.NoError(t, err)

	cfg := config(t, srv.URL)
	cfg.Now = func() time.Time { return now }
	require.NoError(t, Reminders(ctx, cfg))
	assert.Equal(t, now.Format(time.RFC3339)+" - Order ID: "+id(recent.ID)+" - Email: alice@example.com\n", readLog(t, cfg.LogPath))
	assert.Equal(t, "Order reminders processed!\n", cfg.Out.(*bytes.Buffer).String())
}

func TestReminders_Error(t *testing.T) {
	cfg := config(t, failingServer(t).URL)
	require.NoError(t, Reminders(context.Background(), cfg))
	assert.Equal(t, "Error: GraphQL error: boom\n", cfg.Out.(*bytes.Buffer).String())
	_, err := os.Stat(cfg.LogPath)
	assert.True(t, os.IsNotExist(err))
}

func id(v int64) string { return strconv.FormatInt(v, 10) }
