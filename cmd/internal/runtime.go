// Package internal holds what every crm command needs: settings, a logger and, on demand,
// the store over the default datasource.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kcmvp/crm/app"
	"github.com/kcmvp/crm/jobs"
	"github.com/kcmvp/crm/sqlx"
	"github.com/kcmvp/crm/store"
)

var ErrNoDataSource = errors.New("no default datasource configured")

type Runtime struct {
	Settings app.Settings
	Logger   *slog.Logger
	Out      io.Writer
}

// Load reads the settings and builds the logger. SQL logging is switched on before any
// datasource is opened.
func Load() (*Runtime, error) {
	settings, err := app.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	logger := app.NewLogger(os.Stderr, settings.Log)
	if settings.Log.SQL {
		sqlx.SetSQLLogger(logger.With("component", "sqlx"))
	}
	return &Runtime{Settings: settings, Logger: logger, Out: os.Stdout}, nil
}

// Store opens the default datasource and makes sure the schema exists.
func (r *Runtime) Store(ctx context.Context) (*store.Store, error) {
	if err := sqlx.InitErr(); err != nil {
		return nil, err
	}
	db, ok := sqlx.DefaultDS()
	if !ok {
		return nil, ErrNoDataSource
	}
	st := store.New(db)
	if err := st.Migrate(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func (r *Runtime) Close() error {
	return sqlx.CloseAllDataSources()
}

// JobConfig builds the configuration of the named job from the settings.
func (r *Runtime) JobConfig(name string) (jobs.Config, error) {
	paths := map[string]string{
		jobs.HeartbeatJob: r.Settings.Jobs.HeartbeatLog,
		jobs.RestockJob:   r.Settings.Jobs.LowStockLog,
		jobs.ReportJob:    r.Settings.Jobs.ReportLog,
		jobs.RemindersJob: r.Settings.Jobs.RemindersLog,
	}
	path, ok := paths[name]
	if !ok {
		return jobs.Config{}, fmt.Errorf("unknown job %q", name)
	}
	return jobs.Config{
		Endpoint: r.Settings.GraphQL.Endpoint,
		Retries:  r.Settings.GraphQL.Retries,
		LogPath:  path,
		Out:      r.Out,
	}, nil
}
