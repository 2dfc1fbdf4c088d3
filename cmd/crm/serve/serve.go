package serve

import (
	"context"
	"time"

	"github.com/kcmvp/crm/cmd/internal"
	"github.com/kcmvp/crm/crm"
	"github.com/kcmvp/crm/graph"
	"github.com/kcmvp/crm/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd runs the GraphQL API until interrupted.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the GraphQL API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := internal.Load()
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close() }()
		cfg := rt.Settings.Server
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("engine") {
			cfg.Engine, _ = cmd.Flags().GetString("engine")
		}

		st, err := rt.Store(cmd.Context())
		if err != nil {
			return err
		}
		schema, err := graph.NewSchema(crm.NewService(st, rt.Logger))
		if err != nil {
			return err
		}
		srv, err := server.New(cfg, graph.NewHandler(&schema), rt.Logger)
		if err != nil {
			return err
		}

		errs := make(chan error, 1)
		go func() { errs <- srv.ListenAndServe() }()
		select {
		case err := <-errs:
			return err
		case <-cmd.Context().Done():
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	ServeCmd.Flags().String("addr", "", "listen address, overrides server.addr")
	ServeCmd.Flags().String("engine", "", "gin, echo or fiber, overrides server.engine")
}
