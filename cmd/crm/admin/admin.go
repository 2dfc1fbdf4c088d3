package admin

import (
	"github.com/fatih/color"
	"github.com/kcmvp/crm/cmd/internal"
	"github.com/kcmvp/crm/seed"
	"github.com/spf13/cobra"
)

// MigrateCmd creates the CRM tables of the default datasource.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the CRM tables if they do not exist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := internal.Load()
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close() }()
		if _, err := rt.Store(cmd.Context()); err != nil {
			return err
		}
		_, err = color.New(color.FgGreen).Fprintln(rt.Out, "Schema is up to date.")
		return err
	},
}

// SeedCmd wipes the database and loads the sample data.
var SeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all data with the sample customers, products and order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := internal.Load()
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close() }()
		st, err := rt.Store(cmd.Context())
		if err != nil {
			return err
		}
		return seed.Run(cmd.Context(), st, rt.Out)
	},
}
