package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/kcmvp/crm/cmd/crm/admin"
	"github.com/kcmvp/crm/cmd/crm/job"
	"github.com/kcmvp/crm/cmd/crm/serve"
	"github.com/kcmvp/crm/cmd/crm/task"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "crm",
	Short: "crm serves the CRM GraphQL API and runs its maintenance jobs.",
	Long: `crm runs the GraphQL API over the configured datasource, seeds sample data,
and runs the audit jobs a scheduler such as cron invokes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serve.ServeCmd)
	rootCmd.AddCommand(admin.MigrateCmd)
	rootCmd.AddCommand(admin.SeedCmd)
	rootCmd.AddCommand(job.JobCmd)
	rootCmd.AddCommand(task.TaskCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.Red("Error: %v", err)
		stop()
		os.Exit(1)
	}
}
