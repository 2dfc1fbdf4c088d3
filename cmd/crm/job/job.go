package job

import (
	"fmt"
	"slices"

	"github.com/kcmvp/crm/cmd/internal"
	"github.com/kcmvp/crm/jobs"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func names() []string {
	keys := lo.Keys(jobs.Registry)
	slices.Sort(keys)
	return keys
}

// JobCmd runs one audit job; schedulers invoke it periodically.
var JobCmd = &cobra.Command{
	Use:       "job <name>",
	Short:     fmt.Sprintf("Run one of the audit jobs %v", names()),
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: names(),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := internal.Load()
		if err != nil {
			return err
		}
		cfg, err := rt.JobConfig(args[0])
		if err != nil {
			return err
		}
		if endpoint, _ := cmd.Flags().GetString("endpoint"); endpoint != "" {
			cfg.Endpoint = endpoint
		}
		rt.Logger.DebugContext(cmd.Context(), "running job", "job", args[0], "endpoint", cfg.Endpoint, "log", cfg.LogPath)
		return jobs.Registry[args[0]](cmd.Context(), cfg)
	},
}

func init() {
	JobCmd.Flags().String("endpoint", "", "GraphQL endpoint, overrides graphql.endpoint")
}
