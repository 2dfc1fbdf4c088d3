package task

import (
	"github.com/fatih/color"
	"github.com/kcmvp/crm/cmd/internal"
	"github.com/kcmvp/crm/jobs"
	"github.com/kcmvp/crm/tasks"
	"github.com/spf13/cobra"
)

// TaskCmd groups the commands of the background task queue.
var TaskCmd = &cobra.Command{
	Use:   "task",
	Short: "Enqueue and process background tasks over RabbitMQ",
}

var enqueueCmd = &cobra.Command{
	Use:       "enqueue [task]",
	Short:     "Publish a task, " + tasks.GenerateReport + " by default",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{tasks.GenerateReport},
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := internal.Load()
		if err != nil {
			return err
		}
		conn, ch, err := tasks.Dial(rt.Settings.AMQP.URL)
		if err != nil {
			return err
		}
		defer func() { _ = conn.Close() }()
		p, err := tasks.NewPublisher(ch, rt.Settings.AMQP.Queue)
		if err != nil {
			return err
		}
		name := tasks.GenerateReport
		if len(args) == 1 {
			name = args[0]
		}
		msg, err := p.Enqueue(cmd.Context(), name)
		if err != nil {
			return err
		}
		_, err = color.New(color.FgGreen).Fprintf(rt.Out, "Enqueued %s (%s)\n", msg.Task, msg.ID)
		return err
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process queued tasks until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := internal.Load()
		if err != nil {
			return err
		}
		cfg, err := rt.JobConfig(jobs.ReportJob)
		if err != nil {
			return err
		}
		conn, ch, err := tasks.Dial(rt.Settings.AMQP.URL)
		if err != nil {
			return err
		}
		defer func() { _ = conn.Close() }()
		w, err := tasks.NewWorker(ch, rt.Settings.AMQP.Queue, rt.Logger)
		if err != nil {
			return err
		}
		w.Handle(tasks.GenerateReport, tasks.ReportHandler(cfg))
		return w.Run(cmd.Context())
	},
}

func init() {
	TaskCmd.AddCommand(enqueueCmd)
	TaskCmd.AddCommand(workerCmd)
}
