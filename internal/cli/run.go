package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewRunCmd создаёт группу команд для просмотра runs.
func NewRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Inspect pipeline runs",
	}

	cmd.AddCommand(
		newRunListCmd(clientFn, outputFn),
		newRunShowCmd(clientFn, outputFn),
		newRunStepsCmd(clientFn, outputFn),
	)

	return cmd
}

func newRunListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list PIPELINE_ID",
		Short: "List recent runs of a pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			runs, err := client.ListRuns(args[0], limit)
			if err != nil {
				return err
			}

			headers := []string{"ID", "TRIGGER", "MODE", "CREATED"}
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{r.ID, r.Trigger, r.SyncMode, r.CreatedAt}
			}

			out.Print(headers, rows, runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results (default 25)")

	return cmd
}

func newRunShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show PIPELINE_ID RUN_ID",
		Short: "Show run details with derived state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			run, err := client.GetRun(args[0], args[1])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "TRIGGER", "MODE", "STATE", "STEPS", "CREATED"},
				[][]string{{run.ID, run.Trigger, run.SyncMode, run.State, strconv.Itoa(len(run.Steps)), run.CreatedAt}},
				run,
			)
			return nil
		},
	}
}

func newRunStepsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "steps PIPELINE_ID RUN_ID",
		Short: "List steps of a run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			steps, err := client.ListSteps(args[0], args[1])
			if err != nil {
				return err
			}

			headers := []string{"DATA_SOURCE", "STATUS", "STARTED", "COMPLETED"}
			rows := make([][]string, len(steps))
			for i, s := range steps {
				rows[i] = []string{s.DataSource, s.Status, s.StartedAt, s.CompletedAt}
			}

			out.Print(headers, rows, steps)
			return nil
		},
	}
}
