package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewPipelineCmd создаёт группу команд для управления pipelines.
func NewPipelineCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Manage pipelines",
	}

	cmd.AddCommand(
		newPipelineListCmd(clientFn, outputFn),
		newPipelineShowCmd(clientFn, outputFn),
		newPipelineUpdateCmd(clientFn, outputFn),
		newPipelineEnableCmd(clientFn, outputFn),
		newPipelineDisableCmd(clientFn, outputFn),
		newPipelineTriggerCmd(clientFn, outputFn),
	)

	return cmd
}

var pipelineHeaders = []string{"ID", "NAME", "ENABLED", "DEFAULT", "CREATED"}

func pipelineRow(p *PipelineResponse) []string {
	return []string{p.ID, p.Name, strconv.FormatBool(p.IsEnabled), strconv.FormatBool(p.IsDefault), p.CreatedAt}
}

func newPipelineListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pipelines",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			pipelines, err := client.ListPipelines()
			if err != nil {
				return err
			}

			rows := make([][]string, len(pipelines))
			for i := range pipelines {
				rows[i] = pipelineRow(&pipelines[i])
			}

			out.Print(pipelineHeaders, rows, pipelines)
			return nil
		},
	}
}

func newPipelineShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show pipeline details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			p, err := client.GetPipeline(args[0])
			if err != nil {
				return err
			}

			out.Print(pipelineHeaders, [][]string{pipelineRow(p)}, p)
			return nil
		},
	}
}

func newPipelineUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var enabled string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := UpdatePipelineRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("enabled") {
				b, err := strconv.ParseBool(enabled)
				if err != nil {
					return fmt.Errorf("invalid value for --enabled: %s", enabled)
				}
				req.IsEnabled = &b
			}

			p, err := client.UpdatePipeline(args[0], req)
			if err != nil {
				return err
			}

			out.Success("Pipeline updated")
			out.Print(pipelineHeaders, [][]string{pipelineRow(p)}, p)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New pipeline name")
	cmd.Flags().StringVar(&enabled, "enabled", "", "Set enabled status (true/false)")

	return cmd
}

func newPipelineEnableCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "enable ID",
		Short: "Enable a pipeline (dispatches a full index run)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			enabled := true
			p, err := client.UpdatePipeline(args[0], UpdatePipelineRequest{IsEnabled: &enabled})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Pipeline enabled: %s", p.ID))
			return nil
		},
	}
}

func newPipelineDisableCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "disable ID",
		Short: "Disable a pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			enabled := false
			p, err := client.UpdatePipeline(args[0], UpdatePipelineRequest{IsEnabled: &enabled})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Pipeline disabled: %s", p.ID))
			return nil
		},
	}
}

func newPipelineTriggerCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger ID",
		Short: "Start a full index run manually",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			run, err := client.TriggerPipeline(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Run dispatched: %s", run.ID))
			out.Print(
				[]string{"ID", "PIPELINE", "TRIGGER", "MODE", "CREATED"},
				[][]string{{run.ID, run.Pipeline, run.Trigger, run.SyncMode, run.CreatedAt}},
				run,
			)
			return nil
		},
	}
}
