package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewQuotaCmd создаёт группу команд для просмотра квот.
func NewQuotaCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Inspect account quotas",
	}

	cmd.AddCommand(newQuotaShowCmd(clientFn, outputFn))

	return cmd
}

func newQuotaShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show quota usage of the current account",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			q, err := client.GetQuotas()
			if err != nil {
				return err
			}

			headers := []string{"QUOTA", "CURRENT", "MAX", "PERCENT"}
			rows := [][]string{
				quotaRow("indexed documents", q.TotalIndexedDocuments),
				quotaRow("indexed document tokens", q.TotalIndexedDocumentTokens),
			}

			out.Print(headers, rows, q)
			return nil
		},
	}
}

func quotaRow(name string, p ServiceProgress) []string {
	return []string{
		name,
		strconv.Itoa(p.Current),
		strconv.Itoa(p.Max),
		fmt.Sprintf("%.1f%%", p.Percent),
	}
}
