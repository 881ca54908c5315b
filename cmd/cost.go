package cmd

import (
	"fmt"
	"text/tabwriter" // For aligned output

	"github.com/spf13/cobra"

	"yttitle/internal/clix"
)

// costCmd represents the base command for cost operations.
var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "View language model usage costs",
	Long:  `Provides subcommands to list per-suggestion token usage and view cost summaries.`,
}

// costListCmd represents the command to list per-suggestion costs.
var costListCmd = &cobra.Command{
	Use:   "list",
	Short: "List token usage and cost per suggestion",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if !appInstance.SuggestionService.HistoryEnabled() {
			return fmt.Errorf("cost tracking needs the history store; set database.history.dsn")
		}

		pagination, err := clix.ParsePagination(cmd.Flags())
		if err != nil {
			return fmt.Errorf("invalid pagination flags: %w", err)
		}
		suggestions, err := appInstance.SuggestionService.History(cmd.Context(), pagination.Limit, pagination.Offset)
		if err != nil {
			return fmt.Errorf("failed to list usage: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(suggestions) == 0 {
			fmt.Fprintln(out, "No usage recorded.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Timestamp\tProvider\tModel\tIn Tokens\tOut Tokens\tCost")
		fmt.Fprintln(w, "---------\t--------\t-----\t---------\t----------\t----")
		for _, s := range suggestions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.8f\n",
				s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				s.ProviderName,
				s.ModelName,
				s.InputTokens,
				s.OutputTokens,
				s.Cost,
			)
		}
		w.Flush()

		fmt.Fprintf(out, "\nDisplayed %d entries.\n", len(suggestions))
		return nil
	},
}

// costSummaryCmd represents the command to view cost summary.
var costSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show summary of total costs and token usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if !appInstance.SuggestionService.HistoryEnabled() {
			return fmt.Errorf("cost tracking needs the history store; set database.history.dsn")
		}

		sum, err := appInstance.SuggestionService.Usage(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get cost summary: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Usage Cost Summary:")
		fmt.Fprintln(out, "-------------------")
		fmt.Fprintf(out, "Suggestions:         %d\n", sum.Suggestions)
		fmt.Fprintf(out, "Total Cost:          $%.6f\n", sum.TotalCost)
		fmt.Fprintf(out, "Total Input Tokens:  %d\n", sum.TotalInputTokens)
		fmt.Fprintf(out, "Total Output Tokens: %d\n", sum.TotalOutputTokens)
		fmt.Fprintln(out, "-------------------")
		return nil
	},
}

func init() {
	costCmd.AddCommand(costListCmd)
	costCmd.AddCommand(costSummaryCmd)

	costListCmd.Flags().IntP("limit", "l", 50, "Number of entries to display")
	costListCmd.Flags().IntP("offset", "o", 0, "Number of entries to skip")
}
