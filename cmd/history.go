package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"yttitle/internal/clix"
)

// historyCmd represents the base command for suggestion history operations
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View generated titles",
	Long:  `Displays past title suggestions recorded in the history database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listHistoryCmd.RunE(cmd, args)
	},
}

var listHistoryCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent title suggestions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if !appInstance.SuggestionService.HistoryEnabled() {
			return fmt.Errorf("suggestion history is disabled; set database.history.dsn")
		}

		pagination, err := clix.ParsePagination(cmd.Flags())
		if err != nil {
			return fmt.Errorf("invalid pagination flags: %w", err)
		}
		suggestions, err := appInstance.SuggestionService.History(cmd.Context(), pagination.Limit, pagination.Offset)
		if err != nil {
			return fmt.Errorf("error listing suggestion history: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(suggestions) == 0 {
			fmt.Fprintln(out, "No suggestion history found.")
			return nil
		}

		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"ID", "Engine", "Category", "Keywords", "Title", "Created At"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)

		for _, s := range suggestions {
			table.Append([]string{
				s.ID.String(),
				s.Engine,
				s.Category,
				strings.Join(s.Positive, ", "),
				s.Text,
				s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			})
		}
		table.Render()
		return nil
	},
}

var showHistoryCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one suggestion with its prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid suggestion ID %q: %w", args[0], err)
		}

		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if appInstance.HistoryStore == nil {
			return fmt.Errorf("suggestion history is disabled; set database.history.dsn")
		}

		s, err := appInstance.HistoryStore.GetSuggestion(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get suggestion %s: %w", id, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:       %s\n", s.ID)
		fmt.Fprintf(out, "Created:  %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Engine:   %s (%s/%s)\n", s.Engine, s.ProviderName, s.ModelName)
		fmt.Fprintf(out, "Category: %s\n", s.Category)
		fmt.Fprintf(out, "Positive: %s\n", strings.Join(s.Positive, ", "))
		if len(s.Negative) > 0 {
			fmt.Fprintf(out, "Negative: %s\n", strings.Join(s.Negative, ", "))
		}
		fmt.Fprintf(out, "Tone:     %s\n", s.Tone)
		fmt.Fprintf(out, "Prompt:   %s\n", s.Prompt)
		fmt.Fprintf(out, "Title:    %s\n", s.Text)
		fmt.Fprintf(out, "Tokens:   %d in / %d out, cost $%.6f\n", s.InputTokens, s.OutputTokens, s.Cost)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{historyCmd, listHistoryCmd} {
		c.Flags().IntP("limit", "n", 20, "Maximum number of suggestions to show")
		c.Flags().IntP("offset", "o", 0, "Number of suggestions to skip")
	}

	historyCmd.AddCommand(listHistoryCmd)
	historyCmd.AddCommand(showHistoryCmd)
	rootCmd.AddCommand(historyCmd)
}
