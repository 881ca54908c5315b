package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"yttitle/internal/clix"
	"yttitle/internal/title"
)

var similarNum int

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Find keywords related to positive and negative words",
	Long: `Ranks the words of the selected category's model by cosine similarity to
the --positive words, pushed away from the --negative words. Words missing
from the model are ignored. --positive defaults to the selected keyword.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		num := similarNum
		if num <= 0 {
			num = appInstance.Config.Search.DefaultLimit
		}
		scores, err := appInstance.Title.GenerateKeywords(cmd.Context(), title.SimilarityQuery{
			Num:      num,
			Positive: clix.ParseList(cmd.Flags(), "positive"),
			Negative: clix.ParseList(cmd.Flags(), "negative"),
		})
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Keyword", "Score"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, s := range scores {
			table.Append([]string{s.Keyword, fmt.Sprintf("%.4f", s.Score)})
		}
		table.Render()
		return nil
	},
}

func init() {
	similarCmd.Flags().IntVarP(&similarNum, "num", "n", 0, "Number of keywords to return (default search.default_limit)")
	similarCmd.Flags().String("positive", "", "Comma-separated words to move towards")
	similarCmd.Flags().String("negative", "", "Comma-separated words to move away from")
	rootCmd.AddCommand(similarCmd)
}
