package cmd

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var wordcloudLimit int

var wordcloudCmd = &cobra.Command{
	Use:   "wordcloud [category|all]",
	Short: "Show the most frequent title words of a category",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		var category string
		if len(args) == 1 {
			category = args[0]
		}
		terms, err := appInstance.Title.WordCloud(category, wordcloudLimit)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Word", "Count"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, tc := range terms {
			table.Append([]string{tc.Term, strconv.Itoa(tc.Count)})
		}
		table.Render()
		return nil
	},
}

func init() {
	wordcloudCmd.Flags().IntVarP(&wordcloudLimit, "limit", "n", 50, "Number of words to show (0 for all)")
	rootCmd.AddCommand(wordcloudCmd)
}
