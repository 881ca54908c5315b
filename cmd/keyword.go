package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords [category|all]",
	Short: "List the keywords of a category model",
	Long: `Lists the vocabulary of a category's embedding model. "all" lists the
keywords of every model. Without an argument the selected category is used,
or all keywords when no category is selected.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		var category string
		if len(args) == 1 {
			category = args[0]
		}
		words, err := appInstance.Title.KeywordList(cmd.Context(), category)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, w := range words {
			fmt.Fprintln(out, w)
		}
		return nil
	},
}

var keywordCategoryCmd = &cobra.Command{
	Use:   "keyword-category [keyword]",
	Short: "Show the categories whose model knows a keyword",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		var keyword string
		if len(args) == 1 {
			keyword = args[0]
		}
		cats, err := appInstance.Title.KeywordCategory(cmd.Context(), keyword)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(cats, "\n"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keywordsCmd)
	rootCmd.AddCommand(keywordCategoryCmd)
}
