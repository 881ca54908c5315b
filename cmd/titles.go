package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"yttitle/internal/clix"
)

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "Show example titles containing keywords",
	Long: `Prints the dataset titles of a category whose cleaned form contains every
keyword given with --keywords. Defaults to the selected keyword and category.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		keywords := clix.ParseList(cmd.Flags(), "keywords")
		titles, err := appInstance.Title.ExampleTitles(keywords, "")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, t := range titles {
			fmt.Fprintln(out, t)
		}
		return nil
	},
}

func init() {
	titlesCmd.Flags().String("keywords", "", "Comma-separated keywords that must all appear in the title")
	rootCmd.AddCommand(titlesCmd)
}
