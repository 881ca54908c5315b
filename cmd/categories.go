package cmd

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var categoriesAll bool

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories with an embedding model",
	Long: `Lists the categories whose embedding model loaded. With --all, every
category of the dataset is shown along with whether its model is available.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if !categoriesAll {
			for _, c := range appInstance.Title.Categories() {
				fmt.Fprintln(out, c)
			}
			return nil
		}

		statuses, err := appInstance.Title.CategoryStatuses(cmd.Context())
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Category", "Model", "Words"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)

		for _, st := range statuses {
			status := color.YellowString("missing")
			words := "-"
			if st.Available {
				status = color.GreenString("loaded")
				words = strconv.Itoa(st.Words)
			}
			table.Append([]string{st.Name, status, words})
		}
		table.Render()
		return nil
	},
}

func init() {
	categoriesCmd.Flags().BoolVarP(&categoriesAll, "all", "a", false, "Show every dataset category and its model status")
	rootCmd.AddCommand(categoriesCmd)
}
