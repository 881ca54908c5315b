package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"yttitle/internal/clix"
	"yttitle/internal/title"
)

var (
	suggestEngine string
	suggestTone   string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Draft a new title with a language model",
	Long: `Sends a title request for the selected category to the chosen engine
(ChatGPT, DaVinci or Gemini) and prints the reply. --positive defaults to the
selected keyword.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		engine := suggestEngine
		if engine == "" {
			engine = appInstance.Config.Suggestion.Engine
		}
		tone := suggestTone
		if tone == "" {
			tone = appInstance.Config.Suggestion.Tone
		}

		s, err := appInstance.Title.GenerateTitle(cmd.Context(), title.SuggestionRequest{
			Engine:   engine,
			Positive: clix.ParseList(cmd.Flags(), "positive"),
			Negative: clix.ParseList(cmd.Flags(), "negative"),
			Tone:     tone,
			APIKey:   appInstance.APIKeyFor(engine),
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString(s.Text))
		if s.Cost > 0 {
			fmt.Fprintf(out, "(%s, %d+%d tokens, $%.6f)\n", s.ModelName, s.InputTokens, s.OutputTokens, s.Cost)
		}
		return nil
	},
}

func init() {
	suggestCmd.Flags().StringVarP(&suggestEngine, "engine", "e", "", "Engine: ChatGPT, DaVinci or Gemini (default suggestion.engine)")
	suggestCmd.Flags().StringVarP(&suggestTone, "tone", "t", "", "Tone of the title, e.g. catchy or funny (default suggestion.tone)")
	suggestCmd.Flags().String("positive", "", "Comma-separated topics the title is about")
	suggestCmd.Flags().String("negative", "", "Comma-separated topics the title is not about")
	rootCmd.AddCommand(suggestCmd)
}
