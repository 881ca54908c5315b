package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"yttitle/internal/embedding"
)

var importVectorsCmd = &cobra.Command{
	Use:   "import-vectors [category...]",
	Short: "Copy category model files into the Postgres vector store",
	Long: `Reads the word2vec model file of each category from embedding.model_dir
and stores it in the pgvector table configured by database.vector.dsn,
replacing any table already stored for that category. Without arguments every
dataset category is imported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if appInstance.VectorStore == nil {
			return fmt.Errorf("vector store is not configured; set database.vector.dsn")
		}

		categories := args
		if len(categories) == 0 {
			categories = appInstance.Corpus.Categories()
		}

		out := cmd.OutOrStdout()
		imported := 0
		for _, cat := range categories {
			table, err := appInstance.FileSource.Load(cmd.Context(), cat)
			if err != nil {
				if errors.Is(err, embedding.ErrTableNotFound) {
					fmt.Fprintf(out, "  - %s: %s\n", cat, color.YellowString("no model file"))
					continue
				}
				fmt.Fprintf(out, "  - %s: %s %v\n", cat, color.RedString("ERROR"), err)
				continue
			}
			if err := appInstance.VectorStore.SaveTable(cmd.Context(), cat, table); err != nil {
				return fmt.Errorf("import %q: %w", cat, err)
			}
			log.Debugf("Imported %d vectors for %q", table.Len(), cat)
			fmt.Fprintf(out, "  - %s: %s (%d words)\n", cat, color.GreenString("imported"), table.Len())
			imported++
		}
		fmt.Fprintf(out, "Imported %d of %d categories.\n", imported, len(categories))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importVectorsCmd)
}
