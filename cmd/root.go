package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"yttitle/internal/app"
	"yttitle/internal/config"
	"yttitle/internal/services"
	"yttitle/internal/store"
)

var (
	configFile     string
	selectKeyword  string
	selectCategory string
)

var rootCmd = &cobra.Command{
	Use:   "yttitle",
	Short: "Explore YouTube title keywords and draft new titles",
	Long: `yttitle explores a corpus of YouTube titles through per-category word
embeddings: find related keywords, the categories a keyword belongs to, and
example titles, then draft a new title with a language model.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is given, print help.
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" {
			return nil
		}

		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
			log.SetLevel(lvl)
		}

		appInstance, err := app.NewApp(cmd.Context(), cfg, app.Options{
			Keyword:  selectKeyword,
			Category: selectCategory,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		activeApp = appInstance

		// Store the app instance in the command's context
		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	},
}

// activeApp is the instance built for the running command. It is closed by a
// finalizer so failing commands release their stores too.
var activeApp *app.App

func closeActiveApp() {
	if activeApp != nil {
		activeApp.Close()
		activeApp = nil
	}
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Define a custom type for the context key to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// Helper function to retrieve the app instance from context
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	if ctx == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		// This should not happen if PersistentPreRunE ran successfully
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	cobra.OnFinalize(closeActiveApp)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&selectKeyword, "keyword", "k", "", "Keyword to select before running the command")
	rootCmd.PersistentFlags().StringVarP(&selectCategory, "category", "c", "", "Category to select before running the command")

	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(costCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check models, database connectivity and other diagnostics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}

		t := appInstance.Title
		fmt.Fprintf(out, "Corpus:          %d titles, %d categories\n", appInstance.Corpus.Len(), len(t.AllCategories()))
		fmt.Fprintf(out, "Embedding source: %s\n", appInstance.Tables.SourceName())
		fmt.Fprintf(out, "Models loaded:   %d categories, %d keywords\n", len(t.Categories()), t.KeywordCount())

		if appInstance.VectorStore != nil {
			if err := appInstance.VectorStore.Ping(ctx); err != nil {
				return fmt.Errorf("vector store ping failed: %w", err)
			}
			stored, err := appInstance.VectorStore.Categories(ctx)
			if err != nil {
				return fmt.Errorf("vector store query failed: %w", err)
			}
			fmt.Fprintf(out, "Vector store:    connection successful (%d categories stored).\n", len(stored))
		} else {
			fmt.Fprintln(out, "Vector store:    not configured.")
		}

		if appInstance.HistoryStore != nil {
			if err := appInstance.HistoryStore.Ping(ctx); err != nil {
				return fmt.Errorf("history store ping failed: %w", err)
			}
			fmt.Fprintln(out, "History store:   connection successful.")
		} else {
			fmt.Fprintln(out, "History store:   not configured.")
		}

		fmt.Fprintf(out, "Engines (default %s):\n", appInstance.Config.Suggestion.Engine)
		for _, engine := range services.Engines {
			status := appInstance.SuggestionService.EngineStatus(ctx, engine, appInstance.APIKeyFor(engine))
			label := status.String()
			if status == store.ProviderStatusActive {
				label = color.GreenString(label)
			} else {
				label = color.YellowString(label)
			}
			fmt.Fprintf(out, "  - %-8s %s\n", engine, label)
		}
		return nil
	},
}
