package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"yttitle/internal/config"
	"yttitle/internal/corpus"
	"yttitle/internal/costtracker"
	"yttitle/internal/embedding"
	"yttitle/internal/services"
	"yttitle/internal/store"
	"yttitle/internal/store/history"
	"yttitle/internal/store/vector"
	"yttitle/internal/title"
)

// Options carries the initial selector state from the command line.
type Options struct {
	Keyword  string
	Category string
}

type App struct {
	Config *config.Config

	Corpus      *corpus.Corpus
	FileSource  *embedding.FileSource
	VectorStore store.VectorTableStore // nil unless database.vector.dsn is set
	Tables      *embedding.Store

	HistoryStore store.SuggestionStore // nil unless database.history.dsn is set
	CostTracker  costtracker.CostTracker

	SuggestionService *services.SuggestionService
	Title             *title.Title
}

func NewApp(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	app := &App{Config: cfg}

	if err := app.initCorpus(); err != nil {
		return nil, err
	}
	if err := app.initVectorStore(ctx); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initTables(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initHistoryStore(ctx); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initSuggestionService(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initTitle(ctx, opts); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}

	log.Debug("Application initialization complete.")
	return app, nil
}

// --- Private Helper Methods ---

func (a *App) initCorpus() error {
	c, err := corpus.Load(a.Config.Data.CorpusPath, a.Config.Data.CategoriesPath)
	if err != nil {
		return fmt.Errorf("init corpus: %w", err)
	}
	a.Corpus = c
	log.Debugf("Loaded %d titles in %d candidate categories", c.Len(), len(c.Categories()))
	return nil
}

func (a *App) initVectorStore(ctx context.Context) error {
	a.FileSource = embedding.NewFileSource(a.Config.Embedding.ModelDir)

	dsn := a.Config.Database.Vector.DSN
	if dsn == "" {
		return nil
	}
	vs, err := vector.NewStore(ctx, dsn)
	if err != nil {
		if a.Config.Embedding.Source == config.SourcePostgres {
			return fmt.Errorf("init vector store: %w", err)
		}
		log.Warnf("Vector store unavailable, continuing with model files: %v", err)
		return nil
	}
	if err := vs.EnsureSchema(ctx); err != nil {
		vs.Close()
		return fmt.Errorf("init vector store schema: %w", err)
	}
	a.VectorStore = vs
	return nil
}

func (a *App) initTables() error {
	var src embedding.Source = a.FileSource
	if a.Config.Embedding.Source == config.SourcePostgres {
		if a.VectorStore == nil {
			return errors.New("init embedding tables: embedding.source is postgres but database.vector.dsn is not set")
		}
		src = a.VectorStore
	}
	tables, err := embedding.NewStore(src, a.Config.Embedding.CacheSize)
	if err != nil {
		return fmt.Errorf("init embedding tables: %w", err)
	}
	a.Tables = tables
	log.Debugf("Embedding tables served from %s source", tables.SourceName())
	return nil
}

func (a *App) initHistoryStore(ctx context.Context) error {
	a.CostTracker = costtracker.New(a.Config.PricingByModel())

	dsn := a.Config.Database.History.DSN
	if dsn == "" {
		log.Debug("Suggestion history disabled (database.history.dsn not set)")
		return nil
	}
	hs, err := history.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("init history store: %w", err)
	}
	a.HistoryStore = hs
	return nil
}

func (a *App) initSuggestionService() error {
	template, err := config.LoadPromptContent(a.Config.Suggestion.Prompt)
	if err != nil {
		return fmt.Errorf("init suggestion service: %w", err)
	}
	factory := services.NewEngineFactory(services.EngineSettings{
		ChatModel:       a.Config.OpenAI.ChatModel,
		CompletionModel: a.Config.OpenAI.CompletionModel,
		MaxTokens:       a.Config.OpenAI.MaxTokens,
		Temperature:     a.Config.OpenAI.Temperature,
		GeminiModel:     a.Config.Gemini.Model,
	})
	a.SuggestionService = services.NewSuggestionService(
		factory,
		template,
		a.Config.Suggestion.SystemPrompt,
		a.Config.Suggestion.Engine,
		a.HistoryStore,
		a.CostTracker,
	)
	return nil
}

func (a *App) initTitle(ctx context.Context, opts Options) error {
	t, err := title.New(ctx, a.Corpus, a.Tables, title.Options{
		Keyword:   opts.Keyword,
		Category:  opts.Category,
		Suggester: a.SuggestionService,
	})
	if err != nil {
		return err
	}
	t.SetProviderAPIKey(services.ProviderOpenAI, a.Config.OpenAI.APIKey)
	t.SetProviderAPIKey(services.ProviderGemini, a.Config.Gemini.APIKey)
	a.Title = t
	return nil
}

// APIKeyFor returns the configured credential of the provider serving
// engine, "" for an unknown engine.
func (a *App) APIKeyFor(engine string) string {
	if engine == "" {
		engine = a.Config.Suggestion.Engine
	}
	provider, _ := services.EngineProvider(engine)
	switch provider {
	case services.ProviderOpenAI:
		return a.Config.OpenAI.APIKey
	case services.ProviderGemini:
		return a.Config.Gemini.APIKey
	default:
		return ""
	}
}

// Close releases the database connections.
func (a *App) Close() {
	log.Debug("Closing application resources...")
	if a.VectorStore != nil {
		if err := a.VectorStore.Close(); err != nil {
			log.Warnf("Error closing vector store: %v", err)
		}
	}
	if a.HistoryStore != nil {
		if err := a.HistoryStore.Close(); err != nil {
			log.Warnf("Error closing history store: %v", err)
		}
	}
}

func (a *App) cleanupPartialInit() {
	a.Close()
}
