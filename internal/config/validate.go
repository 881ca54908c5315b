package config

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Engine names accepted by suggestion.engine.
var knownEngines = map[string]bool{"ChatGPT": true, "DaVinci": true, "Gemini": true}

// Validate checks required fields and the consistency of enabled features.
// API keys are not required here: they are checked when a title is generated.
func (c *Config) Validate() error {
	if c.Data.CorpusPath == "" {
		return errors.New("data.corpus_path is required")
	}

	switch c.Embedding.Source {
	case SourceFile:
		if c.Embedding.ModelDir == "" {
			return errors.New("embedding.model_dir is required when embedding.source is \"file\"")
		}
	case SourcePostgres:
		if c.Database.Vector.DSN == "" {
			return errors.New("database.vector.dsn is required when embedding.source is \"postgres\"")
		}
	default:
		return fmt.Errorf("embedding.source must be %q or %q, got %q", SourceFile, SourcePostgres, c.Embedding.Source)
	}
	if c.Embedding.CacheSize <= 0 {
		return errors.New("embedding.cache_size must be a positive integer")
	}

	if !knownEngines[c.Suggestion.Engine] {
		return fmt.Errorf("suggestion.engine %q is not one of ChatGPT, DaVinci, Gemini", c.Suggestion.Engine)
	}
	if c.OpenAI.MaxTokens <= 0 {
		return errors.New("openai.max_tokens must be a positive integer")
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return fmt.Errorf("openai.temperature (%.2f) must be between 0 and 2", c.OpenAI.Temperature)
	}

	if c.Search.DefaultLimit <= 0 {
		return errors.New("search.default_limit must be a positive integer")
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	seen := make(map[string]bool, len(c.Pricing))
	for _, price := range c.Pricing {
		if price.Model == "" {
			return errors.New("pricing contains an entry without a model name")
		}
		if seen[price.Model] {
			return fmt.Errorf("pricing lists model '%s' more than once", price.Model)
		}
		seen[price.Model] = true
		if price.InputPerToken < 0 || price.OutputPerToken < 0 {
			return fmt.Errorf("pricing for model '%s' has negative token cost", price.Model)
		}
	}

	return nil
}
