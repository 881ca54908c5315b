package config

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// PricingInfo holds cost details per token for one model. Model names contain
// dots, which viper treats as key separators, so they are values, not keys.
type PricingInfo struct {
	Model          string  `mapstructure:"model"`
	InputPerToken  float64 `mapstructure:"input_per_token"`
	OutputPerToken float64 `mapstructure:"output_per_token"`
}

// Embedding sources.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

type Config struct {
	Data struct {
		CorpusPath     string `mapstructure:"corpus_path"`
		CategoriesPath string `mapstructure:"categories_path"` // empty: derive from corpus
	} `mapstructure:"data"`

	Embedding struct {
		Source    string `mapstructure:"source"`    // "file" or "postgres"
		ModelDir  string `mapstructure:"model_dir"` // directory of <category>.{txt,vec,bin}
		CacheSize int    `mapstructure:"cache_size"`
	} `mapstructure:"embedding"`

	Database struct {
		Vector struct {
			DSN string `mapstructure:"dsn"` // Postgres with pgvector
		} `mapstructure:"vector"`
		History struct {
			DSN string `mapstructure:"dsn"` // SQLite file; empty disables history
		} `mapstructure:"history"`
	} `mapstructure:"database"`

	OpenAI struct {
		APIKey          string  `mapstructure:"api_key"`
		ChatModel       string  `mapstructure:"chat_model"`
		CompletionModel string  `mapstructure:"completion_model"`
		MaxTokens       int     `mapstructure:"max_tokens"`
		Temperature     float32 `mapstructure:"temperature"`
	} `mapstructure:"openai"`

	Gemini struct {
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"gemini"`

	Suggestion struct {
		Engine       string `mapstructure:"engine"`
		Tone         string `mapstructure:"tone"`
		Prompt       string `mapstructure:"prompt"` // path of a prompt template file
		SystemPrompt string `mapstructure:"system_prompt"`
	} `mapstructure:"suggestion"`

	Search struct {
		DefaultLimit int `mapstructure:"default_limit"`
	} `mapstructure:"search"`

	Server struct {
		Addr string `mapstructure:"addr"`
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	// Pricing: [{model, input_per_token, output_per_token}]
	Pricing []PricingInfo `mapstructure:"pricing"`
}

// PricingByModel indexes the pricing list by model name.
func (c *Config) PricingByModel() map[string]PricingInfo {
	out := make(map[string]PricingInfo, len(c.Pricing))
	for _, p := range c.Pricing {
		out[p.Model] = p
	}
	return out
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.corpus_path", "Data/data.csv")
	v.SetDefault("data.categories_path", "Data/category.csv")

	v.SetDefault("embedding.source", SourceFile)
	v.SetDefault("embedding.model_dir", "model")
	v.SetDefault("embedding.cache_size", 16)

	v.SetDefault("database.vector.dsn", "")
	v.SetDefault("database.history.dsn", "")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.chat_model", "gpt-3.5-turbo")
	v.SetDefault("openai.completion_model", "gpt-3.5-turbo-instruct")
	v.SetDefault("openai.max_tokens", 1024)
	v.SetDefault("openai.temperature", 0.7)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-1.5-flash")

	v.SetDefault("suggestion.engine", "ChatGPT")
	v.SetDefault("suggestion.tone", "catchy")
	v.SetDefault("suggestion.prompt", "")
	v.SetDefault("suggestion.system_prompt", "You are an intelligent assistant.")

	v.SetDefault("search.default_limit", 10)

	v.SetDefault("server.addr", "localhost")
	v.SetDefault("server.port", "8080")

	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yaml from the working directory (or configFile
// when set), then environment variables, on top of the defaults.
func LoadConfig(configFile string) (*Config, error) {
	return load(viper.GetViper(), configFile)
}

func load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".") // Look for config.yaml in the current directory
	}

	// Credentials are usually supplied through the environment.
	v.AutomaticEnv()
	v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("gemini.api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	v.BindEnv("database.vector.dsn", "YTTITLE_VECTOR_DSN")
	v.BindEnv("database.history.dsn", "YTTITLE_HISTORY_DSN")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("Config file not found, using defaults and environment.")
	} else {
		log.Debugf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &config, nil
}
