package models

import (
	"time"

	"github.com/google/uuid"
)

// CorpusRecord is one row of the title dataset. Records are immutable once loaded.
type CorpusRecord struct {
	Title        string `json:"title"`
	CleanedTitle string `json:"cleaned_title"` // lowercased, tokenized form; may be empty
	Category     string `json:"category"`
}

// KeywordScore pairs a vocabulary word with its cosine similarity to a query.
type KeywordScore struct {
	Keyword string  `json:"keyword"`
	Score   float64 `json:"score"`
}

// TermCount is a token frequency used to build word clouds.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// CategoryStatus reports whether a candidate category has a loadable embedding table.
type CategoryStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Words     int    `json:"words,omitempty"`
}

// Suggestion is a generated title, as recorded in the suggestion history.
type Suggestion struct {
	ID           uuid.UUID `db:"id" json:"id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	Engine       string    `db:"engine" json:"engine"`
	ProviderName string    `db:"provider_name" json:"provider"`
	ModelName    string    `db:"model_name" json:"model"`
	Category     string    `db:"category" json:"category"`
	Positive     []string  `db:"positive" json:"positive"`
	Negative     []string  `db:"negative" json:"negative,omitempty"`
	Tone         string    `db:"tone" json:"tone"`
	Prompt       string    `db:"prompt" json:"prompt"`
	Text         string    `db:"text" json:"text"`
	InputTokens  int       `db:"input_tokens" json:"input_tokens"`
	OutputTokens int       `db:"output_tokens" json:"output_tokens"`
	Cost         float64   `db:"cost" json:"cost"`
}

// UsageSummary aggregates recorded suggestion costs.
type UsageSummary struct {
	Suggestions       int64
	TotalCost         float64
	TotalInputTokens  int64
	TotalOutputTokens int64
}
