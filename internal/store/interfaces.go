package store

import (
	"context"

	"github.com/google/uuid"

	"yttitle/internal/embedding"
	"yttitle/internal/models"
)

// --- Provider Status ---

type ProviderStatus int

const (
	ProviderStatusUnknown  ProviderStatus = iota // Default zero value
	ProviderStatusActive                         // Provider is operational
	ProviderStatusInactive                       // Provider is temporarily unavailable
	ProviderStatusDisabled                       // Provider is not configured (e.g. missing API key)
)

func (s ProviderStatus) String() string {
	switch s {
	case ProviderStatusActive:
		return "active"
	case ProviderStatusInactive:
		return "inactive"
	case ProviderStatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// --- Vector Table Store ---

// VectorTableStore persists per-category word-vector tables and serves them
// back as an embedding source.
type VectorTableStore interface {
	embedding.Source
	SaveTable(ctx context.Context, category string, table *embedding.Table) error
	Categories(ctx context.Context) ([]string, error)

	Ping(ctx context.Context) error
	Close() error
}

// --- Suggestion History Store ---

type SuggestionStore interface {
	RecordSuggestion(ctx context.Context, s *models.Suggestion) error
	GetSuggestion(ctx context.Context, id uuid.UUID) (*models.Suggestion, error)
	ListSuggestions(ctx context.Context, limit, offset int) ([]*models.Suggestion, error)
	UsageSummary(ctx context.Context) (models.UsageSummary, error)

	Ping(ctx context.Context) error
	Close() error
}
