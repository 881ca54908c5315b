// Package history records generated titles and their token cost in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"

	"yttitle/internal/models"
	"yttitle/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS suggestions (
	id            TEXT PRIMARY KEY,
	created_at    DATETIME NOT NULL,
	engine        TEXT NOT NULL,
	provider_name TEXT NOT NULL,
	model_name    TEXT NOT NULL,
	category      TEXT NOT NULL,
	positive      TEXT NOT NULL,
	negative      TEXT NOT NULL,
	tone          TEXT NOT NULL,
	prompt        TEXT NOT NULL,
	text          TEXT NOT NULL,
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	cost          REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS suggestions_created_at ON suggestions (created_at);
`

const selectColumns = `id, created_at, engine, provider_name, model_name, category,
	positive, negative, tone, prompt, text, input_tokens, output_tokens, cost`

// StoreImpl implements store.SuggestionStore on a SQLite database.
type StoreImpl struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at dsn and applies the schema.
func Open(ctx context.Context, dsn string) (*StoreImpl, error) {
	if dsn == "" {
		return nil, errors.New("history DSN cannot be empty")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history database: %w", err)
	}
	log.Debugf("Suggestion history opened at %s", dsn)
	return &StoreImpl{db: db}, nil
}

func (s *StoreImpl) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *StoreImpl) Close() error {
	return s.db.Close()
}

// RecordSuggestion inserts sug, assigning an ID and timestamp when unset.
func (s *StoreImpl) RecordSuggestion(ctx context.Context, sug *models.Suggestion) error {
	if sug.ID == uuid.Nil {
		sug.ID = uuid.New()
	}
	if sug.CreatedAt.IsZero() {
		sug.CreatedAt = time.Now().UTC()
	}
	positive, err := encodeList(sug.Positive)
	if err != nil {
		return err
	}
	negative, err := encodeList(sug.Negative)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO suggestions (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sug.ID.String(), sug.CreatedAt, sug.Engine, sug.ProviderName, sug.ModelName, sug.Category,
		positive, negative, sug.Tone, sug.Prompt, sug.Text,
		sug.InputTokens, sug.OutputTokens, sug.Cost,
	)
	if err != nil {
		return fmt.Errorf("insert suggestion: %w", err)
	}
	return nil
}

func (s *StoreImpl) GetSuggestion(ctx context.Context, id uuid.UUID) (*models.Suggestion, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM suggestions WHERE id = ?`, id.String())
	sug, err := scanSuggestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get suggestion: %w", err)
	}
	return sug, nil
}

// ListSuggestions returns suggestions newest first.
func (s *StoreImpl) ListSuggestions(ctx context.Context, limit, offset int) ([]*models.Suggestion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM suggestions ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}
	defer rows.Close()

	var out []*models.Suggestion
	for rows.Next() {
		sug, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		out = append(out, sug)
	}
	return out, rows.Err()
}

func (s *StoreImpl) UsageSummary(ctx context.Context) (models.UsageSummary, error) {
	var sum models.UsageSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(cost), 0),
		       COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		FROM suggestions`).Scan(&sum.Suggestions, &sum.TotalCost, &sum.TotalInputTokens, &sum.TotalOutputTokens)
	if err != nil {
		return models.UsageSummary{}, fmt.Errorf("summarize suggestions: %w", err)
	}
	return sum, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSuggestion(row scanner) (*models.Suggestion, error) {
	var (
		sug                models.Suggestion
		id                 string
		positive, negative string
	)
	err := row.Scan(&id, &sug.CreatedAt, &sug.Engine, &sug.ProviderName, &sug.ModelName, &sug.Category,
		&positive, &negative, &sug.Tone, &sug.Prompt, &sug.Text,
		&sug.InputTokens, &sug.OutputTokens, &sug.Cost)
	if err != nil {
		return nil, err
	}
	if sug.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse suggestion id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(positive), &sug.Positive); err != nil {
		return nil, fmt.Errorf("decode positive keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(negative), &sug.Negative); err != nil {
		return nil, fmt.Errorf("decode negative keywords: %w", err)
	}
	return &sug, nil
}

func encodeList(words []string) (string, error) {
	if words == nil {
		words = []string{}
	}
	b, err := json.Marshal(words)
	if err != nil {
		return "", fmt.Errorf("encode keywords: %w", err)
	}
	return string(b), nil
}

var _ store.SuggestionStore = (*StoreImpl)(nil)
