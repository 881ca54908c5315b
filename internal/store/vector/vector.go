package vector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"

	"yttitle/internal/embedding"
	"yttitle/internal/store"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS word_vectors (
		category TEXT NOT NULL,
		position INTEGER NOT NULL,
		word     TEXT NOT NULL,
		vector   vector NOT NULL,
		PRIMARY KEY (category, word)
	)`,
	`CREATE INDEX IF NOT EXISTS word_vectors_category_position ON word_vectors (category, position)`,
}

// StoreImpl keeps word-vector tables in PostgreSQL using the pgvector type.
type StoreImpl struct {
	db *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*StoreImpl, error) {
	if dsn == "" {
		return nil, fmt.Errorf("vector store DSN cannot be empty")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vector store DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping vector store: %w", err)
	}
	log.Infof("Connected to PostgreSQL vector store.")
	return &StoreImpl{db: pool}, nil
}

// EnsureSchema creates the pgvector extension and the word_vectors table.
func (vs *StoreImpl) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := vs.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure vector schema: %w", err)
		}
	}
	return nil
}

func (vs *StoreImpl) Name() string { return "postgres" }

func (vs *StoreImpl) Close() error {
	if vs.db != nil {
		log.Debug("Closing PostgreSQL vector store connection...")
		vs.db.Close()
	}
	return nil
}

func (vs *StoreImpl) Ping(ctx context.Context) error {
	if vs.db == nil {
		return fmt.Errorf("vector store connection is not initialized")
	}
	return vs.db.Ping(ctx)
}

// SaveTable replaces the stored table of category with t.
func (vs *StoreImpl) SaveTable(ctx context.Context, category string, t *embedding.Table) error {
	tx, err := vs.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save table: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM word_vectors WHERE category = $1`, category); err != nil {
		return fmt.Errorf("clear table %q: %w", category, err)
	}

	batch := &pgx.Batch{}
	for i, word := range t.Words() {
		vec, _ := t.Vector(word)
		batch.Queue(
			`INSERT INTO word_vectors (category, position, word, vector) VALUES ($1, $2, $3, $4)`,
			category, i, word, pgvector.NewVector(vec),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert table %q: %w", category, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit table %q: %w", category, err)
	}
	log.Infof("Stored %d vectors for category %q", t.Len(), category)
	return nil
}

// Load reads category's table in its original word order.
func (vs *StoreImpl) Load(ctx context.Context, category string) (*embedding.Table, error) {
	rows, err := vs.db.Query(ctx,
		`SELECT word, vector FROM word_vectors WHERE category = $1 ORDER BY position`, category)
	if err != nil {
		return nil, fmt.Errorf("query table %q: %w", category, err)
	}
	defer rows.Close()

	var (
		words   []string
		vectors [][]float32
	)
	for rows.Next() {
		var (
			word string
			vec  pgvector.Vector
		)
		if err := rows.Scan(&word, &vec); err != nil {
			return nil, fmt.Errorf("scan word vector: %w", err)
		}
		words = append(words, word)
		vectors = append(vectors, vec.Slice())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table %q: %w", category, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: no stored vectors for %q", embedding.ErrTableNotFound, category)
	}
	return embedding.NewTable(words, vectors)
}

// Categories lists every category with a stored table.
func (vs *StoreImpl) Categories(ctx context.Context) ([]string, error) {
	rows, err := vs.db.Query(ctx, `SELECT DISTINCT category FROM word_vectors ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list vector categories: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

var _ store.VectorTableStore = (*StoreImpl)(nil)
