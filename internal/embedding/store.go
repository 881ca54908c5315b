package embedding

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
)

// DefaultCacheSize bounds the number of tables kept in memory.
const DefaultCacheSize = 16

// Store hands out per-category tables, loading each from its Source at most
// once while it stays in the cache.
type Store struct {
	source Source
	cache  *lru.Cache[string, *Table]
}

// NewStore wraps source with an LRU of cacheSize tables.
func NewStore(source Source, cacheSize int) (*Store, error) {
	if source == nil {
		return nil, fmt.Errorf("embedding source is required")
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *Table](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create table cache: %w", err)
	}
	return &Store{source: source, cache: cache}, nil
}

// SourceName reports where tables come from.
func (s *Store) SourceName() string { return s.source.Name() }

// Table returns the table for category. Errors wrapping ErrTableNotFound mean
// the category has no model.
func (s *Store) Table(ctx context.Context, category string) (*Table, error) {
	if t, ok := s.cache.Get(category); ok {
		return t, nil
	}
	log.Debugf("Loading embedding table for category %q from %s source", category, s.source.Name())
	t, err := s.source.Load(ctx, category)
	if err != nil {
		return nil, err
	}
	s.cache.Add(category, t)
	return t, nil
}

// Cached reports whether category's table is currently held in memory.
func (s *Store) Cached(category string) bool {
	return s.cache.Contains(category)
}

// Purge drops every cached table.
func (s *Store) Purge() {
	s.cache.Purge()
}
