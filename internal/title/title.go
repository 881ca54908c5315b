// Package title implements keyword and category exploration over the title
// corpus and its per-category embedding tables, plus title generation.
//
// A Title is built once: the category registry and keyword set are computed at
// construction and never recomputed. Only the selector state (keyword,
// category, API key) changes afterwards, and only through validating setters.
package title

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"yttitle/internal/corpus"
	"yttitle/internal/embedding"
	"yttitle/internal/models"
	"yttitle/internal/services"
)

// DefaultNum is the number of related keywords returned when none is requested.
const DefaultNum = 10

// Suggester generates titles; *services.SuggestionService implements it.
type Suggester interface {
	DefaultEngine() string
	Suggest(ctx context.Context, apiKey string, req services.SuggestionRequest) (*models.Suggestion, error)
}

// Options configures New. Keyword and Category, when set, go through the
// validating setters.
type Options struct {
	Keyword   string
	Category  string
	Suggester Suggester
}

// Title is the exploration state for one dataset.
type Title struct {
	corpus    *corpus.Corpus
	tables    *embedding.Store
	suggester Suggester

	// Read-only after New.
	allCategories []string
	categories    []string
	categorySet   map[string]struct{}
	keywords      map[string]struct{}

	mu       sync.RWMutex
	keyword  string
	category string
	apiKeys  map[string]string // by provider
}

// New checks every candidate category of c for an embedding table. Categories
// without a loadable table are left out of the registry.
func New(ctx context.Context, c *corpus.Corpus, tables *embedding.Store, opts Options) (*Title, error) {
	if c == nil || tables == nil {
		return nil, errors.New("title: corpus and embedding store are required")
	}

	t := &Title{
		corpus:        c,
		tables:        tables,
		suggester:     opts.Suggester,
		allCategories: c.Categories(),
		categorySet:   make(map[string]struct{}),
		keywords:      make(map[string]struct{}),
		apiKeys:       make(map[string]string),
	}

	for _, cat := range t.allCategories {
		if _, seen := t.categorySet[cat]; seen {
			continue
		}
		table, err := tables.Table(ctx, cat)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			if errors.Is(err, embedding.ErrTableNotFound) {
				log.Debugf("Category %q has no embedding table, skipping", cat)
			} else {
				log.Warnf("Category %q skipped: %v", cat, err)
			}
			continue
		}
		for _, w := range table.Words() {
			t.keywords[w] = struct{}{}
		}
		t.categories = append(t.categories, cat)
		t.categorySet[cat] = struct{}{}
	}
	log.Infof("Embedding tables available for %d of %d categories (%d keywords)",
		len(t.categories), len(t.allCategories), len(t.keywords))

	if opts.Category != "" {
		if err := t.SetCategory(opts.Category); err != nil {
			return nil, err
		}
	} else {
		log.Debug("No category set; use --category (see `yttitle categories`)")
	}
	if opts.Keyword != "" {
		if err := t.SetKeyword(opts.Keyword); err != nil {
			return nil, err
		}
	} else {
		log.Debug("No keyword set; use --keyword")
	}
	return t, nil
}

// AllCategories returns every candidate category, loadable or not.
func (t *Title) AllCategories() []string {
	out := make([]string, len(t.allCategories))
	copy(out, t.allCategories)
	return out
}

// Categories returns the registry: categories with an embedding table.
func (t *Title) Categories() []string {
	out := make([]string, len(t.categories))
	copy(out, t.categories)
	return out
}

// CategoryStatuses reports every candidate category with the size of its
// table, when it has one.
func (t *Title) CategoryStatuses(ctx context.Context) ([]models.CategoryStatus, error) {
	out := make([]models.CategoryStatus, 0, len(t.allCategories))
	for _, cat := range t.allCategories {
		st := models.CategoryStatus{Name: cat, Available: t.HasCategory(cat)}
		if st.Available {
			table, err := t.tables.Table(ctx, cat)
			if err != nil {
				return nil, fmt.Errorf("load embedding table for %q: %w", cat, err)
			}
			st.Words = table.Len()
		}
		out = append(out, st)
	}
	return out, nil
}

// HasCategory reports whether category is in the registry.
func (t *Title) HasCategory(category string) bool {
	_, ok := t.categorySet[category]
	return ok
}

// HasKeyword reports whether keyword is in at least one category table.
func (t *Title) HasKeyword(keyword string) bool {
	_, ok := t.keywords[keyword]
	return ok
}

// KeywordCount returns the size of the keyword set.
func (t *Title) KeywordCount() int { return len(t.keywords) }

// --- Selector state ---

// SetKeyword selects keyword. An unknown keyword leaves the state unchanged.
func (t *Title) SetKeyword(keyword string) error {
	if !t.HasKeyword(keyword) {
		return fmt.Errorf("%w: %q is not in any category model", models.ErrInvalidKeyword, keyword)
	}
	t.mu.Lock()
	t.keyword = keyword
	t.mu.Unlock()
	return nil
}

// SetCategory selects category. An unknown category leaves the state unchanged.
func (t *Title) SetCategory(category string) error {
	if !t.HasCategory(category) {
		return invalidCategory(category)
	}
	t.mu.Lock()
	t.category = category
	t.mu.Unlock()
	return nil
}

// SetAPIKey stores the credential of the OpenAI engines (ChatGPT, DaVinci)
// in memory. It is not checked until a title is generated.
func (t *Title) SetAPIKey(key string) {
	t.SetProviderAPIKey(services.ProviderOpenAI, key)
}

// SetProviderAPIKey stores the credential of provider. A key is only ever
// sent to the provider it was stored for.
func (t *Title) SetProviderAPIKey(provider, key string) {
	t.mu.Lock()
	t.apiKeys[provider] = key
	t.mu.Unlock()
}

// Keyword returns the selected keyword, "" when unset.
func (t *Title) Keyword() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.keyword
}

// Category returns the selected category, "" when unset.
func (t *Title) Category() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.category
}

func (t *Title) providerAPIKey(provider string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.apiKeys[provider]
}

func invalidCategory(category string) error {
	return fmt.Errorf("%w: %q has no embedding model; list available categories with `yttitle categories`",
		models.ErrInvalidCategory, category)
}

// resolveCategory applies the selector default and validates the result.
func (t *Title) resolveCategory(category string) (string, error) {
	if category == "" {
		category = t.Category()
		if category == "" {
			return "", fmt.Errorf("%w: pass a category or select one first", models.ErrNoCategorySet)
		}
		return category, nil
	}
	if !t.HasCategory(category) {
		return "", invalidCategory(category)
	}
	return category, nil
}

// --- Queries ---

// ExampleTitles returns the titles of category whose cleaned form contains
// every keyword as a token, in corpus order. Keywords default to the selected
// keyword and category to the selected category.
func (t *Title) ExampleTitles(keywords []string, category string) ([]string, error) {
	if len(keywords) == 0 {
		kw := t.Keyword()
		if kw == "" {
			return nil, fmt.Errorf("%w: pass keywords or select a keyword first", models.ErrNoKeywordSet)
		}
		keywords = []string{kw}
	}
	category, err := t.resolveCategory(category)
	if err != nil {
		return nil, err
	}

	titles := t.corpus.FilterTitles(category, keywords)
	if len(titles) == 0 {
		return nil, fmt.Errorf("%w: no titles with keyword(s) %v in category %q", models.ErrNoTitlesFound, keywords, category)
	}
	return titles, nil
}

// SimilarityQuery parameterizes GenerateKeywords. Zero values select the
// defaults: DefaultNum results, the selected keyword as the only positive
// word, and the selected category.
type SimilarityQuery struct {
	Num      int
	Positive []string
	Negative []string
	Category string
}

// GenerateKeywords returns up to Num words of the category's table most
// similar to Positive and least similar to Negative. Words missing from the
// table are dropped silently; if nothing remains the query fails with
// ErrInvalidKeyword.
func (t *Title) GenerateKeywords(ctx context.Context, q SimilarityQuery) ([]models.KeywordScore, error) {
	num := q.Num
	if num <= 0 {
		num = DefaultNum
	}
	positive := q.Positive
	if positive == nil {
		if kw := t.Keyword(); kw != "" {
			positive = []string{kw}
		}
	}
	category, err := t.resolveCategory(q.Category)
	if err != nil {
		return nil, err
	}

	table, err := t.tables.Table(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("load embedding table for %q: %w", category, err)
	}

	keptPositive := table.Known(positive)
	keptNegative := table.Known(q.Negative)
	if len(keptPositive) == 0 && len(keptNegative) == 0 {
		return nil, fmt.Errorf("%w: none of %v / %v are in the %q model", models.ErrInvalidKeyword, positive, q.Negative, category)
	}
	return table.MostSimilar(keptPositive, keptNegative, num)
}

// KeywordCategory returns the registry categories whose table contains
// keyword, in registry order.
func (t *Title) KeywordCategory(ctx context.Context, keyword string) ([]string, error) {
	if keyword == "" {
		keyword = t.Keyword()
		if keyword == "" {
			return nil, fmt.Errorf("%w: pass a keyword or select one first", models.ErrNoKeywordSet)
		}
	}
	if !t.HasKeyword(keyword) {
		return nil, fmt.Errorf("%w: %q is not in any category model", models.ErrInvalidKeyword, keyword)
	}

	var cats []string
	for _, cat := range t.categories {
		table, err := t.tables.Table(ctx, cat)
		if err != nil {
			return nil, fmt.Errorf("load embedding table for %q: %w", cat, err)
		}
		if table.Has(keyword) {
			cats = append(cats, cat)
		}
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("%w: %q, please choose another keyword", models.ErrInsufficientSamples, keyword)
	}
	return cats, nil
}

// KeywordList returns the keywords of category. corpus.AllCategories returns
// the whole keyword set sorted; an empty category uses the selected one, or
// the whole keyword set when none is selected.
func (t *Title) KeywordList(ctx context.Context, category string) ([]string, error) {
	if category == "" {
		category = t.Category()
		if category == "" {
			category = corpus.AllCategories
		}
	}
	if category == corpus.AllCategories {
		all := make([]string, 0, len(t.keywords))
		for w := range t.keywords {
			all = append(all, w)
		}
		sort.Strings(all)
		return all, nil
	}
	if !t.HasCategory(category) {
		return nil, invalidCategory(category)
	}
	table, err := t.tables.Table(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("load embedding table for %q: %w", category, err)
	}
	return table.Words(), nil
}

// WordCloud returns the most frequent cleaned-title tokens of category
// (limit <= 0 returns all). corpus.AllCategories covers every record; an
// empty category uses the selected one, or every record when none is selected.
func (t *Title) WordCloud(category string, limit int) ([]models.TermCount, error) {
	if category == "" {
		category = t.Category()
		if category == "" {
			log.Debug("No category selected, counting words over all categories")
			category = corpus.AllCategories
		}
	} else if category != corpus.AllCategories && !t.HasCategory(category) {
		return nil, invalidCategory(category)
	}
	return corpus.TermFrequencies(t.corpus.CleanedTitles(category), limit), nil
}

// SuggestionRequest parameterizes GenerateTitle. Positive defaults to the
// selected keyword and Category to the selected category. APIKey, when set,
// must belong to the engine's provider and overrides the stored key.
type SuggestionRequest struct {
	Engine   string
	Positive []string
	Negative []string
	Category string
	Tone     string
	APIKey   string
}

// GenerateTitle drafts a title with the configured suggester. Failures of the
// remote backend are returned unchanged.
func (t *Title) GenerateTitle(ctx context.Context, req SuggestionRequest) (*models.Suggestion, error) {
	positive := req.Positive
	if len(positive) == 0 {
		if kw := t.Keyword(); kw != "" {
			positive = []string{kw}
		}
	}
	category, err := t.resolveCategory(req.Category)
	if err != nil {
		return nil, err
	}

	if t.suggester == nil {
		return nil, errors.New("title generation is not configured")
	}
	engine := req.Engine
	if engine == "" {
		engine = t.suggester.DefaultEngine()
	}
	provider, ok := services.EngineProvider(engine)
	if !ok {
		return nil, fmt.Errorf("%w: %q (expected %s, %s or %s)", models.ErrUnknownEngine,
			engine, services.EngineChatGPT, services.EngineDaVinci, services.EngineGemini)
	}

	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = t.providerAPIKey(provider)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: engine %s needs a %s key (%s.api_key)", models.ErrNoAPIKey, engine, provider, provider)
	}

	return t.suggester.Suggest(ctx, apiKey, services.SuggestionRequest{
		Engine:   engine,
		Category: category,
		Positive: positive,
		Negative: req.Negative,
		Tone:     req.Tone,
	})
}
