package title

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yttitle/internal/corpus"
	"yttitle/internal/embedding"
	"yttitle/internal/models"
	"yttitle/internal/services"
)

// mapSource serves tables from memory; categories without an entry are absent.
type mapSource struct {
	tables map[string]*embedding.Table
	loads  map[string]int
}

func (s *mapSource) Name() string { return "memory" }

func (s *mapSource) Load(_ context.Context, category string) (*embedding.Table, error) {
	if s.loads == nil {
		s.loads = make(map[string]int)
	}
	s.loads[category]++
	t, ok := s.tables[category]
	if !ok {
		return nil, embedding.ErrTableNotFound
	}
	return t, nil
}

func mustTable(t *testing.T, words []string, vectors [][]float32) *embedding.Table {
	t.Helper()
	table, err := embedding.NewTable(words, vectors)
	require.NoError(t, err)
	return table
}

func fixtureCorpus() *corpus.Corpus {
	return corpus.New([]models.CorpusRecord{
		{Title: "Funny Cat Compilation", CleanedTitle: "funny cat compilation", Category: "Pets"},
		{Title: "Cat vs Dog!", CleanedTitle: "cat vs dog", Category: "Pets"},
		{Title: "Dog Tricks", CleanedTitle: "dog tricks", Category: "Pets"},
		{Title: "Funny Cat Compilation", CleanedTitle: "funny cat compilation", Category: "Pets"},
		{Title: "Minecraft Cat Build", CleanedTitle: "minecraft cat build", Category: "Gaming"},
		{Title: "Cat Song", CleanedTitle: "cat song", Category: "Music"},
	}, nil)
}

func fixtureSource(t *testing.T) *mapSource {
	return &mapSource{tables: map[string]*embedding.Table{
		"Pets": mustTable(t,
			[]string{"cat", "kitten", "dog", "puppy"},
			[][]float32{{1, 0, 0}, {0.9, 0.1, 0}, {0, 1, 0}, {0.1, 0.9, 0}}),
		"Gaming": mustTable(t,
			[]string{"minecraft", "cat", "game"},
			[][]float32{{1, 0, 0}, {0, 0, 1}, {0.7, 0.7, 0}}),
	}}
}

func newFixture(t *testing.T, opts Options) (*Title, *mapSource) {
	t.Helper()
	src := fixtureSource(t)
	tables, err := embedding.NewStore(src, embedding.DefaultCacheSize)
	require.NoError(t, err)
	tt, err := New(context.Background(), fixtureCorpus(), tables, opts)
	require.NoError(t, err)
	return tt, src
}

type fakeSuggester struct {
	apiKey string
	req    services.SuggestionRequest
	err    error
	calls  int
}

func (f *fakeSuggester) DefaultEngine() string { return services.EngineChatGPT }

func (f *fakeSuggester) Suggest(_ context.Context, apiKey string, req services.SuggestionRequest) (*models.Suggestion, error) {
	f.calls++
	f.apiKey = apiKey
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Suggestion{Text: "Cats Being Cats", Category: req.Category, Positive: req.Positive}, nil
}

func TestNew_BuildsRegistryAndKeywordSet(t *testing.T) {
	tt, src := newFixture(t, Options{})

	assert.Equal(t, []string{"Gaming", "Music", "Pets"}, tt.AllCategories())
	assert.Equal(t, []string{"Gaming", "Pets"}, tt.Categories())
	for _, c := range tt.Categories() {
		assert.Contains(t, tt.AllCategories(), c)
	}
	assert.Equal(t, 6, tt.KeywordCount())
	assert.True(t, tt.HasKeyword("minecraft"))
	assert.False(t, tt.HasKeyword("song"))
	assert.Empty(t, tt.Keyword())
	assert.Empty(t, tt.Category())
	assert.Equal(t, 1, src.loads["Music"])
}

func TestNew_ValidatesInitialSelection(t *testing.T) {
	tt, _ := newFixture(t, Options{Keyword: "cat", Category: "Pets"})
	assert.Equal(t, "cat", tt.Keyword())
	assert.Equal(t, "Pets", tt.Category())

	tables, err := embedding.NewStore(fixtureSource(t), 4)
	require.NoError(t, err)
	_, err = New(context.Background(), fixtureCorpus(), tables, Options{Category: "Music"})
	assert.ErrorIs(t, err, models.ErrInvalidCategory)

	_, err = New(context.Background(), fixtureCorpus(), tables, Options{Keyword: "song"})
	assert.ErrorIs(t, err, models.ErrInvalidKeyword)
}

func TestSetters_InvalidValuesLeaveStateUnchanged(t *testing.T) {
	tt, _ := newFixture(t, Options{})

	require.NoError(t, tt.SetKeyword("dog"))
	require.NoError(t, tt.SetKeyword("dog"))
	assert.Equal(t, "dog", tt.Keyword())

	err := tt.SetKeyword("song")
	assert.ErrorIs(t, err, models.ErrInvalidKeyword)
	assert.Equal(t, "dog", tt.Keyword())

	require.NoError(t, tt.SetCategory("Pets"))
	require.NoError(t, tt.SetCategory("Pets"))
	assert.Equal(t, "Pets", tt.Category())

	err = tt.SetCategory("Music")
	assert.ErrorIs(t, err, models.ErrInvalidCategory)
	err = tt.SetCategory("")
	assert.ErrorIs(t, err, models.ErrInvalidCategory)
	assert.Equal(t, "Pets", tt.Category())
}

func TestSetters_ConcurrentAccess(t *testing.T) {
	tt, _ := newFixture(t, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = tt.SetKeyword("cat")
				_ = tt.SetCategory("Gaming")
			} else {
				_ = tt.Keyword()
				_ = tt.Category()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, "cat", tt.Keyword())
	assert.Equal(t, "Gaming", tt.Category())
}

func TestExampleTitles(t *testing.T) {
	tt, _ := newFixture(t, Options{})

	_, err := tt.ExampleTitles(nil, "Pets")
	assert.ErrorIs(t, err, models.ErrNoKeywordSet)

	_, err = tt.ExampleTitles([]string{"cat"}, "")
	assert.ErrorIs(t, err, models.ErrNoCategorySet)

	_, err = tt.ExampleTitles([]string{"cat"}, "Music")
	assert.ErrorIs(t, err, models.ErrInvalidCategory)

	titles, err := tt.ExampleTitles([]string{"cat"}, "Pets")
	require.NoError(t, err)
	assert.Equal(t, []string{"Funny Cat Compilation", "Cat vs Dog!", "Funny Cat Compilation"}, titles)

	titles, err = tt.ExampleTitles([]string{"cat", "dog"}, "Pets")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cat vs Dog!"}, titles)

	_, err = tt.ExampleTitles([]string{"puppy"}, "Pets")
	assert.ErrorIs(t, err, models.ErrNoTitlesFound)

	// Token match, not substring.
	_, err = tt.ExampleTitles([]string{"ca"}, "Pets")
	assert.ErrorIs(t, err, models.ErrNoTitlesFound)
}

func TestExampleTitles_UsesSelection(t *testing.T) {
	tt, _ := newFixture(t, Options{Keyword: "cat", Category: "Gaming"})

	titles, err := tt.ExampleTitles(nil, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Minecraft Cat Build"}, titles)

	titles, err = tt.ExampleTitles([]string{}, "Pets")
	require.NoError(t, err)
	assert.Len(t, titles, 3)
}

func TestGenerateKeywords(t *testing.T) {
	tt, _ := newFixture(t, Options{})
	ctx := context.Background()

	_, err := tt.GenerateKeywords(ctx, SimilarityQuery{Positive: []string{"cat"}})
	assert.ErrorIs(t, err, models.ErrNoCategorySet)

	_, err = tt.GenerateKeywords(ctx, SimilarityQuery{Positive: []string{"cat"}, Category: "Music"})
	assert.ErrorIs(t, err, models.ErrInvalidCategory)

	got, err := tt.GenerateKeywords(ctx, SimilarityQuery{Num: 2, Positive: []string{"cat"}, Category: "Pets"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "kitten", got[0].Keyword)
	assert.Equal(t, "puppy", got[1].Keyword)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)

	// Unknown words are dropped silently.
	again, err := tt.GenerateKeywords(ctx, SimilarityQuery{Num: 2, Positive: []string{"cat", "zzz"}, Category: "Pets"})
	require.NoError(t, err)
	assert.Equal(t, got, again)

	_, err = tt.GenerateKeywords(ctx, SimilarityQuery{Positive: []string{"zzz"}, Negative: []string{"minecraft"}, Category: "Pets"})
	assert.ErrorIs(t, err, models.ErrInvalidKeyword)
}

func TestGenerateKeywords_DefaultsAndNegatives(t *testing.T) {
	tt, _ := newFixture(t, Options{Keyword: "cat", Category: "Pets"})
	ctx := context.Background()

	got, err := tt.GenerateKeywords(ctx, SimilarityQuery{})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
	for _, ks := range got {
		assert.NotEqual(t, "cat", ks.Keyword)
	}

	got, err = tt.GenerateKeywords(ctx, SimilarityQuery{Num: 1, Positive: []string{}, Negative: []string{"dog"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cat", got[0].Keyword)
}

func TestKeywordCategory(t *testing.T) {
	tt, _ := newFixture(t, Options{})
	ctx := context.Background()

	_, err := tt.KeywordCategory(ctx, "")
	assert.ErrorIs(t, err, models.ErrNoKeywordSet)

	_, err = tt.KeywordCategory(ctx, "song")
	assert.ErrorIs(t, err, models.ErrInvalidKeyword)

	cats, err := tt.KeywordCategory(ctx, "cat")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Pets", "Gaming"}, cats)

	require.NoError(t, tt.SetKeyword("dog"))
	cats, err = tt.KeywordCategory(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pets"}, cats)
}

func TestKeywordCategory_InsufficientSamples(t *testing.T) {
	src := fixtureSource(t)
	tables, err := embedding.NewStore(src, 1)
	require.NoError(t, err)
	tt, err := New(context.Background(), fixtureCorpus(), tables, Options{})
	require.NoError(t, err)

	// Gaming was evicted; its reloaded table no longer carries the word.
	src.tables["Gaming"] = mustTable(t, []string{"game"}, [][]float32{{1, 0}})

	_, err = tt.KeywordCategory(context.Background(), "minecraft")
	assert.ErrorIs(t, err, models.ErrInsufficientSamples)
}

func TestKeywordList(t *testing.T) {
	tt, _ := newFixture(t, Options{})
	ctx := context.Background()

	all, err := tt.KeywordList(ctx, corpus.AllCategories)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog", "game", "kitten", "minecraft", "puppy"}, all)

	unset, err := tt.KeywordList(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, all, unset)

	pets, err := tt.KeywordList(ctx, "Pets")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "kitten", "dog", "puppy"}, pets)

	require.NoError(t, tt.SetCategory("Gaming"))
	gaming, err := tt.KeywordList(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"minecraft", "cat", "game"}, gaming)

	_, err = tt.KeywordList(ctx, "Music")
	assert.ErrorIs(t, err, models.ErrInvalidCategory)
}

func TestWordCloud(t *testing.T) {
	tt, _ := newFixture(t, Options{})

	terms, err := tt.WordCloud("Pets", 2)
	require.NoError(t, err)
	assert.Equal(t, []models.TermCount{{Term: "cat", Count: 3}, {Term: "compilation", Count: 2}}, terms)

	all, err := tt.WordCloud("", 1)
	require.NoError(t, err)
	assert.Equal(t, []models.TermCount{{Term: "cat", Count: 5}}, all)

	_, err = tt.WordCloud("Music", 0)
	assert.ErrorIs(t, err, models.ErrInvalidCategory)
}

func TestGenerateTitle(t *testing.T) {
	sugg := &fakeSuggester{}
	tt, _ := newFixture(t, Options{Suggester: sugg})
	ctx := context.Background()

	_, err := tt.GenerateTitle(ctx, SuggestionRequest{Positive: []string{"cat"}})
	assert.ErrorIs(t, err, models.ErrNoCategorySet)

	_, err = tt.GenerateTitle(ctx, SuggestionRequest{Positive: []string{"cat"}, Category: "Pets"})
	assert.ErrorIs(t, err, models.ErrNoAPIKey)

	tt.SetAPIKey("sk-test")
	require.NoError(t, tt.SetKeyword("cat"))
	require.NoError(t, tt.SetCategory("Pets"))

	s, err := tt.GenerateTitle(ctx, SuggestionRequest{Engine: services.EngineDaVinci, Negative: []string{"dog"}, Tone: "funny"})
	require.NoError(t, err)
	assert.Equal(t, "Cats Being Cats", s.Text)
	assert.Equal(t, "sk-test", sugg.apiKey)
	assert.Equal(t, services.SuggestionRequest{
		Engine:   services.EngineDaVinci,
		Category: "Pets",
		Positive: []string{"cat"},
		Negative: []string{"dog"},
		Tone:     "funny",
	}, sugg.req)

	_, err = tt.GenerateTitle(ctx, SuggestionRequest{APIKey: "override"})
	require.NoError(t, err)
	assert.Equal(t, "override", sugg.apiKey)
}

func TestGenerateTitle_BackendErrorUnchanged(t *testing.T) {
	remote := errors.New("rate limited")
	tt, _ := newFixture(t, Options{Suggester: &fakeSuggester{err: remote}, Category: "Pets"})
	tt.SetAPIKey("sk-test")

	_, err := tt.GenerateTitle(context.Background(), SuggestionRequest{Positive: []string{"cat"}})
	assert.Same(t, remote, err)
}

func TestCategoryStatuses(t *testing.T) {
	tt, _ := newFixture(t, Options{})

	st, err := tt.CategoryStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.CategoryStatus{
		{Name: "Gaming", Available: true, Words: 3},
		{Name: "Music", Available: false},
		{Name: "Pets", Available: true, Words: 4},
	}, st)
}

func TestGenerateTitle_KeysStayWithTheirProvider(t *testing.T) {
	sugg := &fakeSuggester{}
	tt, _ := newFixture(t, Options{Suggester: sugg, Keyword: "cat", Category: "Pets"})
	ctx := context.Background()
	tt.SetAPIKey("sk-openai-secret")

	_, err := tt.GenerateTitle(ctx, SuggestionRequest{Engine: services.EngineGemini})
	assert.ErrorIs(t, err, models.ErrNoAPIKey)
	assert.Zero(t, sugg.calls)

	_, err = tt.GenerateTitle(ctx, SuggestionRequest{})
	require.NoError(t, err)
	assert.Equal(t, services.EngineChatGPT, sugg.req.Engine)
	assert.Equal(t, "sk-openai-secret", sugg.apiKey)

	tt.SetProviderAPIKey(services.ProviderGemini, "gemini-key")
	_, err = tt.GenerateTitle(ctx, SuggestionRequest{Engine: services.EngineGemini})
	require.NoError(t, err)
	assert.Equal(t, "gemini-key", sugg.apiKey)

	_, err = tt.GenerateTitle(ctx, SuggestionRequest{Engine: "Bard"})
	assert.ErrorIs(t, err, models.ErrUnknownEngine)
	assert.Equal(t, 2, sugg.calls)
}
