package apihandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yttitle/internal/corpus"
	"yttitle/internal/embedding"
	"yttitle/internal/models"
	"yttitle/internal/services"
	"yttitle/internal/title"
)

type memorySource map[string]*embedding.Table

func (s memorySource) Name() string { return "memory" }

func (s memorySource) Load(_ context.Context, category string) (*embedding.Table, error) {
	if t, ok := s[category]; ok {
		return t, nil
	}
	return nil, embedding.ErrTableNotFound
}

type stubSuggester struct {
	apiKey string
	req    services.SuggestionRequest
}

func (s *stubSuggester) DefaultEngine() string { return services.EngineChatGPT }

func (s *stubSuggester) Suggest(_ context.Context, apiKey string, req services.SuggestionRequest) (*models.Suggestion, error) {
	s.apiKey = apiKey
	s.req = req
	return &models.Suggestion{Engine: req.Engine, Category: req.Category, Text: "10 Kittens You Need To See"}, nil
}

func setupRouter(t *testing.T, keys KeyFunc) (*gin.Engine, *title.Title, *stubSuggester) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pets, err := embedding.NewTable(
		[]string{"cat", "kitten", "dog"},
		[][]float32{{1, 0}, {0.9, 0.1}, {0, 1}})
	require.NoError(t, err)
	tables, err := embedding.NewStore(memorySource{"Pets": pets}, 4)
	require.NoError(t, err)

	c := corpus.New([]models.CorpusRecord{
		{Title: "Cat meets Dog", CleanedTitle: "cat meets dog", Category: "Pets"},
		{Title: "Sleepy Cat", CleanedTitle: "sleepy cat", Category: "Pets"},
		{Title: "Top Songs", CleanedTitle: "top songs", Category: "Music"},
	}, nil)

	sugg := &stubSuggester{}
	tt, err := title.New(context.Background(), c, tables, title.Options{Suggester: sugg})
	require.NoError(t, err)

	router := gin.New()
	RegisterRoutes(router, NewAPIHandler(tt, keys, 5))
	return router, tt, sugg
}

func doRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestCategoriesHandler(t *testing.T) {
	router, _, _ := setupRouter(t, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Pets"}, decodeData[[]string](t, w))

	w = doRequest(router, http.MethodGet, "/api/v1/categories?all=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Music", "Pets"}, decodeData[[]string](t, w))
}

func TestKeywordsHandlers(t *testing.T) {
	router, _, _ := setupRouter(t, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/keywords", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"cat", "dog", "kitten"}, decodeData[[]string](t, w))

	w = doRequest(router, http.MethodGet, "/api/v1/keywords?category=Music", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", decodeError(t, w).Code)

	w = doRequest(router, http.MethodGet, "/api/v1/keywords/dog/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Pets"}, decodeData[[]string](t, w))

	w = doRequest(router, http.MethodGet, "/api/v1/keywords/song/categories", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTitlesHandler(t *testing.T) {
	router, tt, _ := setupRouter(t, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/titles?keywords=cat&category=Pets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Cat meets Dog", "Sleepy Cat"}, decodeData[[]string](t, w))

	w = doRequest(router, http.MethodGet, "/api/v1/titles?keywords=cat,dog&category=Pets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Cat meets Dog"}, decodeData[[]string](t, w))

	w = doRequest(router, http.MethodGet, "/api/v1/titles?keywords=kitten&category=Pets", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/titles?category=Pets", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/titles?keywords=cat", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, tt.Keyword())
	assert.Empty(t, tt.Category())
}

func TestSimilarHandler(t *testing.T) {
	router, _, _ := setupRouter(t, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/similar?positive=cat&category=Pets&num=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	scores := decodeData[[]models.KeywordScore](t, w)
	require.Len(t, scores, 1)
	assert.Equal(t, "kitten", scores[0].Keyword)

	w = doRequest(router, http.MethodGet, "/api/v1/similar?positive=zzz&category=Pets", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/similar?positive=cat&category=Pets&num=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWordCloudHandler(t *testing.T) {
	router, _, _ := setupRouter(t, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/wordcloud?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.TermCount{{Term: "cat", Count: 2}}, decodeData[[]models.TermCount](t, w))
}

func TestSuggestHandler(t *testing.T) {
	router, _, sugg := setupRouter(t, func(engine string) string {
		if engine == services.EngineGemini {
			return "gemini-key"
		}
		return "openai-key"
	})

	w := doRequest(router, http.MethodPost, "/api/v1/suggest", SuggestRequest{
		Engine:   services.EngineGemini,
		Category: "Pets",
		Positive: []string{"kitten"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gemini-key", sugg.apiKey)
	assert.Equal(t, []string{"kitten"}, sugg.req.Positive)
	s := decodeData[models.Suggestion](t, w)
	assert.Equal(t, "10 Kittens You Need To See", s.Text)

	w = doRequest(router, http.MethodPost, "/api/v1/suggest", SuggestRequest{Category: "Pets"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggestHandler_NoAPIKey(t *testing.T) {
	router, _, _ := setupRouter(t, func(string) string { return "" })

	w := doRequest(router, http.MethodPost, "/api/v1/suggest", SuggestRequest{
		Category: "Pets",
		Positive: []string{"cat"},
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unavailable", decodeError(t, w).Code)
}

func TestHealth(t *testing.T) {
	router, _, _ := setupRouter(t, nil)
	w := doRequest(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestSuggestHandler_GeminiWithOnlyOpenAIKey(t *testing.T) {
	router, tt, sugg := setupRouter(t, func(engine string) string {
		if engine == services.EngineGemini {
			return ""
		}
		return "sk-openai-secret"
	})
	tt.SetAPIKey("sk-openai-secret")

	w := doRequest(router, http.MethodPost, "/api/v1/suggest", SuggestRequest{
		Engine:   services.EngineGemini,
		Category: "Pets",
		Positive: []string{"cat"},
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, sugg.apiKey)
}
