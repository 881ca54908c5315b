package apihandlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"yttitle/internal/clix"
	"yttitle/internal/corpus"
	"yttitle/internal/title"
)

// KeyFunc returns the credential for a generation engine.
type KeyFunc func(engine string) string

// APIHandler serves read-only queries over a Title. Every request names its
// own keyword and category; the Title's selector state is never consulted or
// changed.
type APIHandler struct {
	Title        *title.Title
	Keys         KeyFunc
	DefaultLimit int
}

func NewAPIHandler(t *title.Title, keys KeyFunc, defaultLimit int) *APIHandler {
	if defaultLimit <= 0 {
		defaultLimit = title.DefaultNum
	}
	return &APIHandler{Title: t, Keys: keys, DefaultLimit: defaultLimit}
}

// CategoriesHandler lists the categories with an embedding model, or every
// candidate category with ?all=true.
func (h *APIHandler) CategoriesHandler(c *gin.Context) {
	cats := h.Title.Categories()
	if all, _ := strconv.ParseBool(c.Query("all")); all {
		cats = h.Title.AllCategories()
	}
	c.JSON(http.StatusOK, gin.H{"data": cats})
}

// KeywordsHandler lists the keywords of ?category= (default: all categories).
func (h *APIHandler) KeywordsHandler(c *gin.Context) {
	category := c.DefaultQuery("category", corpus.AllCategories)
	words, err := h.Title.KeywordList(c.Request.Context(), category)
	if err != nil {
		FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": words})
}

// KeywordCategoriesHandler lists the categories whose model contains :keyword.
func (h *APIHandler) KeywordCategoriesHandler(c *gin.Context) {
	keyword := c.Param("keyword")
	if keyword == "" {
		BadRequest(c, "missing keyword")
		return
	}
	cats, err := h.Title.KeywordCategory(c.Request.Context(), keyword)
	if err != nil {
		FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cats})
}

// TitlesHandler lists corpus titles of ?category= containing every word of
// ?keywords=.
func (h *APIHandler) TitlesHandler(c *gin.Context) {
	keywords := clix.SplitList(c.Query("keywords"))
	if len(keywords) == 0 {
		BadRequest(c, "missing required 'keywords' parameter")
		return
	}
	category := c.Query("category")
	if category == "" {
		BadRequest(c, "missing required 'category' parameter")
		return
	}
	titles, err := h.Title.ExampleTitles(keywords, category)
	if err != nil {
		FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": titles})
}

// SimilarHandler returns the words of ?category= most similar to ?positive=
// and least similar to ?negative=.
func (h *APIHandler) SimilarHandler(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		BadRequest(c, "missing required 'category' parameter")
		return
	}
	num, err := h.parseLimit(c, "num")
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	scores, err := h.Title.GenerateKeywords(c.Request.Context(), title.SimilarityQuery{
		Num:      num,
		Positive: explicitList(c.Query("positive")),
		Negative: explicitList(c.Query("negative")),
		Category: category,
	})
	if err != nil {
		FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": scores})
}

// WordCloudHandler returns the most frequent title words of ?category=
// (default: all categories).
func (h *APIHandler) WordCloudHandler(c *gin.Context) {
	category := c.DefaultQuery("category", corpus.AllCategories)
	limit, err := h.parseLimit(c, "limit")
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	terms, err := h.Title.WordCloud(category, limit)
	if err != nil {
		FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": terms})
}

// SuggestRequest defines the expected JSON body for POST /suggest.
type SuggestRequest struct {
	Engine   string   `json:"engine"`
	Category string   `json:"category" binding:"required"`
	Positive []string `json:"positive" binding:"required,min=1"`
	Negative []string `json:"negative"`
	Tone     string   `json:"tone"`
}

// SuggestHandler generates a title with the requested engine.
func (h *APIHandler) SuggestHandler(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	var apiKey string
	if h.Keys != nil {
		apiKey = h.Keys(req.Engine)
	}
	s, err := h.Title.GenerateTitle(c.Request.Context(), title.SuggestionRequest{
		Engine:   req.Engine,
		Category: req.Category,
		Positive: req.Positive,
		Negative: req.Negative,
		Tone:     req.Tone,
		APIKey:   apiKey,
	})
	if err != nil {
		FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": s})
}

func (h *APIHandler) parseLimit(c *gin.Context, name string) (int, error) {
	l := c.Query(name)
	if l == "" {
		return h.DefaultLimit, nil
	}
	parsed, err := strconv.Atoi(l)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("invalid %s: %s", name, l)
	}
	return parsed, nil
}

// explicitList never returns nil, so an absent parameter does not fall back
// to the selected keyword.
func explicitList(s string) []string {
	words := clix.SplitList(s)
	if words == nil {
		return []string{}
	}
	return words
}
