package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API under /api/v1 plus /health on router.
func RegisterRoutes(router gin.IRouter, h *APIHandler) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/categories", h.CategoriesHandler)

		keywordGroup := v1.Group("/keywords")
		{
			keywordGroup.GET("", h.KeywordsHandler)
			keywordGroup.GET("/:keyword/categories", h.KeywordCategoriesHandler)
		}

		v1.GET("/titles", h.TitlesHandler)
		v1.GET("/similar", h.SimilarHandler)
		v1.GET("/wordcloud", h.WordCloudHandler)
		v1.POST("/suggest", h.SuggestHandler)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"categories": len(h.Title.Categories()),
			"keywords":   h.Title.KeywordCount(),
		})
	})
}
