package apihandlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"yttitle/internal/models"
)

// APIError defines standard error response
// Example: { "error": { "code": "bad_request", "message": "Invalid category" } }
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// JSONError sends a structured error response
func JSONError(ctx *gin.Context, status int, code, msg string) {
	ctx.JSON(status, errorResponse{Error: APIError{Code: code, Message: msg}})
}

// Convenience wrappers
func BadRequest(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusBadRequest, "bad_request", msg)
}

func NotFound(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusNotFound, "not_found", msg)
}

func Internal(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusInternalServerError, "internal_error", msg)
}

func Unavailable(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusServiceUnavailable, "unavailable", msg)
}

// FromError maps a domain error to its response. Anything unrecognised is an
// upstream or internal failure.
func FromError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidKeyword),
		errors.Is(err, models.ErrInvalidCategory),
		errors.Is(err, models.ErrNoKeywordSet),
		errors.Is(err, models.ErrNoCategorySet),
		errors.Is(err, models.ErrUnknownEngine):
		BadRequest(ctx, err.Error())
	case errors.Is(err, models.ErrNoTitlesFound),
		errors.Is(err, models.ErrInsufficientSamples):
		NotFound(ctx, err.Error())
	case errors.Is(err, models.ErrNoAPIKey):
		Unavailable(ctx, err.Error())
	default:
		log.Errorf("%s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
		Internal(ctx, err.Error())
	}
}
