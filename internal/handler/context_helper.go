package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/collab-league-api/internal/middleware"
	appErrors "github.com/noah-isme/collab-league-api/pkg/errors"
	"github.com/noah-isme/collab-league-api/pkg/response"
)

// callerID returns the authenticated user id, writing a 401 when absent.
func callerID(c *gin.Context) (string, bool) {
	id := middleware.UserID(c)
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, ""))
		return "", false
	}
	return id, true
}

// pathID reads a uuid path parameter, writing a 404 when it is malformed.
func pathID(c *gin.Context, key, message string) (string, bool) {
	id := c.Param(key)
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, message))
		return "", false
	}
	return id, true
}

// bindJSON decodes the request body, writing a 400 on malformed JSON.
func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter. Missing means zero.
func queryInt(c *gin.Context, key string) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		response.Error(c, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "invalid query parameter"),
			map[string]interface{}{key: "must be a whole number"},
		))
		return 0, false
	}
	return n, true
}

// optionalQueryInt is queryInt for filters where absence differs from zero.
func optionalQueryInt(c *gin.Context, key string) (*int, bool) {
	if strings.TrimSpace(c.Query(key)) == "" {
		return nil, true
	}
	n, ok := queryInt(c, key)
	if !ok {
		return nil, false
	}
	return &n, true
}

// pageParams reads page and page_size.
func pageParams(c *gin.Context) (page, pageSize int, ok bool) {
	if page, ok = queryInt(c, "page"); !ok {
		return 0, 0, false
	}
	if pageSize, ok = queryInt(c, "page_size"); !ok {
		return 0, 0, false
	}
	return page, pageSize, true
}

func cached(c *gin.Context, hit bool) map[string]interface{} {
	middleware.SetCacheHit(c, hit)
	return middleware.ExtractMeta(c)
}
