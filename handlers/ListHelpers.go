package handlers

import (
	"argocrm/models"
	"argocrm/repository"
	"argocrm/storage"
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// invalidate flushes the listed resources plus the dashboard summary, which
// embeds rows and counts from every resource. Mutations route through this
// so the aggregate never serves stale tiles.
func invalidate(ctx context.Context, cache storage.Cache, resources ...string) error {
	for _, resource := range resources {
		if err := cache.InvalidateResource(ctx, resource); err != nil {
			return err
		}
	}
	return cache.InvalidateResource(ctx, dashboardResource)
}

// paginationFor derives the pagination block returned with every list.
func paginationFor(p repository.ListParams, total int64, pageCount int) models.Pagination {
	perPage := p.PerPage
	if p.Mode == repository.ModeUnbounded {
		perPage = int(total)
	}
	return models.Pagination{
		Page:      p.Page,
		PerPage:   perPage,
		Total:     total,
		PageCount: pageCount,
	}
}

// serveCached writes a cached response body if one exists for the key.
func serveCached(c *gin.Context, cache storage.Cache, key string) bool {
	body, ok, err := cache.Get(c.Request.Context(), key)
	if err != nil {
		logrus.Warnf("cache get failed for %s: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	return true
}

// respondAndCache writes the payload and stores it under the cache key.
func respondAndCache(c *gin.Context, cache storage.Cache, key, resource string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode response", "details": err.Error()})
		return
	}
	if err := cache.Set(c.Request.Context(), key, resource, body, storage.DefaultCacheTTL); err != nil {
		logrus.Warnf("cache set failed for %s: %v", key, err)
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// respondSaveError translates persistence errors into either a 422 with a
// field-keyed error map (constraint violations, rendered inline by clients)
// or a plain 500.
func respondSaveError(c *gin.Context, err error, constraints repository.ConstraintMap, defaultField string) {
	if fieldErrs := repository.FieldErrors(err, constraints, defaultField); fieldErrs != nil {
		c.JSON(http.StatusUnprocessableEntity, models.FieldErrorResponse{Errors: fieldErrs})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Database operation failed", "details": err.Error()})
}
