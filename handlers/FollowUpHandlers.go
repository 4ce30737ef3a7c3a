package handlers

import (
	"argocrm/models"
	"argocrm/repository"
	"argocrm/storage"
	"argocrm/utils"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const followUpResource = "follow_ups"

var followUpFilterKeys = []string{"quote", "author", "notes", "created_at"}

var followUpSortColumns = repository.SortMap{
	"quote":      "quotes.reference_number",
	"created_at": "follow_ups.created_at",
}

var followUpConstraints = repository.ConstraintMap{
	"quote":  "quote_id",
	"author": "author_id",
}

func followUpBaseQuery(db *gorm.DB, p repository.ListParams) *gorm.DB {
	tx := db.Model(&models.FollowUpGorm{}).
		Joins("LEFT JOIN quotes ON quotes.id = follow_ups.quote_id")

	tx = repository.ApplyIDSetFilter(tx, "follow_ups.quote_id", p.Filters.Get("quote"))
	tx = repository.ApplyIDSetFilter(tx, "follow_ups.author_id", p.Filters.Get("author"))
	tx = repository.ApplyTextFilter(tx, "follow_ups.notes", p.Filters.Get("notes"))
	tx = repository.ApplyDateFilter(tx, "follow_ups.created_at", p.Filters.Get("created_at"))
	return tx
}

// CreateFollowUpHandler records a follow-up on a quote
// @Summary Create follow-up
// @Description Record a follow-up against a quote
// @Tags FollowUps
// @Accept json
// @Produce json
// @Param request body models.FollowUpRequest true "Follow-up data"
// @Success 201 {object} models.FollowUpGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/follow-ups [post]
func CreateFollowUpHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.FollowUpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		followUp := models.FollowUpGorm{
			QuoteID:  req.QuoteID,
			AuthorID: req.AuthorID,
			Notes:    req.Notes,
		}

		if err := db.Create(&followUp).Error; err != nil {
			respondSaveError(c, err, followUpConstraints, "_form")
			return
		}

		if cerr := invalidate(c.Request.Context(), cache, followUpResource); cerr != nil {
			utils.ErrorResponse(c, "Failed to refresh cache", http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusCreated, followUp)
	}
}

// GetFollowUpsHandler lists follow-ups
// @Summary List follow-ups
// @Description List follow-ups with pagination, sorting and per-column filters
// @Tags FollowUps
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query string false "Page size, or 'all' for unbounded"
// @Param sort query string false "Sort spec, e.g. created_at:desc"
// @Success 200 {object} models.FollowUpListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/follow-ups [get]
func GetFollowUpsHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := repository.ParseListParams(c.Request.URL.Query(), followUpFilterKeys)
		key := p.CacheKey(followUpResource)
		if serveCached(c, cache, key) {
			return
		}

		page, err := repository.List[models.FollowUpGorm](followUpBaseQuery(db, p), p, followUpSortColumns, "Quote", "Author")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch follow-ups", "details": err.Error()})
			return
		}

		respondAndCache(c, cache, key, followUpResource, models.FollowUpListResponse{
			Data:       page.Data,
			Pagination: paginationFor(p, page.Total, page.PageCount),
		})
	}
}

// UpdateFollowUpHandler updates a follow-up note
// @Summary Update follow-up
// @Description Update a follow-up's notes
// @Tags FollowUps
// @Accept json
// @Produce json
// @Param id path int true "Follow-up ID"
// @Param request body models.FollowUpRequest true "Follow-up data"
// @Success 200 {object} models.FollowUpGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/follow-ups/{id} [put]
func UpdateFollowUpHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid follow-up ID"})
			return
		}

		var req models.FollowUpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		var followUp models.FollowUpGorm
		if err := db.First(&followUp, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Follow-up not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch follow-up", "details": err.Error()})
			return
		}

		followUp.QuoteID = req.QuoteID
		followUp.AuthorID = req.AuthorID
		followUp.Notes = req.Notes

		key := fmt.Sprintf("%s/%d", followUpResource, id)
		updated := followUp
		err = storage.OptimisticUpdate(c.Request.Context(), cache, key, followUpResource,
			func([]byte) []byte {
				body, _ := json.Marshal(updated)
				return body
			},
			func() error {
				return db.Save(&followUp).Error
			})
		if err != nil {
			respondSaveError(c, err, followUpConstraints, "_form")
			return
		}

		// The dashboard's recent-activity list embeds this follow-up.
		_ = invalidate(c.Request.Context(), cache)

		c.JSON(http.StatusOK, followUp)
	}
}

// DeleteFollowUpHandler deletes a follow-up
// @Summary Delete follow-up
// @Description Delete a follow-up by id
// @Tags FollowUps
// @Accept json
// @Produce json
// @Param id path int true "Follow-up ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/follow-ups/{id} [delete]
func DeleteFollowUpHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid follow-up ID"})
			return
		}

		result := db.Delete(&models.FollowUpGorm{}, id)
		if result.Error != nil {
			respondSaveError(c, result.Error, followUpConstraints, "_form")
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Follow-up not found"})
			return
		}

		if cerr := invalidate(c.Request.Context(), cache, followUpResource); cerr != nil {
			utils.ErrorResponse(c, "Failed to refresh cache", http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Follow-up deleted successfully"})
	}
}
