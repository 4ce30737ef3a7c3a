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

const personResource = "people"

var personFilterKeys = []string{"name", "email", "phone_no", "title", "type", "company", "created_at"}

var personSortColumns = repository.SortMap{
	"name":       "people.name",
	"email":      "people.email",
	"title":      "people.title",
	"type":       "people.type",
	"company":    "companies.name",
	"created_at": "people.created_at",
}

var personConstraints = repository.ConstraintMap{
	"company":    "company_id",
	"quotes":     "_form",
	"rfqs":       "_form",
	"follow_ups": "_form",
}

func personBaseQuery(db *gorm.DB, p repository.ListParams) *gorm.DB {
	tx := db.Model(&models.PersonGorm{}).
		Joins("LEFT JOIN companies ON companies.id = people.company_id")

	tx = repository.ApplyTextFilter(tx, "people.name", p.Filters.Get("name"))
	tx = repository.ApplyTextFilter(tx, "people.email", p.Filters.Get("email"))
	tx = repository.ApplyTextFilter(tx, "people.phone_no", p.Filters.Get("phone_no"))
	tx = repository.ApplyTextFilter(tx, "people.title", p.Filters.Get("title"))
	tx = repository.ApplyEnumSetFilter(tx, "people.type", p.Filters.Get("type"))
	tx = repository.ApplyRelationFilter(tx, "people.company_id", p.Filters.Get("company"))
	tx = repository.ApplyDateFilter(tx, "people.created_at", p.Filters.Get("created_at"))
	return tx
}

// CreatePersonHandler creates a new person
// @Summary Create person
// @Description Create a person (author, contact person or internal staff)
// @Tags People
// @Accept json
// @Produce json
// @Param request body models.PersonRequest true "Person data"
// @Success 201 {object} models.PersonGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/people [post]
func CreatePersonHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PersonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		person := models.PersonGorm{
			Name:      req.Name,
			Email:     req.Email,
			PhoneNo:   req.PhoneNo,
			Title:     req.Title,
			Type:      req.Type,
			CompanyID: req.CompanyID,
		}

		if err := db.Create(&person).Error; err != nil {
			respondSaveError(c, err, personConstraints, "_form")
			return
		}

		if cerr := invalidate(c.Request.Context(), cache, personResource); cerr != nil {
			utils.ErrorResponse(c, "Failed to refresh cache", http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusCreated, person)
	}
}

// GetPeopleHandler lists people
// @Summary List people
// @Description List people with pagination, sorting and per-column filters
// @Tags People
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query string false "Page size, or 'all' for unbounded"
// @Param sort query string false "Sort spec, e.g. name:asc"
// @Success 200 {object} models.PersonListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/people [get]
func GetPeopleHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := repository.ParseListParams(c.Request.URL.Query(), personFilterKeys)
		key := p.CacheKey(personResource)
		if serveCached(c, cache, key) {
			return
		}

		page, err := repository.List[models.PersonGorm](personBaseQuery(db, p), p, personSortColumns, "Company")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch people", "details": err.Error()})
			return
		}

		respondAndCache(c, cache, key, personResource, models.PersonListResponse{
			Data:       page.Data,
			Pagination: paginationFor(p, page.Total, page.PageCount),
		})
	}
}

// GetPersonHandler fetches a single person
// @Summary Get person
// @Description Get a person by id
// @Tags People
// @Accept json
// @Produce json
// @Param id path int true "Person ID"
// @Success 200 {object} models.PersonGorm
// @Failure 404 {object} models.ErrorResponse
// @Router /api/people/{id} [get]
func GetPersonHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid person ID"})
			return
		}

		key := fmt.Sprintf("%s/%d", personResource, id)
		if serveCached(c, cache, key) {
			return
		}

		var person models.PersonGorm
		if err := db.Preload("Company").First(&person, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Person not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch person", "details": err.Error()})
			return
		}

		respondAndCache(c, cache, key, personResource, person)
	}
}

// UpdatePersonHandler updates a person
// @Summary Update person
// @Description Update a person by id
// @Tags People
// @Accept json
// @Produce json
// @Param id path int true "Person ID"
// @Param request body models.PersonRequest true "Person data"
// @Success 200 {object} models.PersonGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/people/{id} [put]
func UpdatePersonHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid person ID"})
			return
		}

		var req models.PersonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		var person models.PersonGorm
		if err := db.First(&person, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Person not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch person", "details": err.Error()})
			return
		}

		person.Name = req.Name
		person.Email = req.Email
		person.PhoneNo = req.PhoneNo
		person.Title = req.Title
		person.Type = req.Type
		person.CompanyID = req.CompanyID

		key := fmt.Sprintf("%s/%d", personResource, id)
		updated := person
		err = storage.OptimisticUpdate(c.Request.Context(), cache, key, personResource,
			func([]byte) []byte {
				body, _ := json.Marshal(updated)
				return body
			},
			func() error {
				return db.Save(&person).Error
			})
		if err != nil {
			respondSaveError(c, err, personConstraints, "_form")
			return
		}

		// Cached quote, RFQ, registration and follow-up bodies embed the
		// person's name and must not serve the old one.
		_ = invalidate(c.Request.Context(), cache,
			quoteResource, rfqResource, registrationResource, followUpResource)

		c.JSON(http.StatusOK, person)
	}
}

// DeletePersonHandler deletes a person
// @Summary Delete person
// @Description Delete a person; fails with field errors while quotes, RFQs or follow-ups still reference them
// @Tags People
// @Accept json
// @Produce json
// @Param id path int true "Person ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/people/{id} [delete]
func DeletePersonHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid person ID"})
			return
		}

		result := db.Delete(&models.PersonGorm{}, id)
		if result.Error != nil {
			respondSaveError(c, result.Error, personConstraints, "_form")
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Person not found"})
			return
		}

		if cerr := invalidate(c.Request.Context(), cache, personResource); cerr != nil {
			utils.ErrorResponse(c, "Failed to refresh cache", http.StatusInternalServerError)
			return
		}
		_ = cache.Delete(c.Request.Context(), fmt.Sprintf("%s/%d", personResource, id))

		c.JSON(http.StatusOK, gin.H{"message": "Person deleted successfully"})
	}
}
