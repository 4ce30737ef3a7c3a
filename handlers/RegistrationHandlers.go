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

const registrationResource = "registrations"

var registrationFilterKeys = []string{"status", "company", "author", "notes", "created_at"}

var registrationSortColumns = repository.SortMap{
	"status":     "registrations.status",
	"company":    "companies.name",
	"created_at": "registrations.created_at",
}

var registrationConstraints = repository.ConstraintMap{
	"company": "company_id",
	"author":  "author_id",
}

func registrationBaseQuery(db *gorm.DB, p repository.ListParams) *gorm.DB {
	tx := db.Model(&models.RegistrationGorm{}).
		Joins("LEFT JOIN companies ON companies.id = registrations.company_id")

	tx = repository.ApplyEnumSetFilter(tx, "registrations.status", p.Filters.Get("status"))
	tx = repository.ApplyIDSetFilter(tx, "registrations.company_id", p.Filters.Get("company"))
	tx = repository.ApplyIDSetFilter(tx, "registrations.author_id", p.Filters.Get("author"))
	tx = repository.ApplyTextFilter(tx, "registrations.notes", p.Filters.Get("notes"))
	tx = repository.ApplyDateFilter(tx, "registrations.created_at", p.Filters.Get("created_at"))
	return tx
}

// CreateRegistrationHandler creates a new registration
// @Summary Create registration
// @Description Track a supplier registration with a company; status starts as PURSUING unless given
// @Tags Registrations
// @Accept json
// @Produce json
// @Param request body models.RegistrationRequest true "Registration data"
// @Success 201 {object} models.RegistrationGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/registrations [post]
func CreateRegistrationHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RegistrationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		status := req.Status
		if status == "" {
			status = models.RegistrationStatusPursuing
		}

		registration := models.RegistrationGorm{
			CompanyID: req.CompanyID,
			Status:    status,
			AuthorID:  req.AuthorID,
			File:      req.File,
			Notes:     req.Notes,
		}

		if err := db.Create(&registration).Error; err != nil {
			respondSaveError(c, err, registrationConstraints, "_form")
			return
		}

		if cerr := invalidate(c.Request.Context(), cache, registrationResource); cerr != nil {
			utils.ErrorResponse(c, "Failed to refresh cache", http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusCreated, registration)
	}
}

// GetRegistrationsHandler lists registrations
// @Summary List registrations
// @Description List registrations with pagination, sorting and per-column filters
// @Tags Registrations
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query string false "Page size, or 'all' for unbounded"
// @Param sort query string false "Sort spec, e.g. status:asc"
// @Success 200 {object} models.RegistrationListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/registrations [get]
func GetRegistrationsHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := repository.ParseListParams(c.Request.URL.Query(), registrationFilterKeys)
		key := p.CacheKey(registrationResource)
		if serveCached(c, cache, key) {
			return
		}

		page, err := repository.List[models.RegistrationGorm](registrationBaseQuery(db, p), p, registrationSortColumns, "Company", "Author")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch registrations", "details": err.Error()})
			return
		}

		respondAndCache(c, cache, key, registrationResource, models.RegistrationListResponse{
			Data:       page.Data,
			Pagination: paginationFor(p, page.Total, page.PageCount),
		})
	}
}

// GetRegistrationHandler fetches a single registration
// @Summary Get registration
// @Description Get a registration by id
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path int true "Registration ID"
// @Success 200 {object} models.RegistrationGorm
// @Failure 404 {object} models.ErrorResponse
// @Router /api/registrations/{id} [get]
func GetRegistrationHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration ID"})
			return
		}

		key := fmt.Sprintf("%s/%d", registrationResource, id)
		if serveCached(c, cache, key) {
			return
		}

		var registration models.RegistrationGorm
		if err := db.Preload("Company").Preload("Author").First(&registration, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch registration", "details": err.Error()})
			return
		}

		respondAndCache(c, cache, key, registrationResource, registration)
	}
}

// UpdateRegistrationHandler updates a registration
// @Summary Update registration
// @Description Update a registration by id
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path int true "Registration ID"
// @Param request body models.RegistrationRequest true "Registration data"
// @Success 200 {object} models.RegistrationGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/registrations/{id} [put]
func UpdateRegistrationHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration ID"})
			return
		}

		var req models.RegistrationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		var registration models.RegistrationGorm
		if err := db.First(&registration, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch registration", "details": err.Error()})
			return
		}

		registration.CompanyID = req.CompanyID
		if req.Status != "" {
			registration.Status = req.Status
		}
		registration.AuthorID = req.AuthorID
		registration.File = req.File
		registration.Notes = req.Notes

		key := fmt.Sprintf("%s/%d", registrationResource, id)
		updated := registration
		err = storage.OptimisticUpdate(c.Request.Context(), cache, key, registrationResource,
			func([]byte) []byte {
				body, _ := json.Marshal(updated)
				return body
			},
			func() error {
				return db.Save(&registration).Error
			})
		if err != nil {
			respondSaveError(c, err, registrationConstraints, "_form")
			return
		}

		// The dashboard's status breakdown includes this registration.
		_ = invalidate(c.Request.Context(), cache)

		c.JSON(http.StatusOK, registration)
	}
}

// DeleteRegistrationHandler deletes a registration
// @Summary Delete registration
// @Description Delete a registration by id
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path int true "Registration ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/registrations/{id} [delete]
func DeleteRegistrationHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration ID"})
			return
		}

		result := db.Delete(&models.RegistrationGorm{}, id)
		if result.Error != nil {
			respondSaveError(c, result.Error, registrationConstraints, "_form")
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
			return
		}

		if cerr := invalidate(c.Request.Context(), cache, registrationResource); cerr != nil {
			utils.ErrorResponse(c, "Failed to refresh cache", http.StatusInternalServerError)
			return
		}
		_ = cache.Delete(c.Request.Context(), fmt.Sprintf("%s/%d", registrationResource, id))

		c.JSON(http.StatusOK, gin.H{"message": "Registration deleted successfully"})
	}
}
