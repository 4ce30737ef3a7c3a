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

const companyResource = "companies"

var companyFilterKeys = []string{"name", "email", "phone_no", "type", "created_at"}

var companySortColumns = repository.SortMap{
	"name":       "companies.name",
	"email":      "companies.email",
	"type":       "companies.type",
	"created_at": "companies.created_at",
}

var companyConstraints = repository.ConstraintMap{
	"uq_companies_name": "name",
	"people":            "_form",
	"projects":          "_form",
	"registrations":     "_form",
	"quotes":            "_form",
}

func companyBaseQuery(db *gorm.DB, p repository.ListParams) *gorm.DB {
	tx := db.Model(&models.CompanyGorm{})
	tx = repository.ApplyTextFilter(tx, "companies.name", p.Filters.Get("name"))
	tx = repository.ApplyTextFilter(tx, "companies.email", p.Filters.Get("email"))
	tx = repository.ApplyTextFilter(tx, "companies.phone_no", p.Filters.Get("phone_no"))
	tx = repository.ApplyEnumSetFilter(tx, "companies.type", p.Filters.Get("type"))
	tx = repository.ApplyDateFilter(tx, "companies.created_at", p.Filters.Get("created_at"))
	return tx
}

// CreateCompanyHandler creates a new company
// @Summary Create company
// @Description Create a company; names are unique across the account
// @Tags Companies
// @Accept json
// @Produce json
// @Param request body models.CompanyRequest true "Company data"
// @Success 201 {object} models.CompanyGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/companies [post]
func CreateCompanyHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CompanyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		company := models.CompanyGorm{
			Name:    req.Name,
			Email:   req.Email,
			PhoneNo: req.PhoneNo,
			Type:    req.Type,
		}

		if err := db.Create(&company).Error; err != nil {
			respondSaveError(c, err, companyConstraints, "name")
			return
		}

		if cerr := invalidate(c.Request.Context(), cache, companyResource); cerr != nil {
			utils.ErrorResponse(c, "Failed to refresh cache", http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusCreated, company)
	}
}

// GetCompaniesHandler lists companies
// @Summary List companies
// @Description List companies with pagination, sorting and per-column filters
// @Tags Companies
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query string false "Page size, or 'all' for unbounded"
// @Param sort query string false "Sort spec, e.g. name:asc"
// @Success 200 {object} models.CompanyListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/companies [get]
func GetCompaniesHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := repository.ParseListParams(c.Request.URL.Query(), companyFilterKeys)
		key := p.CacheKey(companyResource)
		if serveCached(c, cache, key) {
			return
		}

		page, err := repository.List[models.CompanyGorm](companyBaseQuery(db, p), p, companySortColumns)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch companies", "details": err.Error()})
			return
		}

		respondAndCache(c, cache, key, companyResource, models.CompanyListResponse{
			Data:       page.Data,
			Pagination: paginationFor(p, page.Total, page.PageCount),
		})
	}
}

// GetCompanyHandler fetches a single company
// @Summary Get company
// @Description Get a company by id
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} models.CompanyGorm
// @Failure 404 {object} models.ErrorResponse
// @Router /api/companies/{id} [get]
func GetCompanyHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid company ID"})
			return
		}

		key := fmt.Sprintf("%s/%d", companyResource, id)
		if serveCached(c, cache, key) {
			return
		}

		var company models.CompanyGorm
		if err := db.First(&company, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch company", "details": err.Error()})
			return
		}

		respondAndCache(c, cache, key, companyResource, company)
	}
}

// UpdateCompanyHandler updates a company
// @Summary Update company
// @Description Update a company by id
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path int true "Company ID"
// @Param request body models.CompanyRequest true "Company data"
// @Success 200 {object} models.CompanyGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/companies/{id} [put]
func UpdateCompanyHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid company ID"})
			return
		}

		var req models.CompanyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		var company models.CompanyGorm
		if err := db.First(&company, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch company", "details": err.Error()})
			return
		}

		company.Name = req.Name
		company.Email = req.Email
		company.PhoneNo = req.PhoneNo
		company.Type = req.Type

		key := fmt.Sprintf("%s/%d", companyResource, id)
		updated := company
		err = storage.OptimisticUpdate(c.Request.Context(), cache, key, companyResource,
			func([]byte) []byte {
				body, _ := json.Marshal(updated)
				return body
			},
			func() error {
				return db.Save(&company).Error
			})
		if err != nil {
			respondSaveError(c, err, companyConstraints, "name")
			return
		}

		// Cached quote, RFQ, person, project and registration bodies embed
		// the company's name and must not serve the old one.
		_ = invalidate(c.Request.Context(), cache,
			quoteResource, rfqResource, personResource, projectResource, registrationResource)

		c.JSON(http.StatusOK, company)
	}
}

// DeleteCompanyHandler deletes a company
// @Summary Delete company
// @Description Delete a company; fails with field errors while people, projects, quotes or registrations still reference it
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/companies/{id} [delete]
func DeleteCompanyHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid company ID"})
			return
		}

		result := db.Delete(&models.CompanyGorm{}, id)
		if result.Error != nil {
			respondSaveError(c, result.Error, companyConstraints, "_form")
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
			return
		}

		if cerr := invalidate(c.Request.Context(), cache, companyResource); cerr != nil {
			utils.ErrorResponse(c, "Failed to refresh cache", http.StatusInternalServerError)
			return
		}
		_ = cache.Delete(c.Request.Context(), fmt.Sprintf("%s/%d", companyResource, id))

		c.JSON(http.StatusOK, gin.H{"message": "Company deleted successfully"})
	}
}
