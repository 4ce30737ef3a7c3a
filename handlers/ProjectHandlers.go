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

const projectResource = "projects"

var projectFilterKeys = []string{"name", "status", "company", "created_at"}

var projectSortColumns = repository.SortMap{
	"name":       "projects.name",
	"status":     "projects.status",
	"company":    "companies.name",
	"created_at": "projects.created_at",
}

var projectConstraints = repository.ConstraintMap{
	"company": "company_id",
	"quotes":  "_form",
	"rfqs":    "_form",
}

func projectBaseQuery(db *gorm.DB, p repository.ListParams) *gorm.DB {
	tx := db.Model(&models.ProjectGorm{}).
		Joins("LEFT JOIN companies ON companies.id = projects.company_id")

	tx = repository.ApplyTextFilter(tx, "projects.name", p.Filters.Get("name"))
	tx = repository.ApplyEnumSetFilter(tx, "projects.status", p.Filters.Get("status"))
	tx = repository.ApplyRelationFilter(tx, "projects.company_id", p.Filters.Get("company"))
	tx = repository.ApplyDateFilter(tx, "projects.created_at", p.Filters.Get("created_at"))
	return tx
}

// CreateProjectHandler creates a new project
// @Summary Create project
// @Description Create a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body models.ProjectRequest true "Project data"
// @Success 201 {object} models.ProjectGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/projects [post]
func CreateProjectHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		project := models.ProjectGorm{
			Name:      req.Name,
			Status:    req.Status,
			CompanyID: req.CompanyID,
		}

		if err := db.Create(&project).Error; err != nil {
			respondSaveError(c, err, projectConstraints, "_form")
			return
		}

		if cerr := invalidate(c.Request.Context(), cache, projectResource); cerr != nil {
			utils.ErrorResponse(c, "Failed to refresh cache", http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusCreated, project)
	}
}

// GetProjectsHandler lists projects
// @Summary List projects
// @Description List projects with pagination, sorting and per-column filters
// @Tags Projects
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query string false "Page size, or 'all' for unbounded"
// @Param sort query string false "Sort spec, e.g. name:asc"
// @Success 200 {object} models.ProjectListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/projects [get]
func GetProjectsHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := repository.ParseListParams(c.Request.URL.Query(), projectFilterKeys)
		key := p.CacheKey(projectResource)
		if serveCached(c, cache, key) {
			return
		}

		page, err := repository.List[models.ProjectGorm](projectBaseQuery(db, p), p, projectSortColumns, "Company")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects", "details": err.Error()})
			return
		}

		respondAndCache(c, cache, key, projectResource, models.ProjectListResponse{
			Data:       page.Data,
			Pagination: paginationFor(p, page.Total, page.PageCount),
		})
	}
}

// GetProjectHandler fetches a single project
// @Summary Get project
// @Description Get a project by id
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.ProjectGorm
// @Failure 404 {object} models.ErrorResponse
// @Router /api/projects/{id} [get]
func GetProjectHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		key := fmt.Sprintf("%s/%d", projectResource, id)
		if serveCached(c, cache, key) {
			return
		}

		var project models.ProjectGorm
		if err := db.Preload("Company").First(&project, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project", "details": err.Error()})
			return
		}

		respondAndCache(c, cache, key, projectResource, project)
	}
}

// UpdateProjectHandler updates a project
// @Summary Update project
// @Description Update a project by id
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param request body models.ProjectRequest true "Project data"
// @Success 200 {object} models.ProjectGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/projects/{id} [put]
func UpdateProjectHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		var req models.ProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		var project models.ProjectGorm
		if err := db.First(&project, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project", "details": err.Error()})
			return
		}

		project.Name = req.Name
		project.Status = req.Status
		project.CompanyID = req.CompanyID

		key := fmt.Sprintf("%s/%d", projectResource, id)
		updated := project
		err = storage.OptimisticUpdate(c.Request.Context(), cache, key, projectResource,
			func([]byte) []byte {
				body, _ := json.Marshal(updated)
				return body
			},
			func() error {
				return db.Save(&project).Error
			})
		if err != nil {
			respondSaveError(c, err, projectConstraints, "_form")
			return
		}

		// Cached quote and RFQ bodies embed the project's name.
		_ = invalidate(c.Request.Context(), cache, quoteResource, rfqResource)

		c.JSON(http.StatusOK, project)
	}
}

// DeleteProjectHandler deletes a project
// @Summary Delete project
// @Description Delete a project; fails with field errors while quotes or RFQs still reference it
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/projects/{id} [delete]
func DeleteProjectHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		result := db.Delete(&models.ProjectGorm{}, id)
		if result.Error != nil {
			respondSaveError(c, result.Error, projectConstraints, "_form")
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		if cerr := invalidate(c.Request.Context(), cache, projectResource); cerr != nil {
			utils.ErrorResponse(c, "Failed to refresh cache", http.StatusInternalServerError)
			return
		}
		_ = cache.Delete(c.Request.Context(), fmt.Sprintf("%s/%d", projectResource, id))

		c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
	}
}
