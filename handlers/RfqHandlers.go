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

const rfqResource = "rfqs"

var rfqFilterKeys = []string{
	"reference_number", "status",
	"quote", "supplier", "project", "author",
	"date", "received_date",
}

var rfqSortColumns = repository.SortMap{
	"reference_number": "rfqs.reference_number",
	"date":             "rfqs.date",
	"status":           "rfqs.status",
	"received_date":    "rfqs.received_date",
	"received_value":   "rfqs.received_value",
	"created_at":       "rfqs.created_at",
	"supplier":         "supplier_companies.name",
}

var rfqPreloads = []string{"Quote", "Supplier", "Author", "Project"}

var rfqConstraints = repository.ConstraintMap{
	"uq_rfqs_reference_number": "reference_number",
	"supplier":                 "supplier_id",
	"project":                  "project_id",
	"author":                   "author_id",
	"quote":                    "quote_id",
}

func rfqBaseQuery(db *gorm.DB, p repository.ListParams) *gorm.DB {
	tx := db.Model(&models.RfqGorm{}).
		Joins("LEFT JOIN companies AS supplier_companies ON supplier_companies.id = rfqs.supplier_id")

	tx = repository.ApplyTextFilter(tx, "rfqs.reference_number", p.Filters.Get("reference_number"))
	tx = repository.ApplyEnumSetFilter(tx, "rfqs.status", p.Filters.Get("status"))
	tx = repository.ApplyRelationFilter(tx, "rfqs.quote_id", p.Filters.Get("quote"))
	tx = repository.ApplyIDSetFilter(tx, "rfqs.supplier_id", p.Filters.Get("supplier"))
	tx = repository.ApplyIDSetFilter(tx, "rfqs.project_id", p.Filters.Get("project"))
	tx = repository.ApplyIDSetFilter(tx, "rfqs.author_id", p.Filters.Get("author"))
	tx = repository.ApplyDateFilter(tx, "rfqs.date", p.Filters.Get("date"))
	tx = repository.ApplyDateFilter(tx, "rfqs.received_date", p.Filters.Get("received_date"))

	return tx
}

func nextRfqSerial(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&models.RfqGorm{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

// CreateRfqHandler creates a new RFQ
// @Summary Create RFQ
// @Description Create an RFQ; the reference number is computed server-side and the status starts as SENT
// @Tags RFQs
// @Accept json
// @Produce json
// @Param request body models.RfqRequest true "RFQ data"
// @Success 201 {object} models.RfqGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/rfqs [post]
func CreateRfqHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RfqRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		rfq := models.RfqGorm{
			Date:       req.Date,
			Status:     models.RfqStatusSent,
			QuoteID:    req.QuoteID,
			SupplierID: req.SupplierID,
			AuthorID:   req.AuthorID,
			ProjectID:  req.ProjectID,
			Notes:      req.Notes,
			Files:      models.StringList(req.Files),
		}

		var err error
		for attempt := 0; attempt < 2; attempt++ {
			serial, serr := nextRfqSerial(db)
			if serr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate reference number", "details": serr.Error()})
				return
			}
			rfq.ReferenceNumber = utils.GenerateReferenceNumber(serial, utils.RefTagRfq, req.Date)

			err = db.Create(&rfq).Error
			if err == nil {
				break
			}
			if fieldErrs := repository.FieldErrors(err, rfqConstraints, "_form"); fieldErrs == nil || fieldErrs["reference_number"] == nil {
				break
			}
		}
		if err != nil {
			respondSaveError(c, err, rfqConstraints, "_form")
			return
		}

		// An RFQ linked to a quote changes that quote's rfq=null listing.
		stale := []string{rfqResource}
		if rfq.QuoteID != nil {
			stale = append(stale, quoteResource)
		}
		if cerr := invalidate(c.Request.Context(), cache, stale...); cerr != nil {
			utils.ErrorResponse(c, "Failed to refresh cache", http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusCreated, rfq)
	}
}

// GetRfqsHandler lists RFQs
// @Summary List RFQs
// @Description List RFQs with pagination, sorting and per-column filters
// @Tags RFQs
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query string false "Page size, or 'all' for unbounded"
// @Param sort query string false "Sort spec, e.g. date:desc"
// @Success 200 {object} models.RfqListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/rfqs [get]
func GetRfqsHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := repository.ParseListParams(c.Request.URL.Query(), rfqFilterKeys)
		key := p.CacheKey(rfqResource)
		if serveCached(c, cache, key) {
			return
		}

		page, err := repository.List[models.RfqGorm](rfqBaseQuery(db, p), p, rfqSortColumns, rfqPreloads...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch RFQs", "details": err.Error()})
			return
		}

		respondAndCache(c, cache, key, rfqResource, models.RfqListResponse{
			Data:       page.Data,
			Pagination: paginationFor(p, page.Total, page.PageCount),
		})
	}
}

// GetRfqHandler fetches a single RFQ
// @Summary Get RFQ
// @Description Get an RFQ by id with related entities
// @Tags RFQs
// @Accept json
// @Produce json
// @Param id path int true "RFQ ID"
// @Success 200 {object} models.RfqGorm
// @Failure 404 {object} models.ErrorResponse
// @Router /api/rfqs/{id} [get]
func GetRfqHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RFQ ID"})
			return
		}

		key := fmt.Sprintf("%s/%d", rfqResource, id)
		if serveCached(c, cache, key) {
			return
		}

		var rfq models.RfqGorm
		tx := db
		for _, preload := range rfqPreloads {
			tx = tx.Preload(preload)
		}
		if err := tx.First(&rfq, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "RFQ not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch RFQ", "details": err.Error()})
			return
		}

		respondAndCache(c, cache, key, rfqResource, rfq)
	}
}

// UpdateRfqHandler updates an RFQ
// @Summary Update RFQ
// @Description Update an RFQ; the reference number and receipt fields are preserved
// @Tags RFQs
// @Accept json
// @Produce json
// @Param id path int true "RFQ ID"
// @Param request body models.RfqRequest true "RFQ data"
// @Success 200 {object} models.RfqGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/rfqs/{id} [put]
func UpdateRfqHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RFQ ID"})
			return
		}

		var req models.RfqRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		var rfq models.RfqGorm
		if err := db.First(&rfq, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "RFQ not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch RFQ", "details": err.Error()})
			return
		}

		rfq.Date = req.Date
		rfq.QuoteID = req.QuoteID
		rfq.SupplierID = req.SupplierID
		rfq.AuthorID = req.AuthorID
		rfq.ProjectID = req.ProjectID
		rfq.Notes = req.Notes
		rfq.Files = models.StringList(req.Files)

		key := fmt.Sprintf("%s/%d", rfqResource, id)
		updated := rfq
		err = storage.OptimisticUpdate(c.Request.Context(), cache, key, rfqResource,
			func([]byte) []byte {
				body, _ := json.Marshal(updated)
				return body
			},
			func() error {
				return db.Save(&rfq).Error
			})
		if err != nil {
			respondSaveError(c, err, rfqConstraints, "_form")
			return
		}

		_ = invalidate(c.Request.Context(), cache, quoteResource)

		c.JSON(http.StatusOK, rfq)
	}
}

// ReceiveRfqHandler marks an RFQ as received
// @Summary Receive RFQ
// @Description Record the receipt details and move the RFQ to RECEIVED
// @Tags RFQs
// @Accept json
// @Produce json
// @Param id path int true "RFQ ID"
// @Param request body models.RfqReceiveRequest true "Receipt details"
// @Success 200 {object} models.RfqGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/rfqs/{id}/receive [post]
func ReceiveRfqHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RFQ ID"})
			return
		}

		var req models.RfqReceiveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		var rfq models.RfqGorm
		if err := db.First(&rfq, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "RFQ not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch RFQ", "details": err.Error()})
			return
		}

		if rfq.Status == models.RfqStatusReceived {
			c.JSON(http.StatusConflict, gin.H{"error": "RFQ already received"})
			return
		}

		rfq.Status = models.RfqStatusReceived
		rfq.ReceivedDate = &req.ReceivedDate
		rfq.ReceivedValue = &req.ReceivedValue
		rfq.ReceivedCurrency = &req.ReceivedCurrency

		if err := db.Save(&rfq).Error; err != nil {
			respondSaveError(c, err, rfqConstraints, "_form")
			return
		}

		if cerr := invalidate(c.Request.Context(), cache, rfqResource); cerr != nil {
			utils.ErrorResponse(c, "Failed to refresh cache", http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, rfq)
	}
}

// DeleteRfqHandler deletes an RFQ
// @Summary Delete RFQ
// @Description Delete an RFQ by id
// @Tags RFQs
// @Accept json
// @Produce json
// @Param id path int true "RFQ ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/rfqs/{id} [delete]
func DeleteRfqHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RFQ ID"})
			return
		}

		result := db.Delete(&models.RfqGorm{}, id)
		if result.Error != nil {
			respondSaveError(c, result.Error, rfqConstraints, "_form")
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "RFQ not found"})
			return
		}

		if cerr := invalidate(c.Request.Context(), cache, rfqResource, quoteResource); cerr != nil {
			utils.ErrorResponse(c, "Failed to refresh cache", http.StatusInternalServerError)
			return
		}
		_ = cache.Delete(c.Request.Context(), fmt.Sprintf("%s/%d", rfqResource, id))

		c.JSON(http.StatusOK, gin.H{"message": "RFQ deleted successfully"})
	}
}
