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
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const quoteResource = "quotes"

// quoteFilterKeys lists the query parameters accepted as quote filters.
var quoteFilterKeys = []string{
	"reference_number", "currency", "outcome",
	"supplier", "client", "project", "author", "contact_person", "sales_person",
	"date", "delivery_date", "rfq",
}

// quoteSortColumns maps external sort ids to order expressions. Joined
// entities sort by the joined display field, not the foreign key value.
var quoteSortColumns = repository.SortMap{
	"reference_number": "quotes.reference_number",
	"date":             "quotes.date",
	"currency":         "quotes.currency",
	"value":            "quotes.value",
	"value_base":       "(quotes.value * quotes.fx_rate)",
	"outcome":          "quotes.outcome",
	"delivery_date":    "quotes.delivery_date",
	"created_at":       "quotes.created_at",
	"client":           "client_companies.name",
	"supplier":         "supplier_companies.name",
}

var quotePreloads = []string{"Author", "Supplier", "Client", "Project", "ContactPerson", "SalesPerson"}

// quoteConstraints maps constraint names to the API fields violations are
// reported under.
var quoteConstraints = repository.ConstraintMap{
	"uq_quotes_reference_number": "reference_number",
	"contact_person":             "contact_person_id",
	"sales_person":               "sales_person_id",
	"supplier":                   "supplier_id",
	"client":                     "client_id",
	"project":                    "project_id",
	"author":                     "author_id",
}

// quoteBaseQuery builds the filtered quote query. Joins are LEFT so rows
// without a client or supplier still appear; both relations are to-one, so
// the joins never change the row count.
func quoteBaseQuery(db *gorm.DB, p repository.ListParams) *gorm.DB {
	tx := db.Model(&models.QuoteGorm{}).
		Joins("LEFT JOIN companies AS client_companies ON client_companies.id = quotes.client_id").
		Joins("LEFT JOIN companies AS supplier_companies ON supplier_companies.id = quotes.supplier_id")

	tx = repository.ApplyTextFilter(tx, "quotes.reference_number", p.Filters.Get("reference_number"))
	tx = repository.ApplyEnumSetFilter(tx, "quotes.currency", p.Filters.Get("currency"))
	tx = repository.ApplyEnumSetFilter(tx, "quotes.outcome", p.Filters.Get("outcome"))
	tx = repository.ApplyIDSetFilter(tx, "quotes.supplier_id", p.Filters.Get("supplier"))
	tx = repository.ApplyIDSetFilter(tx, "quotes.client_id", p.Filters.Get("client"))
	tx = repository.ApplyIDSetFilter(tx, "quotes.project_id", p.Filters.Get("project"))
	tx = repository.ApplyIDSetFilter(tx, "quotes.author_id", p.Filters.Get("author"))
	tx = repository.ApplyIDSetFilter(tx, "quotes.contact_person_id", p.Filters.Get("contact_person"))
	tx = repository.ApplyIDSetFilter(tx, "quotes.sales_person_id", p.Filters.Get("sales_person"))
	tx = repository.ApplyDateFilter(tx, "quotes.date", p.Filters.Get("date"))
	tx = repository.ApplyDateFilter(tx, "quotes.delivery_date", p.Filters.Get("delivery_date"))

	// rfq=null selects quotes with no linked RFQ; any other value filters
	// by the ids of quotes the given RFQs point at.
	if raw := p.Filters.Get("rfq"); raw == repository.RelationNone {
		tx = tx.Where("NOT EXISTS (SELECT 1 FROM rfqs WHERE rfqs.quote_id = quotes.id)")
	} else if ids := repository.ParseIDs(raw); len(ids) > 0 {
		tx = tx.Where("quotes.id IN (SELECT quote_id FROM rfqs WHERE rfqs.id IN ? AND quote_id IS NOT NULL)", ids)
	}

	return tx
}

// snapshotFxRate resolves the conversion rate to the base currency (AED)
// for a quote at creation time. The rate is stored on the quote so later
// rate updates never change historical values.
func snapshotFxRate(db *gorm.DB, currency string) (float64, error) {
	if currency == "AED" {
		return 1, nil
	}
	var rate models.CurrencyRateGorm
	if err := db.First(&rate, "code = ?", currency).Error; err != nil {
		return 0, err
	}
	return rate.Rate, nil
}

// nextQuoteSerial returns the next global quote serial. The count-then-insert
// window can race under concurrent creates; the unique index on
// reference_number rejects the loser, which retries.
func nextQuoteSerial(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&models.QuoteGorm{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

// CreateQuoteHandler creates a new quote
// @Summary Create quote
// @Description Create a quote; the reference number and FX rate snapshot are computed server-side
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body models.QuoteRequest true "Quote data"
// @Success 201 {object} models.QuoteGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/quotes [post]
func CreateQuoteHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.QuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		fxRate, err := snapshotFxRate(db, req.Currency)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, models.FieldErrorResponse{
				Errors: map[string][]string{"currency": {"no conversion rate configured"}},
			})
			return
		}

		outcome := req.Outcome
		if outcome == "" {
			outcome = models.QuoteOutcomePending
		}

		quote := models.QuoteGorm{
			Date:            req.Date,
			Currency:        req.Currency,
			Value:           req.Value,
			FxRate:          fxRate,
			Outcome:         outcome,
			DeliveryDate:    req.DeliveryDate,
			Notes:           req.Notes,
			Files:           models.StringList(req.Files),
			AuthorID:        req.AuthorID,
			SupplierID:      req.SupplierID,
			ClientID:        req.ClientID,
			ProjectID:       req.ProjectID,
			ContactPersonID: req.ContactPersonID,
			SalesPersonID:   req.SalesPersonID,
		}

		// Retry once on a reference-number collision from a concurrent create.
		for attempt := 0; attempt < 2; attempt++ {
			serial, serr := nextQuoteSerial(db)
			if serr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate reference number", "details": serr.Error()})
				return
			}
			quote.ReferenceNumber = utils.GenerateReferenceNumber(serial, utils.RefTagQuote, req.Date)

			err = db.Create(&quote).Error
			if err == nil {
				break
			}
			if fieldErrs := repository.FieldErrors(err, quoteConstraints, "_form"); fieldErrs == nil || fieldErrs["reference_number"] == nil {
				break
			}
		}
		if err != nil {
			respondSaveError(c, err, quoteConstraints, "_form")
			return
		}

		if cerr := invalidate(c.Request.Context(), cache, quoteResource); cerr != nil {
			utils.ErrorResponse(c, "Failed to refresh cache", http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusCreated, quote)
	}
}

// GetQuotesHandler lists quotes
// @Summary List quotes
// @Description List quotes with pagination, sorting and per-column filters
// @Tags Quotes
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query string false "Page size, or 'all' for unbounded"
// @Param sort query string false "Sort spec, e.g. value:desc,date:asc"
// @Success 200 {object} models.QuoteListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/quotes [get]
func GetQuotesHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := repository.ParseListParams(c.Request.URL.Query(), quoteFilterKeys)
		key := p.CacheKey(quoteResource)
		if serveCached(c, cache, key) {
			return
		}

		page, err := repository.List[models.QuoteGorm](quoteBaseQuery(db, p), p, quoteSortColumns, quotePreloads...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quotes", "details": err.Error()})
			return
		}

		respondAndCache(c, cache, key, quoteResource, models.QuoteListResponse{
			Data:       page.Data,
			Pagination: paginationFor(p, page.Total, page.PageCount),
		})
	}
}

// GetQuoteHandler fetches a single quote
// @Summary Get quote
// @Description Get a quote by id with related entities
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path int true "Quote ID"
// @Success 200 {object} models.QuoteGorm
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quotes/{id} [get]
func GetQuoteHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote ID"})
			return
		}

		key := fmt.Sprintf("%s/%d", quoteResource, id)
		if serveCached(c, cache, key) {
			return
		}

		var quote models.QuoteGorm
		tx := db
		for _, preload := range quotePreloads {
			tx = tx.Preload(preload)
		}
		if err := tx.First(&quote, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quote", "details": err.Error()})
			return
		}

		respondAndCache(c, cache, key, quoteResource, quote)
	}
}

// UpdateQuoteHandler updates a quote
// @Summary Update quote
// @Description Update a quote; the reference number is preserved, and the FX snapshot is only retaken when the currency changes
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path int true "Quote ID"
// @Param request body models.QuoteRequest true "Quote data"
// @Success 200 {object} models.QuoteGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/quotes/{id} [put]
func UpdateQuoteHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote ID"})
			return
		}

		var req models.QuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		var quote models.QuoteGorm
		if err := db.First(&quote, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quote", "details": err.Error()})
			return
		}

		if req.Currency != quote.Currency {
			fxRate, ferr := snapshotFxRate(db, req.Currency)
			if ferr != nil {
				c.JSON(http.StatusUnprocessableEntity, models.FieldErrorResponse{
					Errors: map[string][]string{"currency": {"no conversion rate configured"}},
				})
				return
			}
			quote.FxRate = fxRate
		}

		quote.Date = req.Date
		quote.Currency = req.Currency
		quote.Value = req.Value
		if req.Outcome != "" {
			quote.Outcome = req.Outcome
		}
		quote.DeliveryDate = req.DeliveryDate
		quote.Notes = req.Notes
		quote.Files = models.StringList(req.Files)
		quote.AuthorID = req.AuthorID
		quote.SupplierID = req.SupplierID
		quote.ClientID = req.ClientID
		quote.ProjectID = req.ProjectID
		quote.ContactPersonID = req.ContactPersonID
		quote.SalesPersonID = req.SalesPersonID

		key := fmt.Sprintf("%s/%d", quoteResource, id)
		updated := quote
		err = storage.OptimisticUpdate(c.Request.Context(), cache, key, quoteResource,
			func([]byte) []byte {
				body, _ := json.Marshal(updated)
				return body
			},
			func() error {
				return db.Save(&quote).Error
			})
		if err != nil {
			respondSaveError(c, err, quoteConstraints, "_form")
			return
		}

		// RFQ and follow-up list bodies embed the quote they point at.
		_ = invalidate(c.Request.Context(), cache, rfqResource, followUpResource)

		c.JSON(http.StatusOK, quote)
	}
}

// DeleteQuoteHandler deletes a quote
// @Summary Delete quote
// @Description Delete a quote; fails with field errors while RFQs or follow-ups still reference it
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path int true "Quote ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.FieldErrorResponse
// @Router /api/quotes/{id} [delete]
func DeleteQuoteHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote ID"})
			return
		}

		result := db.Delete(&models.QuoteGorm{}, id)
		if result.Error != nil {
			respondSaveError(c, result.Error, repository.ConstraintMap{
				"rfqs":       "_form",
				"follow_ups": "_form",
			}, "_form")
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
			return
		}

		if cerr := invalidate(c.Request.Context(), cache, quoteResource); cerr != nil {
			utils.ErrorResponse(c, "Failed to refresh cache", http.StatusInternalServerError)
			return
		}
		_ = cache.Delete(c.Request.Context(), fmt.Sprintf("%s/%d", quoteResource, id))

		c.JSON(http.StatusOK, gin.H{"message": "Quote deleted successfully"})
	}
}

// GetQuoteMetadataHandler aggregates quote stats for the dashboard
// @Summary Quote metadata
// @Description Totals and per-outcome breakdown under the list's filter shape; the outcome filter itself is ignored so the breakdown sums to the total
// @Tags Quotes
// @Accept json
// @Produce json
// @Success 200 {object} models.QuoteMetadata
// @Failure 500 {object} models.ErrorResponse
// @Router /api/quotes/metadata [get]
func GetQuoteMetadataHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := repository.ParseListParams(c.Request.URL.Query(), quoteFilterKeys).
			WithoutPagination().
			WithoutFilter("outcome")

		key := p.CacheKey(quoteResource + "/metadata")
		if serveCached(c, cache, key) {
			return
		}

		base := quoteBaseQuery(db, p)

		var meta models.QuoteMetadata
		if err := base.Session(&gorm.Session{}).Count(&meta.TotalQuotes).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate quotes", "details": err.Error()})
			return
		}

		byOutcome, err := repository.CountByColumn(base, "quotes.outcome")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate quotes", "details": err.Error()})
			return
		}
		meta.ByOutcome = byOutcome

		// Total value reported in the base currency using the stored snapshots.
		var totalValue *float64
		err = base.Session(&gorm.Session{}).
			Select("SUM(quotes.value * quotes.fx_rate)").
			Scan(&totalValue).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate quotes", "details": err.Error()})
			return
		}
		if totalValue != nil {
			meta.TotalValue = *totalValue
		}

		respondAndCache(c, cache, key, quoteResource, meta)
	}
}

// quotesDueForDelivery picks won quotes whose delivery date falls within
// the window; the reminder job mails these out.
func quotesDueForDelivery(db *gorm.DB, within time.Duration) ([]models.QuoteGorm, error) {
	now := time.Now()
	var quotes []models.QuoteGorm
	err := db.Preload("Client").Preload("SalesPerson").
		Where("delivery_date IS NOT NULL AND delivery_date >= ? AND delivery_date <= ?", now, now.Add(within)).
		Where("outcome = ?", models.QuoteOutcomeWon).
		Find(&quotes).Error
	return quotes, err
}
