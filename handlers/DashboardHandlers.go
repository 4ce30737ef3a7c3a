package handlers

import (
	"argocrm/models"
	"argocrm/repository"
	"argocrm/storage"
	"argocrm/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const dashboardResource = "dashboard"

// DashboardSummary is the landing-page payload: entity counts, the quote
// outcome split, the registration pipeline and recent follow-ups.
type DashboardSummary struct {
	Quotes          models.QuoteMetadata      `json:"quotes"`
	TotalRfqs       int64                     `json:"total_rfqs"`
	RfqsByStatus    map[string]int64          `json:"rfqs_by_status"`
	TotalCompanies  int64                     `json:"total_companies"`
	TotalPeople     int64                     `json:"total_people"`
	TotalProjects   int64                     `json:"total_projects"`
	Registrations   map[string]int64          `json:"registrations_by_status"`
	RecentFollowUps []models.FollowUpGorm     `json:"recent_follow_ups"`
	QuotesDueSoon   []models.QuoteGorm        `json:"quotes_due_soon"`
	CurrencyRates   []models.CurrencyRateGorm `json:"currency_rates"`
}

// GetDashboardHandler aggregates the dashboard summary
// @Summary Dashboard summary
// @Description Entity counts, quote outcome split, registration pipeline and recent activity
// @Tags Dashboard
// @Accept json
// @Produce json
// @Success 200 {object} handlers.DashboardSummary
// @Failure 500 {object} models.ErrorResponse
// @Router /api/dashboard [get]
func GetDashboardHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := dashboardResource + "?summary"
		if serveCached(c, cache, key) {
			return
		}

		ctx, cancel := utils.GetSlowQueryContext(c.Request.Context())
		defer cancel()
		qdb := db.WithContext(ctx)

		var summary DashboardSummary
		fail := func(err error) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard", "details": err.Error()})
		}

		if err := qdb.Model(&models.QuoteGorm{}).Count(&summary.Quotes.TotalQuotes).Error; err != nil {
			fail(err)
			return
		}

		byOutcome, err := repository.CountByColumn(qdb.Model(&models.QuoteGorm{}), "outcome")
		if err != nil {
			fail(err)
			return
		}
		summary.Quotes.ByOutcome = byOutcome

		var totalValue *float64
		if err := qdb.Model(&models.QuoteGorm{}).Select("SUM(value * fx_rate)").Scan(&totalValue).Error; err != nil {
			fail(err)
			return
		}
		if totalValue != nil {
			summary.Quotes.TotalValue = *totalValue
		}

		if err := qdb.Model(&models.RfqGorm{}).Count(&summary.TotalRfqs).Error; err != nil {
			fail(err)
			return
		}
		if summary.RfqsByStatus, err = repository.CountByColumn(qdb.Model(&models.RfqGorm{}), "status"); err != nil {
			fail(err)
			return
		}

		if err := qdb.Model(&models.CompanyGorm{}).Count(&summary.TotalCompanies).Error; err != nil {
			fail(err)
			return
		}
		if err := qdb.Model(&models.PersonGorm{}).Count(&summary.TotalPeople).Error; err != nil {
			fail(err)
			return
		}
		if err := qdb.Model(&models.ProjectGorm{}).Count(&summary.TotalProjects).Error; err != nil {
			fail(err)
			return
		}

		if summary.Registrations, err = repository.CountByColumn(qdb.Model(&models.RegistrationGorm{}), "status"); err != nil {
			fail(err)
			return
		}

		summary.RecentFollowUps = []models.FollowUpGorm{}
		err = qdb.Preload("Quote").Preload("Author").
			Order("created_at DESC").Limit(10).
			Find(&summary.RecentFollowUps).Error
		if err != nil {
			fail(err)
			return
		}

		if summary.QuotesDueSoon, err = quotesDueForDelivery(qdb, 14*24*time.Hour); err != nil {
			fail(err)
			return
		}

		summary.CurrencyRates = []models.CurrencyRateGorm{}
		if err := qdb.Order("code ASC").Find(&summary.CurrencyRates).Error; err != nil {
			fail(err)
			return
		}

		respondAndCache(c, cache, key, dashboardResource, summary)
	}
}
