package handlers

import (
	"argocrm/models"
	"argocrm/storage"
	"argocrm/utils"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetCurrencyRatesHandler lists configured currency rates
// @Summary List currency rates
// @Description List the conversion rates against the base currency (AED)
// @Tags Currencies
// @Accept json
// @Produce json
// @Success 200 {array} models.CurrencyRateGorm
// @Failure 500 {object} models.ErrorResponse
// @Router /api/currency-rates [get]
func GetCurrencyRatesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rates []models.CurrencyRateGorm
		if err := db.Order("code ASC").Find(&rates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch currency rates", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, rates)
	}
}

// UpsertCurrencyRateHandler creates or updates a currency rate
// @Summary Upsert currency rate
// @Description Set the conversion rate for a currency against AED. Existing quotes keep their snapshotted rate.
// @Tags Currencies
// @Accept json
// @Produce json
// @Param request body models.CurrencyRateRequest true "Currency rate"
// @Success 200 {object} models.CurrencyRateGorm
// @Failure 400 {object} models.ErrorResponse
// @Router /api/currency-rates [put]
func UpsertCurrencyRateHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CurrencyRateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		rate := models.CurrencyRateGorm{
			Code: strings.ToUpper(req.Code),
			Rate: req.Rate,
		}

		if rate.Code == "AED" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Base currency rate is fixed at 1"})
			return
		}

		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
		}).Create(&rate).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save currency rate", "details": err.Error()})
			return
		}

		// The dashboard summary embeds the rate table.
		_ = invalidate(c.Request.Context(), cache)

		c.JSON(http.StatusOK, rate)
	}
}

// DeleteCurrencyRateHandler removes a currency rate
// @Summary Delete currency rate
// @Description Remove the conversion rate for a currency; new quotes in that currency will be rejected until a rate is set again
// @Tags Currencies
// @Accept json
// @Produce json
// @Param code path string true "Currency code"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/currency-rates/{code} [delete]
func DeleteCurrencyRateHandler(db *gorm.DB, cache storage.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
		if len(code) != 3 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid currency code"})
			return
		}

		result := db.Delete(&models.CurrencyRateGorm{}, "code = ?", code)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete currency rate", "details": result.Error.Error()})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Currency rate not found"})
			return
		}

		_ = invalidate(c.Request.Context(), cache)

		utils.SuccessResponse(c, "Currency rate deleted", http.StatusOK)
	}
}
