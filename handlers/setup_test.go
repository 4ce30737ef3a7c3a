package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"argocrm/models"
	"argocrm/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique in-memory database per test; foreign keys on so constraint
	// violations surface the same way they do on postgres.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.CompanyGorm{},
		&models.PersonGorm{},
		&models.ProjectGorm{},
		&models.CurrencyRateGorm{},
		&models.QuoteGorm{},
		&models.RfqGorm{},
		&models.RegistrationGorm{},
		&models.FollowUpGorm{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedQuoteRefs creates the rows a quote needs: an author, a client, a
// supplier and a USD rate. Returns the author and client ids.
func seedQuoteRefs(t *testing.T, db *gorm.DB) (authorID, clientID, supplierID uint) {
	t.Helper()

	author := models.PersonGorm{Name: "Asha Nair", Type: models.PersonTypeInternal}
	if err := db.Create(&author).Error; err != nil {
		t.Fatalf("seed author: %v", err)
	}
	client := models.CompanyGorm{Name: "Acme Trading LLC", Type: models.CompanyTypeClient}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	supplier := models.CompanyGorm{Name: "Gulf Precast", Type: models.CompanyTypeSupplier}
	if err := db.Create(&supplier).Error; err != nil {
		t.Fatalf("seed supplier: %v", err)
	}
	rate := models.CurrencyRateGorm{Code: "USD", Rate: 3.6725}
	if err := db.Create(&rate).Error; err != nil {
		t.Fatalf("seed rate: %v", err)
	}
	return author.ID, client.ID, supplier.ID
}

func newTestRouter(db *gorm.DB, cache storage.Cache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/api/quotes", CreateQuoteHandler(db, cache))
	r.GET("/api/quotes", GetQuotesHandler(db, cache))
	r.GET("/api/quotes/metadata", GetQuoteMetadataHandler(db, cache))
	r.GET("/api/quotes/:id", GetQuoteHandler(db, cache))
	r.PUT("/api/quotes/:id", UpdateQuoteHandler(db, cache))
	r.DELETE("/api/quotes/:id", DeleteQuoteHandler(db, cache))

	r.POST("/api/rfqs", CreateRfqHandler(db, cache))
	r.GET("/api/rfqs", GetRfqsHandler(db, cache))
	r.POST("/api/rfqs/:id/receive", ReceiveRfqHandler(db, cache))
	r.DELETE("/api/rfqs/:id", DeleteRfqHandler(db, cache))

	r.POST("/api/companies", CreateCompanyHandler(db, cache))
	r.GET("/api/companies", GetCompaniesHandler(db, cache))
	r.PUT("/api/companies/:id", UpdateCompanyHandler(db, cache))
	r.DELETE("/api/companies/:id", DeleteCompanyHandler(db, cache))

	r.GET("/api/currency-rates", GetCurrencyRatesHandler(db))
	r.PUT("/api/currency-rates", UpsertCurrencyRateHandler(db, cache))
	r.DELETE("/api/currency-rates/:code", DeleteCurrencyRateHandler(db, cache))

	r.GET("/api/dashboard", GetDashboardHandler(db, cache))
	r.GET("/api/export/quotes.csv", ExportQuotesCSV(db))

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ptrUint(v uint) *uint { return &v }

func dateUTC(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
