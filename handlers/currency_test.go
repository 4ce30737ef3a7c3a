package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"argocrm/models"
	"argocrm/storage"
)

func TestUpsertCurrencyRate(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, storage.NewMemoryCache())

	w := doJSON(t, r, http.MethodPut, "/api/currency-rates", `{"code":"usd","rate":3.6725}`)
	if w.Code != http.StatusOK {
		t.Fatalf("upsert: %d %s", w.Code, w.Body.String())
	}
	var rate models.CurrencyRateGorm
	json.Unmarshal(w.Body.Bytes(), &rate)
	if rate.Code != "USD" {
		t.Errorf("code = %q, want uppercased USD", rate.Code)
	}

	// Second upsert overwrites in place.
	if w := doJSON(t, r, http.MethodPut, "/api/currency-rates", `{"code":"USD","rate":3.7}`); w.Code != http.StatusOK {
		t.Fatalf("second upsert: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/currency-rates", "")
	var rates []models.CurrencyRateGorm
	if err := json.Unmarshal(w.Body.Bytes(), &rates); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rates) != 1 || rates[0].Rate != 3.7 {
		t.Errorf("rates = %v, want single USD at 3.7", rates)
	}
}

func TestUpsertCurrencyRateRejectsBase(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, storage.NewMemoryCache())

	w := doJSON(t, r, http.MethodPut, "/api/currency-rates", `{"code":"AED","rate":2}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for base currency, got %d", w.Code)
	}
}

func TestDeleteCurrencyRate(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, storage.NewMemoryCache())

	doJSON(t, r, http.MethodPut, "/api/currency-rates", `{"code":"EUR","rate":4.1}`)

	if w := doJSON(t, r, http.MethodDelete, "/api/currency-rates/eur", ""); w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, r, http.MethodDelete, "/api/currency-rates/EUR", ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", w.Code)
	}
}

func TestDashboardRefreshedAfterQuoteCreate(t *testing.T) {
	db := setupTestDB(t)
	authorID, clientID, _ := seedQuoteRefs(t, db)
	r := newTestRouter(db, storage.NewMemoryCache())

	// Prime the dashboard cache while no quotes exist.
	w := doJSON(t, r, http.MethodGet, "/api/dashboard", "")
	if w.Code != http.StatusOK {
		t.Fatalf("prime dashboard: %d %s", w.Code, w.Body.String())
	}

	body := fmt.Sprintf(`{"date":"2024-03-15T00:00:00Z","currency":"AED","value":100,"author_id":%d,"client_id":%d}`, authorID, clientID)
	if w := doJSON(t, r, http.MethodPost, "/api/quotes", body); w.Code != http.StatusCreated {
		t.Fatalf("create quote: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/dashboard", "")
	var summary DashboardSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Quotes.TotalQuotes != 1 {
		t.Errorf("total quotes = %d after create, want 1 (stale dashboard served)", summary.Quotes.TotalQuotes)
	}
}

func TestDashboardRefreshedAfterCurrencyUpsert(t *testing.T) {
	db := setupTestDB(t)
	seedQuoteRefs(t, db)
	r := newTestRouter(db, storage.NewMemoryCache())

	if w := doJSON(t, r, http.MethodGet, "/api/dashboard", ""); w.Code != http.StatusOK {
		t.Fatalf("prime dashboard: %d %s", w.Code, w.Body.String())
	}

	if w := doJSON(t, r, http.MethodPut, "/api/currency-rates", `{"code":"EUR","rate":4.1}`); w.Code != http.StatusOK {
		t.Fatalf("upsert: %d %s", w.Code, w.Body.String())
	}

	w := doJSON(t, r, http.MethodGet, "/api/dashboard", "")
	var summary DashboardSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Seeded USD plus the new EUR rate.
	if len(summary.CurrencyRates) != 2 {
		t.Errorf("currency rates = %v, want USD and EUR (stale dashboard served)", summary.CurrencyRates)
	}
}

func TestDashboardSummary(t *testing.T) {
	db := setupTestDB(t)
	authorID, clientID, supplierID := seedQuoteRefs(t, db)
	r := newTestRouter(db, storage.NewMemoryCache())

	for _, outcome := range []string{"WON", "PENDING"} {
		body := fmt.Sprintf(`{"date":"2024-03-15T00:00:00Z","currency":"AED","value":100,"outcome":%q,"author_id":%d,"client_id":%d}`, outcome, authorID, clientID)
		if w := doJSON(t, r, http.MethodPost, "/api/quotes", body); w.Code != http.StatusCreated {
			t.Fatalf("seed quote: %d %s", w.Code, w.Body.String())
		}
	}
	rfqBody := fmt.Sprintf(`{"date":"2024-04-02T00:00:00Z","author_id":%d,"supplier_id":%d}`, authorID, supplierID)
	if w := doJSON(t, r, http.MethodPost, "/api/rfqs", rfqBody); w.Code != http.StatusCreated {
		t.Fatalf("seed rfq: %d %s", w.Code, w.Body.String())
	}

	w := doJSON(t, r, http.MethodGet, "/api/dashboard", "")
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard: %d %s", w.Code, w.Body.String())
	}
	var summary DashboardSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Quotes.TotalQuotes != 2 {
		t.Errorf("total quotes = %d, want 2", summary.Quotes.TotalQuotes)
	}
	if summary.Quotes.ByOutcome["WON"] != 1 || summary.Quotes.ByOutcome["PENDING"] != 1 {
		t.Errorf("by outcome = %v", summary.Quotes.ByOutcome)
	}
	if summary.TotalRfqs != 1 {
		t.Errorf("total rfqs = %d, want 1", summary.TotalRfqs)
	}
	if summary.RfqsByStatus["SENT"] != 1 {
		t.Errorf("rfqs by status = %v", summary.RfqsByStatus)
	}
	if summary.TotalCompanies != 2 || summary.TotalPeople != 1 {
		t.Errorf("counts = companies:%d people:%d", summary.TotalCompanies, summary.TotalPeople)
	}
	if len(summary.CurrencyRates) != 1 {
		t.Errorf("currency rates = %v, want the seeded USD rate", summary.CurrencyRates)
	}
}
