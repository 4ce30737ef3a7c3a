package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"argocrm/models"
	"argocrm/storage"
)

func TestCreateQuoteComputesServerFields(t *testing.T) {
	db := setupTestDB(t)
	authorID, clientID, _ := seedQuoteRefs(t, db)
	r := newTestRouter(db, storage.NewMemoryCache())

	body := fmt.Sprintf(`{"date":"2024-03-15T00:00:00Z","currency":"USD","value":125000.50,"author_id":%d,"client_id":%d}`, authorID, clientID)
	w := doJSON(t, r, http.MethodPost, "/api/quotes", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var quote models.QuoteGorm
	if err := json.Unmarshal(w.Body.Bytes(), &quote); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if quote.ReferenceNumber != "ARGO-Q001-03-2024" {
		t.Errorf("reference number = %q, want ARGO-Q001-03-2024", quote.ReferenceNumber)
	}
	if quote.FxRate != 3.6725 {
		t.Errorf("fx rate = %v, want the seeded USD rate", quote.FxRate)
	}
	if quote.Outcome != models.QuoteOutcomePending {
		t.Errorf("outcome = %q, want PENDING default", quote.Outcome)
	}

	// Second create in the same month picks the next serial.
	w = doJSON(t, r, http.MethodPost, "/api/quotes", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("second create: expected 201, got %d", w.Code)
	}
	json.Unmarshal(w.Body.Bytes(), &quote)
	if quote.ReferenceNumber != "ARGO-Q002-03-2024" {
		t.Errorf("second reference number = %q, want ARGO-Q002-03-2024", quote.ReferenceNumber)
	}
}

func TestCreateQuoteBaseCurrencySkipsRateLookup(t *testing.T) {
	db := setupTestDB(t)
	authorID, _, _ := seedQuoteRefs(t, db)
	r := newTestRouter(db, storage.NewMemoryCache())

	// AED never needs a configured rate.
	body := fmt.Sprintf(`{"date":"2024-03-15T00:00:00Z","currency":"AED","value":5000,"author_id":%d}`, authorID)
	w := doJSON(t, r, http.MethodPost, "/api/quotes", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var quote models.QuoteGorm
	json.Unmarshal(w.Body.Bytes(), &quote)
	if quote.FxRate != 1 {
		t.Errorf("AED fx rate = %v, want 1", quote.FxRate)
	}
}

func TestCreateQuoteUnknownCurrency(t *testing.T) {
	db := setupTestDB(t)
	authorID, _, _ := seedQuoteRefs(t, db)
	r := newTestRouter(db, storage.NewMemoryCache())

	body := fmt.Sprintf(`{"date":"2024-03-15T00:00:00Z","currency":"JPY","value":5000,"author_id":%d}`, authorID)
	w := doJSON(t, r, http.MethodPost, "/api/quotes", body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	var resp models.FieldErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Errors["currency"]) == 0 {
		t.Errorf("expected currency field error, got %v", resp.Errors)
	}
}

func TestCreateQuoteInvalidOutcome(t *testing.T) {
	db := setupTestDB(t)
	authorID, _, _ := seedQuoteRefs(t, db)
	r := newTestRouter(db, storage.NewMemoryCache())

	body := fmt.Sprintf(`{"date":"2024-03-15T00:00:00Z","currency":"AED","value":5000,"outcome":"MAYBE","author_id":%d}`, authorID)
	w := doJSON(t, r, http.MethodPost, "/api/quotes", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad outcome, got %d", w.Code)
	}
}

func TestListQuotesFilterAndSort(t *testing.T) {
	db := setupTestDB(t)
	authorID, clientID, _ := seedQuoteRefs(t, db)
	r := newTestRouter(db, storage.NewMemoryCache())

	for i, spec := range []struct {
		currency string
		value    float64
	}{
		{"USD", 100}, {"AED", 900}, {"USD", 300}, {"USD", 200},
	} {
		body := fmt.Sprintf(`{"date":"2024-03-%02dT00:00:00Z","currency":%q,"value":%v,"author_id":%d,"client_id":%d}`,
			i+1, spec.currency, spec.value, authorID, clientID)
		if w := doJSON(t, r, http.MethodPost, "/api/quotes", body); w.Code != http.StatusCreated {
			t.Fatalf("seed quote %d: %d %s", i, w.Code, w.Body.String())
		}
	}

	w := doJSON(t, r, http.MethodGet, "/api/quotes?currency=USD&sort=value:desc", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.QuoteListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Pagination.Total != 3 {
		t.Errorf("total = %d, want 3 USD quotes", resp.Pagination.Total)
	}
	if len(resp.Data) != 3 {
		t.Fatalf("rows = %d, want 3", len(resp.Data))
	}
	values := make([]float64, len(resp.Data))
	for i, q := range resp.Data {
		values[i] = q.Value
	}
	want := []float64{300, 200, 100}
	for i := range want {
		if values[i] != want[i] {
			t.Fatalf("values = %v, want %v", values, want)
		}
	}
}

func TestListQuotesDefaultSort(t *testing.T) {
	db := setupTestDB(t)
	authorID, clientID, _ := seedQuoteRefs(t, db)
	r := newTestRouter(db, storage.NewMemoryCache())

	for day := 1; day <= 2; day++ {
		body := fmt.Sprintf(`{"date":"2024-03-%02dT00:00:00Z","currency":"AED","value":%d,"author_id":%d,"client_id":%d}`,
			day, day*10, authorID, clientID)
		if w := doJSON(t, r, http.MethodPost, "/api/quotes", body); w.Code != http.StatusCreated {
			t.Fatalf("seed quote %d: %d %s", day, w.Code, w.Body.String())
		}
	}

	// No sort parameter: the fallback ordering must stay table-qualified,
	// since the base query joins companies which carry their own created_at.
	w := doJSON(t, r, http.MethodGet, "/api/quotes", "")
	if w.Code != http.StatusOK {
		t.Fatalf("plain list: %d %s", w.Code, w.Body.String())
	}
	var resp models.QuoteListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Pagination.Total != 2 || len(resp.Data) != 2 {
		t.Errorf("total = %d rows = %d, want 2/2", resp.Pagination.Total, len(resp.Data))
	}

	// Unrecognized sort columns take the same fallback.
	w = doJSON(t, r, http.MethodGet, "/api/quotes?sort=bogus:asc", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unknown sort column list: %d %s", w.Code, w.Body.String())
	}
}

func TestListQuotesServedFromCache(t *testing.T) {
	db := setupTestDB(t)
	authorID, clientID, _ := seedQuoteRefs(t, db)
	cache := storage.NewMemoryCache()
	r := newTestRouter(db, cache)

	body := fmt.Sprintf(`{"date":"2024-03-15T00:00:00Z","currency":"AED","value":50,"author_id":%d,"client_id":%d}`, authorID, clientID)
	if w := doJSON(t, r, http.MethodPost, "/api/quotes", body); w.Code != http.StatusCreated {
		t.Fatalf("seed: %d", w.Code)
	}

	first := doJSON(t, r, http.MethodGet, "/api/quotes", "")
	if first.Code != http.StatusOK {
		t.Fatalf("first list: %d", first.Code)
	}

	// Bypass the API so the cached entry goes stale; an identical second
	// read must come from the cache, not the database.
	if err := db.Model(&models.QuoteGorm{}).Where("1 = 1").Update("value", 9999).Error; err != nil {
		t.Fatalf("raw update: %v", err)
	}
	second := doJSON(t, r, http.MethodGet, "/api/quotes", "")
	if second.Body.String() != first.Body.String() {
		t.Error("second read should be served from cache")
	}
}

func TestUpdateQuotePreservesReferenceAndSnapshots(t *testing.T) {
	db := setupTestDB(t)
	authorID, clientID, _ := seedQuoteRefs(t, db)
	r := newTestRouter(db, storage.NewMemoryCache())

	body := fmt.Sprintf(`{"date":"2024-03-15T00:00:00Z","currency":"USD","value":1000,"author_id":%d,"client_id":%d}`, authorID, clientID)
	w := doJSON(t, r, http.MethodPost, "/api/quotes", body)
	var created models.QuoteGorm
	json.Unmarshal(w.Body.Bytes(), &created)

	// Same currency: the stored snapshot must survive a later rate change.
	if err := db.Model(&models.CurrencyRateGorm{}).Where("code = ?", "USD").Update("rate", 4.0).Error; err != nil {
		t.Fatalf("update rate: %v", err)
	}
	update := fmt.Sprintf(`{"date":"2024-03-15T00:00:00Z","currency":"USD","value":2000,"outcome":"WON","author_id":%d,"client_id":%d}`, authorID, clientID)
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/quotes/%d", created.ID), update)
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	var updated models.QuoteGorm
	json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.ReferenceNumber != created.ReferenceNumber {
		t.Errorf("reference number changed on update: %q -> %q", created.ReferenceNumber, updated.ReferenceNumber)
	}
	if updated.FxRate != 3.6725 {
		t.Errorf("fx rate re-snapshotted without a currency change: %v", updated.FxRate)
	}
	if updated.Outcome != models.QuoteOutcomeWon {
		t.Errorf("outcome = %q, want WON", updated.Outcome)
	}

	// Currency change: the snapshot is retaken at the current rate.
	update = fmt.Sprintf(`{"date":"2024-03-15T00:00:00Z","currency":"AED","value":2000,"author_id":%d,"client_id":%d}`, authorID, clientID)
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/quotes/%d", created.ID), update)
	if w.Code != http.StatusOK {
		t.Fatalf("currency change update: %d %s", w.Code, w.Body.String())
	}
	json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.FxRate != 1 {
		t.Errorf("fx rate after switch to AED = %v, want 1", updated.FxRate)
	}
}

func TestDeleteQuote(t *testing.T) {
	db := setupTestDB(t)
	authorID, _, _ := seedQuoteRefs(t, db)
	r := newTestRouter(db, storage.NewMemoryCache())

	body := fmt.Sprintf(`{"date":"2024-03-15T00:00:00Z","currency":"AED","value":10,"author_id":%d}`, authorID)
	w := doJSON(t, r, http.MethodPost, "/api/quotes", body)
	var quote models.QuoteGorm
	json.Unmarshal(w.Body.Bytes(), &quote)

	if w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/quotes/%d", quote.ID), ""); w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/quotes/%d", quote.ID), ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", w.Code)
	}
}

func TestQuoteMetadataIgnoresOutcomeFilter(t *testing.T) {
	db := setupTestDB(t)
	authorID, clientID, _ := seedQuoteRefs(t, db)
	r := newTestRouter(db, storage.NewMemoryCache())

	for _, spec := range []struct {
		outcome string
		value   float64
	}{
		{"WON", 100}, {"WON", 200}, {"LOST", 50}, {"PENDING", 25},
	} {
		body := fmt.Sprintf(`{"date":"2024-03-15T00:00:00Z","currency":"AED","value":%v,"outcome":%q,"author_id":%d,"client_id":%d}`,
			spec.value, spec.outcome, authorID, clientID)
		if w := doJSON(t, r, http.MethodPost, "/api/quotes", body); w.Code != http.StatusCreated {
			t.Fatalf("seed: %d %s", w.Code, w.Body.String())
		}
	}

	// The outcome filter is stripped so the breakdown sums to the total.
	w := doJSON(t, r, http.MethodGet, "/api/quotes/metadata?outcome=WON", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metadata: %d %s", w.Code, w.Body.String())
	}
	var meta models.QuoteMetadata
	if err := json.Unmarshal(w.Body.Bytes(), &meta); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta.TotalQuotes != 4 {
		t.Errorf("total = %d, want 4", meta.TotalQuotes)
	}
	if meta.ByOutcome["WON"] != 2 || meta.ByOutcome["LOST"] != 1 || meta.ByOutcome["PENDING"] != 1 {
		t.Errorf("by outcome = %v", meta.ByOutcome)
	}
	var sum int64
	for _, n := range meta.ByOutcome {
		sum += n
	}
	if sum != meta.TotalQuotes {
		t.Errorf("breakdown sums to %d, total is %d", sum, meta.TotalQuotes)
	}
	if meta.TotalValue != 375 {
		t.Errorf("total value = %v, want 375 (all AED at rate 1)", meta.TotalValue)
	}
}
