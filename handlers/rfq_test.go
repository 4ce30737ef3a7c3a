package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"argocrm/models"
	"argocrm/storage"
)

func TestCreateRfqStartsSent(t *testing.T) {
	db := setupTestDB(t)
	authorID, _, supplierID := seedQuoteRefs(t, db)
	r := newTestRouter(db, storage.NewMemoryCache())

	body := fmt.Sprintf(`{"date":"2024-04-02T00:00:00Z","author_id":%d,"supplier_id":%d}`, authorID, supplierID)
	w := doJSON(t, r, http.MethodPost, "/api/rfqs", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var rfq models.RfqGorm
	if err := json.Unmarshal(w.Body.Bytes(), &rfq); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rfq.Status != models.RfqStatusSent {
		t.Errorf("status = %q, want SENT", rfq.Status)
	}
	if rfq.ReferenceNumber != "ARGO-R001-04-2024" {
		t.Errorf("reference number = %q, want ARGO-R001-04-2024", rfq.ReferenceNumber)
	}
	if rfq.ReceivedDate != nil || rfq.ReceivedValue != nil {
		t.Error("receipt fields must be empty on a fresh RFQ")
	}
}

func TestReceiveRfqFlow(t *testing.T) {
	db := setupTestDB(t)
	authorID, _, supplierID := seedQuoteRefs(t, db)
	r := newTestRouter(db, storage.NewMemoryCache())

	body := fmt.Sprintf(`{"date":"2024-04-02T00:00:00Z","author_id":%d,"supplier_id":%d}`, authorID, supplierID)
	w := doJSON(t, r, http.MethodPost, "/api/rfqs", body)
	var rfq models.RfqGorm
	json.Unmarshal(w.Body.Bytes(), &rfq)

	receive := `{"received_date":"2024-04-20T00:00:00Z","received_value":98000,"received_currency":"AED"}`
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/rfqs/%d/receive", rfq.ID), receive)
	if w.Code != http.StatusOK {
		t.Fatalf("receive: %d %s", w.Code, w.Body.String())
	}
	json.Unmarshal(w.Body.Bytes(), &rfq)
	if rfq.Status != models.RfqStatusReceived {
		t.Errorf("status = %q, want RECEIVED", rfq.Status)
	}
	if rfq.ReceivedValue == nil || *rfq.ReceivedValue != 98000 {
		t.Errorf("received value = %v, want 98000", rfq.ReceivedValue)
	}
	if rfq.ReceivedCurrency == nil || *rfq.ReceivedCurrency != "AED" {
		t.Errorf("received currency = %v, want AED", rfq.ReceivedCurrency)
	}

	// Receiving twice is a conflict, not an overwrite.
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/rfqs/%d/receive", rfq.ID), receive)
	if w.Code != http.StatusConflict {
		t.Errorf("second receive: expected 409, got %d", w.Code)
	}
}

func TestReceiveRfqValidation(t *testing.T) {
	db := setupTestDB(t)
	authorID, _, _ := seedQuoteRefs(t, db)
	r := newTestRouter(db, storage.NewMemoryCache())

	body := fmt.Sprintf(`{"date":"2024-04-02T00:00:00Z","author_id":%d}`, authorID)
	w := doJSON(t, r, http.MethodPost, "/api/rfqs", body)
	var rfq models.RfqGorm
	json.Unmarshal(w.Body.Bytes(), &rfq)

	// Missing receipt fields.
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/rfqs/%d/receive", rfq.ID), `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty receipt, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/rfqs/9999/receive", `{"received_date":"2024-04-20T00:00:00Z","received_value":1,"received_currency":"AED"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown RFQ, got %d", w.Code)
	}
}

func TestQuoteRfqLinkFilters(t *testing.T) {
	db := setupTestDB(t)
	authorID, clientID, supplierID := seedQuoteRefs(t, db)
	r := newTestRouter(db, storage.NewMemoryCache())

	// Two quotes; only the first gets a linked RFQ.
	quoteBody := fmt.Sprintf(`{"date":"2024-03-15T00:00:00Z","currency":"AED","value":100,"author_id":%d,"client_id":%d}`, authorID, clientID)
	w := doJSON(t, r, http.MethodPost, "/api/quotes", quoteBody)
	var linked models.QuoteGorm
	json.Unmarshal(w.Body.Bytes(), &linked)
	w = doJSON(t, r, http.MethodPost, "/api/quotes", quoteBody)
	var unlinked models.QuoteGorm
	json.Unmarshal(w.Body.Bytes(), &unlinked)

	rfqBody := fmt.Sprintf(`{"date":"2024-04-02T00:00:00Z","author_id":%d,"supplier_id":%d,"quote_id":%d}`, authorID, supplierID, linked.ID)
	w = doJSON(t, r, http.MethodPost, "/api/rfqs", rfqBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("seed rfq: %d %s", w.Code, w.Body.String())
	}
	var rfq models.RfqGorm
	json.Unmarshal(w.Body.Bytes(), &rfq)

	// quotes?rfq=null returns only the quote with no linked RFQ.
	w = doJSON(t, r, http.MethodGet, "/api/quotes?rfq=null", "")
	var quotes models.QuoteListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &quotes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(quotes.Data) != 1 || quotes.Data[0].ID != unlinked.ID {
		t.Errorf("rfq=null returned %d rows, want just quote %d", len(quotes.Data), unlinked.ID)
	}

	// quotes?rfq=<id> resolves through the RFQ's quote link.
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/quotes?rfq=%d", rfq.ID), "")
	json.Unmarshal(w.Body.Bytes(), &quotes)
	if len(quotes.Data) != 1 || quotes.Data[0].ID != linked.ID {
		t.Errorf("rfq=%d returned %d rows, want just quote %d", rfq.ID, len(quotes.Data), linked.ID)
	}

	// rfqs?quote=null selects RFQs with no quote link.
	w = doJSON(t, r, http.MethodGet, "/api/rfqs?quote=null", "")
	var rfqs models.RfqListResponse
	json.Unmarshal(w.Body.Bytes(), &rfqs)
	if len(rfqs.Data) != 0 {
		t.Errorf("quote=null returned %d rows, want 0", len(rfqs.Data))
	}
}
