package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/config"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/services"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/storage/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Load()
	cfg.AuthTokens = "secret-token:alice,other-token:bob"

	svc := services.NewTransactionService(memory.NewStore(), nil)
	srv, err := NewServer(cfg, svc)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() {
		srv.cacheManager.Stop()
		srv.limiter.Stop()
	})
	return srv
}

func doRequest(t *testing.T, srv *Server, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) apiResult {
	t.Helper()

	var res apiResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return res
}

const validTx = `{"title":"Groceries","amount":"42.50","type":"expense","category":"Food","date":"2025-03-10"}`

func TestCreateAndListTransactions(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/transactions", "secret-token", validTx)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	res := decodeResult(t, rec)
	if !res.Success {
		t.Fatal("expected success")
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/transactions?year=2025", "secret-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Groceries") {
		t.Fatalf("list body missing transaction: %s", rec.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/transactions", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no credentials status = %d, want 401", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/transactions", "wrong-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown token status = %d, want 401", rec.Code)
	}
}

func TestValidationErrorsAreFieldKeyed(t *testing.T) {
	srv := newTestServer(t)

	body := `{"title":"","amount":"-5","type":"loan","category":"Food","date":"2025-03-10"}`
	rec := doRequest(t, srv, http.MethodPost, "/api/transactions", "secret-token", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	res := decodeResult(t, rec)
	for _, field := range []string{"title", "amount", "type"} {
		if len(res.Errors[field]) == 0 {
			t.Errorf("expected error for field %q, got %v", field, res.Errors)
		}
	}
}

func TestMalformedBodyRejected(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/transactions", "secret-token", "{not json")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestUpdateNotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPut, "/api/transactions/nope", "secret-token", validTx)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestOwnersAreIsolated(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/transactions", "secret-token", validTx)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/transactions?year=2025", "other-token", "")
	if strings.Contains(rec.Body.String(), "Groceries") {
		t.Fatal("bob can see alice's transaction")
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/transactions", "secret-token", validTx)
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding created: %v", err)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/transactions/"+created.Data.ID, "secret-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	// Deleting again is an error, not a no-op.
	rec = doRequest(t, srv, http.MethodDelete, "/api/transactions/"+created.Data.ID, "secret-token", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestDeleteAllAlwaysSucceeds(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodDelete, "/api/transactions", "secret-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete-all on empty store status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"deleted":0`) {
		t.Fatalf("body = %s, want deleted count 0", rec.Body.String())
	}
}

func TestSummaryUsesCache(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/transactions", "secret-token", validTx)

	rec := doRequest(t, srv, http.MethodGet, "/api/summary", "secret-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	first := rec.Body.String()

	if _, ok := srv.summaryCache.Get("alice"); !ok {
		t.Fatal("expected summary to be cached for alice")
	}

	// A mutation must invalidate the cached summary.
	income := `{"title":"Pay","amount":"100","type":"income","category":"Salary","date":"2025-03-01"}`
	doRequest(t, srv, http.MethodPost, "/api/transactions", "secret-token", income)

	rec = doRequest(t, srv, http.MethodGet, "/api/summary", "secret-token", "")
	if rec.Body.String() == first {
		t.Fatal("summary did not change after mutation")
	}
}

func TestSummaryWithCurrencyFormatting(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/transactions", "secret-token", validTx)

	rec := doRequest(t, srv, http.MethodGet, "/api/summary?currency=USD", "secret-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"formatted"`) {
		t.Fatalf("missing formatted block: %s", rec.Body.String())
	}

	// Privacy mode masks every figure.
	rec = doRequest(t, srv, http.MethodGet, "/api/summary?currency=USD&privacy=true", "secret-token", "")
	if !strings.Contains(rec.Body.String(), "••••••") {
		t.Fatalf("privacy mode did not mask totals: %s", rec.Body.String())
	}
}

func TestGroupedByMonth(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/transactions", "secret-token", validTx)

	rec := doRequest(t, srv, http.MethodGet, "/api/transactions?year=2025&group=month", "secret-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("grouped status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "March 2025") {
		t.Fatalf("grouped body missing month label: %s", rec.Body.String())
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/transactions", "secret-token", validTx)

	rec := doRequest(t, srv, http.MethodGet, "/api/transactions/export?year=2025", "secret-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "transactions.csv") {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "\ufeff") {
		t.Fatal("export body missing BOM")
	}
	if !strings.Contains(body, "sep=,") {
		t.Fatal("export body missing separator preamble")
	}
	if !strings.Contains(body, `"Groceries"`) {
		t.Fatalf("export body missing row: %s", body)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(t, srv, http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestRateLimitMutations(t *testing.T) {
	cfg := config.Load()
	cfg.AuthTokens = "secret-token:alice"
	cfg.RateLimitPerMinute = 2
	svc := services.NewTransactionService(memory.NewStore(), nil)
	limited, err := NewServer(cfg, svc)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() {
		limited.cacheManager.Stop()
		limited.limiter.Stop()
	})

	var last int
	for i := 0; i < 3; i++ {
		rec := doRequest(t, limited, http.MethodPost, "/api/transactions", "secret-token", validTx)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("third mutation status = %d, want 429", last)
	}
}
