package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/core"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/engine"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/export"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/format"
)

// maxBodyBytes bounds request bodies; transaction payloads are tiny.
const maxBodyBytes = 64 << 10

func filterFromQuery(r *http.Request) engine.Filter {
	q := r.URL.Query()
	return engine.Filter{
		Year:     q.Get("year"),
		Query:    q.Get("query"),
		Category: q.Get("category"),
		Date:     q.Get("date"),
	}
}

func decodeInput(r *http.Request) (core.TransactionInput, error) {
	var in core.TransactionInput
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		verr := &core.ValidationError{}
		verr.Add("body", "Request body must be a valid transaction object")
		return in, verr
	}
	return in, nil
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, core.Categories())
}

// handleListTransactions returns the filtered, sorted transactions.
// With group=month the response is the month-bucketed view instead,
// labeled in the language selected by the lang parameter.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	f := filterFromQuery(r)

	if r.URL.Query().Get("group") == "month" {
		prefs := format.DefaultPreferences()
		if lang := r.URL.Query().Get("lang"); lang != "" {
			prefs.Language = lang
		}
		groups, err := s.svc.GroupedByMonth(r.Context(), owner, f, prefs.MonthLabeler())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, groups)
		return
	}

	txs, err := s.svc.List(r.Context(), owner, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())

	in, err := decodeInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.svc.Create(r.Context(), owner, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.summaryCache.Delete(owner)
	writeData(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	id := r.PathValue("id")

	in, err := decodeInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.svc.Update(r.Context(), owner, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.summaryCache.Delete(owner)
	writeData(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())

	if err := s.svc.Delete(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}

	s.summaryCache.Delete(owner)
	writeJSON(w, http.StatusOK, apiResult{Success: true, Message: "Transaction deleted"})
}

func (s *Server) handleDeleteAllTransactions(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())

	removed, err := s.svc.DeleteAll(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.summaryCache.Delete(owner)
	writeData(w, http.StatusOK, map[string]int64{"deleted": removed})
}

// formattedTotals is the display block added to summary responses when
// a currency is requested.
type formattedTotals struct {
	TotalIncome  string `json:"totalIncome"`
	TotalExpense string `json:"totalExpense"`
	Balance      string `json:"balance"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())

	summary, cached := s.summaryCache.Get(owner)
	if !cached {
		var err error
		summary, err = s.svc.Summarize(r.Context(), owner)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.summaryCache.Set(owner, summary)
	}

	q := r.URL.Query()
	if cur := q.Get("currency"); cur != "" {
		prefs := format.DefaultPreferences()
		prefs.Currency = cur
		if lang := q.Get("lang"); lang != "" {
			prefs.Language = lang
		}
		privacy := q.Get("privacy") == "true"
		writeData(w, http.StatusOK, map[string]any{
			"summary": summary,
			"formatted": formattedTotals{
				TotalIncome:  prefs.FormatCurrency(summary.TotalIncome, privacy),
				TotalExpense: prefs.FormatCurrency(summary.TotalExpense, privacy),
				Balance:      prefs.FormatCurrency(summary.Balance, privacy),
			},
		})
		return
	}

	writeData(w, http.StatusOK, summary)
}

// handleExport streams the owner's filtered transactions as a CSV
// download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())

	txs, err := s.svc.List(r.Context(), owner, filterFromQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	if err := export.WriteCSV(w, txs); err != nil {
		// Headers are gone; nothing left to do but log.
		writeErrorLogOnly(r, err)
	}
}
