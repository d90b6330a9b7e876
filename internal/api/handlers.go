package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bottomtick/factsboard/internal/facts"
	"github.com/bottomtick/factsboard/internal/filings"
	"github.com/bottomtick/factsboard/internal/store"
	"github.com/bottomtick/factsboard/internal/tickers"
)

// Values of TickerResponse.FinancialData.
const (
	DataAvailable = "available"
	DataNotLoaded = "not_loaded"
)

// TickerResponse is the body of GET /tickers/{symbol}.
type TickerResponse struct {
	Ticker        string        `json:"ticker"`
	CIK           string        `json:"cik"`
	Title         string        `json:"title"`
	EntityName    string        `json:"entityName"`
	FinancialData string        `json:"financialData"`
	Facts         *FactsSummary `json:"facts,omitempty"`
	facts.View
}

// FactsSummary carries the latest document and entity information values.
type FactsSummary struct {
	DEI map[string]facts.DEIValue `json:"dei"`
}

// UpdateResponse is the body of a successful POST /tickers/update.
type UpdateResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTickers(w http.ResponseWriter, r *http.Request) {
	d, err := s.directory(r.Context())
	if err != nil {
		zap.L().Error("api: load directory", zap.Error(err))
		d = tickers.Directory{}
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleGetTicker(w http.ResponseWriter, r *http.Request) {
	ticker, view := tickers.ParseSymbol(chi.URLParam(r, "symbol"))
	q := r.URL.Query()
	if v := q.Get("view"); v != "" {
		view = facts.ParseView(v)
	}

	window := s.window
	if v := q.Get("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "window must be an integer"})
			return
		}
		window = facts.ClampWindow(n)
	}

	d, err := s.directory(r.Context())
	if err != nil {
		zap.L().Error("api: load directory", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Ticker directory unavailable"})
		return
	}
	entry, ok := d.Lookup(ticker)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("Ticker %s not found", ticker)})
		return
	}

	resp := TickerResponse{
		Ticker:        entry.Ticker,
		CIK:           entry.CIK,
		Title:         entry.Title,
		EntityName:    entry.Title,
		FinancialData: DataNotLoaded,
	}

	log := zap.L().With(zap.String("ticker", entry.Ticker), zap.String("cik", entry.CIK))
	doc, err := s.loader.Load(r.Context(), entry.CIK)
	switch {
	case errors.Is(err, filings.ErrNotFound):
		log.Warn("api: no filing document")
		doc = nil
	case err != nil:
		log.Error("api: load filing document", zap.Error(err))
		doc = nil
	default:
		resp.FinancialData = DataAvailable
		if doc.EntityName != "" {
			resp.EntityName = doc.EntityName
		}
		resp.Facts = &FactsSummary{DEI: facts.SummarizeDEI(doc, s.lists.DEI)}
	}

	resp.View = facts.BuildView(doc, view, facts.Options{
		Window: window,
		Lists:  s.lists,
		Now:    s.now(),
	})

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateTickers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	run := store.NewRun(store.RunKindTickerUpdate)

	d, err := s.updater.Update(ctx)
	run.Finish(len(d), 0, err)
	if rerr := s.store.RecordRun(ctx, run); rerr != nil {
		zap.L().Warn("api: record run", zap.String("run_id", run.ID), zap.Error(rerr))
	}

	if err != nil {
		var ue *tickers.UpstreamError
		if errors.As(err, &ue) {
			writeJSON(w, http.StatusBadGateway, errorResponse{
				Error:   "Failed to fetch ticker data from SEC",
				Details: ue.Message,
				Status:  ue.Status,
			})
			return
		}
		zap.L().Error("api: update tickers", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to update tickers",
			Details: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, UpdateResponse{
		Success: true,
		Count:   len(d),
		Message: fmt.Sprintf("Updated %d tickers", len(d)),
	})
}
