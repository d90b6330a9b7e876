// Package api exposes the ticker directory and company views over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bottomtick/factsboard/internal/facts"
	"github.com/bottomtick/factsboard/internal/filings"
	"github.com/bottomtick/factsboard/internal/store"
	"github.com/bottomtick/factsboard/internal/tickers"
	"github.com/bottomtick/factsboard/internal/xbrl"
)

// Updater refreshes the ticker directory from upstream.
type Updater interface {
	Update(ctx context.Context) (tickers.Directory, error)
}

// Options configures a Server.
type Options struct {
	Store       store.Store
	Loader      filings.Loader
	Updater     Updater
	Lists       xbrl.Lists
	Window      int
	CORSOrigins []string
	// Now anchors forward estimates; nil uses time.Now.
	Now func() time.Time
}

// Server serves the query API.
type Server struct {
	store   store.Store
	loader  filings.Loader
	updater Updater
	lists   xbrl.Lists
	window  int
	origins []string
	now     func() time.Time
}

// New creates a Server.
func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.Lists.Key) == 0 {
		opts.Lists = xbrl.DefaultLists()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{
		store:   opts.Store,
		loader:  opts.Loader,
		updater: opts.Updater,
		lists:   opts.Lists,
		window:  facts.ClampWindow(opts.Window),
		origins: opts.CORSOrigins,
		now:     opts.Now,
	}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/tickers", func(r chi.Router) {
		r.Get("/", s.handleListTickers)
		r.Post("/update", s.handleUpdateTickers)
		r.Get("/{symbol}", s.handleGetTicker)
	})
	return r
}

// directory reads the current directory from the store. It is not kept
// between requests so updates made by other processes are visible.
func (s *Server) directory(ctx context.Context) (tickers.Directory, error) {
	return s.store.LoadDirectory(ctx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Status  int    `json:"status,omitempty"`
}
