// Package server exposes the assistant over HTTP: a REST API for
// conversations, paper trading, research bundles, and the watchlist,
// plus a websocket chat endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/citadelhq/citadel-go/core"
	"github.com/citadelhq/citadel-go/dispatch"
	"github.com/citadelhq/citadel-go/engine"
	"github.com/citadelhq/citadel-go/paper"
	"github.com/citadelhq/citadel-go/store"
)

// ChatEngine runs one agent turn.
type ChatEngine interface {
	Run(ctx context.Context, in *engine.Input) (*engine.Output, error)
}

// Config configures the server.
type Config struct {
	// SystemPrompt is the system prompt used for chat turns.
	SystemPrompt string

	// CORSOrigins lists allowed browser origins. Empty allows all.
	CORSOrigins []string
}

// Server wires the HTTP surface to the engine, ledger, and store.
type Server struct {
	cfg        Config
	engine     ChatEngine
	registry   *engine.ToolRegistry
	dispatcher *dispatch.Dispatcher
	ledger     *paper.Ledger
	store      *store.Store
	upgrader   websocket.Upgrader
	log        zerolog.Logger
}

// New creates the server.
func New(cfg Config, eng ChatEngine, registry *engine.ToolRegistry, dispatcher *dispatch.Dispatcher, ledger *paper.Ledger, st *store.Store, log zerolog.Logger) *Server {
	return &Server{
		cfg:        cfg,
		engine:     eng,
		registry:   registry,
		dispatcher: dispatcher,
		ledger:     ledger,
		store:      st,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log.With().Str("component", "server").Logger(),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)

		r.Get("/tools", s.handleListTools)
		r.Post("/invoke", s.handleInvokeTool)

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", s.handleListConversations)
			r.Post("/", s.handleCreateConversation)
			r.Get("/{id}", s.handleGetConversation)
			r.Delete("/{id}", s.handleDeleteConversation)
		})

		r.Route("/paper", func(r chi.Router) {
			r.Get("/portfolios", s.handleListPortfolios)
			r.Post("/portfolios", s.handleCreatePortfolio)
			r.Get("/portfolios/{id}/summary", s.handlePortfolioSummary)
			r.Get("/portfolios/{id}/positions", s.handlePositions)
			r.Get("/portfolios/{id}/trades", s.handleTrades)
			r.Get("/portfolios/{id}/proposals", s.handleProposals)
			r.Post("/portfolios/{id}/cash", s.handleAddCash)
			r.Post("/proposals", s.handlePropose)
			r.Post("/proposals/{id}/approve", s.handleApprove)
			r.Post("/proposals/{id}/reject", s.handleReject)
		})

		r.Route("/research", func(r chi.Router) {
			r.Get("/", s.handleListResearch)
			r.Get("/{ticker}", s.handleLatestResearch)
		})

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", s.handleWatchlist)
			r.Post("/", s.handleWatchlistAdd)
			r.Delete("/{symbol}", s.handleWatchlistRemove)
		})
	})

	return r
}

// Run serves the router on addr.
func (s *Server) Run(addr string) error {
	s.log.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, s.Router())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps taxonomy errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var validation *core.ValidationError
	var notFound *core.NotFoundError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validation.Error()})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound.Error()})
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &core.ValidationError{Tool: "api", Fields: []string{"body"}, Reason: "invalid JSON"}
	}
	return nil
}
