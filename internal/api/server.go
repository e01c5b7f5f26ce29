package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jihoonbyun/loandraft/internal/config"
	"github.com/jihoonbyun/loandraft/internal/llm"
	"github.com/jihoonbyun/loandraft/internal/pipeline"
	"github.com/jihoonbyun/loandraft/internal/store"
)

// Server is the HTTP API server for loandraft.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	llm          *llm.Client
	st           *store.Store
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, client *llm.Client, st *store.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		llm:          client,
		st:           st,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		// Reference agreements.
		r.Post("/api/agreements", s.handleUploadAgreement)
		r.Get("/api/agreements", s.handleListAgreements)
		r.Get("/api/agreements/{agreementID}", s.handleGetAgreement)
		r.Delete("/api/agreements/{agreementID}", s.handleDeleteAgreement)
		r.Get("/api/agreements/{agreementID}/articles", s.handleGetArticles)
		r.Get("/api/articles/{articleID}", s.handleGetArticle)
		r.Get("/api/search/articles", s.handleSearchArticles)
		r.Get("/api/search/clauses", s.handleSearchClauses)

		// Drafting.
		r.Post("/api/prompt", s.handleBuildPrompt)
		r.Post("/api/generated", s.handleCreateGenerated)
		r.Get("/api/generated", s.handleListGenerated)
		r.Get("/api/generated/{agreementID}", s.handleGetGenerated)
		r.Delete("/api/generated/{agreementID}", s.handleDeleteGenerated)
		r.Get("/api/generated/{agreementID}/articles", s.handleGetGeneratedArticles)
		r.Post("/api/generated/{agreementID}/articles", s.handleGenerateArticle)
		r.Put("/api/generated/clauses/{clauseID}", s.handleUpdateGeneratedClause)
		r.Get("/api/generate/{jobID}/status", s.handleGenerateStatus)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
