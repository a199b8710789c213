// Package chi is the HTTP transport. Domain failures travel as an
// HTTP 200 envelope with success=false, the contract the desktop
// frontend was built against; only malformed requests get a 4xx.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/inkwell-ai/inkbase/internal/domain"
	"github.com/inkwell-ai/inkbase/internal/transport/googleapi"
	chatuc "github.com/inkwell-ai/inkbase/internal/usecase/chat"
	generateuc "github.com/inkwell-ai/inkbase/internal/usecase/generate"
	healthuc "github.com/inkwell-ai/inkbase/internal/usecase/health"
	kbuc "github.com/inkwell-ai/inkbase/internal/usecase/kb"
	retrievaluc "github.com/inkwell-ai/inkbase/internal/usecase/retrieval"
)

// WebSearcher runs grounded web searches for the tools surface.
type WebSearcher interface {
	Search(ctx context.Context, apiKey, engineID, query string, num int) (googleapi.SearchResponse, error)
}

// BookSearcher looks up printed books for the tools surface.
type BookSearcher interface {
	Search(ctx context.Context, apiKey, query string, maxResults int) ([]googleapi.BookResult, error)
}

// Server implements the HTTP API.
type Server struct {
	kb        *kbuc.Service
	retrieval *retrievaluc.Service
	chat      *chatuc.Service
	generate  *generateuc.Service
	webSearch WebSearcher
	books     BookSearcher
	health    *healthuc.Service
	logger    *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	kb *kbuc.Service,
	retrieval *retrievaluc.Service,
	chat *chatuc.Service,
	generate *generateuc.Service,
	webSearch WebSearcher,
	books BookSearcher,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		kb:        kb,
		retrieval: retrieval,
		chat:      chat,
		generate:  generate,
		webSearch: webSearch,
		books:     books,
		health:    health,
		logger:    logger,
	}
}

// Routes registers every handler on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)

		r.Route("/kb", func(r chi.Router) {
			r.Post("/add", s.handleKBAdd)
			r.Post("/add-research", s.handleKBAddResearch)
			r.Post("/add-report", s.handleKBAddReport)
			r.Post("/query", s.handleKBQuery)
			r.Get("/documents", s.handleKBDocuments)
			r.Delete("/document/{id}", s.handleKBDeleteDocument)
			r.Delete("/clear", s.handleKBClear)
			r.Get("/stats", s.handleKBStats)
			r.Post("/chat", s.handleKBChat)
		})

		r.Route("/tools", func(r chi.Router) {
			r.Post("/search", s.handleToolSearch)
			r.Post("/books", s.handleToolBooks)
		})
	})
}

// handleRoot handles GET /.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Hello from Inkbase Backend (Gemini)",
	})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// handleMetrics handles GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeFailure writes a success=false envelope.
func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}

// decodeJSON decodes the request body into v. On failure it writes a
// 400 envelope and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// clientSentinels are the errors whose full message is safe to show.
var clientSentinels = []error{
	domain.ErrMissingCredential,
	domain.ErrUpstream,
	domain.ErrStore,
	domain.ErrUnknownProvider,
	domain.ErrNotFound,
}

// errMessage returns the client-facing message for a domain error.
func errMessage(err error) string {
	for _, sentinel := range clientSentinels {
		if errors.Is(err, sentinel) {
			return err.Error()
		}
	}
	return "internal error"
}

// handleDomainError reports a domain failure inside a 200 envelope.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	writeFailure(w, http.StatusOK, errMessage(err))
}
