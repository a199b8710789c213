package chi

import (
	"net/http"

	generateuc "github.com/inkwell-ai/inkbase/internal/usecase/generate"
)

type generateRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Prompt   string `json:"prompt"`
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url"`
}

type toolSearchRequest struct {
	Query          string `json:"query"`
	NumResults     int    `json:"num_results"`
	APIKey         string `json:"api_key"`
	SearchEngineID string `json:"search_engine_id"`
}

type toolBooksRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	APIKey     string `json:"api_key"`
}

// handleGenerate handles POST /api/generate.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Prompt == "" {
		writeFailure(w, http.StatusBadRequest, "prompt is required")
		return
	}

	out, err := s.generate.Generate(r.Context(), generateuc.Input{
		Provider: req.Provider,
		Model:    req.Model,
		Prompt:   req.Prompt,
		APIKey:   req.APIKey,
		BaseURL:  req.BaseURL,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"provider": out.Provider,
		"model":    out.Model,
		"content":  out.Content,
		"cost":     out.Cost,
	})
}

// handleToolSearch handles POST /api/tools/search.
func (s *Server) handleToolSearch(w http.ResponseWriter, r *http.Request) {
	var req toolSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Query == "" {
		writeFailure(w, http.StatusBadRequest, "query is required")
		return
	}

	resp, err := s.webSearch.Search(r.Context(), req.APIKey, req.SearchEngineID, req.Query, req.NumResults)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"results":       resp.Results,
		"search_time":   resp.SearchTime,
		"total_results": resp.TotalResults,
	})
}

// handleToolBooks handles POST /api/tools/books.
func (s *Server) handleToolBooks(w http.ResponseWriter, r *http.Request) {
	var req toolBooksRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Query == "" {
		writeFailure(w, http.StatusBadRequest, "query is required")
		return
	}

	books, err := s.books.Search(r.Context(), req.APIKey, req.Query, req.MaxResults)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": books,
	})
}
