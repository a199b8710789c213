package chi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	kbuc "github.com/inkwell-ai/inkbase/internal/usecase/kb"
)

const (
	msgDocumentAdded  = "Document added successfully"
	msgDocumentExists = "Document already exists"
)

type kbAddRequest struct {
	Content  string         `json:"content"`
	Source   string         `json:"source"`
	Title    string         `json:"title"`
	DocType  string         `json:"doc_type"`
	Metadata map[string]any `json:"metadata"`
	APIKey   string         `json:"api_key"`
}

type kbAddResearchRequest struct {
	Topic      string `json:"topic"`
	Subtopic   string `json:"subtopic"`
	Findings   string `json:"findings"`
	ResearchID string `json:"research_id"`
	APIKey     string `json:"api_key"`
}

type kbAddReportRequest struct {
	Topic      string `json:"topic"`
	Report     string `json:"report"`
	ResearchID string `json:"research_id"`
	APIKey     string `json:"api_key"`
}

type kbQueryRequest struct {
	Query    string `json:"query"`
	NResults int    `json:"n_results"`
	DocType  string `json:"doc_type"`
	APIKey   string `json:"api_key"`
}

type kbChatRequest struct {
	Message  string `json:"message"`
	NContext int    `json:"n_context"`
	APIKey   string `json:"api_key"`
}

type kbAddResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Updated bool   `json:"updated"`
}

type kbQueryResultItem struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	Distance  float64        `json:"distance"`
	Relevance float64        `json:"relevance"`
}

type kbDocumentItem struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// handleKBAdd handles POST /api/kb/add.
func (s *Server) handleKBAdd(w http.ResponseWriter, r *http.Request) {
	var req kbAddRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == "" || req.Source == "" {
		writeFailure(w, http.StatusBadRequest, "content and source are required")
		return
	}

	res, err := s.kb.Ingest(r.Context(), req.APIKey, kbuc.IngestInput{
		Content:  req.Content,
		Source:   req.Source,
		Title:    req.Title,
		DocType:  req.DocType,
		Metadata: req.Metadata,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestToResponse(res))
}

// handleKBAddResearch handles POST /api/kb/add-research.
func (s *Server) handleKBAddResearch(w http.ResponseWriter, r *http.Request) {
	var req kbAddResearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Findings == "" || req.ResearchID == "" {
		writeFailure(w, http.StatusBadRequest, "findings and research_id are required")
		return
	}

	res, err := s.kb.IngestFinding(r.Context(), req.APIKey, req.Topic, req.Subtopic, req.Findings, req.ResearchID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestToResponse(res))
}

// handleKBAddReport handles POST /api/kb/add-report.
func (s *Server) handleKBAddReport(w http.ResponseWriter, r *http.Request) {
	var req kbAddReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Report == "" || req.ResearchID == "" {
		writeFailure(w, http.StatusBadRequest, "report and research_id are required")
		return
	}

	res, err := s.kb.IngestReport(r.Context(), req.APIKey, req.Topic, req.Report, req.ResearchID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestToResponse(res))
}

// handleKBQuery handles POST /api/kb/query.
func (s *Server) handleKBQuery(w http.ResponseWriter, r *http.Request) {
	var req kbQueryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Query == "" {
		writeFailure(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := s.retrieval.Search(r.Context(), req.APIKey, req.Query, req.NResults, req.DocType)
	if err != nil {
		s.logger.Warn("domain error", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   errMessage(err),
			"results": []kbQueryResultItem{},
		})
		return
	}

	items := make([]kbQueryResultItem, 0, len(results))
	for _, res := range results {
		items = append(items, kbQueryResultItem{
			ID:        res.ID,
			Content:   res.Content,
			Metadata:  res.Metadata,
			Distance:  res.Distance,
			Relevance: res.Relevance,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": items,
		"query":   req.Query,
		"count":   len(items),
	})
}

// handleKBDocuments handles GET /api/kb/documents.
func (s *Server) handleKBDocuments(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	docs, err := s.kb.Documents(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]kbDocumentItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, kbDocumentItem{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: doc.Metadata,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"documents": items,
		"count":     len(items),
	})
}

// handleKBDeleteDocument handles DELETE /api/kb/document/{id}.
func (s *Server) handleKBDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.kb.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      id,
	})
}

// handleKBClear handles DELETE /api/kb/clear.
func (s *Server) handleKBClear(w http.ResponseWriter, r *http.Request) {
	if err := s.kb.Clear(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Knowledge base cleared",
	})
}

// handleKBStats handles GET /api/kb/stats.
func (s *Server) handleKBStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.kb.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"total_documents":   stats.TotalDocuments,
		"persist_directory": stats.PersistDirectory,
	})
}

// handleKBChat handles POST /api/kb/chat.
func (s *Server) handleKBChat(w http.ResponseWriter, r *http.Request) {
	var req kbChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Message == "" {
		writeFailure(w, http.StatusBadRequest, "message is required")
		return
	}

	res, err := s.chat.Chat(r.Context(), req.APIKey, req.Message, req.NContext)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"response":     res.Response,
		"context_used": res.ContextUsed,
		"sources":      res.Sources,
	})
}

func ingestToResponse(res kbuc.IngestResult) kbAddResponse {
	msg := msgDocumentAdded
	if res.AlreadyExisted {
		msg = msgDocumentExists
	}
	return kbAddResponse{
		Success: true,
		ID:      res.ID,
		Message: msg,
		Updated: !res.AlreadyExisted,
	}
}
