package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/xzayogn/jobchat/internal/aggregator"
	"github.com/xzayogn/jobchat/internal/logger"
	"github.com/xzayogn/jobchat/internal/memory"
	"github.com/xzayogn/jobchat/internal/workflow"
	"go.uber.org/zap"
)

type searchRequest struct {
	Query     string `json:"query"`
	PageSize  int    `json:"pagesize"`
	SessionID string `json:"session_id"`
}

type searchResponse struct {
	SessionID   string            `json:"session_id"`
	Response    workflow.Response `json:"response"`
	ChatHistory []memory.Message  `json:"chat_history"`
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, map[string]string{
		"message": "Welcome to the job search API. POST a query to /search to begin.",
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.PageSize <= 0 {
		req.PageSize = aggregator.DefaultPageSize
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	reqLog := logger.WithSession(s.log, req.SessionID)
	reqLog.Info("search request", zap.Int("pagesize", req.PageSize))

	s.store.AddUserMessage(req.SessionID, req.Query)

	resp := s.wf.Run(r.Context(), req.SessionID, req.Query, req.PageSize)

	reqLog.Debug("search done",
		zap.String("status", resp.Status),
		zap.Int("listings", len(resp.Data)),
	)

	s.store.AddAIMessage(req.SessionID, resp.Message, resp.Data)

	writeJSON(w, searchResponse{
		SessionID:   req.SessionID,
		Response:    resp,
		ChatHistory: s.store.History(req.SessionID),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionFromPath(r.URL.Path)
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	writeJSON(w, map[string]any{
		"session_id":   sessionID,
		"chat_history": s.store.History(sessionID),
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionFromPath(r.URL.Path)
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	s.store.Clear(sessionID)
	writeJSON(w, map[string]any{"ok": true, "session_id": sessionID})
}

func sessionFromPath(path string) string {
	return strings.TrimPrefix(path, "/history/")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  workflow.StatusError,
		"message": message,
	})
}

func methodMux(m map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := m[r.Method]; ok {
			h(w, r)
			return
		}
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
