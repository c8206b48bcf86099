// Package server exposes the toolhost over HTTP for the GUI frontend.
//
// Endpoints:
//   - GET    /health                        - liveness and uptime
//   - GET    /v1/tools                      - registered tools and their schemas
//   - POST   /v1/tools/invoke               - run a tool: {"tool": ..., "arguments": {...}}
//   - GET    /v1/sessions/{id}/progress     - current task progress document
//   - POST   /v1/sessions/{id}/progress     - replace the progress document
//   - GET    /v1/sessions/{id}/messages     - user message stream
//   - POST   /v1/sessions/{id}/messages     - append a user message
//   - DELETE /v1/sessions/{id}              - drop session state
//
// Tool failures are returned with status 200 and {"success": false} so the
// frontend can render them; transport-level problems use 4xx/5xx.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/geminigui/toolhost/internal/logging"
	"github.com/geminigui/toolhost/internal/session"
	"github.com/geminigui/toolhost/internal/tools"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Options configure a Server.
type Options struct {
	Registry        *tools.Registry
	Sessions        *session.Manager
	Log             logging.Logger
	AuthToken       string
	MaxRequestBytes int64
}

// Server routes HTTP requests to the tool registry and session manager.
type Server struct {
	registry  *tools.Registry
	sessions  *session.Manager
	log       logging.Logger
	authToken string
	maxBody   int64
	started   time.Time
}

// New creates a Server.
func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = logging.Discard{}
	}
	maxBody := opts.MaxRequestBytes
	if maxBody <= 0 {
		maxBody = 4 << 20
	}
	return &Server{
		registry:  opts.Registry,
		sessions:  opts.Sessions,
		log:       log,
		authToken: opts.AuthToken,
		maxBody:   maxBody,
		started:   time.Now(),
	}
}

// Handler builds the route table with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/tools", s.handleListTools)
	mux.HandleFunc("POST /v1/tools/invoke", s.handleInvoke)
	mux.HandleFunc("GET /v1/sessions/{id}/progress", s.handleGetProgress)
	mux.HandleFunc("POST /v1/sessions/{id}/progress", s.handleUpdateProgress)
	mux.HandleFunc("GET /v1/sessions/{id}/messages", s.handleGetMessages)
	mux.HandleFunc("POST /v1/sessions/{id}/messages", s.handleSendMessage)
	mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleClearSession)

	var handler http.Handler = mux
	handler = withBodyLimit(s.maxBody, handler)
	handler = withAuth(s.authToken, handler)
	handler = withLogging(s.log, handler)
	handler = withRecovery(s.log, handler)
	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"version":    Version,
		"uptime_sec": int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.registry.Describe()})
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	name := gjson.GetBytes(body, "tool").String()
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing tool name")
		return
	}

	arguments := json.RawMessage("{}")
	if field := gjson.GetBytes(body, "arguments"); field.Exists() {
		arguments = json.RawMessage(field.Raw)
	}

	result, err := s.registry.Invoke(r.Context(), name, arguments)
	if err != nil {
		var unknown *tools.UnknownToolError
		if errors.As(err, &unknown) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		var validation *tools.ValidationError
		if errors.As(err, &validation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Warn("tool failed", logging.F("tool", name), logging.F("error", err))
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": result})
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	progress, ok := s.sessions.TaskProgress(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "no progress recorded for session")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		MarkdownContent string `json:"markdown_content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	progress := s.sessions.UpdateTaskProgress(r.PathValue("id"), payload.MarkdownContent)
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	messages := s.sessions.UserMessages(r.PathValue("id"))
	if messages == nil {
		messages = []session.UserMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message     string `json:"message"`
		MessageType string `json:"message_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	messageType, err := session.ParseMessageType(payload.MessageType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	entry := s.sessions.SendUserMessage(r.PathValue("id"), payload.Message, messageType)
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearSession(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
