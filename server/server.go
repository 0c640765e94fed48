// Package server exposes the HTTP API: starting and continuing seminars,
// listing agents, deleting conversations and the websocket event feed.
// Upstream failures surface as uniform JSON errors built from the inference
// error taxonomy, so raw provider messages never reach clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/symposium-ai/symposium/agent"
	"github.com/symposium-ai/symposium/auth"
	"github.com/symposium-ai/symposium/conversation"
	"github.com/symposium-ai/symposium/inference"
	"github.com/symposium-ai/symposium/logging"
	"github.com/symposium-ai/symposium/memory"
	"github.com/symposium-ai/symposium/realtime"
	"github.com/symposium-ai/symposium/seminar"
)

// MaxRoundsUnauthenticated caps auto-conversation length for anonymous
// callers.
const MaxRoundsUnauthenticated = 5

// Seminars is the scheduling surface the server drives.
// *seminar.Scheduler satisfies it.
type Seminars interface {
	Run(ctx context.Context, req seminar.Request) (*seminar.Result, error)
	Continue(ctx context.Context, req seminar.ContinueRequest) (*seminar.Result, error)
}

// Server wires the HTTP surface to the scheduler and stores.
type Server struct {
	seminars    Seminars
	registry    *agent.Registry
	memory      *memory.Store
	transcripts *conversation.Store
	hub         *realtime.Hub
	auth        *auth.Manager
	limiter     *ipLimiter
	logger      logging.Logger
	mux         *http.ServeMux
}

// Options configure a Server.
type Options struct {
	// Auth enables bearer-token resolution. Nil serves every caller as
	// anonymous.
	Auth   *auth.Manager
	Logger logging.Logger
	// RequestsPerHour bounds /seminar and /continue per source address.
	RequestsPerHour int
}

// New assembles the server and its routes.
func New(seminars Seminars, registry *agent.Registry, mem *memory.Store, transcripts *conversation.Store, hub *realtime.Hub, optFns ...func(o *Options)) *Server {
	opts := Options{
		Logger:          logging.NoOpLogger{},
		RequestsPerHour: defaultRequestsPerHour,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		seminars:    seminars,
		registry:    registry,
		memory:      mem,
		transcripts: transcripts,
		hub:         hub,
		auth:        opts.Auth,
		limiter:     newIPLimiter(opts.RequestsPerHour),
		logger:      opts.Logger,
		mux:         http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Handle("POST /seminar", s.limited(s.handleSeminar))
	s.mux.Handle("POST /continue", s.limited(s.handleContinue))
	s.mux.HandleFunc("GET /api/agents", s.handleAgents)
	s.mux.HandleFunc("DELETE /conversation/{id}", s.handleDeleteConversation)
	s.mux.Handle("GET /ws/{conversation_id}", realtime.NewWSHandler(s.hub, func(r *http.Request) string {
		return r.PathValue("conversation_id")
	}, func(o *realtime.WSHandlerOptions) {
		o.Logger = s.logger
	}))
}

// ServeHTTP implements http.Handler, applying the optional auth middleware
// ahead of routing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var handler http.Handler = s.mux
	if s.auth != nil {
		handler = s.auth.Middleware(s.mux)
	}
	handler.ServeHTTP(w, r)
}

func (s *Server) handleSeminar(w http.ResponseWriter, r *http.Request) {
	var req seminar.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if req.Question == "" || len(req.AgentIDs) == 0 {
		s.writeBadRequest(w, "question and agent_ids are required")
		return
	}

	if _, authed := auth.UserFrom(r.Context()); !authed {
		if req.MaxRounds > MaxRoundsUnauthenticated {
			s.logger.Warn("clamping max_rounds for anonymous caller",
				"requested", req.MaxRounds, "limit", MaxRoundsUnauthenticated)
			req.MaxRounds = MaxRoundsUnauthenticated
		}
	}

	result, err := s.seminars.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, err, req.ConversationID)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	var req seminar.ContinueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if req.ConversationID == "" || len(req.AgentIDs) == 0 {
		s.writeBadRequest(w, "conversation_id and agent_ids are required")
		return
	}

	result, err := s.seminars.Continue(r.Context(), req)
	if err != nil {
		s.writeError(w, err, req.ConversationID)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.Categories())
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.memory.Clear(id)
	s.transcripts.Delete(id)
	s.hub.Forget(id)
	s.logger.Info("deleted conversation", "conversation_id", id)
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Conversation " + id + " deleted",
	})
}

// limited wraps a handler with the per-IP quota.
func (s *Server) limited(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientIP(r)) {
			s.logger.Warn("rate limit exceeded", "remote", r.RemoteAddr, "path", r.URL.Path)
			s.writeJSON(w, http.StatusTooManyRequests, errorBody{
				Error:   "rate_limited",
				Message: "Too many requests. Please wait before trying again.",
			})
			return
		}
		next(w, r)
	})
}

type errorBody struct {
	Error          string   `json:"error"`
	Message        string   `json:"message"`
	Suggestions    []string `json:"suggestions,omitempty"`
	ConversationID string   `json:"conversation_id,omitempty"`
}

// writeError maps an error to a safe JSON response. Unknown conversations
// get 404; everything else goes through the inference classifier so clients
// see curated text, never raw provider errors.
func (s *Server) writeError(w http.ResponseWriter, err error, conversationID string) {
	if errors.Is(err, conversation.ErrNotFound) {
		s.writeJSON(w, http.StatusNotFound, errorBody{
			Error:          "not_found",
			Message:        "Conversation not found.",
			ConversationID: conversationID,
		})
		return
	}

	classified := inference.Classify(err)
	s.logger.Error("request failed",
		"kind", classified.Kind.String(), "conversation_id", conversationID, "error", err)
	s.writeJSON(w, classified.StatusCode(), errorBody{
		Error:          classified.Kind.String(),
		Message:        classified.UserMessage(),
		Suggestions:    classified.Suggestions(),
		ConversationID: conversationID,
	})
}

func (s *Server) writeBadRequest(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("writing response failed", "error", err)
	}
}
