package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	openai "github.com/sashabaranov/go-openai"

	"listplicity-intake-backend/internal/chat"
	"listplicity-intake-backend/internal/config"
	"listplicity-intake-backend/internal/lead"
	"listplicity-intake-backend/internal/types"
)

const providerName = "openai"

const welcomeText = `Hi there, and welcome to Listplicity!
Thanks for stopping by. Whether you're buying, selling, or just exploring, I'm here to help.
Ask me anything about real estate - from our 1% Listing (Limited Services) to getting real-time MLS access.
What brings you here today?`

type Server struct {
	router    *chi.Mux
	cfg       config.Config
	orch      *chat.Orchestrator
	forwarder *lead.Forwarder
}

func NewServer(cfg config.Config) (*Server, error) {
	spec, err := chat.LoadPromptSpec(cfg.PromptFile)
	if err != nil {
		log.Println("warning: prompt spec unavailable, using built-in default:", err)
		spec = chat.DefaultPromptSpec()
	}

	// A nil client marks the credential as absent; /api/chat degrades
	// instead of the process refusing to start.
	var client chat.CompletionAPI
	if cfg.OpenAIAPIKey != "" {
		client = openai.NewClient(cfg.OpenAIAPIKey)
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.AllowedOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	s := &Server{
		router:    r,
		cfg:       cfg,
		orch:      chat.NewOrchestrator(client, spec, cfg.Model),
		forwarder: lead.NewForwarder(cfg.LeadWebhookURL),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/welcome", s.handleWelcome)
	s.router.Post("/api/chat", s.handleChat)
	s.router.Post("/api/lead", s.handleLead)
	s.router.Get("/api/diag", s.handleDiag)
	s.router.Handle("/*", http.FileServer(http.Dir(s.cfg.StaticDir)))
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{
		OK:       true,
		Provider: providerName,
		LLM:      s.cfg.OpenAIAPIKey != "",
	})
}

// handleWelcome answers instantly with a fixed greeting; no model round-trip.
func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.StructuredResponse{
		Intent:     types.IntentWelcome,
		BotText:    welcomeText,
		StatePatch: types.StatePatch{},
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 25*time.Second)
	defer cancel()

	resp, _, err := s.orch.Advance(ctx, req.History, req.State)
	status := http.StatusOK
	if err != nil {
		// The body is still a renderable turn; the status flags degradation.
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleLead(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch err := s.forwarder.Forward(r.Context(), fields); {
	case err == nil:
		writeJSON(w, http.StatusOK, types.LeadResult{OK: true})
	case errors.Is(err, lead.ErrNotConfigured):
		writeJSON(w, http.StatusInternalServerError, types.LeadResult{OK: false, Error: "missing_webhook"})
	default:
		log.Println("lead forward failed:", err)
		writeJSON(w, http.StatusInternalServerError, types.LeadResult{OK: false, Error: "forward_failed"})
	}
}

func (s *Server) handleDiag(w http.ResponseWriter, r *http.Request) {
	hasKey := s.cfg.OpenAIAPIKey != ""
	var report types.DiagReport
	if hasKey {
		report = s.orch.Diagnose(r.Context())
	}
	writeJSON(w, http.StatusOK, types.DiagResponse{
		OK:       true,
		Provider: providerName,
		HasKey:   hasKey,
		Model:    s.cfg.Model,
		Diag:     report,
	})
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, types.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
