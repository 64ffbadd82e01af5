package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/daniel-SCAU/oldAIagent/internal/events"
	"github.com/daniel-SCAU/oldAIagent/internal/store"
)

// Stable error kinds carried in every error response body. Internal
// errors are never leaked verbatim to callers.
const (
	kindUnauthorized       = "unauthorized"
	kindValidation         = "validation_error"
	kindNotFound           = "not_found"
	kindServiceUnavailable = "service_unavailable"
	kindUpstreamFailure    = "upstream_failure"
	kindInternal           = "internal_error"
)

// Store is everything the HTTP handlers need from the message store.
type Store interface {
	InsertMessage(ctx context.Context, msg store.NewMessage, followups []string) (store.MessageReceipt, error)
	ListConversation(ctx context.Context, conversationID string, limit int) ([]store.Message, error)
	ConversationLines(ctx context.Context, conversationID string) ([]store.ConversationLine, error)
	CreateContact(ctx context.Context, name string, info map[string]any) (store.Contact, error)
	ListContacts(ctx context.Context) ([]store.Contact, error)
	CreateSummaryTask(ctx context.Context, conversationID string) (store.SummaryTask, error)
	ListSummaryTasks(ctx context.Context) ([]store.SummaryTask, error)
	GetSummaryTask(ctx context.Context, id int64) (store.SummaryTask, error)
	DeleteSummaryTask(ctx context.Context, id int64) error
	ListFollowupTasks(ctx context.Context, conversationID string) ([]store.FollowupTask, error)
}

// Searcher is the query-time search entry point.
type Searcher interface {
	Search(ctx context.Context, q string, limit int) ([]store.Message, error)
}

// Generator produces one text answer for one prompt; nil means the
// LLM is not configured and suggestion requests fail upstream.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Server struct {
	router *chi.Mux
	srv    *http.Server
	store  Store
	search Searcher
	llm    Generator
	events *events.Publisher
	logger *slog.Logger
}

func NewServer(port int, apiKey string, st Store, searcher Searcher, llm Generator, pub *events.Publisher, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		srv:    &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: router},
		store:  st,
		search: searcher,
		llm:    llm,
		events: pub,
		logger: logger,
	}

	router.Get("/health", s.health)

	router.Group(func(r chi.Router) {
		r.Use(APIKeyMiddleware(apiKey))

		r.Post("/messages", s.createMessage)
		r.Post("/webhook", s.createMessage)
		r.Get("/search", s.searchMessages)
		r.Get("/conversations/{id}/messages", s.listConversationMessages)
		r.Get("/conversations/{id}/tasks", s.listFollowupTasks)

		r.Post("/contacts", s.createContact)
		r.Get("/contacts", s.listContacts)

		r.Post("/tasks", s.createTask)
		r.Get("/tasks", s.listTasks)
		r.Get("/tasks/{id}", s.getTask)
		r.Delete("/tasks/{id}", s.deleteTask)

		r.Post("/suggestions", s.suggestions)
	})

	return s
}

func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// APIKeyMiddleware rejects requests whose X-API-Key header does not
// match the shared secret, before any handler runs.
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-API-Key") != apiKey {
				writeError(w, http.StatusUnauthorized, kindUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind string) {
	writeJSON(w, status, map[string]string{"error": kind})
}

// storeError maps store failures to the response taxonomy. Database
// unavailability is always a distinct 503, never a generic 500.
func (s *Server) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, kindServiceUnavailable)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, kindNotFound)
	default:
		s.logger.Error("store operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, kindInternal)
	}
}
