package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/daniel-SCAU/oldAIagent/internal/events"
	"github.com/daniel-SCAU/oldAIagent/internal/followup"
	"github.com/daniel-SCAU/oldAIagent/internal/store"
)

// MessageIn is the normalized inbound message shape shared by
// /messages and the platform /webhook.
type MessageIn struct {
	Sender         string `json:"sender"`
	App            string `json:"app"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	ContactID      *int64 `json:"contact_id,omitempty"`
}

func (s *Server) createMessage(w http.ResponseWriter, r *http.Request) {
	var in MessageIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation)
		return
	}
	if in.Sender == "" || in.App == "" || in.Message == "" {
		writeError(w, http.StatusBadRequest, kindValidation)
		return
	}

	tasks := followup.Extract(in.Message)
	rec, err := s.store.InsertMessage(r.Context(), store.NewMessage{
		Sender:         in.Sender,
		App:            in.App,
		Text:           in.Message,
		ConversationID: in.ConversationID,
		ContactID:      in.ContactID,
	}, tasks)
	if err != nil {
		s.storeError(w, err)
		return
	}

	if err := s.events.Publish(events.SubjectMessageStored, map[string]any{
		"id":              rec.ID,
		"conversation_id": rec.ConversationID,
		"app":             in.App,
		"followup_tasks":  len(tasks),
	}); err != nil {
		s.logger.Warn("event publish failed", "subject", events.SubjectMessageStored, "error", err)
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) searchMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, kindValidation)
		return
	}
	limit, ok := limitParam(r, "limit", 50, 500)
	if !ok {
		writeError(w, http.StatusBadRequest, kindValidation)
		return
	}

	msgs, err := s.search.Search(r.Context(), q, limit)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if msgs == nil {
		msgs = []store.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) listConversationMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	limit, ok := limitParam(r, "limit", 200, 1000)
	if !ok {
		writeError(w, http.StatusBadRequest, kindValidation)
		return
	}

	msgs, err := s.store.ListConversation(r.Context(), conversationID, limit)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if msgs == nil {
		msgs = []store.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// limitParam parses an optional positive limit query parameter,
// bounded by max. Returns false on a malformed or out-of-range value.
func limitParam(r *http.Request, name string, def, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}
