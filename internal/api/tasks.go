package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/daniel-SCAU/oldAIagent/internal/store"
)

type taskIn struct {
	ConversationID string `json:"conversation_id"`
}

// createTask enqueues a summary task; the summarization job picks it
// up on its next tick. Nothing is summarized synchronously here.
func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var in taskIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.ConversationID == "" {
		writeError(w, http.StatusBadRequest, kindValidation)
		return
	}

	task, err := s.store.CreateSummaryTask(r.Context(), in.ConversationID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListSummaryTasks(r.Context())
	if err != nil {
		s.storeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []store.SummaryTask{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, kindValidation)
		return
	}

	task, err := s.store.GetSummaryTask(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// listFollowupTasks returns the actionable sentences extracted from a
// conversation's messages at ingestion time.
func (s *Server) listFollowupTasks(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	tasks, err := s.store.ListFollowupTasks(r.Context(), conversationID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []store.FollowupTask{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, kindValidation)
		return
	}

	if err := s.store.DeleteSummaryTask(r.Context(), id); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
