package api

import (
	"encoding/json"
	"net/http"

	"github.com/daniel-SCAU/oldAIagent/internal/store"
)

type contactIn struct {
	Name string         `json:"name"`
	Info map[string]any `json:"info,omitempty"`
}

func (s *Server) createContact(w http.ResponseWriter, r *http.Request) {
	var in contactIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		writeError(w, http.StatusBadRequest, kindValidation)
		return
	}

	contact, err := s.store.CreateContact(r.Context(), in.Name, in.Info)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.store.ListContacts(r.Context())
	if err != nil {
		s.storeError(w, err)
		return
	}
	if contacts == nil {
		contacts = []store.Contact{}
	}
	writeJSON(w, http.StatusOK, contacts)
}
