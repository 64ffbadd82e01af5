package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/daniel-SCAU/oldAIagent/internal/summarize"
)

const suggestionPrompt = `Suggest up to %d short replies to the following conversation.
Return one suggestion per line with no numbering.

%s`

type suggestionsIn struct {
	ConversationID string `json:"conversation_id"`
	Limit          int    `json:"limit,omitempty"`
}

type suggestionsOut struct {
	Suggestions []string `json:"suggestions"`
}

func (s *Server) suggestions(w http.ResponseWriter, r *http.Request) {
	var in suggestionsIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.ConversationID == "" {
		writeError(w, http.StatusBadRequest, kindValidation)
		return
	}
	if in.Limit <= 0 {
		in.Limit = 3
	}

	rows, err := s.store.ConversationLines(r.Context(), in.ConversationID)
	if err != nil {
		s.storeError(w, err)
		return
	}

	if s.llm == nil {
		writeError(w, http.StatusBadGateway, kindUpstreamFailure)
		return
	}

	lines := make([]summarize.Line, len(rows))
	for i, row := range rows {
		lines[i] = summarize.Line{Sender: row.Sender, Text: row.Text}
	}

	raw, err := s.llm.Generate(r.Context(), fmt.Sprintf(suggestionPrompt, in.Limit, summarize.Transcript(lines)))
	if err != nil {
		s.logger.Error("suggestion generation failed", "conversation_id", in.ConversationID, "error", err)
		writeError(w, http.StatusBadGateway, kindUpstreamFailure)
		return
	}

	writeJSON(w, http.StatusOK, suggestionsOut{Suggestions: splitSuggestions(raw, in.Limit)})
}

func splitSuggestions(raw string, limit int) []string {
	out := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "- "))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == limit {
			break
		}
	}
	return out
}
