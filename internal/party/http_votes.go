package party

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *HTTPServer) handleVote(w http.ResponseWriter, r *http.Request) {
	partyID := chi.URLParam(r, "partyId")
	var body struct {
		UserID  string      `json:"userId"`
		TrackID string      `json:"trackId"`
		Vote    VoteType    `json:"vote"`
		Context VoteContext `json:"context"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.UserID == "" || body.TrackID == "" || body.Vote == "" || body.Context == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "userId, trackId, vote, and context are required")
		return
	}

	res, err := s.engine.Vote(partyID, body.UserID, body.TrackID, body.Vote, body.Context)
	if err != nil {
		writePartyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
