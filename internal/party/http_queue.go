package party

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *HTTPServer) handleSeedQueue(w http.ResponseWriter, r *http.Request) {
	partyID := chi.URLParam(r, "partyId")
	var body struct {
		HostID string       `json:"hostId"`
		Tracks []TrackInput `json:"tracks"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.HostID == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "hostId is required")
		return
	}

	res, err := s.engine.SeedQueue(partyID, body.HostID, body.Tracks)
	if err != nil {
		writePartyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"addedCount": len(res.Added),
		"queue":      res.Queue,
	})
}

func (s *HTTPServer) handleRemoveTrack(w http.ResponseWriter, r *http.Request) {
	partyID := chi.URLParam(r, "partyId")
	trackID := chi.URLParam(r, "trackId")
	var body struct {
		HostID string `json:"hostId"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	removed, err := s.engine.RemoveTrack(partyID, body.HostID, trackID)
	if err != nil {
		writePartyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{
		"ok":      true,
		"removed": removed,
	})
}
