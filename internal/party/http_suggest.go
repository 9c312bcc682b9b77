package party

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *HTTPServer) handleSuggest(w http.ResponseWriter, r *http.Request) {
	partyID := chi.URLParam(r, "partyId")
	var body struct {
		UserID      string `json:"userId"`
		TrackID     string `json:"trackId"`
		Title       string `json:"title"`
		Artist      string `json:"artist"`
		AlbumArtURL string `json:"albumArtUrl"`
		Explicit    bool   `json:"explicit"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.UserID == "" || body.TrackID == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "userId and trackId are required")
		return
	}

	res, err := s.engine.Suggest(partyID, body.UserID, TrackInput{
		TrackID:     body.TrackID,
		Title:       body.Title,
		Artist:      body.Artist,
		AlbumArtURL: body.AlbumArtURL,
		Explicit:    body.Explicit,
	})
	if err != nil {
		writePartyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
