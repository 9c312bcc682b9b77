package party

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *HTTPServer) handleCreateParty(w http.ResponseWriter, r *http.Request) {
	var body struct {
		HostID           string `json:"hostId"`
		Mood             string `json:"mood"`
		KidFriendly      *bool  `json:"kidFriendly"`
		AllowSuggestions *bool  `json:"allowSuggestions"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.HostID == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "hostId is required")
		return
	}

	kidFriendly := false
	if body.KidFriendly != nil {
		kidFriendly = *body.KidFriendly
	}
	allowSuggestions := true
	if body.AllowSuggestions != nil {
		allowSuggestions = *body.AllowSuggestions
	}

	res, err := s.engine.CreateParty(body.HostID, body.Mood, kidFriendly, allowSuggestions)
	if err != nil {
		writePartyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleResolveJoinCode(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("joinCode")
	partyID, err := s.engine.ResolveJoinCode(code)
	if err != nil {
		writePartyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"partyId": partyID})
}

func (s *HTTPServer) handleJoin(w http.ResponseWriter, r *http.Request) {
	partyID := chi.URLParam(r, "partyId")
	var body struct {
		UserID string `json:"userId"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	member, err := s.engine.JoinParty(partyID, body.UserID)
	if err != nil {
		writePartyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"partyId": partyID,
		"member":  member,
	})
}

func (s *HTTPServer) handleState(w http.ResponseWriter, r *http.Request) {
	partyID := chi.URLParam(r, "partyId")
	userID := r.URL.Query().Get("userId")

	state, err := s.engine.State(partyID, userID)
	if err != nil {
		writePartyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *HTTPServer) handleStart(w http.ResponseWriter, r *http.Request) {
	partyID := chi.URLParam(r, "partyId")
	var body struct {
		HostID string `json:"hostId"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if err := s.engine.StartParty(partyID, body.HostID); err != nil {
		writePartyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": StatusLive})
}

func (s *HTTPServer) handleEnd(w http.ResponseWriter, r *http.Request) {
	partyID := chi.URLParam(r, "partyId")
	var body struct {
		HostID string `json:"hostId"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if err := s.engine.EndParty(partyID, body.HostID); err != nil {
		writePartyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": StatusEnded})
}

func (s *HTTPServer) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	partyID := chi.URLParam(r, "partyId")
	var body struct {
		UserID string `json:"userId"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	active, err := s.engine.Heartbeat(partyID, body.UserID)
	if err != nil {
		writePartyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": active})
}

func (s *HTTPServer) handleUpdateMood(w http.ResponseWriter, r *http.Request) {
	partyID := chi.URLParam(r, "partyId")
	var body struct {
		HostID string `json:"hostId"`
		Mood   string `json:"mood"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if err := s.engine.UpdateMood(partyID, body.HostID, body.Mood); err != nil {
		writePartyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"mood": body.Mood})
}

func (s *HTTPServer) handleUpdateKidFriendly(w http.ResponseWriter, r *http.Request) {
	partyID := chi.URLParam(r, "partyId")
	var body struct {
		HostID      string `json:"hostId"`
		KidFriendly bool   `json:"kidFriendly"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if err := s.engine.UpdateKidFriendly(partyID, body.HostID, body.KidFriendly); err != nil {
		writePartyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"kidFriendly": body.KidFriendly})
}

func (s *HTTPServer) handleUpdateAllowSuggestions(w http.ResponseWriter, r *http.Request) {
	partyID := chi.URLParam(r, "partyId")
	var body struct {
		HostID           string `json:"hostId"`
		AllowSuggestions bool   `json:"allowSuggestions"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if err := s.engine.UpdateAllowSuggestions(partyID, body.HostID, body.AllowSuggestions); err != nil {
		writePartyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"allowSuggestions": body.AllowSuggestions})
}

func (s *HTTPServer) handleNowPlaying(w http.ResponseWriter, r *http.Request) {
	partyID := chi.URLParam(r, "partyId")
	var body struct {
		HostID    string `json:"hostId"`
		TrackID   string `json:"trackId"`
		StartedAt int64  `json:"startedAt"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if err := s.engine.SetNowPlaying(partyID, body.HostID, body.TrackID, body.StartedAt); err != nil {
		writePartyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
