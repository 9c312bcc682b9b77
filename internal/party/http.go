package party

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// Origin checks belong to the gateway in front of this service.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type HTTPServer struct {
	engine *Engine
	hub    *Hub
}

func NewRouter(engine *Engine, hub *Hub, middlewares ...func(http.Handler) http.Handler) chi.Router {
	s := &HTTPServer{engine: engine, hub: hub}

	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWS)

	r.Post("/party", s.handleCreateParty)
	r.Get("/party/resolve", s.handleResolveJoinCode)
	r.Post("/party/{partyId}/join", s.handleJoin)
	r.Get("/party/{partyId}/state", s.handleState)
	r.Post("/party/{partyId}/start", s.handleStart)
	r.Post("/party/{partyId}/end", s.handleEnd)
	r.Post("/party/{partyId}/heartbeat", s.handleHeartbeat)

	r.Post("/party/{partyId}/vote", s.handleVote)
	r.Post("/party/{partyId}/suggest", s.handleSuggest)

	r.Post("/party/{partyId}/settings/mood", s.handleUpdateMood)
	r.Post("/party/{partyId}/settings/kidFriendly", s.handleUpdateKidFriendly)
	r.Post("/party/{partyId}/settings/allowSuggestions", s.handleUpdateAllowSuggestions)

	r.Post("/party/{partyId}/nowPlaying", s.handleNowPlaying)
	r.Post("/party/{partyId}/seed", s.handleSeedQueue)
	r.Delete("/party/{partyId}/queue/{trackId}", s.handleRemoveTrack)

	return r
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "party-service",
	})
}

func (s *HTTPServer) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, http.StatusServiceUnavailable, CodeInvalidState, "realtime gateway is not enabled")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("party-service: ws upgrade: %v", err)
		return
	}

	client := &Client{
		hub:    s.hub,
		engine: s.engine,
		conn:   conn,
		send:   make(chan []byte, 256),
	}
	s.hub.register <- client

	go client.writePump()
	go client.readPump()
}
