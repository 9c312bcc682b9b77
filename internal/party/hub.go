package party

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

type joinRequest struct {
	client  *Client
	partyID string
	userID  string
}

type delivery struct {
	partyID string
	userIDs []string
	data    []byte
}

// Hub owns the websocket clients and routes events to party rooms. A client
// belongs to at most one room at a time; sampled deliveries filter the room
// by user ID.
type Hub struct {
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	join       chan joinRequest
	deliver    chan delivery
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinRequest),
		deliver:    make(chan delivery, 64),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.leaveRoom(client)
				delete(h.clients, client)
				close(client.send)
				_ = client.conn.Close()
			}

		case req := <-h.join:
			h.leaveRoom(req.client)
			req.client.partyID = req.partyID
			req.client.userID = req.userID
			room := h.rooms[req.partyID]
			if room == nil {
				room = make(map[*Client]bool)
				h.rooms[req.partyID] = room
			}
			room[req.client] = true

		case d := <-h.deliver:
			for client := range h.rooms[d.partyID] {
				if len(d.userIDs) > 0 && !containsString(d.userIDs, client.userID) {
					continue
				}
				select {
				case client.send <- d.data:
				default:
					h.leaveRoom(client)
					delete(h.clients, client)
					close(client.send)
					_ = client.conn.Close()
				}
			}
		}
	}
}

func (h *Hub) leaveRoom(client *Client) {
	if client.partyID == "" {
		return
	}
	if room, ok := h.rooms[client.partyID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.partyID)
		}
	}
	client.partyID = ""
}

// Broadcast implements Broadcaster for direct (non-Redis) wiring.
func (h *Hub) Broadcast(partyID, event string, payload any) {
	h.send(partyID, nil, event, payload)
}

// BroadcastTo delivers an event only to the given members of a party.
func (h *Hub) BroadcastTo(partyID string, userIDs []string, event string, payload any) {
	h.send(partyID, userIDs, event, payload)
}

func (h *Hub) send(partyID string, userIDs []string, event string, payload any) {
	data, err := json.Marshal(map[string]any{
		"type":    event,
		"payload": payload,
	})
	if err != nil {
		return
	}
	h.deliver <- delivery{partyID: partyID, userIDs: userIDs, data: data}
}

// RunRedisSubscriber consumes broadcast envelopes published by another
// process (or this one) and routes them into the rooms.
func (h *Hub) RunRedisSubscriber(ctx context.Context, rdb *redis.Client) {
	sub := rdb.Subscribe(ctx, broadcastChannel)
	defer sub.Close()

	ch := sub.Channel()
	for msg := range ch {
		var env Envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			log.Printf("party-service: bad broadcast envelope: %v", err)
			continue
		}
		h.send(env.PartyID, env.ToUserIDs, env.Type, env.Payload)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
