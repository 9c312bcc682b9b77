package party

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// Event names on the broadcast surface.
const (
	EventMemberJoined       = "party:memberJoined"
	EventPresence           = "party:presence"
	EventVoteUpdate         = "party:voteUpdate"
	EventQueueUpdated       = "party:queueUpdated"
	EventNowPlaying         = "party:nowPlaying"
	EventSuggestionTesting  = "party:suggestionTesting"
	EventSuggestionPromoted = "party:suggestionPromoted"
	EventSuggestionExpired  = "party:suggestionExpired"
	EventSongRemoved        = "party:songRemoved"
	EventSettingsUpdated    = "party:settingsUpdated"
	EventError              = "party:error"

	broadcastChannel = "broadcast"
)

// Broadcaster fans state-change events out to a party's subscribers. The
// engine decides what to broadcast and when; delivery is the gateway's
// problem.
type Broadcaster interface {
	// Broadcast delivers an event to every client in the party.
	Broadcast(partyID, event string, payload any)
	// BroadcastTo delivers an event only to the given members (sampled
	// suggestion visibility).
	BroadcastTo(partyID string, userIDs []string, event string, payload any)
}

// Envelope is the wire form events take on the Redis broadcast channel. An
// empty ToUserIDs means the whole party room.
type Envelope struct {
	Type      string   `json:"type"`
	PartyID   string   `json:"partyId"`
	ToUserIDs []string `json:"toUserIds,omitempty"`
	Payload   any      `json:"payload"`
}

// RedisBroadcaster publishes envelopes to the shared broadcast channel; a hub
// subscriber on the other end routes them to websocket clients.
type RedisBroadcaster struct {
	rdb *redis.Client
	ctx context.Context
}

func NewRedisBroadcaster(ctx context.Context, rdb *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{rdb: rdb, ctx: ctx}
}

func (b *RedisBroadcaster) Broadcast(partyID, event string, payload any) {
	b.publish(Envelope{Type: event, PartyID: partyID, Payload: payload})
}

func (b *RedisBroadcaster) BroadcastTo(partyID string, userIDs []string, event string, payload any) {
	b.publish(Envelope{Type: event, PartyID: partyID, ToUserIDs: userIDs, Payload: payload})
}

func (b *RedisBroadcaster) publish(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	if err := b.rdb.Publish(b.ctx, broadcastChannel, string(data)).Err(); err != nil {
		log.Printf("party-service: publish %s: %v", env.Type, err)
	}
}

// NopBroadcaster discards every event. Used when no gateway is wired, and in
// tests that don't assert on events.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(string, string, any) {}

func (NopBroadcaster) BroadcastTo(string, []string, string, any) {}
