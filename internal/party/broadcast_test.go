package party

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRedisBroadcaster_PublishesEnvelopes(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)

	sub := rdb.Subscribe(ctx, "broadcast")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	ch := sub.Channel()

	bc := NewRedisBroadcaster(ctx, rdb)
	bc.Broadcast("p1", EventQueueUpdated, map[string]any{"queue": []string{}})
	bc.BroadcastTo("p1", []string{"u1", "u2"}, EventSuggestionTesting, map[string]any{"trackId": "s1"})

	readEnvelope := func() Envelope {
		select {
		case msg := <-ch:
			var env Envelope
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
			return env
		case <-time.After(2 * time.Second):
			t.Fatal("no broadcast message received")
			return Envelope{}
		}
	}

	env := readEnvelope()
	assert.Equal(t, EventQueueUpdated, env.Type)
	assert.Equal(t, "p1", env.PartyID)
	assert.Empty(t, env.ToUserIDs, "party-wide events carry no recipient filter")

	env = readEnvelope()
	assert.Equal(t, EventSuggestionTesting, env.Type)
	assert.Equal(t, []string{"u1", "u2"}, env.ToUserIDs)
	payload, ok := env.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "s1", payload["trackId"])
}

func TestHub_RedisRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rdb := newTestRedis(t)

	hub := NewHub()
	go hub.Run()

	e := NewEngine(NewStore(), DefaultConfig(), NewRedisBroadcaster(ctx, rdb), nil)
	srv := newTestWSServer(t, e, hub)
	go hub.RunRedisSubscriber(ctx, rdb)

	res, err := e.CreateParty("h1", "chill", false, true)
	require.NoError(t, err)

	conn := dialWS(t, srv)
	joinWS(t, conn, res.PartyID, "h1")

	// Give the subscriber a moment to register with the broker.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, e.UpdateMood(res.PartyID, "h1", "hype"))

	frame := readFrame(t, conn)
	require.Equal(t, EventSettingsUpdated, frame.Type)
	var payload struct {
		Mood string `json:"mood"`
	}
	require.NoError(t, json.Unmarshal(frame.Payload, &payload))
	assert.Equal(t, "hype", payload.Mood)
}
