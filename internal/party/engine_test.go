package party

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_CreateParty(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	res, err := e.CreateParty("h1", "", false, true)
	require.NoError(t, err)
	assert.NotEmpty(t, res.PartyID)
	assert.Regexp(t, `^[A-Z0-9]{6}$`, res.JoinCode)
	assert.Equal(t, StatusCreated, res.Party.Status)
	assert.Equal(t, "chill", res.Party.Mood, "empty mood falls back to the default")

	t.Run("host is the first member", func(t *testing.T) {
		state, err := e.State(res.PartyID, "")
		require.NoError(t, err)
		require.Len(t, state.Members, 1)
		assert.Equal(t, "h1", state.Members[0].UserID)
		assert.Equal(t, RoleHost, state.Members[0].Role)
	})

	t.Run("hostId is required", func(t *testing.T) {
		_, err := e.CreateParty("", "chill", false, true)
		requireCode(t, err, CodeInvalidRequest)
	})

	t.Run("join code resolves back", func(t *testing.T) {
		partyID, err := e.ResolveJoinCode(res.JoinCode)
		require.NoError(t, err)
		assert.Equal(t, res.PartyID, partyID)
	})

	t.Run("unknown join code", func(t *testing.T) {
		_, err := e.ResolveJoinCode("NOPE00")
		requireCode(t, err, CodeJoinCodeNotFound)
	})
}

func TestEngine_Lifecycle(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	res, err := e.CreateParty("h1", "chill", false, true)
	require.NoError(t, err)
	partyID := res.PartyID

	t.Run("only the host starts", func(t *testing.T) {
		_, err := e.JoinParty(partyID, "g1")
		require.NoError(t, err)
		requireCode(t, e.StartParty(partyID, "g1"), CodeNotHost)
	})

	require.NoError(t, e.StartParty(partyID, "h1"))

	t.Run("starting twice fails", func(t *testing.T) {
		requireCode(t, e.StartParty(partyID, "h1"), CodeInvalidState)
	})

	t.Run("only the host ends", func(t *testing.T) {
		requireCode(t, e.EndParty(partyID, "g1"), CodeNotHost)
	})

	require.NoError(t, e.EndParty(partyID, "h1"))

	t.Run("ended is terminal", func(t *testing.T) {
		requireCode(t, e.EndParty(partyID, "h1"), CodeInvalidState)
		requireCode(t, e.StartParty(partyID, "h1"), CodeInvalidState)
	})
}

func TestEngine_JoinAndPresence(t *testing.T) {
	e, bc, _, clock := newTestEngine(t)
	res, err := e.CreateParty("h1", "chill", false, true)
	require.NoError(t, err)
	partyID := res.PartyID

	m, err := e.JoinParty(partyID, "g1")
	require.NoError(t, err)
	assert.Equal(t, RoleGuest, m.Role)

	joined := bc.byType(EventMemberJoined)
	require.Len(t, joined, 1)
	payload := joined[0].payload.(map[string]any)
	assert.Equal(t, "g1", payload["userId"])
	assert.Equal(t, 2, payload["activeMembersCount"])

	t.Run("rejoin refreshes activity without a second event", func(t *testing.T) {
		clock.advance(11 * time.Minute)
		_, err := e.JoinParty(partyID, "g1")
		require.NoError(t, err)
		assert.Len(t, bc.byType(EventMemberJoined), 1)

		state, err := e.State(partyID, "")
		require.NoError(t, err)
		assert.Equal(t, 1, state.ActiveMembersCount, "only the rejoined guest is fresh")
	})

	t.Run("heartbeat emits presence", func(t *testing.T) {
		active, err := e.Heartbeat(partyID, "h1")
		require.NoError(t, err)
		assert.True(t, active)

		presence := bc.byType(EventPresence)
		require.NotEmpty(t, presence)
		last := presence[len(presence)-1].payload.(map[string]any)
		assert.Equal(t, 2, last["activeMembersCount"])
	})

	t.Run("heartbeat from a stranger", func(t *testing.T) {
		_, err := e.Heartbeat(partyID, "nobody")
		requireCode(t, err, CodeMemberNotFound)
	})

	t.Run("state with a userId counts as activity", func(t *testing.T) {
		clock.advance(11 * time.Minute)
		state, err := e.State(partyID, "g1")
		require.NoError(t, err)
		assert.Equal(t, 1, state.ActiveMembersCount)
	})
}

func TestEngine_Settings(t *testing.T) {
	e, bc, _, _ := newTestEngine(t)
	partyID, hostID, guests := setupLiveParty(t, e, 3)

	t.Run("host only", func(t *testing.T) {
		requireCode(t, e.UpdateMood(partyID, guests[0], "hype"), CodeNotHost)
		requireCode(t, e.UpdateKidFriendly(partyID, guests[0], true), CodeNotHost)
		requireCode(t, e.UpdateAllowSuggestions(partyID, guests[0], false), CodeNotHost)
	})

	t.Run("mood is required", func(t *testing.T) {
		requireCode(t, e.UpdateMood(partyID, hostID, ""), CodeInvalidRequest)
	})

	require.NoError(t, e.UpdateMood(partyID, hostID, "hype"))
	require.NoError(t, e.UpdateKidFriendly(partyID, hostID, true))

	state, err := e.State(partyID, "")
	require.NoError(t, err)
	assert.Equal(t, "hype", state.Party.Mood)
	assert.True(t, state.Party.KidFriendly)

	t.Run("every change carries the full settings payload", func(t *testing.T) {
		events := bc.byType(EventSettingsUpdated)
		require.Len(t, events, 2)
		last := events[1].payload.(map[string]any)
		assert.Equal(t, "hype", last["mood"])
		assert.Equal(t, true, last["kidFriendly"])
		assert.Equal(t, true, last["allowSuggestions"])
	})
}

func TestEngine_SeedQueue(t *testing.T) {
	e, bc, _, _ := newTestEngine(t)
	partyID, hostID, guests := setupLiveParty(t, e, 3)
	require.NoError(t, e.UpdateKidFriendly(partyID, hostID, true))

	res, err := e.SeedQueue(partyID, hostID, []TrackInput{
		{TrackID: "t1", Title: "One"},
		{TrackID: "t2", Title: "Dirty", Explicit: true},
		{TrackID: "", Title: "No ID"},
		{TrackID: "t1", Title: "One again"},
		{TrackID: "t3", Title: "Three"},
	})
	require.NoError(t, err)

	require.Len(t, res.Added, 2, "explicit, blank and duplicate inputs are skipped")
	assert.Equal(t, "t1", res.Added[0].TrackID)
	assert.Equal(t, "t3", res.Added[1].TrackID)
	assert.Equal(t, SourceCatalogRec, res.Added[0].Source)
	assert.Len(t, res.Queue, 2)

	require.Len(t, bc.byType(EventQueueUpdated), 1)

	t.Run("host only", func(t *testing.T) {
		_, err := e.SeedQueue(partyID, guests[0], []TrackInput{{TrackID: "t9"}})
		requireCode(t, err, CodeNotHost)
	})

	t.Run("all skipped means no queue event", func(t *testing.T) {
		res, err := e.SeedQueue(partyID, hostID, []TrackInput{{TrackID: "t1"}})
		require.NoError(t, err)
		assert.Empty(t, res.Added)
		assert.Len(t, bc.byType(EventQueueUpdated), 1)
	})
}

func TestEngine_SetNowPlaying(t *testing.T) {
	e, bc, _, _ := newTestEngine(t)
	partyID, hostID, guests := setupLiveParty(t, e, 3)
	seedOneTrack(t, e, partyID, hostID, "t1")

	t.Run("host only", func(t *testing.T) {
		requireCode(t, e.SetNowPlaying(partyID, guests[0], "t1", 123), CodeNotHost)
	})

	t.Run("track must be queued", func(t *testing.T) {
		requireCode(t, e.SetNowPlaying(partyID, hostID, "t9", 123), CodeTrackNotFound)
	})

	require.NoError(t, e.SetNowPlaying(partyID, hostID, "t1", 123))

	state, err := e.State(partyID, "")
	require.NoError(t, err)
	require.NotNil(t, state.NowPlaying)
	assert.Equal(t, "t1", state.NowPlaying.TrackID)
	assert.Empty(t, state.Queue)

	events := bc.byType(EventNowPlaying)
	require.Len(t, events, 1)
	payload := events[0].payload.(map[string]any)
	assert.Equal(t, "t1", payload["trackId"])
	assert.Equal(t, int64(123), payload["startedAt"])

	t.Run("playing track cannot be suggested", func(t *testing.T) {
		_, err := e.Suggest(partyID, guests[0], TrackInput{TrackID: "t1"})
		requireCode(t, err, CodeDuplicateTrack)
	})
}

func TestEngine_RemoveTrack(t *testing.T) {
	e, bc, _, _ := newTestEngine(t)
	partyID, hostID, guests := setupLiveParty(t, e, 3)
	seedOneTrack(t, e, partyID, hostID, "t1")

	t.Run("host only", func(t *testing.T) {
		_, err := e.RemoveTrack(partyID, guests[0], "t1")
		requireCode(t, err, CodeNotHost)
	})

	removed, err := e.RemoveTrack(partyID, hostID, "t1")
	require.NoError(t, err)
	assert.True(t, removed)

	events := bc.byType(EventSongRemoved)
	require.Len(t, events, 1)
	payload := events[0].payload.(map[string]any)
	assert.Equal(t, "t1", payload["trackId"])
	assert.Equal(t, RemoveReasonHostRemove, payload["reason"])

	t.Run("second removal is a reported no-op", func(t *testing.T) {
		removed, err := e.RemoveTrack(partyID, hostID, "t1")
		require.NoError(t, err)
		assert.False(t, removed)
		assert.Len(t, bc.byType(EventSongRemoved), 1)
	})
}
