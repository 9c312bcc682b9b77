package party

import (
	"time"

	"github.com/google/uuid"
)

// Engine implements the party session logic on top of the Store. Every public
// operation validates before it mutates, runs as one pass under the party's
// session lock, and emits its events before releasing it, so observers see
// events in mutation order.
type Engine struct {
	store *Store
	cfg   Config
	bc    Broadcaster
	sched Scheduler

	// now is swappable for tests.
	now func() time.Time
}

func NewEngine(store *Store, cfg Config, bc Broadcaster, sched Scheduler) *Engine {
	if bc == nil {
		bc = NopBroadcaster{}
	}
	if sched == nil {
		sched = NewScheduler()
	}
	return &Engine{
		store: store,
		cfg:   cfg,
		bc:    bc,
		sched: sched,
		now:   time.Now,
	}
}

func (e *Engine) nowMS() int64 {
	return e.now().UnixMilli()
}

func (e *Engine) session(partyID string) (*Session, error) {
	sess, ok := e.store.Get(partyID)
	if !ok {
		return nil, errNotFound(CodePartyNotFound, "party not found")
	}
	return sess, nil
}

// CreateParty creates a party in CREATED state and registers the host as its
// first (and only ever) HOST member.
func (e *Engine) CreateParty(hostID, mood string, kidFriendly, allowSuggestions bool) (*CreatePartyResult, error) {
	if hostID == "" {
		return nil, errInvalidRequest("hostId is required")
	}
	if mood == "" {
		mood = "chill"
	}

	now := e.nowMS()
	p := Party{
		PartyID:          uuid.New().String(),
		HostID:           hostID,
		Status:           StatusCreated,
		Mood:             mood,
		KidFriendly:      kidFriendly,
		AllowSuggestions: allowSuggestions,
		CreatedAt:        now,
	}

	joinCode, err := e.store.CreateParty(p)
	if err != nil {
		return nil, err
	}

	sess, _ := e.store.Get(p.PartyID)
	sess.mu.Lock()
	sess.addMember(&Member{
		UserID:       hostID,
		Role:         RoleHost,
		JoinedAt:     now,
		LastActiveAt: now,
	})
	sess.mu.Unlock()

	return &CreatePartyResult{PartyID: p.PartyID, JoinCode: joinCode, Party: p}, nil
}

// ResolveJoinCode maps a shareable code to its party ID.
func (e *Engine) ResolveJoinCode(code string) (string, error) {
	if code == "" {
		return "", errInvalidRequest("joinCode is required")
	}
	partyID, ok := e.store.ResolveJoinCode(code)
	if !ok {
		return "", errNotFound(CodeJoinCodeNotFound, "join code not found")
	}
	return partyID, nil
}

// JoinParty adds a guest, or refreshes activity for a rejoining member.
func (e *Engine) JoinParty(partyID, userID string) (*Member, error) {
	if userID == "" {
		return nil, errInvalidRequest("userId is required")
	}
	sess, err := e.session(partyID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := e.nowMS()
	m := sess.member(userID)
	if m == nil {
		m = &Member{
			UserID:       userID,
			Role:         RoleGuest,
			JoinedAt:     now,
			LastActiveAt: now,
		}
		sess.addMember(m)
		e.bc.Broadcast(partyID, EventMemberJoined, map[string]any{
			"userId":             userID,
			"activeMembersCount": sess.activeCount(now, e.cfg.ActiveWindow),
		})
	} else {
		sess.touchActivity(userID, now)
	}

	cp := *m
	return &cp, nil
}

// State returns the client-facing snapshot, touching activity when a userId
// is supplied.
func (e *Engine) State(partyID, userID string) (*PartyState, error) {
	sess, err := e.session(partyID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := e.nowMS()
	if userID != "" {
		sess.touchActivity(userID, now)
	}
	return sess.snapshot(now, e.cfg.ActiveWindow), nil
}

// StartParty transitions CREATED → LIVE. Host only.
func (e *Engine) StartParty(partyID, hostID string) error {
	sess, err := e.session(partyID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.party.HostID != hostID {
		return errForbidden(CodeNotHost, "only host can start party")
	}
	if sess.party.Status != StatusCreated {
		return errInvalidState("party already started or ended")
	}
	sess.party.Status = StatusLive
	return nil
}

// EndParty transitions any non-ENDED state to ENDED. Host only; terminal.
func (e *Engine) EndParty(partyID, hostID string) error {
	sess, err := e.session(partyID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.party.HostID != hostID {
		return errForbidden(CodeNotHost, "only host can end party")
	}
	if sess.party.Status == StatusEnded {
		return errInvalidState("party already ended")
	}
	sess.party.Status = StatusEnded
	return nil
}

// Heartbeat refreshes a member's activity window.
func (e *Engine) Heartbeat(partyID, userID string) (bool, error) {
	if userID == "" {
		return false, errInvalidRequest("userId is required")
	}
	sess, err := e.session(partyID)
	if err != nil {
		return false, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := e.nowMS()
	if !sess.touchActivity(userID, now) {
		return false, errNotFound(CodeMemberNotFound, "user is not a member of this party")
	}
	e.bc.Broadcast(partyID, EventPresence, map[string]any{
		"activeMembersCount": sess.activeCount(now, e.cfg.ActiveWindow),
	})
	return true, nil
}

// UpdateMood, UpdateKidFriendly and UpdateAllowSuggestions are host-only and
// unrestricted by party status. They apply to subsequent checks only; a
// suggestion already sampled under the old settings keeps running.

func (e *Engine) UpdateMood(partyID, hostID, mood string) error {
	if mood == "" {
		return errInvalidRequest("mood is required")
	}
	return e.updateSettings(partyID, hostID, func(p *Party) {
		p.Mood = mood
	})
}

func (e *Engine) UpdateKidFriendly(partyID, hostID string, kidFriendly bool) error {
	return e.updateSettings(partyID, hostID, func(p *Party) {
		p.KidFriendly = kidFriendly
	})
}

func (e *Engine) UpdateAllowSuggestions(partyID, hostID string, allow bool) error {
	return e.updateSettings(partyID, hostID, func(p *Party) {
		p.AllowSuggestions = allow
	})
}

func (e *Engine) updateSettings(partyID, hostID string, apply func(*Party)) error {
	sess, err := e.session(partyID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.party.HostID != hostID {
		return errForbidden(CodeNotHost, "only host can change settings")
	}
	apply(&sess.party)
	e.bc.Broadcast(partyID, EventSettingsUpdated, map[string]any{
		"mood":             sess.party.Mood,
		"kidFriendly":      sess.party.KidFriendly,
		"allowSuggestions": sess.party.AllowSuggestions,
	})
	return nil
}

// SetNowPlaying moves a queued track into the now-playing slot. Host only.
func (e *Engine) SetNowPlaying(partyID, hostID, trackID string, startedAt int64) error {
	if trackID == "" {
		return errInvalidRequest("trackId is required")
	}
	sess, err := e.session(partyID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.party.HostID != hostID {
		return errForbidden(CodeNotHost, "only host can set now playing")
	}
	song := sess.songInQueue(trackID)
	if song == nil {
		return errNotFound(CodeTrackNotFound, "track is not in the queue")
	}
	sess.removeFromQueue(trackID)
	sess.nowPlaying = song

	e.bc.Broadcast(partyID, EventNowPlaying, map[string]any{
		"trackId":   trackID,
		"startedAt": startedAt,
	})
	e.broadcastQueue(partyID, sess)
	return nil
}

// SeedQueue appends host-picked catalog tracks. Explicit tracks are silently
// skipped while the party is kid friendly, as are tracks already present.
func (e *Engine) SeedQueue(partyID, hostID string, tracks []TrackInput) (*SeedResult, error) {
	sess, err := e.session(partyID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.party.HostID != hostID {
		return nil, errForbidden(CodeNotHost, "only host can seed the queue")
	}

	added := make([]Song, 0, len(tracks))
	for _, t := range tracks {
		if t.TrackID == "" {
			continue
		}
		if t.Explicit && sess.party.KidFriendly {
			continue
		}
		if sess.findSong(t.TrackID) != nil {
			continue
		}
		song := &Song{
			TrackID:     t.TrackID,
			Title:       t.Title,
			Artist:      t.Artist,
			AlbumArtURL: t.AlbumArtURL,
			Explicit:    t.Explicit,
			Source:      SourceCatalogRec,
			Status:      SongQueued,
		}
		sess.addToQueue(song)
		added = append(added, *song)
	}

	if len(added) > 0 {
		e.broadcastQueue(partyID, sess)
	}

	queue := make([]Song, 0, len(sess.queue))
	for _, song := range sess.queue {
		queue = append(queue, *song)
	}
	return &SeedResult{Added: added, Queue: queue}, nil
}

// RemoveTrack is the host-forced queue removal. Removing an absent track is a
// no-op reported as removed=false.
func (e *Engine) RemoveTrack(partyID, hostID, trackID string) (bool, error) {
	sess, err := e.session(partyID)
	if err != nil {
		return false, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.party.HostID != hostID {
		return false, errForbidden(CodeNotHost, "only host can remove tracks")
	}
	song := sess.songInQueue(trackID)
	if song == nil {
		return false, nil
	}
	sess.setSongStatus(trackID, SongRemoved)
	sess.removeFromQueue(trackID)

	e.bc.Broadcast(partyID, EventSongRemoved, map[string]any{
		"trackId": trackID,
		"reason":  RemoveReasonHostRemove,
	})
	e.broadcastQueue(partyID, sess)
	return true, nil
}

// presence reports the current active-member count for a party.
func (e *Engine) presence(partyID string) (int, bool) {
	sess, ok := e.store.Get(partyID)
	if !ok {
		return 0, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.activeCount(e.nowMS(), e.cfg.ActiveWindow), true
}

// broadcastQueue emits the full resulting queue. Caller holds the session
// lock.
func (e *Engine) broadcastQueue(partyID string, sess *Session) {
	queue := make([]Song, 0, len(sess.queue))
	for _, song := range sess.queue {
		queue = append(queue, *song)
	}
	e.bc.Broadcast(partyID, EventQueueUpdated, map[string]any{
		"queue": queueRows(queue),
	})
}
