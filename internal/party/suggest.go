package party

import (
	"math"
	"math/rand"
)

// Suggest starts the sampled test pipeline for a guest-proposed track: a
// small random slice of the active crowd sees it first, the sample doubles
// once partway through the window, and the suggestion expires if it never
// crosses the promote threshold.
func (e *Engine) Suggest(partyID, userID string, track TrackInput) (*SuggestResult, error) {
	if userID == "" {
		return nil, errInvalidRequest("userId is required")
	}
	if track.TrackID == "" {
		return nil, errInvalidRequest("trackId is required")
	}

	sess, err := e.session(partyID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.party.Status != StatusLive {
		return nil, errPartyNotLive("party must be live to suggest")
	}
	// The explicit-content rejection outranks the disabled-suggestions one
	// when both apply.
	if track.Explicit && sess.party.KidFriendly {
		return nil, errForbidden(CodeExplicitBlocked, "explicit tracks are blocked at kid-friendly parties")
	}
	if !sess.party.AllowSuggestions {
		return nil, errForbidden(CodeSuggestionsDisabled, "suggestions are disabled for this party")
	}

	now := e.nowMS()
	sess.touchActivity(userID, now)

	// A track may live in the queue or the suggestion table, never both. A
	// terminal suggestion record may be overwritten by a fresh attempt.
	if sess.songInQueue(track.TrackID) != nil {
		return nil, errDuplicateTrack("track is already in the queue")
	}
	if sess.nowPlaying != nil && sess.nowPlaying.TrackID == track.TrackID {
		return nil, errDuplicateTrack("track is currently playing")
	}
	if prev := sess.suggestion(track.TrackID); prev != nil && prev.Song.Status == SongTesting {
		return nil, errDuplicateTrack("track is already being tested")
	}

	size := e.sampleSize(sess.activeCount(now, e.cfg.ActiveWindow))
	sample := sampleUserIDs(sess.activeMembers(now, e.cfg.ActiveWindow), size)

	song := &Song{
		TrackID:     track.TrackID,
		Title:       track.Title,
		Artist:      track.Artist,
		AlbumArtURL: track.AlbumArtURL,
		Explicit:    track.Explicit,
		Source:      SourceGuestSuggestion,
		Status:      SongTesting,
	}
	sug := &Suggestion{
		TrackID:       track.TrackID,
		Song:          song,
		SampleUserIDs: sample,
		SampleSize:    size,
		CreatedAt:     now,
	}
	sess.putSuggestion(sug)

	sug.expandTimer = e.sched.AfterFunc(e.cfg.SuggestExpandAt, func() {
		e.expandSuggestion(partyID, track.TrackID)
	})
	sug.expireTimer = e.sched.AfterFunc(e.cfg.SuggestExpireAt, func() {
		e.expireSuggestion(partyID, track.TrackID)
	})

	e.bc.BroadcastTo(partyID, sample, EventSuggestionTesting, map[string]any{
		"trackId":       track.TrackID,
		"status":        SongTesting,
		"expiresAt":     now + e.cfg.SuggestExpireAt.Milliseconds(),
		"song":          *song,
		"sampleUserIds": sample,
	})

	return &SuggestResult{Suggestion: *song, SampleUserIDs: sample}, nil
}

// expandSuggestion gives a still-testing suggestion a second, larger audience
// drawn from whoever is active now. The guards double as soft cancellation:
// the world may have changed since the timer was scheduled.
func (e *Engine) expandSuggestion(partyID, trackID string) {
	sess, ok := e.store.Get(partyID)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sug := sess.suggestion(trackID)
	if sug == nil || sug.Song.Status != SongTesting || sug.ExpandedAt != 0 {
		return
	}

	now := e.nowMS()
	size := sug.SampleSize * 2
	if size > e.cfg.SampleCap {
		size = e.cfg.SampleCap
	}
	sample := sampleUserIDs(sess.activeMembers(now, e.cfg.ActiveWindow), size)

	sug.SampleUserIDs = sample
	sug.ExpandedAt = now

	e.bc.BroadcastTo(partyID, sample, EventSuggestionTesting, map[string]any{
		"trackId":       trackID,
		"status":        SongTesting,
		"expiresAt":     sug.CreatedAt + e.cfg.SuggestExpireAt.Milliseconds(),
		"song":          *sug.Song,
		"sampleUserIds": sample,
	})
}

// expireSuggestion times out a suggestion that never crossed the promote
// threshold. Promoted or removed suggestions are left untouched.
func (e *Engine) expireSuggestion(partyID, trackID string) {
	sess, ok := e.store.Get(partyID)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sug := sess.suggestion(trackID)
	if sug == nil || sug.Song.Status != SongTesting {
		return
	}

	sug.Song.Status = SongExpired
	e.bc.Broadcast(partyID, EventSuggestionExpired, map[string]any{
		"trackId": trackID,
		"status":  SongExpired,
	})
}

// sampleSize is ceil(active × SamplePercent) clamped to
// [SampleMin, SampleCap].
func (e *Engine) sampleSize(active int) int {
	size := int(math.Ceil(float64(active) * e.cfg.SamplePercent))
	if size < e.cfg.SampleMin {
		size = e.cfg.SampleMin
	}
	if size > e.cfg.SampleCap {
		size = e.cfg.SampleCap
	}
	return size
}

// sampleUserIDs draws size members uniformly without replacement via a
// shuffle over the current active set.
func sampleUserIDs(members []*Member, size int) []string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	if size > len(ids) {
		size = len(ids)
	}
	return ids[:size]
}

func stopSuggestionTimers(sug *Suggestion) {
	if sug.expandTimer != nil {
		sug.expandTimer.Stop()
	}
	if sug.expireTimer != nil {
		sug.expireTimer.Stop()
	}
}
