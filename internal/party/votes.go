package party

// Vote records a member's vote and runs the threshold pass. The whole
// sequence — upsert, recount, threshold checks, broadcasts — executes under
// the session lock, so concurrent votes on the same party serialize.
func (e *Engine) Vote(partyID, userID, trackID string, vote VoteType, ctx VoteContext) (*VoteResult, error) {
	if userID == "" || trackID == "" {
		return nil, errInvalidRequest("userId and trackId are required")
	}
	switch vote {
	case VoteUp, VoteDown, VoteNone:
	default:
		return nil, errInvalidVote("vote must be UP, DOWN, or NONE")
	}
	switch ctx {
	case ContextQueue, ContextTesting:
	default:
		return nil, errInvalidRequest("context must be QUEUE or TESTING")
	}

	sess, err := e.session(partyID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.party.Status != StatusLive {
		return nil, errPartyNotLive("party must be live to vote")
	}

	now := e.nowMS()
	sess.touchActivity(userID, now)

	sess.setVote(userID, trackID, vote, ctx, now)
	up, down := sess.syncSongVoteCounts(trackID)
	active := sess.activeCount(now, e.cfg.ActiveWindow)

	song := sess.findSong(trackID)

	// The bar is a fraction of the members active right now, not of those
	// active when the track entered. Integer counts compare against the
	// real-valued threshold with >=.
	crossedRemove := float64(down) >= e.cfg.RemoveThreshold*float64(active)
	crossedPromote := ctx == ContextTesting && float64(up) >= e.cfg.PromoteThreshold*float64(active)

	status := SongQueued
	if ctx == ContextTesting {
		status = SongTesting
	}
	if song != nil {
		status = song.Status
	}

	// Removal wins when both thresholds are met in the same pass.
	switch {
	case crossedRemove && song != nil && !song.Status.terminal():
		status = SongRemoved
		sess.setSongStatus(trackID, SongRemoved)
		if sug := sess.suggestion(trackID); sug != nil {
			stopSuggestionTimers(sug)
		}
		if ctx == ContextQueue {
			sess.removeFromQueue(trackID)
			e.bc.Broadcast(partyID, EventSongRemoved, map[string]any{
				"trackId": trackID,
				"reason":  RemoveReasonDownvotes,
			})
			e.broadcastQueue(partyID, sess)
		}

	case crossedPromote:
		sug := sess.suggestion(trackID)
		if sug != nil && sug.Song.Status == SongTesting {
			status = SongPromoted
			sug.Song.Status = SongPromoted
			stopSuggestionTimers(sug)
			sess.addToQueue(sug.Song)
			e.bc.Broadcast(partyID, EventSuggestionPromoted, map[string]any{
				"trackId": trackID,
				"status":  SongPromoted,
			})
			e.broadcastQueue(partyID, sess)
		}
	}

	e.bc.Broadcast(partyID, EventVoteUpdate, map[string]any{
		"trackId":   trackID,
		"upvotes":   up,
		"downvotes": down,
		"status":    status,
		"context":   ctx,
	})

	return &VoteResult{
		TrackID:   trackID,
		Upvotes:   up,
		Downvotes: down,
		Status:    status,
		Context:   ctx,
	}, nil
}
