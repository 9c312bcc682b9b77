package party

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"
)

var ErrDuplicateParty = errors.New("party already exists")

const joinCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const joinCodeLen = 6

// Store owns every party session. It is created at process start and holds
// everything in memory; a restart drops all state, which is a documented
// limitation of the system.
type Store struct {
	mu        sync.RWMutex
	parties   map[string]*Session
	joinCodes map[string]string
}

func NewStore() *Store {
	return &Store{
		parties:   make(map[string]*Session),
		joinCodes: make(map[string]string),
	}
}

// CreateParty inserts a new session and returns its join code. The code is
// regenerated on the (astronomically unlikely) collision with a live one.
func (s *Store) CreateParty(p Party) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.parties[p.PartyID]; exists {
		return "", ErrDuplicateParty
	}

	code := generateJoinCode()
	for {
		if _, taken := s.joinCodes[code]; !taken {
			break
		}
		code = generateJoinCode()
	}

	s.parties[p.PartyID] = newSession(p)
	s.joinCodes[code] = p.PartyID
	return code, nil
}

func (s *Store) Get(partyID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.parties[partyID]
	return sess, ok
}

// ResolveJoinCode maps a join code to a party ID, case-insensitively.
func (s *Store) ResolveJoinCode(code string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	partyID, ok := s.joinCodes[strings.ToUpper(strings.TrimSpace(code))]
	return partyID, ok
}

func generateJoinCode() string {
	var b [joinCodeLen]byte
	for i := range b {
		b[i] = joinCodeChars[rand.Intn(len(joinCodeChars))]
	}
	return string(b[:])
}

// Session aggregates all state of one party. Callers serialize access through
// mu: every public engine operation and every timer callback runs a full
// handler pass under the lock, so the helper methods below assume it is held.
type Session struct {
	mu sync.Mutex

	party       Party
	members     map[string]*Member
	queue       []*Song
	nowPlaying  *Song
	votes       map[string]*Vote
	suggestions map[string]*Suggestion
}

func newSession(p Party) *Session {
	return &Session{
		party:       p,
		members:     make(map[string]*Member),
		queue:       make([]*Song, 0),
		votes:       make(map[string]*Vote),
		suggestions: make(map[string]*Suggestion),
	}
}

func voteKey(userID, trackID string) string {
	// Context is deliberately not part of the key: a later vote on the same
	// track in another context overwrites the earlier one.
	return userID + ":" + trackID
}

func (s *Session) addMember(m *Member) {
	s.members[m.UserID] = m
}

func (s *Session) member(userID string) *Member {
	return s.members[userID]
}

// touchActivity refreshes a member's activity timestamp. It reports false for
// non-members so callers can tell "not a member" from "updated".
func (s *Session) touchActivity(userID string, now int64) bool {
	m, ok := s.members[userID]
	if !ok {
		return false
	}
	m.LastActiveAt = now
	return true
}

// activeMembers is computed fresh on every call; activity shifts continuously
// and the result doubles as the suggestion sampling pool.
func (s *Session) activeMembers(now int64, window time.Duration) []*Member {
	windowMS := window.Milliseconds()
	var out []*Member
	for _, m := range s.members {
		if now-m.LastActiveAt <= windowMS {
			out = append(out, m)
		}
	}
	return out
}

func (s *Session) activeCount(now int64, window time.Duration) int {
	return len(s.activeMembers(now, window))
}

func (s *Session) snapshot(now int64, window time.Duration) *PartyState {
	members := make([]Member, 0, len(s.members))
	for _, m := range s.members {
		members = append(members, *m)
	}

	queue := make([]Song, 0, len(s.queue))
	for _, song := range s.queue {
		queue = append(queue, *song)
	}

	var testing []Song
	for _, sug := range s.suggestions {
		if sug.Song.Status == SongTesting {
			testing = append(testing, *sug.Song)
		}
	}
	if testing == nil {
		testing = []Song{}
	}

	var nowPlaying *Song
	if s.nowPlaying != nil {
		cp := *s.nowPlaying
		nowPlaying = &cp
	}

	return &PartyState{
		Party:              s.party,
		ActiveMembersCount: s.activeCount(now, window),
		Members:            members,
		NowPlaying:         nowPlaying,
		Queue:              queue,
		TestingSuggestions: testing,
	}
}

func (s *Session) addToQueue(song *Song) {
	s.queue = append(s.queue, song)
}

// removeFromQueue filters the queue by track ID. Removing an absent track
// reports no change rather than erroring.
func (s *Session) removeFromQueue(trackID string) bool {
	kept := s.queue[:0]
	removed := false
	for _, song := range s.queue {
		if song.TrackID == trackID {
			removed = true
			continue
		}
		kept = append(kept, song)
	}
	s.queue = kept
	return removed
}

func (s *Session) songInQueue(trackID string) *Song {
	for _, song := range s.queue {
		if song.TrackID == trackID {
			return song
		}
	}
	return nil
}

// findSong locates a track wherever it currently lives: queue, suggestion
// table or the now-playing slot.
func (s *Session) findSong(trackID string) *Song {
	if song := s.songInQueue(trackID); song != nil {
		return song
	}
	if sug, ok := s.suggestions[trackID]; ok {
		return sug.Song
	}
	if s.nowPlaying != nil && s.nowPlaying.TrackID == trackID {
		return s.nowPlaying
	}
	return nil
}

// setVote upserts a vote record; NONE deletes it rather than storing a third
// value.
func (s *Session) setVote(userID, trackID string, vote VoteType, ctx VoteContext, now int64) {
	key := voteKey(userID, trackID)
	if vote == VoteNone {
		delete(s.votes, key)
		return
	}
	s.votes[key] = &Vote{
		UserID:    userID,
		TrackID:   trackID,
		Vote:      vote,
		Context:   ctx,
		Timestamp: now,
	}
}

// voteCounts tallies live votes for a track. O(total votes), fine for the
// intended scale of hundreds of guests.
func (s *Session) voteCounts(trackID string) (up, down int) {
	for _, v := range s.votes {
		if v.TrackID != trackID {
			continue
		}
		switch v.Vote {
		case VoteUp:
			up++
		case VoteDown:
			down++
		}
	}
	return up, down
}

// syncSongVoteCounts writes freshly recomputed counts onto the song. This is
// the only write path for the cached counters; nothing increments them.
func (s *Session) syncSongVoteCounts(trackID string) (up, down int) {
	up, down = s.voteCounts(trackID)
	if song := s.findSong(trackID); song != nil {
		song.Upvotes = up
		song.Downvotes = down
	}
	return up, down
}

// setSongStatus transitions a song toward a terminal state. Terminal songs
// are left untouched so statuses stay monotonic.
func (s *Session) setSongStatus(trackID string, status SongStatus) {
	song := s.findSong(trackID)
	if song == nil || song.Status.terminal() {
		return
	}
	song.Status = status
}

func (s *Session) suggestion(trackID string) *Suggestion {
	return s.suggestions[trackID]
}

func (s *Session) putSuggestion(sug *Suggestion) {
	s.suggestions[sug.TrackID] = sug
}
