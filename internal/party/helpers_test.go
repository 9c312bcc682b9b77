package party

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeTimer struct {
	fn      func()
	delay   time.Duration
	stopped bool
	sched   *fakeScheduler
}

func (t *fakeTimer) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) TimerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{fn: fn, delay: d, sched: s}
	s.timers = append(s.timers, t)
	return t
}

// fire runs every pending timer scheduled with the given delay.
func (s *fakeScheduler) fire(d time.Duration) {
	s.mu.Lock()
	var due []*fakeTimer
	for _, t := range s.timers {
		if t.delay == d && !t.stopped {
			t.stopped = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

func (s *fakeScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

type recordedEvent struct {
	partyID string
	userIDs []string
	event   string
	payload any
}

type recordBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordBroadcaster) Broadcast(partyID, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{partyID: partyID, event: event, payload: payload})
}

func (b *recordBroadcaster) BroadcastTo(partyID string, userIDs []string, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{partyID: partyID, userIDs: userIDs, event: event, payload: payload})
}

func (b *recordBroadcaster) byType(event string) []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recordedEvent
	for _, e := range b.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func newTestEngine(t *testing.T) (*Engine, *recordBroadcaster, *fakeScheduler, *testClock) {
	t.Helper()
	bc := &recordBroadcaster{}
	sched := &fakeScheduler{}
	clock := newTestClock()
	e := NewEngine(NewStore(), DefaultConfig(), bc, sched)
	e.now = clock.Now
	return e, bc, sched, clock
}

// setupLiveParty creates a LIVE party with the host plus guests so that
// exactly total members are active.
func setupLiveParty(t *testing.T, e *Engine, total int) (partyID, hostID string, guests []string) {
	t.Helper()
	hostID = "h1"
	res, err := e.CreateParty(hostID, "chill", false, true)
	require.NoError(t, err)
	partyID = res.PartyID

	for i := 1; i < total; i++ {
		userID := fmt.Sprintf("g%d", i)
		_, err := e.JoinParty(partyID, userID)
		require.NoError(t, err)
		guests = append(guests, userID)
	}

	require.NoError(t, e.StartParty(partyID, hostID))
	return partyID, hostID, guests
}

func seedOneTrack(t *testing.T, e *Engine, partyID, hostID, trackID string) {
	t.Helper()
	res, err := e.SeedQueue(partyID, hostID, []TrackInput{
		{TrackID: trackID, Title: "Track " + trackID, Artist: "Artist"},
	})
	require.NoError(t, err)
	require.Len(t, res.Added, 1)
}
