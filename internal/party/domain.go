package party

type PartyStatus string

const (
	StatusCreated PartyStatus = "CREATED"
	StatusLive    PartyStatus = "LIVE"
	StatusEnded   PartyStatus = "ENDED"
)

type Role string

const (
	RoleHost  Role = "HOST"
	RoleGuest Role = "GUEST"
)

type SongSource string

const (
	SourceCatalogRec      SongSource = "CATALOG_REC"
	SourceGuestSuggestion SongSource = "GUEST_SUGGESTION"
)

type SongStatus string

const (
	SongQueued   SongStatus = "QUEUED"
	SongTesting  SongStatus = "TESTING"
	SongPromoted SongStatus = "PROMOTED"
	SongRemoved  SongStatus = "REMOVED"
	SongExpired  SongStatus = "EXPIRED"
)

// terminal reports whether a song status admits no further transitions.
func (s SongStatus) terminal() bool {
	return s == SongPromoted || s == SongRemoved || s == SongExpired
}

type VoteType string

const (
	VoteUp   VoteType = "UP"
	VoteDown VoteType = "DOWN"
	VoteNone VoteType = "NONE"
)

type VoteContext string

const (
	ContextQueue   VoteContext = "QUEUE"
	ContextTesting VoteContext = "TESTING"
)

const (
	RemoveReasonDownvotes  = "DOWNVOTE_THRESHOLD"
	RemoveReasonHostRemove = "HOST_REMOVE"
)

// Timestamps are unix milliseconds throughout, matching the wire contract.

type Party struct {
	PartyID          string      `json:"partyId"`
	HostID           string      `json:"hostId"`
	Status           PartyStatus `json:"status"`
	Mood             string      `json:"mood"`
	KidFriendly      bool        `json:"kidFriendly"`
	AllowSuggestions bool        `json:"allowSuggestions"`
	CreatedAt        int64       `json:"createdAt"`
}

type Member struct {
	UserID       string `json:"userId"`
	Role         Role   `json:"role"`
	JoinedAt     int64  `json:"joinedAt"`
	LastActiveAt int64  `json:"lastActiveAt"`
}

type Song struct {
	TrackID     string     `json:"trackId"`
	Title       string     `json:"title"`
	Artist      string     `json:"artist"`
	AlbumArtURL string     `json:"albumArtUrl"`
	Explicit    bool       `json:"explicit"`
	Source      SongSource `json:"source"`
	Status      SongStatus `json:"status"`
	Upvotes     int        `json:"upvotes"`
	Downvotes   int        `json:"downvotes"`
}

type Vote struct {
	UserID    string      `json:"userId"`
	TrackID   string      `json:"trackId"`
	Vote      VoteType    `json:"vote"`
	Context   VoteContext `json:"context"`
	Timestamp int64       `json:"timestamp"`
}

type Suggestion struct {
	TrackID       string   `json:"trackId"`
	Song          *Song    `json:"song"`
	SampleUserIDs []string `json:"sampleUserIds"`
	SampleSize    int      `json:"sampleSize"`
	CreatedAt     int64    `json:"createdAt"`
	ExpandedAt    int64    `json:"expandedAt,omitempty"`

	expandTimer TimerHandle
	expireTimer TimerHandle
}

// PartyState is the snapshot returned to clients on a state fetch.
type PartyState struct {
	Party              Party    `json:"party"`
	ActiveMembersCount int      `json:"activeMembersCount"`
	Members            []Member `json:"members"`
	NowPlaying         *Song    `json:"nowPlaying"`
	Queue              []Song   `json:"queue"`
	TestingSuggestions []Song   `json:"testingSuggestions"`
}

// TrackInput is client-supplied track metadata, so the engine never has to
// reach out to a catalog mid-mutation.
type TrackInput struct {
	TrackID     string `json:"trackId"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	AlbumArtURL string `json:"albumArtUrl"`
	Explicit    bool   `json:"explicit"`
}

type CreatePartyResult struct {
	PartyID  string `json:"partyId"`
	JoinCode string `json:"joinCode"`
	Party    Party  `json:"party"`
}

type VoteResult struct {
	TrackID   string      `json:"trackId"`
	Upvotes   int         `json:"upvotes"`
	Downvotes int         `json:"downvotes"`
	Status    SongStatus  `json:"status"`
	Context   VoteContext `json:"context"`
}

type SuggestResult struct {
	Suggestion    Song     `json:"suggestion"`
	SampleUserIDs []string `json:"sampleUserIds"`
}

type SeedResult struct {
	Added []Song `json:"added"`
	Queue []Song `json:"queue"`
}

// queueRow is the compact queue representation carried by queueUpdated events.
type queueRow struct {
	TrackID string     `json:"trackId"`
	Source  SongSource `json:"source"`
	Status  SongStatus `json:"status"`
}

func queueRows(queue []Song) []queueRow {
	rows := make([]queueRow, 0, len(queue))
	for _, s := range queue {
		rows = append(rows, queueRow{TrackID: s.TrackID, Source: s.Source, Status: s.Status})
	}
	return rows
}
