package party

import "net/http"

// Error codes surfaced to clients. The presentation layer maps these to
// user-facing copy; the engine only guarantees they are stable.
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidVote         = "INVALID_VOTE"
	CodePartyNotFound       = "PARTY_NOT_FOUND"
	CodeMemberNotFound      = "MEMBER_NOT_FOUND"
	CodeTrackNotFound       = "TRACK_NOT_FOUND"
	CodeJoinCodeNotFound    = "JOIN_CODE_NOT_FOUND"
	CodeNotHost             = "NOT_HOST"
	CodeInvalidState        = "INVALID_STATE"
	CodePartyNotLive        = "PARTY_NOT_LIVE"
	CodeSuggestionsDisabled = "SUGGESTIONS_DISABLED"
	CodeExplicitBlocked     = "EXPLICIT_CONTENT_BLOCKED"
	CodeDuplicateTrack      = "DUPLICATE_TRACK"
)

type partyError struct {
	status int
	code   string
	msg    string
}

func (e *partyError) Error() string {
	return e.msg
}

func errInvalidRequest(msg string) error {
	return &partyError{status: http.StatusBadRequest, code: CodeInvalidRequest, msg: msg}
}

func errInvalidVote(msg string) error {
	return &partyError{status: http.StatusBadRequest, code: CodeInvalidVote, msg: msg}
}

func errNotFound(code, msg string) error {
	return &partyError{status: http.StatusNotFound, code: code, msg: msg}
}

func errForbidden(code, msg string) error {
	return &partyError{status: http.StatusForbidden, code: code, msg: msg}
}

func errInvalidState(msg string) error {
	return &partyError{status: http.StatusBadRequest, code: CodeInvalidState, msg: msg}
}

func errPartyNotLive(msg string) error {
	return &partyError{status: http.StatusBadRequest, code: CodePartyNotLive, msg: msg}
}

func errDuplicateTrack(msg string) error {
	return &partyError{status: http.StatusConflict, code: CodeDuplicateTrack, msg: msg}
}
