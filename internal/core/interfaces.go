package core

import "github.com/cometvc/comet/internal/domain"

// Frame is a raw outbound payload, already encoded for the wire.
type Frame []byte

// SessionID identifies one live connection, independent of user identity.
type SessionID string

// Close codes sent before dropping a connection attempt. Clients distinguish
// the cause by code alone; no payload accompanies either.
const (
	CloseUnauthorized = 4001
	CloseRoomFull     = 4002
)

// Connection abstracts the transport endpoint of one participant.
// Owned by the adapter; the adapter must Close() it.
type Connection interface {
	TrySend(Frame) error
	Close()
	// CloseWithCode sends a close control frame with the given code, then
	// closes. Used for rejected connection attempts.
	CloseWithCode(code int, reason string)
}

// Member binds the authoritative participant record to its transport
// endpoint. This is what a room stores and fans out to.
type Member struct {
	SID  SessionID
	Meta *domain.Participant
	Conn Connection
}

// JoinResult reports the outcome of a join attempt.
type JoinResult int

const (
	Joined JoinResult = iota
	Rejected
)

// Registry is the single source of truth for room membership.
// All mutation is atomic per room; Snapshot returns a point-in-time copy
// that never observes membership changes mid-iteration.
type Registry interface {
	Join(key domain.RoomKey, m Member) JoinResult
	// Leave is idempotent: removing an absent session is a no-op.
	Leave(key domain.RoomKey, sid SessionID)
	Snapshot(key domain.RoomKey) []Member
	// RoomLanguage returns the language fixed by the first joiner, empty if
	// unset or the room is absent. Only meaningful in RoomShared mode.
	RoomLanguage(key domain.RoomKey) string
	List() []domain.RoomInfo
}
