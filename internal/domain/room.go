package domain

// RoomKey is the opaque identifier a client supplies in the connect path.
type RoomKey string

// LanguageMode selects how the target language for a recipient is resolved.
type LanguageMode int

const (
	// PerRecipient translates into each recipient's own preferred language.
	PerRecipient LanguageMode = iota
	// RoomShared translates everything into the language fixed by the
	// first participant that joined the room.
	RoomShared
)

// RoomPolicy is the behavioral configuration of the room registry.
// Capacity 0 means unbounded. Echo controls whether a sender receives
// their own utterance back.
type RoomPolicy struct {
	Capacity     int
	LanguageMode LanguageMode
	Echo         bool
}

// RoomInfo is a read-only view for APIs.
type RoomInfo struct {
	Key         RoomKey `json:"key"`
	MemberCount int     `json:"member_count"`
	Language    string  `json:"language,omitempty"`
}
