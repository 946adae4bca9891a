// Package domain contains entities without logic, just meta-data.
package domain

import "errors"

const (
	MaxUserIDLen   = 36
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUserIDEmpty     = errors.New("user id empty")
	ErrUserIDTooLong   = errors.New("user id too long")
)

type (
	UserID  string
	ModelID string
)

// Participant is one live connection inside a room. The registry owns the
// authoritative record; everything here is immutable after construction and
// safe to read from concurrent fan-out goroutines.
type Participant struct {
	Room     RoomKey
	UserID   UserID
	Username string
	// Model selects the synthesized voice for this participant's outgoing audio.
	Model ModelID
	// Language is the preferred language for inbound text, empty if unset.
	Language string
}

// NewParticipant validates identity fields and avoids ad-hoc struct literals
// in adapters.
func NewParticipant(room RoomKey, userID UserID, username string, model ModelID, language string) (*Participant, error) {
	if len(userID) == 0 {
		return nil, ErrUserIDEmpty
	}
	if len(userID) > MaxUserIDLen {
		return nil, ErrUserIDTooLong
	}
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	return &Participant{
		Room:     room,
		UserID:   userID,
		Username: username,
		Model:    model,
		Language: language,
	}, nil
}
