package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewParticipant_Validation(t *testing.T) {
	req := require.New(t)

	_, err := NewParticipant("r1", "", "alice", "v1", "en")
	req.ErrorIs(err, ErrUserIDEmpty)

	_, err = NewParticipant("r1", UserID(strings.Repeat("x", MaxUserIDLen+1)), "alice", "v1", "en")
	req.ErrorIs(err, ErrUserIDTooLong)

	_, err = NewParticipant("r1", "u1", "", "v1", "en")
	req.ErrorIs(err, ErrUsernameEmpty)

	_, err = NewParticipant("r1", "u1", strings.Repeat("x", MaxUsernameLen+1), "v1", "en")
	req.ErrorIs(err, ErrUsernameTooLong)

	p, err := NewParticipant("r1", "u1", "alice", "v1", "en")
	req.NoError(err)
	req.Equal(RoomKey("r1"), p.Room)
	req.Equal("en", p.Language)
}

func TestDepartureNotice(t *testing.T) {
	req := require.New(t)
	p, err := NewParticipant("lobby", "u1", "alice", "v1", "en")
	req.NoError(err)

	n := DepartureNotice(p)
	req.Equal("alice has disconnected from room lobby.", n.Text)
	req.Empty(n.Audio)
	req.Equal(UserID("u1"), n.UserID)
	req.Equal(ModelID("v1"), n.ModelID)
}
