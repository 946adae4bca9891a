package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cometvc/comet/internal/core"
	"github.com/cometvc/comet/internal/domain"
)

func member(t *testing.T, room domain.RoomKey, user, lang string) core.Member {
	t.Helper()
	p, err := domain.NewParticipant(room, domain.UserID(user), user, "v-"+domain.ModelID(user), lang)
	require.NoError(t, err)
	return core.Member{SID: core.SessionID(uuid.NewString()), Meta: p}
}

func TestRegistry_RoomExistsIffNonEmpty(t *testing.T) {
	req := require.New(t)
	reg := NewRoomRegistry(domain.RoomPolicy{})

	// Given no one has joined
	req.Empty(reg.List())

	// When a participant joins
	a := member(t, "r1", "alice", "en")
	req.Equal(core.Joined, reg.Join("r1", a))

	// Then the room exists with one member
	infos := reg.List()
	req.Len(infos, 1)
	req.Equal(domain.RoomKey("r1"), infos[0].Key)
	req.Equal(1, infos[0].MemberCount)

	// When the last participant leaves
	reg.Leave("r1", a.SID)

	// Then the room is gone
	req.Empty(reg.List())
	req.Nil(reg.Snapshot("r1"))
}

func TestRegistry_CapacityRejectionDoesNotMutate(t *testing.T) {
	req := require.New(t)
	reg := NewRoomRegistry(domain.RoomPolicy{Capacity: 2})

	a := member(t, "r1", "alice", "en")
	b := member(t, "r1", "bob", "fr")
	c := member(t, "r1", "carol", "de")
	req.Equal(core.Joined, reg.Join("r1", a))
	req.Equal(core.Joined, reg.Join("r1", b))

	// When a third participant attempts to join a full room
	req.Equal(core.Rejected, reg.Join("r1", c))

	// Then membership is unchanged
	snap := reg.Snapshot("r1")
	req.Len(snap, 2)
	req.Equal(a.SID, snap[0].SID)
	req.Equal(b.SID, snap[1].SID)
}

func TestRegistry_LeaveIsIdempotent(t *testing.T) {
	req := require.New(t)
	reg := NewRoomRegistry(domain.RoomPolicy{})

	a := member(t, "r1", "alice", "en")
	b := member(t, "r1", "bob", "fr")
	reg.Join("r1", a)
	reg.Join("r1", b)

	reg.Leave("r1", a.SID)
	// Second removal of the same session is a no-op
	reg.Leave("r1", a.SID)
	// And so is leaving a room that never existed
	reg.Leave("nope", a.SID)

	snap := reg.Snapshot("r1")
	req.Len(snap, 1)
	req.Equal(b.SID, snap[0].SID)
}

func TestRegistry_SnapshotIsACopyInJoinOrder(t *testing.T) {
	req := require.New(t)
	reg := NewRoomRegistry(domain.RoomPolicy{})

	a := member(t, "r1", "alice", "en")
	b := member(t, "r1", "bob", "fr")
	c := member(t, "r1", "carol", "de")
	reg.Join("r1", a)
	reg.Join("r1", b)
	reg.Join("r1", c)

	snap := reg.Snapshot("r1")
	req.Len(snap, 3)
	req.Equal([]core.SessionID{a.SID, b.SID, c.SID}, []core.SessionID{snap[0].SID, snap[1].SID, snap[2].SID})

	// Mutations after the snapshot are not observed by it
	reg.Leave("r1", b.SID)
	req.Len(snap, 3)
	req.Len(reg.Snapshot("r1"), 2)
}

func TestRegistry_RoomLanguageFixedByFirstJoiner(t *testing.T) {
	req := require.New(t)
	reg := NewRoomRegistry(domain.RoomPolicy{LanguageMode: domain.RoomShared})

	a := member(t, "r1", "alice", "es")
	b := member(t, "r1", "bob", "fr")
	reg.Join("r1", a)
	reg.Join("r1", b)

	// The first joiner fixes the room language
	req.Equal("es", reg.RoomLanguage("r1"))

	// Even after the first joiner leaves
	reg.Leave("r1", a.SID)
	req.Equal("es", reg.RoomLanguage("r1"))

	// A recreated room takes the new first joiner's language
	reg.Leave("r1", b.SID)
	req.Equal("", reg.RoomLanguage("r1"))
	reg.Join("r1", b)
	req.Equal("fr", reg.RoomLanguage("r1"))
}

func TestRegistry_ConcurrentJoinLeave(t *testing.T) {
	req := require.New(t)
	reg := NewRoomRegistry(domain.RoomPolicy{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room := domain.RoomKey(fmt.Sprintf("room-%d", i%4))
			for j := 0; j < 50; j++ {
				m := core.Member{
					SID:  core.SessionID(uuid.NewString()),
					Meta: &domain.Participant{Room: room, UserID: domain.UserID(fmt.Sprintf("u-%d-%d", i, j)), Username: "u", Language: "en"},
				}
				reg.Join(room, m)
				reg.Snapshot(room)
				reg.Leave(room, m.SID)
			}
		}(i)
	}
	wg.Wait()

	// Every room drained, so the registry must be empty again
	req.Empty(reg.List())
}
