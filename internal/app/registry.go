package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/cometvc/comet/internal/core"
	"github.com/cometvc/comet/internal/domain"
)

// room is a threadsafe in-memory membership set. Members are kept in join
// order; the room never closes adapter-owned connections.
type room struct {
	mu      sync.Mutex
	members []core.Member
	// language is fixed by the first joiner, used in RoomShared mode.
	language string
	// gone is set once the room has been emptied and unlinked from the
	// registry. A stale pointer must not be joined.
	gone bool
}

// RoomRegistry owns the room map. The outer lock guards only the map;
// membership mutation takes the per-room lock, so operations on different
// rooms never serialize on each other.
type RoomRegistry struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomKey]*room
	policy domain.RoomPolicy
}

func NewRoomRegistry(policy domain.RoomPolicy) *RoomRegistry {
	return &RoomRegistry{
		rooms:  make(map[domain.RoomKey]*room),
		policy: policy,
	}
}

func (r *RoomRegistry) Policy() domain.RoomPolicy { return r.policy }

func (r *RoomRegistry) getOrCreate(key domain.RoomKey) *room {
	r.mu.RLock()
	rm, ok := r.rooms[key]
	r.mu.RUnlock()
	if ok {
		return rm
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rm, ok = r.rooms[key]; ok {
		return rm
	}
	rm = &room{}
	r.rooms[key] = rm
	return rm
}

// Join registers a member, creating the room if absent. With a capacity cap
// configured, a full room yields Rejected and leaves membership untouched.
func (r *RoomRegistry) Join(key domain.RoomKey, m core.Member) core.JoinResult {
	for {
		rm := r.getOrCreate(key)
		rm.mu.Lock()
		if rm.gone {
			// Lost the race against the last leave; the map entry is
			// fresh again on the next iteration.
			rm.mu.Unlock()
			continue
		}
		if r.policy.Capacity > 0 && len(rm.members) >= r.policy.Capacity {
			rm.mu.Unlock()
			log.Warn().Str("module", "app.registry").Str("room", string(key)).Str("user", string(m.Meta.UserID)).Msg("join rejected, room full")
			return core.Rejected
		}
		if len(rm.members) == 0 {
			rm.language = m.Meta.Language
		}
		rm.members = append(rm.members, m)
		rm.mu.Unlock()
		log.Info().Str("module", "app.registry").Str("room", string(key)).Str("sid", string(m.SID)).Str("user", string(m.Meta.UserID)).Msg("member joined")
		return core.Joined
	}
}

// Leave removes the matching session and deletes the room the moment it
// becomes empty. Removing an absent session is a no-op.
func (r *RoomRegistry) Leave(key domain.RoomKey, sid core.SessionID) {
	r.mu.RLock()
	rm, ok := r.rooms[key]
	r.mu.RUnlock()
	if !ok {
		return
	}

	rm.mu.Lock()
	removed := false
	for i, m := range rm.members {
		if m.SID == sid {
			rm.members = append(rm.members[:i], rm.members[i+1:]...)
			removed = true
			break
		}
	}
	emptied := removed && len(rm.members) == 0 && !rm.gone
	if emptied {
		rm.gone = true
	}
	rm.mu.Unlock()

	if removed {
		log.Info().Str("module", "app.registry").Str("room", string(key)).Str("sid", string(sid)).Msg("member left")
	}
	if emptied {
		r.mu.Lock()
		if cur, ok := r.rooms[key]; ok && cur == rm {
			delete(r.rooms, key)
		}
		r.mu.Unlock()
		log.Info().Str("module", "app.registry").Str("room", string(key)).Msg("room emptied, removed")
	}
}

// Snapshot returns a point-in-time copy of current membership in join order.
// Fan-out iterates the copy, never the live slice.
func (r *RoomRegistry) Snapshot(key domain.RoomKey) []core.Member {
	r.mu.RLock()
	rm, ok := r.rooms[key]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make([]core.Member, len(rm.members))
	copy(out, rm.members)
	return out
}

// RoomLanguage returns the language fixed by the first joiner, empty if the
// room is absent or the first joiner had none.
func (r *RoomRegistry) RoomLanguage(key domain.RoomKey) string {
	r.mu.RLock()
	rm, ok := r.rooms[key]
	r.mu.RUnlock()
	if !ok {
		return ""
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.language
}

func (r *RoomRegistry) List() []domain.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RoomInfo, 0, len(r.rooms))
	for key, rm := range r.rooms {
		rm.mu.Lock()
		info := domain.RoomInfo{Key: key, MemberCount: len(rm.members)}
		if r.policy.LanguageMode == domain.RoomShared {
			info.Language = rm.language
		}
		rm.mu.Unlock()
		out = append(out, info)
	}
	return out
}
