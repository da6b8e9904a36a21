// Package selector derives read-only views from workspace snapshots.
// Results are cached on the identity of the lists they read and are
// returned unchanged while those lists stay the same. Callers must not
// modify returned slices.
package selector

import (
	"sort"

	"github.com/Wyydra/huddle/internal/core/domain"
	"github.com/Wyydra/huddle/internal/core/state"
	"github.com/rs/zerolog/log"
)

type roomsKey struct {
	rooms *state.Rooms
}

type activeKey struct {
	rooms   *state.Rooms
	current domain.RoomID
}

type interlocutorKey struct {
	rooms *state.Rooms
	users *state.Users
	self  domain.UserID
}

type folderKey struct {
	rooms   *state.Rooms
	folders *state.Folders
}

type recentKey struct {
	recent *state.RecentRooms
}

type Interlocutor struct {
	User domain.User
	OK   bool
}

type ActiveRoom struct {
	Room domain.Room
	OK   bool
}

// Selectors is safe for concurrent use. One instance should serve one
// workspace; sharing it across workspaces only lowers the hit rate.
type Selectors struct {
	roomList     memo[roomsKey, []domain.Room]
	activeRoom   memo[activeKey, ActiveRoom]
	interlocutor keyed[domain.RoomID, interlocutorKey, Interlocutor]
	folderRooms  keyed[domain.FolderID, folderKey, []domain.Room]
	recentRooms  memo[recentKey, []domain.RecentRoom]
}

func New() *Selectors {
	return &Selectors{}
}

// RoomList returns the rooms in their authoritative order.
func (s *Selectors) RoomList(st *state.State) []domain.Room {
	return s.roomList.get(roomsKey{st.Rooms}, func() []domain.Room {
		return all(st.Rooms)
	})
}

// ActiveRoom returns the room selected as current.
func (s *Selectors) ActiveRoom(st *state.State) (domain.Room, bool) {
	res := s.activeRoom.get(activeKey{st.Rooms, st.CurrentRoomID}, func() ActiveRoom {
		if st.CurrentRoomID.IsZero() {
			return ActiveRoom{}
		}
		r, ok := st.Rooms.Get(st.CurrentRoomID)
		return ActiveRoom{Room: r, OK: ok}
	})
	return res.Room, res.OK
}

// Interlocutor resolves the other participant of a private room. When the
// user is not in the workspace user list only the id is filled in.
func (s *Selectors) Interlocutor(st *state.State, roomID domain.RoomID) (domain.User, bool) {
	key := interlocutorKey{st.Rooms, st.Users, st.CurrentUserID}
	res := s.interlocutor.get(roomID, key, func() Interlocutor {
		r, ok := st.Rooms.Get(roomID)
		if !ok {
			return Interlocutor{}
		}
		uid, ok := r.Interlocutor(st.CurrentUserID)
		if !ok {
			return Interlocutor{}
		}
		if u, ok := st.Users.Get(uid); ok {
			return Interlocutor{User: u, OK: true}
		}
		return Interlocutor{User: domain.User{ID: uid}, OK: true}
	})
	return res.User, res.OK
}

// FolderRooms returns the rooms referenced by a folder, in folder order.
func (s *Selectors) FolderRooms(st *state.State, folderID domain.FolderID) []domain.Room {
	return s.folderRooms.get(folderID, folderKey{st.Rooms, st.Folders}, func() []domain.Room {
		f, ok := st.Folders.Get(folderID)
		if !ok {
			return []domain.Room{}
		}
		out := make([]domain.Room, 0, len(f.RoomIDs))
		for _, id := range f.RoomIDs {
			if r, ok := st.Rooms.Get(id); ok {
				out = append(out, r)
			}
		}
		return out
	})
}

// RecentRooms returns recent rooms, most recently active first.
func (s *Selectors) RecentRooms(st *state.State) []domain.RecentRoom {
	return s.recentRooms.get(recentKey{st.RecentRooms}, func() []domain.RecentRoom {
		out := all(st.RecentRooms)
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].LastActivity.After(out[j].LastActivity)
		})
		return out
	})
}

// IsOwnMessage reports whether the current user sent msg.
func IsOwnMessage(st *state.State, msg domain.Message) bool {
	return !st.CurrentUserID.IsZero() && msg.SenderID == st.CurrentUserID
}

func all[K comparable, T state.Entity[K]](l *state.List[K, T]) []T {
	items, err := l.GetAll()
	if err != nil {
		log.Error().Err(err).Str("collection", l.Name()).Msg("Inconsistent collection")
		return []T{}
	}
	return items
}
