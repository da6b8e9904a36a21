package state

import (
	"fmt"
	"time"

	"github.com/Wyydra/huddle/internal/core/domain"
)

// Reduce applies a to s and returns the next snapshot. s is never modified;
// on error the caller keeps s.
func Reduce(s *State, a Action, now time.Time) (*State, error) {
	next := *s
	next.Version++

	switch a := a.(type) {
	case UpsertRoom:
		if err := a.Room.Validate(s.CurrentUserID); err != nil {
			return nil, err
		}
		next.Rooms = s.Rooms.Clone()
		next.Rooms.Upsert(a.Room)

	case RemoveRoom:
		if !s.Rooms.Has(a.RoomID) {
			return nil, notFound("rooms", a.RoomID)
		}
		next.Rooms = s.Rooms.Clone()
		next.Rooms.RemoveByID(a.RoomID)
		next.Folders = excludeRoomEverywhere(s.Folders, a.RoomID, now)
		if s.RecentRooms.Has(a.RoomID) {
			next.RecentRooms = s.RecentRooms.Clone()
			next.RecentRooms.RemoveByID(a.RoomID)
		}
		if s.CurrentRoomID == a.RoomID {
			next.CurrentRoomID = domain.RoomID{}
		}

	case MoveRoom:
		next.Rooms = s.Rooms.Clone()
		if err := next.Rooms.Move(a.RoomID, a.Index); err != nil {
			return nil, err
		}

	case UpsertUser:
		if err := a.User.Validate(); err != nil {
			return nil, err
		}
		next.Users = s.Users.Clone()
		next.Users.Upsert(a.User)

	case RemoveUser:
		if !s.Users.Has(a.UserID) {
			return nil, notFound("users", a.UserID)
		}
		next.Users = s.Users.Clone()
		next.Users.RemoveByID(a.UserID)

	case UpsertFolder:
		f, err := prepareFolder(s, a.Folder, now)
		if err != nil {
			return nil, err
		}
		next.Folders = s.Folders.Clone()
		next.Folders.Upsert(f)

	case RemoveFolder:
		if !s.Folders.Has(a.FolderID) {
			return nil, notFound("folders", a.FolderID)
		}
		next.Folders = s.Folders.Clone()
		next.Folders.RemoveByID(a.FolderID)

	case AddRoomToFolder:
		f, ok := s.Folders.Get(a.FolderID)
		if !ok {
			return nil, notFound("folders", a.FolderID)
		}
		if !s.Rooms.Has(a.RoomID) {
			return nil, notFound("rooms", a.RoomID)
		}
		if f.Contains(a.RoomID) {
			return s, nil
		}
		f = f.With(a.RoomID)
		f.UpdatedAt = now
		next.Folders = s.Folders.Clone()
		next.Folders.Upsert(f)

	case RemoveRoomFromFolder:
		f, ok := s.Folders.Get(a.FolderID)
		if !ok {
			return nil, notFound("folders", a.FolderID)
		}
		if !f.Contains(a.RoomID) {
			return s, nil
		}
		f = f.Without(a.RoomID)
		f.UpdatedAt = now
		next.Folders = s.Folders.Clone()
		next.Folders.Upsert(f)

	case AddRecentRoom:
		if a.Recent.RoomID.IsZero() {
			return nil, fmt.Errorf("%w: recent room id is required", domain.ErrInvalid)
		}
		r := a.Recent
		if r.LastActivity.IsZero() {
			r.LastActivity = now
		}
		next.RecentRooms = s.RecentRooms.Clone()
		next.RecentRooms.Upsert(r)

	case UpdateRecentRoom:
		r, ok := s.RecentRooms.Get(a.RoomID)
		if !ok {
			return nil, notFound("recentRooms", a.RoomID)
		}
		next.RecentRooms = s.RecentRooms.Clone()
		next.RecentRooms.Upsert(a.Patch.Apply(r))

	case RemoveRecentRoom:
		if !s.RecentRooms.Has(a.RoomID) {
			return s, nil
		}
		next.RecentRooms = s.RecentRooms.Clone()
		next.RecentRooms.RemoveByID(a.RoomID)

	case ResetRecentRooms:
		if s.RecentRooms.Len() == 0 {
			return s, nil
		}
		next.RecentRooms = NewList[domain.RoomID, domain.RecentRoom](s.RecentRooms.Name())

	case SetCurrentRoom:
		if !a.RoomID.IsZero() && !s.Rooms.Has(a.RoomID) {
			return nil, notFound("rooms", a.RoomID)
		}
		if s.CurrentRoomID == a.RoomID {
			return s, nil
		}
		next.CurrentRoomID = a.RoomID

	case SetCurrentUser:
		next.CurrentUserID = a.UserID

	default:
		return nil, fmt.Errorf("%w: unknown action %T", domain.ErrInvalid, a)
	}

	return &next, nil
}

// excludeRoomEverywhere drops roomID from every folder. It returns folders
// itself when no folder referenced the room.
func excludeRoomEverywhere(folders *Folders, roomID domain.RoomID, now time.Time) *Folders {
	var out *Folders
	for _, id := range folders.IDs() {
		f, _ := folders.Get(id)
		if !f.Contains(roomID) {
			continue
		}
		if out == nil {
			out = folders.Clone()
		}
		f = f.Without(roomID)
		f.UpdatedAt = now
		out.Upsert(f)
	}
	if out == nil {
		return folders
	}
	return out
}

func prepareFolder(s *State, f domain.Folder, now time.Time) (domain.Folder, error) {
	if f.ID.IsZero() {
		return f, fmt.Errorf("%w: folder id is required", domain.ErrInvalid)
	}

	ids := make([]domain.RoomID, 0, len(f.RoomIDs))
	seen := make(map[domain.RoomID]struct{}, len(f.RoomIDs))
	for _, id := range f.RoomIDs {
		if !s.Rooms.Has(id) {
			return f, notFound("rooms", id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	f.RoomIDs = ids

	if prev, ok := s.Folders.Get(f.ID); ok {
		f.CreatedAt = prev.CreatedAt
	} else if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
	return f, nil
}

func notFound(collection string, id fmt.Stringer) error {
	return &domain.NotFoundError{Collection: collection, ID: id.String()}
}
