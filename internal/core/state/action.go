package state

import (
	"time"

	"github.com/Wyydra/huddle/internal/core/domain"
)

// Action is the closed set of workspace mutations. Only the types below
// implement it; Reduce handles each of them.
type Action interface {
	action()
}

type UpsertRoom struct{ Room domain.Room }

// RemoveRoom deletes a room and every reference to it.
type RemoveRoom struct{ RoomID domain.RoomID }

type MoveRoom struct {
	RoomID domain.RoomID
	Index  int
}

type UpsertUser struct{ User domain.User }

type RemoveUser struct{ UserID domain.UserID }

type UpsertFolder struct{ Folder domain.Folder }

type RemoveFolder struct{ FolderID domain.FolderID }

type AddRoomToFolder struct {
	FolderID domain.FolderID
	RoomID   domain.RoomID
}

type RemoveRoomFromFolder struct {
	FolderID domain.FolderID
	RoomID   domain.RoomID
}

type AddRecentRoom struct{ Recent domain.RecentRoom }

type UpdateRecentRoom struct {
	RoomID domain.RoomID
	Patch  domain.RecentRoomPatch
}

type RemoveRecentRoom struct{ RoomID domain.RoomID }

type ResetRecentRooms struct{}

// SetCurrentRoom selects the active room. A zero id clears it.
type SetCurrentRoom struct{ RoomID domain.RoomID }

type SetCurrentUser struct{ UserID domain.UserID }

func (UpsertRoom) action()           {}
func (RemoveRoom) action()           {}
func (MoveRoom) action()             {}
func (UpsertUser) action()           {}
func (RemoveUser) action()           {}
func (UpsertFolder) action()         {}
func (RemoveFolder) action()         {}
func (AddRoomToFolder) action()      {}
func (RemoveRoomFromFolder) action() {}
func (AddRecentRoom) action()        {}
func (UpdateRecentRoom) action()     {}
func (RemoveRecentRoom) action()     {}
func (ResetRecentRooms) action()     {}
func (SetCurrentRoom) action()       {}
func (SetCurrentUser) action()       {}

// Clock returns the time stamped on folders. Tests replace it.
type Clock func() time.Time
