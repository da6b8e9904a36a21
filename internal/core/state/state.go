package state

import "github.com/Wyydra/huddle/internal/core/domain"

type (
	Rooms       = List[domain.RoomID, domain.Room]
	RecentRooms = List[domain.RoomID, domain.RecentRoom]
	Folders     = List[domain.FolderID, domain.Folder]
	Users       = List[domain.UserID, domain.User]
)

// State is an immutable snapshot of one user's workspace. Reducers copy the
// lists they change and share the others, so list identity tells readers
// whether a slice changed.
type State struct {
	Rooms       *Rooms
	RecentRooms *RecentRooms
	Folders     *Folders
	Users       *Users

	CurrentUserID domain.UserID
	CurrentRoomID domain.RoomID

	// Version increases by one for every applied action.
	Version uint64
}

func New() *State {
	return &State{
		Rooms:       NewList[domain.RoomID, domain.Room]("rooms"),
		RecentRooms: NewList[domain.RoomID, domain.RecentRoom]("recentRooms"),
		Folders:     NewList[domain.FolderID, domain.Folder]("folders"),
		Users:       NewList[domain.UserID, domain.User]("users"),
	}
}

// Check verifies the invariants of every collection and the folder
// references into rooms.
func (s *State) Check() error {
	for _, c := range []interface{ Check() error }{s.Rooms, s.RecentRooms, s.Folders, s.Users} {
		if err := c.Check(); err != nil {
			return err
		}
	}
	folders, err := s.Folders.GetAll()
	if err != nil {
		return err
	}
	for _, f := range folders {
		for _, id := range f.RoomIDs {
			if !s.Rooms.Has(id) {
				return &domain.ConsistencyError{Collection: "folders", ID: id.String(), Reason: "dangling room reference in folder " + f.ID.String()}
			}
		}
	}
	return nil
}
