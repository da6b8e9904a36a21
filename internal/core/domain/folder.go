package domain

import "time"

// Folder groups rooms. RoomIDs are weak references into the room
// collection, never ownership.
type Folder struct {
	ID        FolderID  `json:"id"`
	Name      string    `json:"name"`
	RoomIDs   []RoomID  `json:"roomIds"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (f Folder) Key() FolderID { return f.ID }

func (f Folder) Contains(roomID RoomID) bool {
	for _, id := range f.RoomIDs {
		if id == roomID {
			return true
		}
	}
	return false
}

// Without returns a copy of f with roomID removed from RoomIDs.
func (f Folder) Without(roomID RoomID) Folder {
	ids := make([]RoomID, 0, len(f.RoomIDs))
	for _, id := range f.RoomIDs {
		if id != roomID {
			ids = append(ids, id)
		}
	}
	f.RoomIDs = ids
	return f
}

// With returns a copy of f with roomID appended, unless already present.
func (f Folder) With(roomID RoomID) Folder {
	if f.Contains(roomID) {
		return f
	}
	ids := make([]RoomID, len(f.RoomIDs), len(f.RoomIDs)+1)
	copy(ids, f.RoomIDs)
	f.RoomIDs = append(ids, roomID)
	return f
}
