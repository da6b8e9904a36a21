package domain

import "time"

type RoomType string

const (
	RoomPrivate RoomType = "PRIVATE"
	RoomGroup   RoomType = "GROUP"
)

type Participant struct {
	UserID UserID `json:"userId"`
}

type Room struct {
	ID           RoomID        `json:"id"`
	Type         RoomType      `json:"type"`
	Name         string        `json:"name,omitempty"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"createdAt"`
}

func (r Room) Key() RoomID { return r.ID }

func (r Room) HasParticipant(id UserID) bool {
	for _, p := range r.Participants {
		if p.UserID == id {
			return true
		}
	}
	return false
}

func (r Room) ParticipantIDs() []UserID {
	ids := make([]UserID, 0, len(r.Participants))
	for _, p := range r.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// Interlocutor returns the only participant of a private room that is not
// self.
func (r Room) Interlocutor(self UserID) (UserID, bool) {
	if r.Type != RoomPrivate {
		return UserID{}, false
	}
	var (
		found UserID
		n     int
	)
	for _, p := range r.Participants {
		if p.UserID == self {
			continue
		}
		found = p.UserID
		n++
	}
	if n != 1 {
		return UserID{}, false
	}
	return found, true
}

// Validate checks the room shape as seen by self. A private room must have
// exactly one participant other than self.
func (r Room) Validate(self UserID) error {
	if r.ID.IsZero() {
		return invalidf("room id is required")
	}
	seen := make(map[UserID]struct{}, len(r.Participants))
	for _, p := range r.Participants {
		if p.UserID.IsZero() {
			return invalidf("room %s has a participant without user id", r.ID)
		}
		if _, dup := seen[p.UserID]; dup {
			return invalidf("room %s lists participant %s twice", r.ID, p.UserID)
		}
		seen[p.UserID] = struct{}{}
	}

	switch r.Type {
	case RoomGroup:
		return nil
	case RoomPrivate:
		others := len(seen)
		if _, ok := seen[self]; ok {
			others--
		}
		if others != 1 {
			return invalidf("private room %s must have exactly one other participant, got %d", r.ID, others)
		}
		return nil
	default:
		return invalidf("room %s has unknown type %q", r.ID, r.Type)
	}
}
