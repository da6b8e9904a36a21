package domain

import (
	"github.com/google/uuid"
)

type UserID uuid.UUID
type RoomID uuid.UUID
type FolderID uuid.UUID
type MessageID uuid.UUID

// PeerID identifies one websocket connection taking part in calls.
type PeerID uuid.UUID

func NewUserID() UserID {
	return UserID(uuid.New())
}

func NewRoomID() RoomID {
	return RoomID(uuid.New())
}

func NewFolderID() FolderID {
	return FolderID(uuid.New())
}

func NewMessageID() MessageID {
	return MessageID(uuid.New())
}

func NewPeerID() PeerID {
	return PeerID(uuid.New())
}

func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(id), nil
}

func ParseRoomID(s string) (RoomID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return RoomID{}, err
	}
	return RoomID(id), nil
}

func ParseFolderID(s string) (FolderID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return FolderID{}, err
	}
	return FolderID(id), nil
}

func ParseMessageID(s string) (MessageID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return MessageID{}, err
	}
	return MessageID(id), nil
}

func ParsePeerID(s string) (PeerID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return PeerID{}, err
	}
	return PeerID(id), nil
}

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id RoomID) String() string    { return uuid.UUID(id).String() }
func (id FolderID) String() string  { return uuid.UUID(id).String() }
func (id MessageID) String() string { return uuid.UUID(id).String() }
func (id PeerID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool    { return id == UserID{} }
func (id RoomID) IsZero() bool    { return id == RoomID{} }
func (id FolderID) IsZero() bool  { return id == FolderID{} }
func (id MessageID) IsZero() bool { return id == MessageID{} }
func (id PeerID) IsZero() bool    { return id == PeerID{} }

// Text marshaling keeps ids readable in JSON payloads.

func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id RoomID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *RoomID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id FolderID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *FolderID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id MessageID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *MessageID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id PeerID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *PeerID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
