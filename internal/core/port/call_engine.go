package port

import "github.com/Wyydra/huddle/internal/core/domain"

// CallEngine tracks which peers take part in the call of each room.
type CallEngine interface {
	// Join adds peer to the call of room and returns the peers that were
	// already there. joined is false if peer was already a member.
	Join(room domain.RoomID, peer domain.PeerID) (existing []domain.PeerID, joined bool)
	// Leave removes peer and returns the peers still in the call. left is
	// false if peer was not a member.
	Leave(room domain.RoomID, peer domain.PeerID) (remaining []domain.PeerID, left bool)
	Peers(room domain.RoomID) []domain.PeerID
	SessionsOf(peer domain.PeerID) []domain.RoomID
	// Shares reports whether a and b are in at least one common call.
	Shares(a, b domain.PeerID) bool
}
