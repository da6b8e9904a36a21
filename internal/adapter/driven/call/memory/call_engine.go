package memory

import (
	"sync"

	"github.com/Wyydra/huddle/internal/core/domain"
)

// CallEngine keeps call membership in memory. Peers of a call are kept in
// join order.
type CallEngine struct {
	mu       sync.RWMutex
	sessions map[domain.RoomID][]domain.PeerID
}

func NewCallEngine() *CallEngine {
	return &CallEngine{
		sessions: make(map[domain.RoomID][]domain.PeerID),
	}
}

func (e *CallEngine) Join(room domain.RoomID, peer domain.PeerID) ([]domain.PeerID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	peers := e.sessions[room]
	if indexOf(peers, peer) >= 0 {
		return nil, false
	}
	existing := make([]domain.PeerID, len(peers))
	copy(existing, peers)
	e.sessions[room] = append(peers, peer)
	return existing, true
}

func (e *CallEngine) Leave(room domain.RoomID, peer domain.PeerID) ([]domain.PeerID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	peers := e.sessions[room]
	i := indexOf(peers, peer)
	if i < 0 {
		return nil, false
	}
	remaining := make([]domain.PeerID, 0, len(peers)-1)
	remaining = append(remaining, peers[:i]...)
	remaining = append(remaining, peers[i+1:]...)
	if len(remaining) == 0 {
		delete(e.sessions, room)
	} else {
		e.sessions[room] = remaining
	}

	out := make([]domain.PeerID, len(remaining))
	copy(out, remaining)
	return out, true
}

func (e *CallEngine) Peers(room domain.RoomID) []domain.PeerID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.PeerID, len(e.sessions[room]))
	copy(out, e.sessions[room])
	return out
}

func (e *CallEngine) SessionsOf(peer domain.PeerID) []domain.RoomID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var rooms []domain.RoomID
	for room, peers := range e.sessions {
		if indexOf(peers, peer) >= 0 {
			rooms = append(rooms, room)
		}
	}
	return rooms
}

func (e *CallEngine) Shares(a, b domain.PeerID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, peers := range e.sessions {
		if indexOf(peers, a) >= 0 && indexOf(peers, b) >= 0 {
			return true
		}
	}
	return false
}

func indexOf(peers []domain.PeerID, p domain.PeerID) int {
	for i, v := range peers {
		if v == p {
			return i
		}
	}
	return -1
}
