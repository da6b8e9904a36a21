package ws

import "github.com/Wyydra/huddle/internal/core/domain"

// Client is one live connection. Send methods must not block.
type Client interface {
	ID() domain.PeerID
	UserID() domain.UserID
	SendText(msg domain.Message) error
	SendSignal(sig domain.Signal) error
	Close() error
}
