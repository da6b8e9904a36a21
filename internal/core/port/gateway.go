package port

import (
	"context"

	"github.com/Wyydra/huddle/internal/core/domain"
)

type RealTimeGateway interface {
	// DeliverMessage sends msg to every connection of the given users.
	DeliverMessage(ctx context.Context, userIDs []domain.UserID, msg domain.Message) error
	// SendSignal sends sig to exactly one peer connection.
	SendSignal(ctx context.Context, peerID domain.PeerID, sig domain.Signal) error
}
