package service

import (
	"context"
	"time"

	"github.com/Wyydra/huddle/internal/core/domain"
	"github.com/Wyydra/huddle/internal/core/port"
	"github.com/rs/zerolog/log"
)

type ChatService struct {
	repo       port.MessageRepository
	gateway    port.RealTimeGateway
	workspaces *WorkspaceService
	now        func() time.Time
}

func NewChatService(repo port.MessageRepository, gateway port.RealTimeGateway, workspaces *WorkspaceService) *ChatService {
	return &ChatService{
		repo:       repo,
		gateway:    gateway,
		workspaces: workspaces,
		now:        time.Now,
	}
}

// SendMessage stores a message and delivers it to the participants of its
// room. The sender must take part in the room.
func (s *ChatService) SendMessage(ctx context.Context, senderID domain.UserID, in domain.NewMessage) (*domain.Message, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	room, err := s.workspaces.Room(ctx, senderID, in.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(senderID) {
		return nil, &domain.NotFoundError{Collection: "rooms", ID: in.RoomID.String()}
	}

	msg, err := domain.NewMessageFrom(senderID, in, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, *msg); err != nil {
		return nil, err
	}

	for _, uid := range room.ParticipantIDs() {
		if err := s.workspaces.TouchRoom(ctx, uid, room.ID, msg.CreatedAt); err != nil {
			log.Warn().Err(err).Str("user_id", uid.String()).Msg("Failed to update recent room")
		}
	}

	if err := s.gateway.DeliverMessage(ctx, room.ParticipantIDs(), *msg); err != nil {
		return msg, err
	}
	return msg, nil
}

// GetMessage returns a message of a room the user takes part in.
func (s *ChatService) GetMessage(ctx context.Context, userID domain.UserID, id domain.MessageID) (domain.Message, error) {
	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Message{}, err
	}
	if _, err := s.workspaces.Room(ctx, userID, msg.RoomID); err != nil {
		return domain.Message{}, &domain.NotFoundError{Collection: "messages", ID: id.String()}
	}
	return msg, nil
}

func (s *ChatService) MarkProcessed(ctx context.Context, userID domain.UserID, id domain.MessageID) error {
	if _, err := s.GetMessage(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.MarkProcessed(ctx, id)
}
