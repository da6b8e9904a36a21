package port

import (
	"context"

	"github.com/Wyydra/huddle/internal/core/domain"
)

type MessageRepository interface {
	Save(ctx context.Context, msg domain.Message) error
	FindByID(ctx context.Context, id domain.MessageID) (domain.Message, error)
	MarkProcessed(ctx context.Context, id domain.MessageID) error
}

type UserRepository interface {
	Save(ctx context.Context, user domain.User) error
	FindByID(ctx context.Context, id domain.UserID) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}
