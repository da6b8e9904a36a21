package memory

import (
	"context"
	"sync"

	"github.com/Wyydra/huddle/internal/core/domain"
)

type MessageRepository struct {
	mu       sync.RWMutex
	messages map[domain.MessageID]domain.Message
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{
		messages: make(map[domain.MessageID]domain.Message),
	}
}

func (r *MessageRepository) Save(ctx context.Context, msg domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[msg.ID] = msg
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id domain.MessageID) (domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	msg, ok := r.messages[id]
	if !ok {
		return domain.Message{}, &domain.NotFoundError{Collection: "messages", ID: id.String()}
	}
	return msg, nil
}

func (r *MessageRepository) MarkProcessed(ctx context.Context, id domain.MessageID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg, ok := r.messages[id]
	if !ok {
		return &domain.NotFoundError{Collection: "messages", ID: id.String()}
	}
	msg.Processed = true
	r.messages[id] = msg
	return nil
}
