package domain

import (
	"strings"
	"time"
)

// NewMessage is what a client sends on the chat channel.
type NewMessage struct {
	RoomID  RoomID     `json:"roomId"`
	Content string     `json:"content"`
	ReplyTo *MessageID `json:"replyTo,omitempty"`
}

func (m NewMessage) Validate() error {
	if m.RoomID.IsZero() {
		return invalidf("message room id is required")
	}
	if strings.TrimSpace(m.Content) == "" {
		return invalidf("message content cannot be empty")
	}
	return nil
}

type Message struct {
	ID        MessageID  `json:"id"`
	RoomID    RoomID     `json:"roomId"`
	SenderID  UserID     `json:"senderId"`
	Content   string     `json:"content"`
	ReplyTo   *MessageID `json:"replyTo,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	Processed bool       `json:"processed"`
}

func NewMessageFrom(senderID UserID, in NewMessage, now time.Time) (*Message, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if senderID.IsZero() {
		return nil, invalidf("message sender is required")
	}
	return &Message{
		ID:        NewMessageID(),
		RoomID:    in.RoomID,
		SenderID:  senderID,
		Content:   in.Content,
		ReplyTo:   in.ReplyTo,
		CreatedAt: now.UTC(),
	}, nil
}
