package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Wyydra/huddle/internal/core/domain"
)

type MessageRepository struct {
	db *DB
}

func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Save(ctx context.Context, msg domain.Message) error {
	var replyTo sql.NullString
	if msg.ReplyTo != nil {
		replyTo = sql.NullString{String: msg.ReplyTo.String(), Valid: true}
	}
	_, err := r.db.db.ExecContext(ctx, `
		INSERT INTO messages (id, room_id, sender_id, content, reply_to, created_at, processed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			reply_to = excluded.reply_to,
			processed = excluded.processed`,
		msg.ID.String(), msg.RoomID.String(), msg.SenderID.String(), msg.Content,
		replyTo, formatTime(msg.CreatedAt), msg.Processed,
	)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id domain.MessageID) (domain.Message, error) {
	var (
		msgID, roomID, senderID, createdAt string
		replyTo                            sql.NullString
		msg                                domain.Message
	)
	err := r.db.db.QueryRowContext(ctx, `
		SELECT id, room_id, sender_id, content, reply_to, created_at, processed
		FROM messages WHERE id = ?`, id.String(),
	).Scan(&msgID, &roomID, &senderID, &msg.Content, &replyTo, &createdAt, &msg.Processed)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Message{}, &domain.NotFoundError{Collection: "messages", ID: id.String()}
	}
	if err != nil {
		return domain.Message{}, fmt.Errorf("find message: %w", err)
	}

	if msg.ID, err = domain.ParseMessageID(msgID); err != nil {
		return domain.Message{}, fmt.Errorf("message id: %w", err)
	}
	if msg.RoomID, err = domain.ParseRoomID(roomID); err != nil {
		return domain.Message{}, fmt.Errorf("message room id: %w", err)
	}
	if msg.SenderID, err = domain.ParseUserID(senderID); err != nil {
		return domain.Message{}, fmt.Errorf("message sender id: %w", err)
	}
	if replyTo.Valid {
		rid, err := domain.ParseMessageID(replyTo.String)
		if err != nil {
			return domain.Message{}, fmt.Errorf("message reply id: %w", err)
		}
		msg.ReplyTo = &rid
	}
	if msg.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Message{}, fmt.Errorf("message created_at: %w", err)
	}
	return msg, nil
}

func (r *MessageRepository) MarkProcessed(ctx context.Context, id domain.MessageID) error {
	res, err := r.db.db.ExecContext(ctx, `UPDATE messages SET processed = 1 WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("mark message processed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark message processed: %w", err)
	}
	if n == 0 {
		return &domain.NotFoundError{Collection: "messages", ID: id.String()}
	}
	return nil
}
