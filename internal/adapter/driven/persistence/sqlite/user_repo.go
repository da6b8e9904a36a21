package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Wyydra/huddle/internal/core/domain"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Save(ctx context.Context, user domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	_, err := r.db.db.ExecContext(ctx, `
		INSERT INTO users (id, name, avatar_url, last_seen) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			avatar_url = excluded.avatar_url,
			last_seen = excluded.last_seen`,
		user.ID.String(), user.Name, user.AvatarURL, formatTime(user.LastSeen),
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	row := r.db.db.QueryRowContext(ctx, `SELECT id, name, avatar_url, last_seen FROM users WHERE id = ?`, id.String())
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, &domain.NotFoundError{Collection: "users", ID: id.String()}
	}
	return u, err
}

// List returns users sorted by name.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.db.QueryContext(ctx, `SELECT id, name, avatar_url, last_seen FROM users ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (domain.User, error) {
	var (
		id, lastSeen string
		u            domain.User
	)
	if err := s.Scan(&id, &u.Name, &u.AvatarURL, &lastSeen); err != nil {
		return domain.User{}, err
	}
	var err error
	if u.ID, err = domain.ParseUserID(id); err != nil {
		return domain.User{}, fmt.Errorf("user id: %w", err)
	}
	if u.LastSeen, err = parseTime(lastSeen); err != nil {
		return domain.User{}, fmt.Errorf("user last_seen: %w", err)
	}
	return u, nil
}
