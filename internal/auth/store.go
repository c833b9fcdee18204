package auth

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Vovadm/exammath.ru/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateUser inserts the user and its empty stats row in one
// transaction so a registered user always has statistics.
func (s *Store) CreateUser(ctx context.Context, username, email, hashedPassword string) (*models.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	user := &models.User{Username: username, Email: email, Role: models.RoleStudent}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (username, email, hashed_password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		username, email, hashedPassword, models.RoleStudent,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_stats (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`, user.ID)
	if err != nil {
		return nil, fmt.Errorf("insert user stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, username, email, hashed_password, role, created_at
		FROM users WHERE username = $1`, username))
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, username, email, hashed_password, role, created_at
		FROM users WHERE id = $1`, id))
}

func (s *Store) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
