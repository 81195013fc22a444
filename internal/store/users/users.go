package users

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/staylytics/backend/internal/store"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Don't expose in JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UsersRepository struct {
	db  *store.DB
	log *zap.Logger
}

func NewUsersRepository(db *store.DB, log *zap.Logger) *UsersRepository {
	return &UsersRepository{db: db, log: log}
}

func (r *UsersRepository) Create(ctx context.Context, user *User) (*User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.Pool.QueryRow(ctx, query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *UsersRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

func (r *UsersRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.get(ctx, `WHERE username = $1`, username)
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.get(ctx, `WHERE email = $1`, email)
}

func (r *UsersRepository) get(ctx context.Context, where string, arg any) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users ` + where

	user := &User{}
	err := r.db.Pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}

// Update replaces username, email and password hash of the given user.
func (r *UsersRepository) Update(ctx context.Context, id int64, username, email, passwordHash string) error {
	query := `
		UPDATE users
		SET username = $1, email = $2, password_hash = $3, updated_at = now()
		WHERE id = $4`

	result, err := r.db.Pool.Exec(ctx, query, username, email, passwordHash, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func (r *UsersRepository) DeleteByUsername(ctx context.Context, username string) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func (r *UsersRepository) List(ctx context.Context, skip, limit int) ([]*User, error) {
	query := `
		SELECT id, username, email, created_at, updated_at
		FROM users
		ORDER BY id
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Pool.Query(ctx, query, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user := &User{}
		err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
