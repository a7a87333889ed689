package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createUser = `-- name: CreateUser :one
INSERT INTO users (email, password_hash, display_name, metadata)
VALUES ($1, $2, $3, COALESCE($4, '{}'::jsonb))
RETURNING user_id, email, password_hash, display_name, metadata, created_at, last_login_at
`

type CreateUserParams struct {
	Email        pgtype.Text
	PasswordHash pgtype.Text
	DisplayName  string
	Metadata     []byte
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.Email, arg.PasswordHash, arg.DisplayName, arg.Metadata)
	var i User
	err := row.Scan(
		&i.UserID,
		&i.Email,
		&i.PasswordHash,
		&i.DisplayName,
		&i.Metadata,
		&i.CreatedAt,
		&i.LastLoginAt,
	)
	return i, err
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT user_id, email, password_hash, display_name, metadata, created_at, last_login_at
FROM users
WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email pgtype.Text) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(
		&i.UserID,
		&i.Email,
		&i.PasswordHash,
		&i.DisplayName,
		&i.Metadata,
		&i.CreatedAt,
		&i.LastLoginAt,
	)
	return i, err
}

const getUserByID = `-- name: GetUserByID :one
SELECT user_id, email, password_hash, display_name, metadata, created_at, last_login_at
FROM users
WHERE user_id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, userID pgtype.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, userID)
	var i User
	err := row.Scan(
		&i.UserID,
		&i.Email,
		&i.PasswordHash,
		&i.DisplayName,
		&i.Metadata,
		&i.CreatedAt,
		&i.LastLoginAt,
	)
	return i, err
}

const updateUserLogin = `-- name: UpdateUserLogin :exec
UPDATE users SET last_login_at = now() WHERE user_id = $1
`

func (q *Queries) UpdateUserLogin(ctx context.Context, userID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, updateUserLogin, userID)
	return err
}
