package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/mymath-exams/internal/db/queries"
)

// ErrUserNotFound is returned when no account matches.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when registering an email that already has an account.
var ErrEmailTaken = errors.New("email already registered")

type userStore interface {
	CreateUser(ctx context.Context, arg queries.CreateUserParams) (queries.User, error)
	GetUserByEmail(ctx context.Context, email pgtype.Text) (queries.User, error)
	GetUserByID(ctx context.Context, userID pgtype.UUID) (queries.User, error)
	UpdateUserLogin(ctx context.Context, userID pgtype.UUID) error
}

// UserRepository exposes typed DB operations required by auth flows.
type UserRepository struct {
	store userStore
}

// NewUserRepository wraps the query layer for account operations.
func NewUserRepository(store userStore) *UserRepository {
	return &UserRepository{store: store}
}

// NewUser describes an account to insert. PasswordHash is empty for
// OAuth-only accounts.
type NewUser struct {
	Email        string
	PasswordHash string
	DisplayName  string
	Metadata     []byte
}

// Create inserts an account, returning ErrEmailTaken on a duplicate email.
func (r *UserRepository) Create(ctx context.Context, u NewUser) (queries.User, error) {
	user, err := r.store.CreateUser(ctx, queries.CreateUserParams{
		Email:        pgtype.Text{String: u.Email, Valid: u.Email != ""},
		PasswordHash: pgtype.Text{String: u.PasswordHash, Valid: u.PasswordHash != ""},
		DisplayName:  u.DisplayName,
		Metadata:     u.Metadata,
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return queries.User{}, ErrEmailTaken
	}
	if err != nil {
		return queries.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetByEmail fetches a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (queries.User, error) {
	user, err := r.store.GetUserByEmail(ctx, pgtype.Text{String: email, Valid: true})
	if errors.Is(err, pgx.ErrNoRows) {
		return queries.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByID fetches a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (queries.User, error) {
	user, err := r.store.GetUserByID(ctx, toPgUUID(userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return queries.User{}, ErrUserNotFound
	}
	return user, err
}

// UpdateLogin records the last login timestamp.
func (r *UserRepository) UpdateLogin(ctx context.Context, userID uuid.UUID) error {
	return r.store.UpdateUserLogin(ctx, toPgUUID(userID))
}
