package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/mymath-exams/internal/auth/jwt"
	"github.com/gokatarajesh/mymath-exams/internal/db/queries"
	"github.com/gokatarajesh/mymath-exams/internal/db/repository"
)

var (
	ErrEmailRequired      = errors.New("email required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownUser        = errors.New("user not found")
)

// UserStore is the account persistence the auth flows need.
type UserStore interface {
	Create(ctx context.Context, u repository.NewUser) (queries.User, error)
	GetByEmail(ctx context.Context, email string) (queries.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (queries.User, error)
	UpdateLogin(ctx context.Context, userID uuid.UUID) error
}

// Service handles authentication and user management.
type Service struct {
	users    UserStore
	tokenMgr *jwt.Manager
	logger   zerolog.Logger
}

// ServiceOptions configures the auth service.
type ServiceOptions struct {
	TokenConfig jwt.TokenConfig
}

// NewService creates an authentication service.
func NewService(users UserStore, opts ServiceOptions, logger zerolog.Logger) *Service {
	return &Service{
		users:    users,
		tokenMgr: jwt.NewManager(opts.TokenConfig),
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// Register creates a new account with an email and password.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, *TokenPair, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		return nil, nil, ErrEmailRequired
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = email
	}

	dbUser, err := s.users.Create(ctx, repository.NewUser{
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
	})
	if err != nil {
		return nil, nil, err
	}

	user := userFromRow(dbUser)
	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return &user, tokens, nil
}

// Login authenticates a user with email/password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, *TokenPair, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	dbUser, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load user: %w", err)
	}

	if !dbUser.PasswordHash.Valid {
		return nil, nil, ErrInvalidCredentials
	}
	if err := VerifyPassword(dbUser.PasswordHash.String, req.Password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	user := userFromRow(dbUser)
	if err := s.users.UpdateLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("update last login failed")
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return &user, tokens, nil
}

// RefreshToken issues a new token pair from a refresh token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenMgr.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	dbUser, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	return s.generateTokenPair(userFromRow(dbUser))
}

// ValidateToken validates an access token and returns user claims.
func (s *Service) ValidateToken(tokenString string) (*jwt.Claims, error) {
	return s.tokenMgr.ValidateAccessToken(tokenString)
}

// GetUser returns the account behind a user id.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	dbUser, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}
	user := userFromRow(dbUser)
	return &user, nil
}

// LoginOAuth signs in the account owning info.Email, creating it on first use.
func (s *Service) LoginOAuth(ctx context.Context, provider string, info *OAuthUserInfo) (*User, *TokenPair, error) {
	if info.Email == "" {
		return nil, nil, fmt.Errorf("%s did not return an email", provider)
	}
	email := strings.ToLower(info.Email)

	dbUser, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.Info().Str("provider", provider).Msg("OAuth user logged in")
	case errors.Is(err, repository.ErrUserNotFound):
		displayName := info.Name
		if displayName == "" {
			displayName = email
		}
		dbUser, err = s.users.Create(ctx, repository.NewUser{
			Email:       email,
			DisplayName: displayName,
			Metadata:    info.metadata(provider),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create OAuth user: %w", err)
		}
		s.logger.Info().Str("provider", provider).Msg("OAuth user created")
	default:
		return nil, nil, fmt.Errorf("load user: %w", err)
	}

	user := userFromRow(dbUser)
	if err := s.users.UpdateLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("update last login failed")
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}
	return &user, tokens, nil
}

func (s *Service) generateTokenPair(user User) (*TokenPair, error) {
	sub := jwt.Subject{ID: user.ID, DisplayName: user.DisplayName}
	if user.Email != nil {
		sub.Email = *user.Email
	}

	accessToken, err := s.tokenMgr.GenerateAccessToken(sub)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokenMgr.GenerateRefreshToken(sub)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokenMgr.AccessTTL().Seconds()),
	}, nil
}

func userFromRow(row queries.User) User {
	user := User{
		ID:          uuid.UUID(row.UserID.Bytes),
		DisplayName: row.DisplayName,
	}
	if row.Email.Valid {
		email := row.Email.String
		user.Email = &email
	}
	return user
}
