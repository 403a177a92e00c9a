package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/michaelk046/ComicManager/apperror"
	"github.com/michaelk046/ComicManager/config"
)

// DB is the slice of the pgx pool the auth service needs. *pgxpool.Pool
// satisfies it, as does pgxmock in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service implements registration, login and user lookup.
type Service struct {
	db     DB
	tokens *TokenService
}

// NewService creates the auth service.
func NewService(db DB, cfg *config.AuthConfig) *Service {
	return &Service{
		db:     db,
		tokens: NewTokenService(cfg.SecretKey, cfg.TokenDuration),
	}
}

// Tokens exposes the token service for the authentication middleware.
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// Register creates a new user with a hashed password and returns its public
// identity. A taken username is rejected with a 400.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apperror.NewValidationError("username and password are required", nil)
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &User{Username: username}
	err = s.db.QueryRow(ctx,
		`INSERT INTO users (username, hashed_password)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		username, hashed).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, apperror.NewBadRequestError("username already taken", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	return user, nil
}

// Login checks the credentials and returns a bearer token on success.
// A missing user and a wrong password produce the same 401.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	var user User
	err := s.db.QueryRow(ctx,
		`SELECT id, username, hashed_password, created_at
		 FROM users
		 WHERE username = $1`,
		username).Scan(&user.ID, &user.Username, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAuthError("incorrect username or password", nil)
		}
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}

	if !VerifyPassword(user.HashedPassword, password) {
		return nil, apperror.NewAuthError("incorrect username or password", nil)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// GetUserByID loads a user's public identity. The hashed password is never
// selected.
func (s *Service) GetUserByID(ctx context.Context, id int) (*User, error) {
	var user User
	err := s.db.QueryRow(ctx,
		`SELECT id, username, created_at FROM users WHERE id = $1`,
		id).Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to load user", err)
	}
	return &user, nil
}
