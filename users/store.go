package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/smartodo-go/apperror"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// Store provides access to persisted user records.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Create inserts a new user record. The caller supplies an already-hashed
// password; this package never sees plaintext credentials. A duplicate
// username or email surfaces as a ValidationError.
func (s *Store) Create(ctx context.Context, user *User) (*User, error) {
	query := `INSERT INTO users (username, email, password)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at`
	err := s.db.QueryRow(ctx, query, user.Username, user.Email, user.HashedPassword).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, mapCreateError(err)
	}
	return user, nil
}

// mapCreateError normalizes insert failures. A duplicate username or email is
// an input problem reported as a ValidationError (400), the same class as a
// missing field, not a distinct conflict status.
func mapCreateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "username") {
			return apperror.NewValidationError("username already exists", nil)
		}
		if strings.Contains(pgErr.ConstraintName, "email") {
			return apperror.NewValidationError("email already exists", nil)
		}
	}
	return apperror.NewDatabaseError("failed to create user", err)
}

// GetByLogin retrieves a user by login name, accepting either a username or an
// email address. Lookups that match nothing return a NotFoundError.
func (s *Store) GetByLogin(ctx context.Context, login string) (*User, error) {
	var (
		user  User
		query string
		arg   string
	)

	if strings.Contains(login, "@") {
		query = `SELECT id, username, email, password, created_at FROM users WHERE email = $1`
		arg = strings.ToLower(login)
	} else {
		query = `SELECT id, username, email, password, created_at FROM users WHERE username = $1`
		arg = login
	}

	err := s.db.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user %q not found", login), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by login", err)
	}
	return &user, nil
}

// GetByID retrieves a user by identifier. The authentication middleware calls
// this on every protected request; a NotFoundError here means the user was
// deleted after their token was issued.
func (s *Store) GetByID(ctx context.Context, id int) (*User, error) {
	var user User
	query := `SELECT id, username, email, password, created_at FROM users WHERE id = $1`
	err := s.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by id", err)
	}
	return &user, nil
}
