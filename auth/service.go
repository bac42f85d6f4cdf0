package auth

import (
	"context"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/smartodo-go/apperror"
	"github.com/user/smartodo-go/users"
)

// Service implements registration and login on top of the credential store
// and the token manager.
type Service struct {
	store  *users.Store
	tokens *TokenManager
}

// NewService creates a new auth Service.
func NewService(store *users.Store, tokens *TokenManager) *Service {
	return &Service{store: store, tokens: tokens}
}

// dummyHash is a well-formed bcrypt hash compared against on the
// unknown-login path, so a login attempt costs the same hashing work whether
// or not the account exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Register creates a new user. The password is bcrypt-hashed before it
// reaches the store; the plaintext is never persisted or logged.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*users.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user := &users.User{
		Username:       req.Username,
		Email:          strings.ToLower(req.Email),
		HashedPassword: string(hashedPassword),
	}

	// The store reports duplicates as ValidationError; everything else is a
	// DatabaseError. Both pass through to the handler as-is.
	return s.store.Create(ctx, user)
}

// Login authenticates a user and mints a token. Unknown logins and wrong
// passwords are indistinguishable to the caller: both return the same
// "invalid credentials" AuthError.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.store.GetByLogin(ctx, req.Login)
	if err != nil {
		if apperror.IsNotFound(err) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			return nil, apperror.NewAuthError("invalid credentials", nil)
		}
		log.Printf("login: failed to look up user %q: %v", req.Login, err)
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.NewAuthError("invalid credentials", nil)
	}

	token, _, err := s.tokens.Mint(user.ID)
	if err != nil {
		return nil, apperror.NewInternalError("failed to mint token", err)
	}

	return &TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}, nil
}
