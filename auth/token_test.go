package auth

import (
	"testing"
	"time"

	"github.com/user/smartodo-go/apperror"
	"github.com/user/smartodo-go/config"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:           "test-secret-key",
		AccessTokenDuration: 15 * time.Minute,
	}
}

func TestTokenManager_MintAndVerify(t *testing.T) {
	manager := NewTokenManager(testAuthConfig())

	token, expiresAt, err := manager.Mint(42)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if token == "" {
		t.Error("Mint() returned empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("Mint() expiry %v is not in the future", expiresAt)
	}

	userID, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("Verify() userID = %v, want 42", userID)
	}
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	manager := NewTokenManager(&config.AuthConfig{
		JWTSecret:           "test-secret-key",
		AccessTokenDuration: 1 * time.Millisecond,
	})

	token, _, err := manager.Mint(1)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	_, err = manager.Verify(token)
	if err == nil {
		t.Fatal("Verify() should fail for expired token")
	}
	if !apperror.IsAuthError(err) {
		t.Errorf("expired token should surface as AuthError, got %v", err)
	}
}

func TestTokenManager_TamperedSignature(t *testing.T) {
	manager := NewTokenManager(testAuthConfig())

	token, _, err := manager.Mint(7)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	// Flip one byte of the signature segment.
	tampered := []byte(token)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	_, err = manager.Verify(string(tampered))
	if err == nil {
		t.Fatal("Verify() should fail for tampered signature")
	}
	if !apperror.IsAuthError(err) {
		t.Errorf("tampered token should surface as AuthError, got %v", err)
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	minter := NewTokenManager(&config.AuthConfig{
		JWTSecret:           "secret-key-1",
		AccessTokenDuration: 15 * time.Minute,
	})
	verifier := NewTokenManager(&config.AuthConfig{
		JWTSecret:           "secret-key-2",
		AccessTokenDuration: 15 * time.Minute,
	})

	token, _, err := minter.Mint(9)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Error("Verify() should fail with a different secret key")
	}
}

func TestTokenManager_MalformedToken(t *testing.T) {
	manager := NewTokenManager(testAuthConfig())

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "random string", token: "not.a.valid.token"},
		{name: "truncated jwt", token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Verify(tt.token)
			if err == nil {
				t.Error("Verify() should return error for malformed token")
			}
			if !apperror.IsAuthError(err) {
				t.Errorf("malformed token should surface as AuthError, got %v", err)
			}
		})
	}
}

// Expiry and forgery must be indistinguishable to the caller: same error
// type, same message.
func TestTokenManager_CollapsedErrorReporting(t *testing.T) {
	expiredManager := NewTokenManager(&config.AuthConfig{
		JWTSecret:           "test-secret-key",
		AccessTokenDuration: 1 * time.Millisecond,
	})
	manager := NewTokenManager(testAuthConfig())

	expired, _, err := expiredManager.Mint(1)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	forged, _, err := manager.Mint(1)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	forgedBytes := []byte(forged)
	if forgedBytes[len(forgedBytes)-1] == 'A' {
		forgedBytes[len(forgedBytes)-1] = 'B'
	} else {
		forgedBytes[len(forgedBytes)-1] = 'A'
	}

	_, expiredErr := expiredManager.Verify(expired)
	_, forgedErr := manager.Verify(string(forgedBytes))

	expiredApp, ok := apperror.FromError(expiredErr)
	if !ok {
		t.Fatalf("expected AppError for expired token, got %v", expiredErr)
	}
	forgedApp, ok := apperror.FromError(forgedErr)
	if !ok {
		t.Fatalf("expected AppError for forged token, got %v", forgedErr)
	}

	if expiredApp.Type != forgedApp.Type {
		t.Errorf("error types differ: expired %v, forged %v", expiredApp.Type, forgedApp.Type)
	}
	if expiredApp.Message != forgedApp.Message {
		t.Errorf("messages differ: expired %q, forged %q", expiredApp.Message, forgedApp.Message)
	}
}
