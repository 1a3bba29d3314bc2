package service

import (
	"errors"
	"testing"

	"packtrace/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type authRepoStub struct {
	createID  int
	createErr error
	user      *models.User
	userErr   error

	lastUsername string
	lastHash     string
}

func (s *authRepoStub) Create(username, passwordHash string) (int, error) {
	s.lastUsername = username
	s.lastHash = passwordHash
	return s.createID, s.createErr
}

func (s *authRepoStub) GetByUsername(username string) (*models.User, error) {
	return s.user, s.userErr
}

func TestAuthService_SignUp(t *testing.T) {
	t.Parallel()

	t.Run("stores a bcrypt hash, never the password", func(t *testing.T) {
		t.Parallel()
		repo := &authRepoStub{createID: 1}
		svc := NewAuthService(repo, "test-key")

		id, err := svc.SignUp("alice", "s3cret")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != 1 {
			t.Errorf("id: want 1, got %d", id)
		}
		if repo.lastHash == "s3cret" || repo.lastHash == "" {
			t.Fatalf("password stored unhashed: %q", repo.lastHash)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(repo.lastHash), []byte("s3cret")); err != nil {
			t.Errorf("stored hash does not verify: %v", err)
		}
	})

	t.Run("rejects blank password", func(t *testing.T) {
		t.Parallel()
		svc := NewAuthService(&authRepoStub{}, "test-key")
		if _, err := svc.SignUp("alice", "   "); err == nil {
			t.Fatal("want error for blank password")
		}
	})
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &authRepoStub{user: &models.User{ID: 7, Username: "alice", PasswordHash: string(hash)}}
	svc := NewAuthService(repo, "test-key")

	token, err := svc.GenerateToken("alice", "s3cret")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	userID, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if userID != 7 {
		t.Errorf("user id: want 7, got %d", userID)
	}

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		if _, err := svc.GenerateToken("alice", "wrong"); !errors.Is(err, ErrInvalidPassword) {
			t.Errorf("want ErrInvalidPassword, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		empty := NewAuthService(&authRepoStub{}, "test-key")
		if _, err := empty.GenerateToken("nobody", "x"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("want ErrUserNotFound, got %v", err)
		}
	})

	t.Run("foreign signature rejected", func(t *testing.T) {
		t.Parallel()
		other := NewAuthService(repo, "different-key")
		if _, err := other.ParseToken(token); err == nil {
			t.Error("token signed with another key must not parse")
		}
	})
}
