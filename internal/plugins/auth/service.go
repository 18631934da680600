package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keyxmakerx/canvass/internal/apperror"
	"github.com/keyxmakerx/canvass/internal/database"
	"github.com/keyxmakerx/canvass/internal/metrics"
)

// errEmailTaken is the conflict message for a registered email.
const errEmailTaken = "an account with this email already exists"

// AuthService defines the business logic contract for authentication.
// Handlers call these methods -- they never touch the repository directly.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, input LoginInput) (*User, error)
}

// authService implements AuthService with bcrypt password hashing.
// Sessions are not its concern: handlers turn a returned User into a
// cookie through the SessionStore.
type authService struct {
	repo    UserRepository
	hasher  *PasswordHasher
	metrics metrics.Recorder
}

// NewAuthService creates a new auth service with the given dependencies.
func NewAuthService(repo UserRepository, hasher *PasswordHasher, rec metrics.Recorder) AuthService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &authService{
		repo:    repo,
		hasher:  hasher,
		metrics: rec,
	}
}

// Register creates a new user account. It checks email uniqueness, hashes
// the password, generates a UUID, and persists the user.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	email := normalizeEmail(input.Email)

	// Check if email is already taken before doing expensive hashing.
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking email: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict(errEmailTaken)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// A concurrent sign-up can take the email between the check and the insert.
	if err := s.repo.Create(ctx, user); err != nil {
		if apperror.Is(err, apperror.TypeConflict) || database.IsDuplicateEntry(err) {
			return nil, apperror.NewConflict(errEmailTaken)
		}
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	s.metrics.RecordAuthEvent(metrics.EventRegister)
	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return user, nil
}

// Login authenticates a user by email and password. Unknown emails and
// wrong passwords produce the same InvalidCredentials error.
func (s *authService) Login(ctx context.Context, input LoginInput) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if appErr, ok := apperror.As(err); ok && appErr.Code == http.StatusNotFound {
			s.metrics.RecordAuthEvent(metrics.EventLoginFailure)
			return nil, apperror.NewInvalidCredentials()
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		s.metrics.RecordAuthEvent(metrics.EventLoginFailure)
		return nil, apperror.NewInvalidCredentials()
	}

	s.metrics.RecordAuthEvent(metrics.EventLoginSuccess)
	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
