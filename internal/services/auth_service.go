package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"financeapp-server/internal/auth"
	"financeapp-server/internal/models"
	"financeapp-server/internal/repo"
)

// UserRepository is the storage contract AuthService depends on.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

// LoginResult carries the issued token plus the claims snapshot returned to
// the client.
type LoginResult struct {
	Token    string `json:"token"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// AuthService is the single source of truth for identity mutations:
// registration, login, profile update, password change and deletion.
type AuthService struct {
	users  UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewAuthService(users UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register checks uniqueness, hashes the password and persists the user,
// returning the generated id. The pre-checks give friendly errors; the
// storage layer's unique indexes stay authoritative, so a concurrent racer
// still comes back as the same duplicate error.
func (s *AuthService) Register(ctx context.Context, user *models.User, password string) (int64, error) {
	taken, err := s.users.ExistsByUsername(ctx, user.Username)
	if err != nil {
		return 0, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return 0, ErrDuplicateUsername
	}

	taken, err = s.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return 0, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return 0, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = hash
	if user.Role == "" {
		user.Role = models.DefaultRole
	}
	user.CreatedAt = time.Now().UTC()

	if err := s.users.Create(ctx, user); err != nil {
		return 0, translateRepoError(err)
	}
	return user.ID, nil
}

// Login authenticates by username and password and issues a bearer token.
// Unknown usernames burn a decoy verification so that the two failure modes
// are indistinguishable in both payload and timing.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.hasher.DecoyVerify(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	switch s.hasher.Verify(password, user.PasswordHash) {
	case auth.VerifyNoMatch:
		return nil, ErrInvalidCredentials
	case auth.VerifyMatchNeedsRehash:
		// Upgrade the stored record in place. Login succeeds regardless.
		if newHash, hashErr := s.hasher.Hash(password); hashErr == nil {
			if updateErr := s.users.UpdatePassword(ctx, user.ID, newHash); updateErr != nil {
				s.logger.Warn("password rehash not persisted", "user_id", user.ID, "error", updateErr)
			}
		}
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return users, nil
}

// UpdateUser overwrites username, email and role of the persisted record.
// The password hash is never altered here.
func (s *AuthService) UpdateUser(ctx context.Context, user *models.User) error {
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return translateRepoError(err)
	}
	return nil
}

// ChangePassword verifies the current password before re-hashing the new
// one. Confirming the new password against a re-entered copy is the
// boundary's job, not this service's.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}

	if s.hasher.Verify(currentPassword, user.PasswordHash) == auth.VerifyNoMatch {
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// DeleteUser is idempotent: deleting an id that does not exist is a no-op.
func (s *AuthService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func translateRepoError(err error) error {
	switch {
	case errors.Is(err, repo.ErrDuplicateUsername):
		return ErrDuplicateUsername
	case errors.Is(err, repo.ErrDuplicateEmail):
		return ErrDuplicateEmail
	default:
		return err
	}
}
