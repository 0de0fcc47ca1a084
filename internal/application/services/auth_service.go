package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cosmiclibrary/core/internal/domain/entities"
	"github.com/cosmiclibrary/core/internal/infrastructure/config"
	"github.com/cosmiclibrary/core/internal/infrastructure/logger"
	"github.com/cosmiclibrary/core/internal/ports"
)

// AuthService handles registration and login over the configuration-sourced
// credentials and the persisted users.
type AuthService struct {
	store         ports.DocumentStore
	credentials   *CredentialResolver
	adminUsername string
	logger        *logger.Logger

	now func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(store ports.DocumentStore, credentials *CredentialResolver, authConfig config.AuthConfig, logger *logger.Logger) *AuthService {
	return &AuthService{
		store:         store,
		credentials:   credentials,
		adminUsername: authConfig.AdminUsername,
		logger:        logger,
		now:           time.Now,
	}
}

// Register persists a new user. Configured usernames are reserved.
func (s *AuthService) Register(ctx context.Context, req ports.RegisterRequest) error {
	if entities.IsBlank(req.Username) || entities.IsBlank(req.Password) {
		return entities.ErrCredentialsRequired
	}

	if s.credentials.UserExists(req.Username) {
		return entities.ErrReservedUsername
	}

	err := s.store.Update(func(doc *entities.Document) error {
		if _, exists := doc.FindUser(req.Username); exists {
			return entities.ErrUserAlreadyExists
		}

		doc.Users = append(doc.Users, entities.User{
			Username:  req.Username,
			Password:  req.Password,
			CreatedAt: s.now().UnixMilli(),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.LogUserAction(req.Username, "register", nil)

	return nil
}

// Login checks the configured credentials first, then the persisted users.
// Only configured users get the wrong-password distinction.
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.LoginResponse, error) {
	if entities.IsBlank(req.Username) || entities.IsBlank(req.Password) {
		return nil, entities.ErrCredentialsRequired
	}

	if s.credentials.VerifyPassword(req.Username, req.Password) {
		return s.loggedIn(req.Username, entities.CredentialSourceEnv), nil
	}

	doc := s.store.Read()
	if user, ok := doc.FindUser(req.Username); ok && user.Password == req.Password {
		return s.loggedIn(req.Username, entities.CredentialSourceDatabase), nil
	}

	if s.credentials.UserExists(req.Username) {
		return nil, entities.ErrWrongPassword
	}

	return nil, entities.ErrUserNotFound
}

// ListUsers returns configured users followed by persisted ones. A username
// appears once; the configured entry wins.
func (s *AuthService) ListUsers(ctx context.Context) ([]entities.DirectoryEntry, error) {
	seen := make(map[string]bool)
	entries := []entities.DirectoryEntry{}

	for _, cred := range s.credentials.Credentials() {
		if seen[cred.Username] {
			continue
		}
		seen[cred.Username] = true
		entries = append(entries, entities.DirectoryEntry{
			Username: cred.Username,
			Source:   entities.CredentialSourceEnv,
		})
	}

	for _, user := range s.store.Read().Users {
		if user.Username == "" || seen[user.Username] {
			continue
		}
		seen[user.Username] = true
		createdAt := user.CreatedAt
		entries = append(entries, entities.DirectoryEntry{
			Username:  user.Username,
			Source:    entities.CredentialSourceDatabase,
			CreatedAt: &createdAt,
		})
	}

	return entries, nil
}

// IsAdmin reports whether username is the configured administrator
func (s *AuthService) IsAdmin(ctx context.Context, username string) (bool, error) {
	if entities.IsBlank(username) {
		return false, entities.ErrUsernameRequired
	}
	return username == s.adminUsername, nil
}

func (s *AuthService) loggedIn(username string, source entities.CredentialSource) *ports.LoginResponse {
	s.logger.LogUserAction(username, "login", map[string]interface{}{"source": source})

	return &ports.LoginResponse{
		Message:  "Login successful",
		Username: username,
		Source:   source,
	}
}
