// Package services provides member registration and login
package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/user"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/email"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/security"
	"github.com/StoryHiveHQ/storyhive-go/pkg/config"
)

var (
	// ErrInvalidCredentials is returned on a failed login. It is
	// deliberately identical for a missing account and a wrong password.
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")

	// ErrAccountExists is returned when the email or username is taken.
	ErrAccountExists = fmt.Errorf("account already exists")

	usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)
)

// AuthResult carries the signed session token and the member it belongs to.
type AuthResult struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// AuthService handles member registration and login.
type AuthService struct {
	userRepo     user.Repository
	emailService email.Service
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewAuthService creates a new auth application service.
func NewAuthService(userRepo user.Repository, emailService email.Service, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		emailService: emailService,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// Register creates a new member account and returns a signed session token.
func (s *AuthService) Register(emailAddr, username, password string) (*AuthResult, error) {
	marker := s.perfTracker.StartOperation("auth:registration")
	defer marker.Complete()

	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	username = strings.ToLower(strings.TrimSpace(username))

	if !strings.Contains(emailAddr, "@") {
		return nil, fmt.Errorf("invalid email address")
	}
	if !usernamePattern.MatchString(username) {
		return nil, fmt.Errorf("username must be 3-30 characters: lowercase letters, digits, underscores")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	if existing, err := s.userRepo.FindByEmail(emailAddr); err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if existing != nil {
		return nil, ErrAccountExists
	}
	if existing, err := s.userRepo.FindByUsername(username); err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if existing != nil {
		return nil, ErrAccountExists
	}

	hashMarker := s.perfTracker.StartOperation("auth:password_hashing")
	passwordHash, err := security.HashPassword(password)
	hashMarker.Complete()
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		ID:           security.GenerateULID(),
		Email:        emailAddr,
		Username:     username,
		PasswordHash: passwordHash,
		Points:       0,
		Level:        user.LevelBeginner,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Store(u); err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to store user: %w", err)
	}

	s.logger.LogAuthOperation("registration", u.ID, true, map[string]any{
		"username": username,
	})

	if s.emailService != nil {
		go func() {
			if err := s.emailService.SendWelcomeEmail(u.Email, u.Username); err != nil {
				s.logger.Email().Warn("Failed to send welcome email",
					"userId", u.ID,
					"error", err.Error(),
				)
			}
		}()
	}

	token, err := s.issueToken(u)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	marker.SetSuccess(true)
	return &AuthResult{Token: token, User: u}, nil
}

// Login verifies credentials and returns a signed session token.
func (s *AuthService) Login(emailAddr, password string) (*AuthResult, error) {
	marker := s.perfTracker.StartOperation("auth:login")
	defer marker.Complete()

	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	u, err := s.userRepo.FindByEmail(emailAddr)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if u == nil || !security.CheckPassword(u.PasswordHash, password) {
		s.logger.LogAuthOperation("login", "", false, map[string]any{
			"email": emailAddr,
		})
		return nil, ErrInvalidCredentials
	}

	s.logger.LogAuthOperation("login", u.ID, true, nil)

	token, err := s.issueToken(u)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	marker.SetSuccess(true)
	return &AuthResult{Token: token, User: u}, nil
}

// ValidateToken validates a session token and returns the member it names.
func (s *AuthService) ValidateToken(token string) (*user.User, error) {
	claims, err := security.ValidateSessionToken(token, config.JWTSecret)
	if err != nil {
		return nil, security.ErrInvalidToken
	}

	u, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", claims.UserID, err)
	}
	if u == nil {
		return nil, security.ErrInvalidToken
	}
	return u, nil
}

func (s *AuthService) issueToken(u *user.User) (string, error) {
	jwtMarker := s.perfTracker.StartOperation("auth:jwt_generation")
	defer jwtMarker.Complete()

	ttl := time.Duration(config.SessionTTLHours) * time.Hour
	token, err := security.GenerateSessionToken(u.ID, u.Username, config.JWTSecret, ttl)
	if err != nil {
		jwtMarker.SetError(err)
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	jwtMarker.SetSuccess(true)
	return token, nil
}
