package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/common/logger"
	"github.com/lifelink-health/portal/pkg/common/models"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("valid email is required")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLength)
)

// HospitalStatusLookup surfaces the verification standing of the hospital a
// doctor principal owns, or nil when no application exists yet.
type HospitalStatusLookup interface {
	StatusForOwner(ctx context.Context, userID uuid.UUID) (*models.VerificationStatus, error)
}

type Service struct {
	repo      *Repository
	hospitals HospitalStatusLookup
}

func NewService(repo *Repository, hospitals HospitalStatusLookup) *Service {
	return &Service{repo: repo, hospitals: hospitals}
}

// SignUp creates a credential plus profile in one step. Role assignment is
// caller-controlled: self-service donor signup passes RoleDonor, hospital
// registration passes RoleDoctor.
func (s *Service) SignUp(ctx context.Context, email, password, name string, role models.Role) (models.User, error) {
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return models.User{}, ErrInvalidEmail
	}
	if len(strings.TrimSpace(password)) < minPasswordLength {
		return models.User{}, ErrWeakPassword
	}
	if role == models.RoleNone {
		return models.User{}, fmt.Errorf("role is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	return s.repo.CreateUser(ctx, CreateUserInput{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
	})
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if password == "" {
		return models.User{}, ErrInvalidCredentials
	}

	hash, err := s.repo.GetPasswordHash(ctx, user.ID)
	if err != nil {
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *Service) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return s.repo.ListUsersByRole(ctx, role)
}

// Resolve turns an authenticated principal into the session the access guard
// consumes. A missing profile degrades to RoleNone with a warning; a doctor
// with no hospital application resolves with a nil hospital status. Lookup
// failures are treated as "no profile" so no protected content leaks.
func (s *Service) Resolve(ctx context.Context, principal models.Principal) models.Session {
	session := models.Session{Principal: principal}

	user, err := s.repo.GetUserByID(ctx, principal.ID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", principal.ID).Warn("Profile lookup failed, resolving without role")
		return session
	}
	session.Role = user.Role

	if user.Role == models.RoleDoctor {
		status, err := s.hospitals.StatusForOwner(ctx, principal.ID)
		if err != nil {
			logger.Log.WithError(err).WithField("user_id", principal.ID).Warn("Hospital status lookup failed")
		} else {
			session.HospitalStatus = status
		}
	}

	return session
}
