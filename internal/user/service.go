package user

import (
	defError "errors"

	"github.com/srisabarish06/Notoria/internal/domain"
	"github.com/srisabarish06/Notoria/internal/errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service defines the interface for user business logic
type Service interface {
	Register(user *domain.User) error
	Login(email, password string) (*domain.User, error)
	GetUserByID(id uint64) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
	IncreaseTokenVersion(id uint64) error
}

// DefaultService implements Service
type DefaultService struct {
	repository UserRepository
}

// NewService creates a new user service
func NewService(repository UserRepository) Service {
	return &DefaultService{repository: repository}
}

// Register registers a new user. Username and email must both be unused.
func (s *DefaultService) Register(user *domain.User) error {
	if _, err := s.repository.FindByEmail(user.Email); err == nil {
		return errors.Conflict("Email already registered", nil)
	} else if !defError.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if _, err := s.repository.FindByUsername(user.Username); err == nil {
		return errors.Conflict("Username already taken", nil)
	} else if !defError.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// Hash the password before saving
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Internal(err)
	}
	user.PasswordHash = string(hashedPassword)
	user.IsActive = true

	return s.repository.Create(user)
}

// Login authenticates a user
func (s *DefaultService) Login(email, password string) (*domain.User, error) {
	user, err := s.repository.FindByEmail(email)
	if err != nil {
		return nil, errors.Unauthorized("Invalid credentials", err)
	}

	if !user.IsActive {
		return nil, errors.Unauthorized("User is not active", nil)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, errors.Unauthorized("Invalid credentials", err)
	}

	return user, nil
}

func (s *DefaultService) GetUserByID(id uint64) (*domain.User, error) {
	return s.repository.FindByID(id)
}

// GetUserByEmail resolves a user by email; the collaboration workflow
// uses it to look up invitees.
func (s *DefaultService) GetUserByEmail(email string) (*domain.User, error) {
	return s.repository.FindByEmail(email)
}

// IncreaseTokenVersion invalidates all outstanding tokens for the user.
func (s *DefaultService) IncreaseTokenVersion(id uint64) error {
	return s.repository.IncrementTokenVersion(id)
}
