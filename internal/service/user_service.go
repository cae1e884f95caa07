package service

import (
	"context"

	"blogchef/internal/models"
	"blogchef/internal/repository"
	"blogchef/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService owns the credential flows shared by the public API and the
// admin surface: signup hashes, login verifies, and both leave plaintext
// passwords at this boundary.
type UserService struct {
	userRepo repository.UserRepository
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	IsAdmin  bool
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Signup validates the input, hashes the password, and persists the user.
// The stored Password field is always a bcrypt hash, never plaintext.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewDuplicateEmailError(in.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hashedPassword),
		IsAdmin:  in.IsAdmin,
	}
	// The unique index backstops the existence check under concurrent signups.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the email/password pair and records the login time.
// Unknown email and wrong password produce the same error so the response
// does not leak which accounts exist.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.verifyCredentials(ctx, user, password)
}

// AdminLogin is Login restricted to admin accounts. A valid non-admin
// credential pair still fails, with the same opaque error.
func (s *UserService) AdminLogin(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetAdminByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.verifyCredentials(ctx, user, password)
}

func (s *UserService) verifyCredentials(ctx context.Context, user *models.User, password string) (*models.User, error) {
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := s.userRepo.TouchLogin(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID exposes the credential-store lookup used by auth middleware.
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
