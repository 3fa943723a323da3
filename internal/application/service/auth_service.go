package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"github.com/tillpoint/tillpoint-api/internal/domain/repository"
	"github.com/tillpoint/tillpoint-api/pkg/apperror"
	"github.com/tillpoint/tillpoint-api/pkg/utils"
)

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo     repository.UserRepository
	shiftService *ShiftService
	jwtManager   *utils.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, shiftService *ShiftService, jwtManager *utils.JWTManager) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		shiftService: shiftService,
		jwtManager:   jwtManager,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
	Shift        *entity.Shift
}

// Login authenticates a staff member and returns tokens. In automatic shift
// mode the first login past the daily start time also opens the day's shift;
// a failure there is logged but never blocks the login.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, apperror.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	shift, err := s.shiftService.AutoOpenShiftOnLogin(ctx, user.ID)
	if err != nil {
		log.Printf("Warning: failed to auto-open shift for %s: %v", user.Email, err)
		shift = nil
	}

	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Shift:        shift,
	}, nil
}

// RefreshToken exchanges a valid refresh token for a new access token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil || !user.Active {
		return "", apperror.ErrInvalidToken
	}

	return s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
}

// RegisterInput represents the registration input
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
}

// Register creates a new staff account
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*entity.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = "cashier"
	}

	user := &entity.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  hashed,
		Role:      role,
		Active:    true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a user by ID
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}
