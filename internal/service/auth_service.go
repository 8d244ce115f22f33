package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mentorlink/mentorlink-api/internal/dto"
	"github.com/mentorlink/mentorlink-api/internal/models"
	"github.com/mentorlink/mentorlink-api/internal/repository"
)

var (
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates the email/password pair did not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// AuthService handles registration, login and token issuance.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
}

type authService struct {
	users     repository.UserRepository
	validator *validator.Validate
	secret    []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService builds the authentication service.
func NewAuthService(users repository.UserRepository, validate *validator.Validate, secret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		validator: validate,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(payload.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         payload.Role,
		Department:   strings.TrimSpace(payload.Department),
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.AuthResponse{}, ErrEmailTaken
		}
		return dto.AuthResponse{}, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user registered")

	return dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")

	return dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) issueToken(user models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"name": user.Name,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
