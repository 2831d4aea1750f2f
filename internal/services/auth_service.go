package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"taskmanager/internal/config"
	"taskmanager/internal/models"
	"taskmanager/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// minUsernameLength is stricter than the user schema's minimum of 3.
const minUsernameLength = 4

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	validate   *validator.Validate
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		validate:   models.NewValidator(),
		jwtSecret:  []byte(cfg.JWTSecret),
		tokenTTL:   cfg.TokenTTL,
		bcryptCost: cfg.BcryptCost,
	}
}

// RegisterInput is the request body for registration.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// RegisterUser validates the input, hashes the password and saves the new
// user. No token is issued; the caller logs in separately.
func (s *AuthService) RegisterUser(ctx context.Context, input RegisterInput) (*models.User, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, newError(ErrValidation, "Please provide username, email and password")
	}
	// Length is checked on the raw input; trimming belongs to the schema.
	if utf8.RuneCountInString(input.Username) < minUsernameLength {
		return nil, newError(ErrValidation, fmt.Sprintf("Username should have at least %d characters", minUsernameLength))
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	}
	user.Normalize()

	if err := s.validateSchema(user); err != nil {
		return nil, err
	}

	if err := s.ensureUnused(ctx, user); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, newError(ErrValidation, "Password must be at most 72 bytes")
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, newError(ErrConflict, "Username or email already exists")
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// LoginUser authenticates a user and returns a signed token bound to their id.
// An unknown username and a wrong password produce the same error.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, newError(ErrValidation, "Username and password required")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, newError(ErrUnauthorized, "Invalid credentials")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, newError(ErrUnauthorized, "Invalid credentials")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  user.ID,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{ID: user.ID, Token: tokenString}, nil
}

// ValidateToken parses and validates a token, returning its claims when the
// signature, algorithm and expiry check out and it carries a user id.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	if tokenString == "" {
		return nil, newError(ErrUnauthorized, "Access denied. No token provided")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, newError(ErrUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, newError(ErrUnauthorized, "Invalid or expired token")
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return nil, newError(ErrUnauthorized, "Invalid or expired token")
	}
	if id, ok := claims["id"].(string); !ok || id == "" {
		return nil, newError(ErrUnauthorized, "Invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) validateSchema(user *models.User) error {
	err := s.validate.Struct(user)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("failed to validate user: %w", err)
	}
	e := validationErrors[0]
	if e.Field() == "Email" {
		if e.Tag() == "max" {
			return newError(ErrValidation, "Email must be at most 255 characters")
		}
		return newError(ErrValidation, "Invalid email format")
	}
	return newError(ErrValidation, fmt.Sprintf("Field '%s' failed on the '%s' tag", strings.ToLower(e.Field()), e.Tag()))
}

func (s *AuthService) ensureUnused(ctx context.Context, user *models.User) error {
	if _, err := s.userRepo.GetByUsername(ctx, user.Username); err == nil {
		return newError(ErrConflict, "Username already exists")
	} else if !errors.Is(err, repositories.ErrRecordNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
		return newError(ErrConflict, "Email already exists")
	} else if !errors.Is(err, repositories.ErrRecordNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}
	return nil
}
