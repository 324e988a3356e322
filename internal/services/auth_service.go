package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recipeapp/internal/models"
	"recipeapp/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles account creation, login and token validation.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService. A zero ttl falls back to 24 hours.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: ttl,
	}
}

// ProfileUpdate carries the fields a user may change on their own account.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Email    *string
	Name     *string
	Password *string
}

// CreateUser registers a regular user with a hashed password.
func (s *AuthService) CreateUser(ctx context.Context, email, password, name string) (*models.User, error) {
	user, err := s.newUser(ctx, email, password, name)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, emailTaken(err, "failed to create user")
	}
	return user, nil
}

// CreateSuperuser registers a user with staff and superuser flags set.
func (s *AuthService) CreateSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.newUser(ctx, email, password, "")
	if err != nil {
		return nil, err
	}
	user.IsStaff = true
	user.IsSuperuser = true
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, emailTaken(err, "failed to create superuser")
	}
	return user, nil
}

func (s *AuthService) newUser(ctx context.Context, email, password, name string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, NewValidationError("email", "Users must have an email address.")
	}
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Email:    email,
		Password: hash,
		Name:     name,
		IsActive: true,
	}, nil
}

const errEmailTaken = "user with this email already exists."

// emailTaken turns a unique-constraint violation into the email validation
// error; the lookup in ensureEmailFree races with concurrent inserts.
func emailTaken(err error, msg string) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return NewValidationError("email", errEmailTaken)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// ensureEmailFree fails when email belongs to a user other than exceptID.
func (s *AuthService) ensureEmailFree(ctx context.Context, email string, exceptID uint) error {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil && existing.ID != exceptID:
		return NewValidationError("email", errEmailTaken)
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("failed to look up email: %w", err)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Login authenticates a user and returns a signed JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to record last login")
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Debug().Err(err).Msg("token validation failed")
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(strings.TrimSpace(tokenString))
	if err != nil {
		return nil, err
	}
	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return nil, fmt.Errorf("%w: missing user_id claim", ErrInvalidToken)
	}
	user, err := s.userRepo.GetByID(ctx, uint(rawID))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user", ErrInvalidToken)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user inactive", ErrInvalidToken)
	}
	return user, nil
}

// UpdateProfile applies upd to user and persists it.
func (s *AuthService) UpdateProfile(ctx context.Context, user *models.User, upd ProfileUpdate) (*models.User, error) {
	if upd.Email != nil {
		email := models.NormalizeEmail(*upd.Email)
		if email == "" {
			return nil, NewValidationError("email", "This field may not be blank.")
		}
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
		}
		user.Email = email
	}
	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Password != nil {
		hash, err := hashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, emailTaken(err, "failed to update user")
	}
	return user, nil
}
