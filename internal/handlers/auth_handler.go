package handlers

import (
	"context"
	"errors"

	"recipeapp/internal/dto"
	"recipeapp/internal/metrics"
	"recipeapp/internal/middleware"
	"recipeapp/internal/models"
	"recipeapp/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// UserUseCase is what the user endpoints need from the identity provider.
type UserUseCase interface {
	CreateUser(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	UpdateProfile(ctx context.Context, user *models.User, upd services.ProfileUpdate) (*models.User, error)
}

// AuthHandler handles HTTP requests for accounts and tokens.
type AuthHandler struct {
	users UserUseCase
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users UserUseCase) *AuthHandler {
	return &AuthHandler{users: users}
}

// RegisterRoutes registers the user routes. rateLimit guards the anonymous
// endpoints and authRequired the profile endpoints.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired, rateLimit fiber.Handler) {
	userRoutes := router.Group("/user")
	userRoutes.Post("/create", rateLimit, h.HandleCreate)
	userRoutes.Post("/token", rateLimit, h.HandleToken)
	userRoutes.Get("/me", authRequired, h.HandleMe)
	userRoutes.Put("/me", authRequired, h.HandleUpdateMe)
	userRoutes.Patch("/me", authRequired, h.HandleUpdateMe)
}

// HandleCreate registers a new user.
func (h *AuthHandler) HandleCreate(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	user, err := h.users.CreateUser(c.UserContext(), req.Email, req.Password, req.Name)
	if err != nil {
		return respondError(c, err, "Could not create user")
	}
	log.Info().Uint("user_id", user.ID).Msg("user created")
	return c.Status(fiber.StatusCreated).JSON(dto.NewUserResponse(user))
}

// HandleToken exchanges credentials for a bearer token.
func (h *AuthHandler) HandleToken(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	token, err := h.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return validationFailed(c, map[string]string{"non_field_errors": err.Error()})
		}
		return respondError(c, err, "Could not issue token")
	}
	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return c.JSON(dto.TokenResponse{Token: token})
}

// HandleMe returns the authenticated user.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	return c.JSON(dto.NewUserResponse(middleware.CurrentUser(c)))
}

// HandleUpdateMe serves both PUT and PATCH; absent fields are left unchanged.
func (h *AuthHandler) HandleUpdateMe(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	user, err := h.users.UpdateProfile(c.UserContext(), middleware.CurrentUser(c), services.ProfileUpdate{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err, "Could not update user")
	}
	return c.JSON(dto.NewUserResponse(user))
}
