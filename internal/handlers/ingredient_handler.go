package handlers

import (
	"context"

	"recipeapp/internal/dto"
	"recipeapp/internal/middleware"
	"recipeapp/internal/models"

	"github.com/gofiber/fiber/v2"
)

// IngredientUseCase lists and creates the caller's ingredients.
type IngredientUseCase interface {
	List(ctx context.Context, userID uint) ([]models.Ingredient, error)
	Create(ctx context.Context, userID uint, name string) (*models.Ingredient, error)
}

// IngredientHandler handles HTTP requests for ingredients.
type IngredientHandler struct {
	ingredients IngredientUseCase
}

// NewIngredientHandler creates a new IngredientHandler.
func NewIngredientHandler(ingredients IngredientUseCase) *IngredientHandler {
	return &IngredientHandler{ingredients: ingredients}
}

func (h *IngredientHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ingredients", h.HandleList)
	router.Post("/ingredients", h.HandleCreate)
}

func (h *IngredientHandler) HandleList(c *fiber.Ctx) error {
	ingredients, err := h.ingredients.List(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err, "Could not retrieve ingredients")
	}
	return c.JSON(dto.NewIngredientResponses(ingredients))
}

func (h *IngredientHandler) HandleCreate(c *fiber.Ctx) error {
	var req dto.NamedRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	ingredient, err := h.ingredients.Create(c.UserContext(), middleware.CurrentUser(c).ID, req.Name)
	if err != nil {
		return respondError(c, err, "Could not create ingredient")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewIngredientResponse(*ingredient))
}
