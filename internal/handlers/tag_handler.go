package handlers

import (
	"context"

	"recipeapp/internal/dto"
	"recipeapp/internal/middleware"
	"recipeapp/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TagUseCase lists and creates the caller's tags.
type TagUseCase interface {
	List(ctx context.Context, userID uint) ([]models.Tag, error)
	Create(ctx context.Context, userID uint, name string) (*models.Tag, error)
}

// TagHandler handles HTTP requests for tags.
type TagHandler struct {
	tags TagUseCase
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tags TagUseCase) *TagHandler {
	return &TagHandler{tags: tags}
}

// RegisterRoutes registers the tag routes with the Fiber app.
func (h *TagHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/tags", h.HandleList)
	router.Post("/tags", h.HandleCreate)
}

func (h *TagHandler) HandleList(c *fiber.Ctx) error {
	tags, err := h.tags.List(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err, "Could not retrieve tags")
	}
	return c.JSON(dto.NewTagResponses(tags))
}

func (h *TagHandler) HandleCreate(c *fiber.Ctx) error {
	var req dto.NamedRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	tag, err := h.tags.Create(c.UserContext(), middleware.CurrentUser(c).ID, req.Name)
	if err != nil {
		return respondError(c, err, "Could not create tag")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTagResponse(*tag))
}
