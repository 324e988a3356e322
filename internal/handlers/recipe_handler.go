package handlers

import (
	"context"
	"fmt"
	"io"

	"recipeapp/internal/dto"
	"recipeapp/internal/middleware"
	"recipeapp/internal/models"
	"recipeapp/internal/repositories"
	"recipeapp/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RecipeUseCase is the recipe resource: CRUD plus image upload, all scoped to
// the calling user.
type RecipeUseCase interface {
	List(ctx context.Context, userID uint, filter repositories.RecipeFilter) ([]models.Recipe, error)
	Get(ctx context.Context, userID, id uint) (*models.Recipe, error)
	Create(ctx context.Context, userID uint, in services.RecipeInput) (*models.Recipe, error)
	Replace(ctx context.Context, userID, id uint, in services.RecipeInput) (*models.Recipe, error)
	Patch(ctx context.Context, userID, id uint, in services.RecipePatchInput) (*models.Recipe, error)
	Delete(ctx context.Context, userID, id uint) error
	UploadImage(ctx context.Context, recipe *models.Recipe, filename string, data []byte) (*models.Recipe, error)
}

// RecipeHandler handles HTTP requests for recipes.
type RecipeHandler struct {
	recipes        RecipeUseCase
	mediaURL       string
	maxUploadBytes int64
}

// NewRecipeHandler creates a new RecipeHandler. mediaURL prefixes stored
// image keys in responses.
func NewRecipeHandler(recipes RecipeUseCase, mediaURL string, maxUploadBytes int64) *RecipeHandler {
	return &RecipeHandler{
		recipes:        recipes,
		mediaURL:       mediaURL,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes registers the recipe routes with the Fiber app.
func (h *RecipeHandler) RegisterRoutes(router fiber.Router) {
	recipeRoutes := router.Group("/recipes")
	recipeRoutes.Get("/", h.HandleList)
	recipeRoutes.Post("/", h.HandleCreate)
	recipeRoutes.Get("/:id", h.HandleRetrieve)
	recipeRoutes.Put("/:id", h.HandleReplace)
	recipeRoutes.Patch("/:id", h.HandlePatch)
	recipeRoutes.Delete("/:id", h.HandleDelete)
	recipeRoutes.Post("/:id/upload-image", h.HandleUploadImage)
}

// HandleList lists the caller's recipes. ?tags=1,2 and ?ingredients=3 narrow
// the result; ids inside one parameter match any.
func (h *RecipeHandler) HandleList(c *fiber.Ctx) error {
	errs := map[string]string{}
	tagIDs, err := parseIDList(c.Query("tags"))
	if err != nil {
		errs["tags"] = err.Error()
	}
	ingredientIDs, err := parseIDList(c.Query("ingredients"))
	if err != nil {
		errs["ingredients"] = err.Error()
	}
	if len(errs) > 0 {
		return validationFailed(c, errs)
	}

	recipes, err := h.recipes.List(c.UserContext(), middleware.CurrentUser(c).ID, repositories.RecipeFilter{
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
	if err != nil {
		return respondError(c, err, "Could not retrieve recipes")
	}
	return c.JSON(dto.NewRecipeResponses(recipes, h.mediaURL))
}

// HandleRetrieve returns a single recipe with nested tags and ingredients.
func (h *RecipeHandler) HandleRetrieve(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	recipe, err := h.recipes.Get(c.UserContext(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return respondError(c, err, "Could not retrieve recipe")
	}
	return c.JSON(dto.NewRecipeDetailResponse(*recipe, h.mediaURL))
}

func (h *RecipeHandler) HandleCreate(c *fiber.Ctx) error {
	var req dto.RecipeRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	recipe, err := h.recipes.Create(c.UserContext(), middleware.CurrentUser(c).ID, req.Input())
	if err != nil {
		return respondError(c, err, "Could not create recipe")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewRecipeResponse(*recipe, h.mediaURL))
}

// HandleReplace is PUT: every writable field is replaced.
func (h *RecipeHandler) HandleReplace(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	user := middleware.CurrentUser(c)
	// ownership is checked before the payload so foreign ids stay 404
	if _, err := h.recipes.Get(c.UserContext(), user.ID, id); err != nil {
		return respondError(c, err, "Could not update recipe")
	}

	var req dto.RecipeRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	recipe, err := h.recipes.Replace(c.UserContext(), user.ID, id, req.Input())
	if err != nil {
		return respondError(c, err, "Could not update recipe")
	}
	return c.JSON(dto.NewRecipeResponse(*recipe, h.mediaURL))
}

// HandlePatch is PATCH: only supplied fields change.
func (h *RecipeHandler) HandlePatch(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	user := middleware.CurrentUser(c)
	// see HandleReplace
	if _, err := h.recipes.Get(c.UserContext(), user.ID, id); err != nil {
		return respondError(c, err, "Could not update recipe")
	}

	var req dto.RecipePatchRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	recipe, err := h.recipes.Patch(c.UserContext(), user.ID, id, req.Input())
	if err != nil {
		return respondError(c, err, "Could not update recipe")
	}
	return c.JSON(dto.NewRecipeResponse(*recipe, h.mediaURL))
}

func (h *RecipeHandler) HandleDelete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	if err := h.recipes.Delete(c.UserContext(), middleware.CurrentUser(c).ID, id); err != nil {
		return respondError(c, err, "Could not delete recipe")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleUploadImage stores the multipart field "image" as the recipe image.
func (h *RecipeHandler) HandleUploadImage(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	user := middleware.CurrentUser(c)
	current, err := h.recipes.Get(c.UserContext(), user.ID, id)
	if err != nil {
		return respondError(c, err, "Could not upload image")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return validationFailed(c, map[string]string{"image": "No file was submitted."})
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		return validationFailed(c, map[string]string{
			"image": fmt.Sprintf("Ensure this file is no larger than %d bytes.", h.maxUploadBytes),
		})
	}

	f, err := file.Open()
	if err != nil {
		return respondError(c, err, "Could not read upload")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return respondError(c, err, "Could not read upload")
	}

	recipe, err := h.recipes.UploadImage(c.UserContext(), current, file.Filename, data)
	if err != nil {
		return respondError(c, err, "Could not upload image")
	}
	return c.JSON(dto.NewRecipeImageResponse(*recipe, h.mediaURL))
}
