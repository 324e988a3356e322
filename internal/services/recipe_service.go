package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"recipeapp/internal/media"
	"recipeapp/internal/metrics"
	"recipeapp/internal/models"
	"recipeapp/internal/repositories"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Column limits shared with the models.
const (
	MaxTitleLength = 20
	MaxLinkLength  = 255
)

// priceLimit is the exclusive bound of a decimal(6,2) column.
var priceLimit = decimal.NewFromInt(10000)

// RecipeInput is a complete set of writable recipe fields.
type RecipeInput struct {
	Title         string
	Price         decimal.Decimal
	TimeMinute    int
	Link          string
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipePatchInput holds the fields of a partial update. Nil means "not supplied".
type RecipePatchInput struct {
	Title         *string
	Price         *decimal.Decimal
	TimeMinute    *int
	Link          *string
	TagIDs        *[]uint
	IngredientIDs *[]uint
}

// RecipeService implements recipe CRUD and image upload for a single owner
// at a time.
type RecipeService struct {
	repo        repositories.RecipeRepository
	tags        repositories.TagRepository
	ingredients repositories.IngredientRepository
	store       media.Store
	events      EventPublisher
}

// NewRecipeService creates a new RecipeService. events may be nil.
func NewRecipeService(
	repo repositories.RecipeRepository,
	tags repositories.TagRepository,
	ingredients repositories.IngredientRepository,
	store media.Store,
	events EventPublisher,
) *RecipeService {
	return &RecipeService{
		repo:        repo,
		tags:        tags,
		ingredients: ingredients,
		store:       store,
		events:      events,
	}
}

// List returns the owner's recipes, optionally filtered by tag and ingredient ids.
func (s *RecipeService) List(ctx context.Context, userID uint, filter repositories.RecipeFilter) ([]models.Recipe, error) {
	return s.repo.List(ctx, userID, filter)
}

// Get returns one recipe with its tags and ingredients loaded.
func (s *RecipeService) Get(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// Create stores a new recipe owned by userID.
func (s *RecipeService) Create(ctx context.Context, userID uint, in RecipeInput) (*models.Recipe, error) {
	errs := map[string]string{}
	validateTitle(errs, in.Title)
	validatePrice(errs, in.Price)
	validateTimeMinute(errs, in.TimeMinute)
	validateLink(errs, in.Link)
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	tags, ingredients, err := s.resolve(ctx, in.TagIDs, in.IngredientIDs)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Price:       in.Price,
		TimeMinute:  in.TimeMinute,
		Link:        in.Link,
		Tags:        tags,
		Ingredients: ingredients,
	}
	if err := s.repo.Create(ctx, recipe); err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	metrics.RecipeOperations.WithLabelValues("created").Inc()
	publish(s.events, EventRecipeCreated, recipe.ID, userID)
	return s.repo.GetByID(ctx, userID, recipe.ID)
}

// Replace overwrites every writable field. Omitted associations become
// empty and an omitted link is cleared. A recipe not owned by userID is
// reported as repositories.ErrNotFound by the scoped write.
func (s *RecipeService) Replace(ctx context.Context, userID, id uint, in RecipeInput) (*models.Recipe, error) {
	errs := map[string]string{}
	validateTitle(errs, in.Title)
	validatePrice(errs, in.Price)
	validateTimeMinute(errs, in.TimeMinute)
	validateLink(errs, in.Link)
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	tags, ingredients, err := s.resolve(ctx, in.TagIDs, in.IngredientIDs)
	if err != nil {
		return nil, err
	}

	err = s.repo.Replace(ctx, &models.Recipe{
		ID:          id,
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Price:       in.Price,
		TimeMinute:  in.TimeMinute,
		Link:        in.Link,
		Tags:        tags,
		Ingredients: ingredients,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to replace recipe %d: %w", id, err)
	}

	metrics.RecipeOperations.WithLabelValues("updated").Inc()
	publish(s.events, EventRecipeUpdated, id, userID)
	return s.repo.GetByID(ctx, userID, id)
}

// Patch applies only the supplied fields.
func (s *RecipeService) Patch(ctx context.Context, userID, id uint, in RecipePatchInput) (*models.Recipe, error) {
	errs := map[string]string{}
	fields := map[string]interface{}{}
	if in.Title != nil {
		validateTitle(errs, *in.Title)
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Price != nil {
		validatePrice(errs, *in.Price)
		fields["price"] = *in.Price
	}
	if in.TimeMinute != nil {
		validateTimeMinute(errs, *in.TimeMinute)
		fields["time_minute"] = *in.TimeMinute
	}
	if in.Link != nil {
		validateLink(errs, *in.Link)
		fields["link"] = *in.Link
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	patch := repositories.RecipePatch{Fields: fields}
	if in.TagIDs != nil {
		tags, err := s.resolveTags(ctx, *in.TagIDs)
		if err != nil {
			return nil, err
		}
		patch.Tags = &tags
	}
	if in.IngredientIDs != nil {
		ingredients, err := s.resolveIngredients(ctx, *in.IngredientIDs)
		if err != nil {
			return nil, err
		}
		patch.Ingredients = &ingredients
	}

	if err := s.repo.Patch(ctx, userID, id, patch); err != nil {
		return nil, fmt.Errorf("failed to patch recipe %d: %w", id, err)
	}

	metrics.RecipeOperations.WithLabelValues("updated").Inc()
	publish(s.events, EventRecipeUpdated, id, userID)
	return s.repo.GetByID(ctx, userID, id)
}

// Delete removes the recipe and its association rows. The stored image,
// if any, is removed from the media store afterwards.
func (s *RecipeService) Delete(ctx context.Context, userID, id uint) error {
	recipe, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	if recipe.Image != "" {
		if err := s.store.Delete(ctx, recipe.Image); err != nil {
			log.Warn().Err(err).Str("key", recipe.Image).Msg("failed to remove image of deleted recipe")
		}
	}

	metrics.RecipeOperations.WithLabelValues("deleted").Inc()
	publish(s.events, EventRecipeDeleted, id, userID)
	return nil
}

// UploadImage stores data as the image of recipe, previously loaded through
// Get, and replaces any earlier image.
func (s *RecipeService) UploadImage(ctx context.Context, recipe *models.Recipe, filename string, data []byte) (*models.Recipe, error) {
	userID, id := recipe.UserID, recipe.ID
	info, err := media.DecodeImage(data)
	if err != nil {
		metrics.ImageUploads.WithLabelValues("invalid").Inc()
		return nil, NewValidationError("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	key := media.ImageKey(filename, info.Ext)
	if err := s.store.Save(ctx, key, bytes.NewReader(data), int64(len(data)), info.ContentType); err != nil {
		metrics.ImageUploads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	if err := s.repo.SetImage(ctx, userID, id, key); err != nil {
		metrics.ImageUploads.WithLabelValues("error").Inc()
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("failed to remove orphaned image")
		}
		return nil, fmt.Errorf("failed to set image on recipe %d: %w", id, err)
	}

	if previous := recipe.Image; previous != "" && previous != key {
		if err := s.store.Delete(ctx, previous); err != nil {
			log.Warn().Err(err).Str("key", previous).Msg("failed to remove previous image")
		}
	}

	recipe.Image = key
	metrics.ImageUploads.WithLabelValues("stored").Inc()
	publish(s.events, EventRecipeImageUploaded, id, userID)
	return recipe, nil
}

func (s *RecipeService) resolve(ctx context.Context, tagIDs, ingredientIDs []uint) ([]models.Tag, []models.Ingredient, error) {
	tags, tagErr := s.resolveTags(ctx, tagIDs)
	ingredients, ingErr := s.resolveIngredients(ctx, ingredientIDs)

	var tv, iv *ValidationError
	switch {
	case errors.As(tagErr, &tv) && errors.As(ingErr, &iv):
		for k, v := range iv.Fields {
			tv.Fields[k] = v
		}
		return nil, nil, tv
	case tagErr != nil:
		return nil, nil, tagErr
	case ingErr != nil:
		return nil, nil, ingErr
	}
	return tags, ingredients, nil
}

// resolveTags loads ids regardless of owner and rejects unknown ones.
func (s *RecipeService) resolveTags(ctx context.Context, ids []uint) ([]models.Tag, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	found, err := s.tags.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	have := make([]uint, 0, len(found))
	for _, t := range found {
		have = append(have, t.ID)
	}
	if missing, ok := firstMissing(ids, have); ok {
		return nil, NewValidationError("tags", invalidPK(missing))
	}
	return found, nil
}

func (s *RecipeService) resolveIngredients(ctx context.Context, ids []uint) ([]models.Ingredient, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []models.Ingredient{}, nil
	}
	found, err := s.ingredients.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}
	have := make([]uint, 0, len(found))
	for _, i := range found {
		have = append(have, i.ID)
	}
	if missing, ok := firstMissing(ids, have); ok {
		return nil, NewValidationError("ingredients", invalidPK(missing))
	}
	return found, nil
}

func invalidPK(id uint) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// firstMissing returns the first id of want that is not in have.
func firstMissing(want, have []uint) (uint, bool) {
	set := make(map[uint]struct{}, len(have))
	for _, id := range have {
		set[id] = struct{}{}
	}
	for _, id := range want {
		if _, ok := set[id]; !ok {
			return id, true
		}
	}
	return 0, false
}

func validateTitle(errs map[string]string, title string) {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		errs["title"] = "This field may not be blank."
	case utf8.RuneCountInString(title) > MaxTitleLength:
		errs["title"] = fmt.Sprintf("Ensure this field has no more than %d characters.", MaxTitleLength)
	}
}

// validatePrice enforces decimal(6,2): at most four integer and two
// fractional digits. The scale is checked as written, so "10.000" fails.
func validatePrice(errs map[string]string, price decimal.Decimal) {
	switch {
	case price.Exponent() < -2:
		errs["price"] = "Ensure that there are no more than 2 decimal places."
	case price.Abs().GreaterThanOrEqual(priceLimit):
		errs["price"] = "Ensure that there are no more than 6 digits in total."
	}
}

func validateTimeMinute(errs map[string]string, minutes int) {
	if minutes < 0 {
		errs["time_minute"] = "Ensure this value is greater than or equal to 0."
	}
}

func validateLink(errs map[string]string, link string) {
	if utf8.RuneCountInString(link) > MaxLinkLength {
		errs["link"] = fmt.Sprintf("Ensure this field has no more than %d characters.", MaxLinkLength)
	}
}
