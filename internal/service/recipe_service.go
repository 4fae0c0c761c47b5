package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gorm.io/gorm"

	apperrors "foodgram/internal/errors"
	"foodgram/internal/model"
	"foodgram/internal/repository"
	"foodgram/internal/storage"
)

// RecipeQuery describes a recipe listing request.
type RecipeQuery struct {
	AuthorID  uint
	TagSlugs  []string
	Favorited bool
	InCart    bool
	Page      repository.Page
}

// RecipeService handles recipe operations.
type RecipeService interface {
	Create(ctx context.Context, authorID uint, in RecipeInput) (*RecipeView, error)
	Update(ctx context.Context, userID, recipeID uint, in RecipeInput) (*RecipeView, error)
	Delete(ctx context.Context, userID, recipeID uint) error
	Get(ctx context.Context, recipeID, viewerID uint) (*RecipeView, error)
	List(ctx context.Context, q RecipeQuery, viewerID uint) ([]RecipeView, int64, error)
	ShortLink(ctx context.Context, recipeID uint) (string, error)
	ResolveShortLink(ctx context.Context, code string) (uint, error)
}

// RecipeDeps groups the collaborators of the recipe service.
type RecipeDeps struct {
	Recipes       repository.RecipeRepository
	Users         repository.UserRepository
	Ingredients   repository.IngredientRepository
	Tags          repository.TagRepository
	Members       repository.MembershipRepository
	Subscriptions repository.SubscriptionRepository
	Storage       storage.Storage
	Projector     Projector
	Logger        *slog.Logger
}

type recipeService struct {
	RecipeDeps
	rules   RecipeRules
	baseURL string
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(deps RecipeDeps, rules RecipeRules, baseURL string) RecipeService {
	return &recipeService{
		RecipeDeps: deps,
		rules:      rules,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Create validates the payload, stores the image and writes the recipe with
// all of its links in one transaction.
func (s *recipeService) Create(ctx context.Context, authorID uint, in RecipeInput) (*RecipeView, error) {
	if err := ValidateRecipe(in, true, s.rules); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	ref, err := s.saveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := &model.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(in.Name),
		Text:        in.Text,
		Image:       ref,
		CookingTime: in.CookingTime,
	}
	err = s.Recipes.WithTransaction(ctx, func(ctx context.Context, tx repository.RecipeRepository) error {
		if err := tx.Create(ctx, recipe); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, recipe.ID, in)
	})
	if err != nil {
		s.discardImage(ctx, ref)
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	return s.Get(ctx, recipe.ID, authorID)
}

// Update replaces the recipe's fields and its whole ingredient and tag sets.
// Only the author or a moderator may update.
func (s *recipeService) Update(ctx context.Context, userID, recipeID uint, in RecipeInput) (*RecipeView, error) {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, recipe); err != nil {
		return nil, err
	}
	if err := ValidateRecipe(in, false, s.rules); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	image := recipe.Image
	if strings.TrimSpace(in.Image) != "" {
		if image, err = s.saveImage(ctx, in.Image); err != nil {
			return nil, err
		}
	}

	updated := &model.Recipe{
		ID:          recipe.ID,
		Name:        strings.TrimSpace(in.Name),
		Text:        in.Text,
		Image:       image,
		CookingTime: in.CookingTime,
	}
	err = s.Recipes.WithTransaction(ctx, func(ctx context.Context, tx repository.RecipeRepository) error {
		if err := tx.Update(ctx, updated); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, recipe.ID, in)
	})
	if err != nil {
		if image != recipe.Image {
			s.discardImage(ctx, image)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	if image != recipe.Image {
		s.discardImage(ctx, recipe.Image)
	}

	return s.Get(ctx, recipe.ID, userID)
}

// Delete removes the recipe and everything referencing it.
func (s *recipeService) Delete(ctx context.Context, userID, recipeID uint) error {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, userID, recipe); err != nil {
		return err
	}
	if err := s.Recipes.Delete(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrRecipeNotFound
		}
		return fmt.Errorf("delete recipe: %w", err)
	}
	s.discardImage(ctx, recipe.Image)
	return nil
}

// Get returns the recipe as seen by viewerID (0 for anonymous).
func (s *recipeService) Get(ctx context.Context, recipeID, viewerID uint) (*RecipeView, error) {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	views, err := s.decorate(ctx, viewerID, []model.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns a filtered page of recipes. Membership filters only apply to
// authenticated viewers.
func (s *recipeService) List(ctx context.Context, q RecipeQuery, viewerID uint) ([]RecipeView, int64, error) {
	filter := repository.RecipeFilter{
		AuthorID: q.AuthorID,
		TagSlugs: q.TagSlugs,
	}
	if viewerID != 0 && q.Favorited {
		filter.FavoritedBy = viewerID
	}
	if viewerID != 0 && q.InCart {
		filter.InCartOf = viewerID
	}

	recipes, total, err := s.Recipes.List(ctx, filter, q.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	views, err := s.decorate(ctx, viewerID, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ShortLink returns the shareable URL of a recipe.
func (s *recipeService) ShortLink(ctx context.Context, recipeID uint) (string, error) {
	exists, err := s.Recipes.Exists(ctx, recipeID)
	if err != nil {
		return "", fmt.Errorf("find recipe: %w", err)
	}
	if !exists {
		return "", apperrors.ErrRecipeNotFound
	}
	return s.baseURL + "/s/" + EncodeShortCode(recipeID), nil
}

// ResolveShortLink maps a short code back to an existing recipe id.
func (s *recipeService) ResolveShortLink(ctx context.Context, code string) (uint, error) {
	id, err := DecodeShortCode(code)
	if err != nil {
		return 0, err
	}
	exists, err := s.Recipes.Exists(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("find recipe: %w", err)
	}
	if !exists {
		return 0, apperrors.ErrRecipeNotFound
	}
	return id, nil
}

// EncodeShortCode encodes a recipe id in base 36.
func EncodeShortCode(id uint) string {
	return strconv.FormatUint(uint64(id), 36)
}

// DecodeShortCode parses a base 36 short code.
func DecodeShortCode(code string) (uint, error) {
	id, err := strconv.ParseUint(strings.ToLower(code), 36, 32)
	if err != nil || id == 0 {
		return 0, apperrors.ErrInvalidShortLink
	}
	return uint(id), nil
}

func (s *recipeService) find(ctx context.Context, recipeID uint) (*model.Recipe, error) {
	recipe, err := s.Recipes.FindByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("find recipe: %w", err)
	}
	return recipe, nil
}

func (s *recipeService) authorize(ctx context.Context, userID uint, recipe *model.Recipe) error {
	if userID == 0 {
		return apperrors.ErrUnauthorized
	}
	if recipe.AuthorID == userID {
		return nil
	}
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrForbidden
		}
		return fmt.Errorf("find user: %w", err)
	}
	if !user.CanModerate() {
		return apperrors.ErrForbidden
	}
	return nil
}

// checkReferences makes sure every ingredient and tag id exists.
func (s *recipeService) checkReferences(ctx context.Context, in RecipeInput) error {
	ingredientIDs := make([]uint, 0, len(in.Ingredients))
	for _, ing := range in.Ingredients {
		ingredientIDs = append(ingredientIDs, ing.ID)
	}

	verr := apperrors.NewValidationError()
	ingredients, err := s.Ingredients.FindByIDs(ctx, ingredientIDs)
	if err != nil {
		return fmt.Errorf("find ingredients: %w", err)
	}
	for _, id := range missing(ingredientIDs, ingredients, func(i model.Ingredient) uint { return i.ID }) {
		verr.Add("ingredients", fmt.Sprintf("ingredient %d does not exist", id))
	}

	tags, err := s.Tags.FindByIDs(ctx, in.Tags)
	if err != nil {
		return fmt.Errorf("find tags: %w", err)
	}
	for _, id := range missing(in.Tags, tags, func(t model.Tag) uint { return t.ID }) {
		verr.Add("tags", fmt.Sprintf("tag %d does not exist", id))
	}
	return verr.OrNil()
}

func missing[T any](want []uint, found []T, id func(T) uint) []uint {
	present := make(map[uint]struct{}, len(found))
	for _, f := range found {
		present[id(f)] = struct{}{}
	}
	var out []uint
	for _, w := range want {
		if _, ok := present[w]; !ok {
			out = append(out, w)
		}
	}
	return out
}

func replaceLinks(ctx context.Context, tx repository.RecipeRepository, recipeID uint, in RecipeInput) error {
	links := make([]model.RecipeIngredient, 0, len(in.Ingredients))
	for _, ing := range in.Ingredients {
		links = append(links, model.RecipeIngredient{IngredientID: ing.ID, Amount: ing.Amount})
	}
	if err := tx.ReplaceIngredients(ctx, recipeID, links); err != nil {
		return err
	}
	return tx.ReplaceTags(ctx, recipeID, in.Tags)
}

func (s *recipeService) saveImage(ctx context.Context, dataURI string) (string, error) {
	img, err := storage.DecodeDataURI(dataURI)
	if err != nil {
		return "", apperrors.FieldError("image", err.Error())
	}
	ref, err := s.Storage.Save(ctx, storage.RecipesDir, img)
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return ref, nil
}

func (s *recipeService) discardImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.Storage.Delete(ctx, ref); err != nil {
		s.Logger.WarnContext(ctx, "failed to delete recipe image", slog.String("ref", ref), slog.Any("error", err))
	}
}

// decorate projects recipes with the viewer-dependent flags.
func (s *recipeService) decorate(ctx context.Context, viewerID uint, recipes []model.Recipe) ([]RecipeView, error) {
	views := make([]RecipeView, 0, len(recipes))
	if len(recipes) == 0 {
		return views, nil
	}

	favorites, inCart, followed := map[uint]bool{}, map[uint]bool{}, map[uint]bool{}
	if viewerID != 0 {
		recipeIDs := make([]uint, 0, len(recipes))
		authorIDs := make([]uint, 0, len(recipes))
		for _, r := range recipes {
			recipeIDs = append(recipeIDs, r.ID)
			authorIDs = append(authorIDs, r.AuthorID)
		}

		var err error
		if favorites, err = s.Members.Contains(ctx, model.SetFavorites, viewerID, recipeIDs); err != nil {
			return nil, fmt.Errorf("load favorites: %w", err)
		}
		if inCart, err = s.Members.Contains(ctx, model.SetCart, viewerID, recipeIDs); err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}
		if followed, err = s.Subscriptions.FollowedAmong(ctx, viewerID, authorIDs); err != nil {
			return nil, fmt.Errorf("load subscriptions: %w", err)
		}
	}

	for i := range recipes {
		r := &recipes[i]
		views = append(views, s.Projector.Recipe(r, RecipeFlags{
			AuthorFollowed: followed[r.AuthorID],
			Favorited:      favorites[r.ID],
			InCart:         inCart[r.ID],
		}))
	}
	return views, nil
}
