package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"foodgram/internal/cache"
	apperrors "foodgram/internal/errors"
	"foodgram/internal/model"
	"foodgram/internal/repository"
)

const (
	ingredientsCacheKey = "ingredients:all"
	tagsCacheKey        = "tags:all"
)

// CatalogService serves the read-only ingredient and tag reference data.
type CatalogService interface {
	ListIngredients(ctx context.Context, namePrefix string) ([]model.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*model.Ingredient, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
	GetTag(ctx context.Context, id uint) (*model.Tag, error)
	// ImportIngredients and ImportTags add rows that are not stored yet and
	// report how many were added.
	ImportIngredients(ctx context.Context, ingredients []model.Ingredient) (int64, error)
	ImportTags(ctx context.Context, tags []model.Tag) (int64, error)
}

type catalogService struct {
	ingredients repository.IngredientRepository
	tags        repository.TagRepository
	cache       *cache.Client
	ttl         time.Duration
}

// NewCatalogService creates a catalog service. A nil cache disables caching.
func NewCatalogService(ingredients repository.IngredientRepository, tags repository.TagRepository, cache *cache.Client, ttl time.Duration) CatalogService {
	return &catalogService{
		ingredients: ingredients,
		tags:        tags,
		cache:       cache,
		ttl:         ttl,
	}
}

// ListIngredients returns ingredients ordered by name whose name starts with
// namePrefix, ignoring case. Matching runs in Go on the full list, with or
// without the cache.
func (s *catalogService) ListIngredients(ctx context.Context, namePrefix string) ([]model.Ingredient, error) {
	var all []model.Ingredient
	if !s.cache.GetJSON(ctx, ingredientsCacheKey, &all) {
		var err error
		if all, err = s.ingredients.List(ctx); err != nil {
			return nil, fmt.Errorf("list ingredients: %w", err)
		}
		_ = s.cache.SetJSON(ctx, ingredientsCacheKey, all, s.ttl)
	}
	return filterByPrefix(all, namePrefix), nil
}

func (s *catalogService) GetIngredient(ctx context.Context, id uint) (*model.Ingredient, error) {
	ingredient, err := s.ingredients.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIngredientNotFound
		}
		return nil, fmt.Errorf("find ingredient: %w", err)
	}
	return ingredient, nil
}

func (s *catalogService) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if s.cache.GetJSON(ctx, tagsCacheKey, &tags) {
		return nonNil(tags), nil
	}
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	_ = s.cache.SetJSON(ctx, tagsCacheKey, tags, s.ttl)
	return nonNil(tags), nil
}

func (s *catalogService) GetTag(ctx context.Context, id uint) (*model.Tag, error) {
	tag, err := s.tags.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTagNotFound
		}
		return nil, fmt.Errorf("find tag: %w", err)
	}
	return tag, nil
}

func (s *catalogService) ImportIngredients(ctx context.Context, ingredients []model.Ingredient) (int64, error) {
	added, err := s.ingredients.CreateMissing(ctx, ingredients)
	if err != nil {
		return 0, fmt.Errorf("import ingredients: %w", err)
	}
	_ = s.cache.Delete(ctx, ingredientsCacheKey)
	return added, nil
}

func (s *catalogService) ImportTags(ctx context.Context, tags []model.Tag) (int64, error) {
	added, err := s.tags.CreateMissing(ctx, tags)
	if err != nil {
		return 0, fmt.Errorf("import tags: %w", err)
	}
	_ = s.cache.Delete(ctx, tagsCacheKey)
	return added, nil
}

func filterByPrefix(all []model.Ingredient, prefix string) []model.Ingredient {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	out := make([]model.Ingredient, 0, len(all))
	for _, ing := range all {
		if strings.HasPrefix(strings.ToLower(ing.Name), prefix) {
			out = append(out, ing)
		}
	}
	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
