package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "foodgram/internal/errors"
	"foodgram/internal/model"
	"foodgram/internal/repository"
)

// MembershipService toggles recipes in a user's favorites or shopping cart.
type MembershipService interface {
	Add(ctx context.Context, kind model.SetKind, userID, recipeID uint) (*RecipeShort, error)
	Remove(ctx context.Context, kind model.SetKind, userID, recipeID uint) error
}

type membershipService struct {
	members   repository.MembershipRepository
	recipes   repository.RecipeRepository
	projector Projector
}

// NewMembershipService creates a new membership service.
func NewMembershipService(members repository.MembershipRepository, recipes repository.RecipeRepository, projector Projector) MembershipService {
	return &membershipService{
		members:   members,
		recipes:   recipes,
		projector: projector,
	}
}

// Add puts the recipe into the set. A pair that is already present is
// reported as ErrAlreadyInSet and nothing is written.
func (s *membershipService) Add(ctx context.Context, kind model.SetKind, userID, recipeID uint) (*RecipeShort, error) {
	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("find recipe: %w", err)
	}

	present, err := s.members.Exists(ctx, kind, userID, recipeID)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", kind, err)
	}
	if present {
		return nil, apperrors.ErrAlreadyInSet
	}

	if err := s.members.Add(ctx, kind, userID, recipeID); err != nil {
		// a concurrent identical request won the race
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrAlreadyInSet
		}
		return nil, fmt.Errorf("add to %s: %w", kind, err)
	}

	short := s.projector.RecipeShort(recipe)
	return &short, nil
}

// Remove takes the recipe out of the set; ErrNotInSet when it was not there.
func (s *membershipService) Remove(ctx context.Context, kind model.SetKind, userID, recipeID uint) error {
	exists, err := s.recipes.Exists(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("find recipe: %w", err)
	}
	if !exists {
		return apperrors.ErrRecipeNotFound
	}

	removed, err := s.members.Remove(ctx, kind, userID, recipeID)
	if err != nil {
		return fmt.Errorf("remove from %s: %w", kind, err)
	}
	if !removed {
		return apperrors.ErrNotInSet
	}
	return nil
}
