package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"foodgram/internal/model"
)

// MembershipRepository stores the per-user favorites and cart sets.
// Every method takes the set it targets.
type MembershipRepository interface {
	// Add inserts the pair; ErrDuplicate when it already exists.
	Add(ctx context.Context, kind model.SetKind, userID, recipeID uint) error
	// Remove deletes the pair and reports whether a row was removed.
	Remove(ctx context.Context, kind model.SetKind, userID, recipeID uint) (bool, error)
	Exists(ctx context.Context, kind model.SetKind, userID, recipeID uint) (bool, error)
	// Contains returns the subset of recipeIDs present in the user's set.
	Contains(ctx context.Context, kind model.SetKind, userID uint, recipeIDs []uint) (map[uint]bool, error)
	Count(ctx context.Context, kind model.SetKind, userID uint) (int64, error)
	// AggregateCart sums ingredient amounts across the user's cart, grouped by
	// (name, measurement unit) and ordered by name.
	AggregateCart(ctx context.Context, userID uint) ([]model.ShoppingItem, error)
}

type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new membership repository.
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func checkKind(kind model.SetKind) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown membership set %q", string(kind))
	}
	return nil
}

// Add inserts a (user, recipe) pair into the set.
func (r *membershipRepository) Add(ctx context.Context, kind model.SetKind, userID, recipeID uint) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Omit("User", "Recipe").Create(kind.NewEntry(userID, recipeID)).Error)
}

// Remove deletes a (user, recipe) pair from the set.
func (r *membershipRepository) Remove(ctx context.Context, kind model.SetKind, userID, recipeID uint) (bool, error) {
	if err := checkKind(kind); err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(kind.Model())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Exists reports whether the pair is in the set.
func (r *membershipRepository) Exists(ctx context.Context, kind model.SetKind, userID, recipeID uint) (bool, error) {
	if err := checkKind(kind); err != nil {
		return false, err
	}
	var count int64
	err := r.db.WithContext(ctx).Model(kind.Model()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Contains returns which of recipeIDs are in the user's set.
func (r *membershipRepository) Contains(ctx context.Context, kind model.SetKind, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	found := make(map[uint]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return found, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(kind.Model()).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

// Count returns the size of the user's set.
func (r *membershipRepository) Count(ctx context.Context, kind model.SetKind, userID uint) (int64, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}
	var count int64
	err := r.db.WithContext(ctx).Model(kind.Model()).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// AggregateCart joins the cart with recipe ingredient links and sums amounts.
func (r *membershipRepository) AggregateCart(ctx context.Context, userID uint) ([]model.ShoppingItem, error) {
	cart := model.SetCart.Table()
	items := []model.ShoppingItem{}
	err := r.db.WithContext(ctx).Table(cart).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total_amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = " + cart + ".recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where(cart+".user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC").Order("ingredients.measurement_unit ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
