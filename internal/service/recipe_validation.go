package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "foodgram/internal/errors"
)

const (
	maxRecipeNameLength = 256
	minCookingTime      = 1
	minIngredientAmount = 1
)

// IngredientInput is one requested (ingredient, amount) link.
type IngredientInput struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeInput is the payload of a recipe create or update.
// Image is a data URI; on update an empty Image keeps the stored one.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	Ingredients []IngredientInput
	Tags        []uint
}

// RecipeRules are the configurable recipe bounds.
type RecipeRules struct {
	MaxCookingTime int
}

// ValidateRecipe checks a payload on its own, without touching the store.
// creating requires an image.
func ValidateRecipe(in RecipeInput, creating bool, rules RecipeRules) error {
	verr := apperrors.NewValidationError()

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		verr.Add("name", "this field is required")
	case utf8.RuneCountInString(name) > maxRecipeNameLength:
		verr.Add("name", fmt.Sprintf("ensure this field has no more than %d characters", maxRecipeNameLength))
	}
	if strings.TrimSpace(in.Text) == "" {
		verr.Add("text", "this field is required")
	}

	if in.CookingTime < minCookingTime || in.CookingTime > rules.MaxCookingTime {
		verr.Add("cooking_time", fmt.Sprintf("cooking time must be between %d and %d", minCookingTime, rules.MaxCookingTime))
	}

	if creating && strings.TrimSpace(in.Image) == "" {
		verr.Add("image", "this field is required")
	}

	validateIngredients(verr, in.Ingredients)
	validateTags(verr, in.Tags)
	return verr.OrNil()
}

func validateIngredients(verr *apperrors.ValidationError, ingredients []IngredientInput) {
	if len(ingredients) == 0 {
		verr.Add("ingredients", "at least one ingredient is required")
		return
	}
	seen := make(map[uint]struct{}, len(ingredients))
	for _, ing := range ingredients {
		if ing.ID == 0 {
			verr.Add("ingredients", "ingredient id is required")
			continue
		}
		if _, dup := seen[ing.ID]; dup {
			verr.Add("ingredients", fmt.Sprintf("ingredient %d is listed more than once", ing.ID))
		}
		seen[ing.ID] = struct{}{}
		if ing.Amount < minIngredientAmount {
			verr.Add("ingredients", fmt.Sprintf("amount of ingredient %d must be at least %d", ing.ID, minIngredientAmount))
		}
	}
}

func validateTags(verr *apperrors.ValidationError, tags []uint) {
	if len(tags) == 0 {
		verr.Add("tags", "at least one tag is required")
		return
	}
	seen := make(map[uint]struct{}, len(tags))
	for _, id := range tags {
		if id == 0 {
			verr.Add("tags", "tag id is required")
			continue
		}
		if _, dup := seen[id]; dup {
			verr.Add("tags", fmt.Sprintf("tag %d is listed more than once", id))
		}
		seen[id] = struct{}{}
	}
}
