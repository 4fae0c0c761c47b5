package model

import (
	"fmt"
	"time"
)

// SetKind selects one of the per-user recipe membership sets.
type SetKind string

const (
	SetFavorites SetKind = "favorites"
	SetCart      SetKind = "shopping_cart"
)

// Favorite is a (user, recipe) entry of the favorites set.
type Favorite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  uint      `json:"recipe_id" gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index"`
	CreatedAt time.Time `json:"created_at"`

	User   User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe Recipe `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// CartEntry is a (user, recipe) entry of the shopping cart set.
type CartEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_cart_user_recipe"`
	RecipeID  uint      `json:"recipe_id" gorm:"not null;uniqueIndex:idx_cart_user_recipe;index"`
	CreatedAt time.Time `json:"created_at"`

	User   User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe Recipe `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// Valid reports whether k names a known set.
func (k SetKind) Valid() bool {
	return k == SetFavorites || k == SetCart
}

// Table returns the table backing the set.
func (k SetKind) Table() string {
	switch k {
	case SetFavorites:
		return "favorites"
	case SetCart:
		return "cart_entries"
	default:
		panic(fmt.Sprintf("unknown set kind %q", string(k)))
	}
}

// NewEntry returns a row value for the set, ready to be inserted.
func (k SetKind) NewEntry(userID, recipeID uint) interface{} {
	switch k {
	case SetFavorites:
		return &Favorite{UserID: userID, RecipeID: recipeID}
	case SetCart:
		return &CartEntry{UserID: userID, RecipeID: recipeID}
	default:
		panic(fmt.Sprintf("unknown set kind %q", string(k)))
	}
}

// Model returns an empty row value, used to target deletes and counts.
func (k SetKind) Model() interface{} {
	switch k {
	case SetFavorites:
		return &Favorite{}
	case SetCart:
		return &CartEntry{}
	default:
		panic(fmt.Sprintf("unknown set kind %q", string(k)))
	}
}
