package model

import (
	"time"
)

// Recipe is owned by its author. PubDate is set once on creation.
type Recipe struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	AuthorID    uint      `json:"author_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"size:256;not null"`
	Text        string    `json:"text" gorm:"type:text;not null"`
	Image       string    `json:"image" gorm:"size:255;not null"`
	CookingTime int       `json:"cooking_time" gorm:"not null"`
	PubDate     time.Time `json:"pub_date" gorm:"not null;index;autoCreateTime"`
	UpdatedAt   time.Time `json:"-"`

	// Relations
	Author          User               `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	IngredientLinks []RecipeIngredient `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Tags            []Tag              `json:"-" gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
}

// RecipeIngredient links a recipe to an ingredient with a positive amount.
type RecipeIngredient struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	RecipeID     uint `json:"recipe_id" gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint `json:"ingredient_id" gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	Amount       int  `json:"amount" gorm:"not null"`

	Ingredient Ingredient `json:"-" gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}
