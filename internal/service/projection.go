package service

import (
	"foodgram/internal/model"
)

// ImageURLs resolves a stored image reference to its public URL.
type ImageURLs interface {
	URL(ref string) string
}

// UserView is the public representation of a user as seen by a viewer.
type UserView struct {
	ID           uint    `json:"id"`
	Email        string  `json:"email"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

// RecipeShort is the compact recipe form used by membership and subscription views.
type RecipeShort struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// IngredientAmount is an ingredient with its amount inside a recipe.
type IngredientAmount struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView is the full recipe representation as seen by a viewer.
type RecipeView struct {
	ID               uint               `json:"id"`
	Tags             []model.Tag        `json:"tags"`
	Author           UserView           `json:"author"`
	Ingredients      []IngredientAmount `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
}

// SubscriptionView is a followed user with a preview of their recipes.
type SubscriptionView struct {
	UserView
	Recipes      []RecipeShort `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}

// RecipeFlags are the viewer-dependent facts about a recipe.
type RecipeFlags struct {
	AuthorFollowed bool
	Favorited      bool
	InCart         bool
}

// Projector turns stored entities into views. Viewer-dependent facts are
// passed in explicitly.
type Projector struct {
	images ImageURLs
}

// NewProjector creates a projector resolving image URLs through images.
func NewProjector(images ImageURLs) Projector {
	return Projector{images: images}
}

func (p Projector) url(ref string) string {
	if ref == "" || p.images == nil {
		return ref
	}
	return p.images.URL(ref)
}

// User projects u for a viewer who does or does not follow them.
func (p Projector) User(u *model.User, isSubscribed bool) UserView {
	view := UserView{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
	if u.Avatar != "" {
		avatar := p.url(u.Avatar)
		view.Avatar = &avatar
	}
	return view
}

// RecipeShort projects the compact recipe form.
func (p Projector) RecipeShort(r *model.Recipe) RecipeShort {
	return RecipeShort{
		ID:          r.ID,
		Name:        r.Name,
		Image:       p.url(r.Image),
		CookingTime: r.CookingTime,
	}
}

// RecipeShorts projects a list of recipes into compact forms.
func (p Projector) RecipeShorts(recipes []model.Recipe) []RecipeShort {
	out := make([]RecipeShort, 0, len(recipes))
	for i := range recipes {
		out = append(out, p.RecipeShort(&recipes[i]))
	}
	return out
}

// Recipe projects the full recipe form. r must have Author, Tags and
// IngredientLinks.Ingredient loaded.
func (p Projector) Recipe(r *model.Recipe, flags RecipeFlags) RecipeView {
	tags := r.Tags
	if tags == nil {
		tags = []model.Tag{}
	}
	ingredients := make([]IngredientAmount, 0, len(r.IngredientLinks))
	for _, link := range r.IngredientLinks {
		ingredients = append(ingredients, IngredientAmount{
			ID:              link.IngredientID,
			Name:            link.Ingredient.Name,
			MeasurementUnit: link.Ingredient.MeasurementUnit,
			Amount:          link.Amount,
		})
	}
	return RecipeView{
		ID:               r.ID,
		Tags:             tags,
		Author:           p.User(&r.Author, flags.AuthorFollowed),
		Ingredients:      ingredients,
		IsFavorited:      flags.Favorited,
		IsInShoppingCart: flags.InCart,
		Name:             r.Name,
		Image:            p.url(r.Image),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

// Subscription projects a followed user with their recipe preview.
func (p Projector) Subscription(u *model.User, recipes []model.Recipe, total int64) SubscriptionView {
	return SubscriptionView{
		UserView:     p.User(u, true),
		Recipes:      p.RecipeShorts(recipes),
		RecipesCount: total,
	}
}
