package repository

import (
	"context"

	"gorm.io/gorm"

	"foodgram/internal/model"
)

const recipeTagsTable = "recipe_tags"

// RecipeFilter narrows a recipe listing. Zero fields do not filter.
type RecipeFilter struct {
	AuthorID uint
	// TagSlugs matches recipes carrying any of the slugs.
	TagSlugs    []string
	FavoritedBy uint
	InCartOf    uint
}

// RecipeRepository defines recipe persistence operations.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *model.Recipe) error
	Update(ctx context.Context, recipe *model.Recipe) error
	ReplaceIngredients(ctx context.Context, recipeID uint, links []model.RecipeIngredient) error
	ReplaceTags(ctx context.Context, recipeID uint, tagIDs []uint) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Recipe, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, filter RecipeFilter, page Page) ([]model.Recipe, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, limit int) ([]model.Recipe, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo RecipeRepository) error) error
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// Create inserts the recipe row only; links are written separately.
func (r *recipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Omit("Author", "IngredientLinks", "Tags").Create(recipe).Error
}

// Update writes the mutable recipe columns. Author and publish date never change.
func (r *recipeRepository) Update(ctx context.Context, recipe *model.Recipe) error {
	res := r.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("id = ?", recipe.ID).
		Updates(map[string]interface{}{
			"name":         recipe.Name,
			"text":         recipe.Text,
			"image":        recipe.Image,
			"cooking_time": recipe.CookingTime,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceIngredients deletes every ingredient link of the recipe and inserts links.
func (r *recipeRepository) ReplaceIngredients(ctx context.Context, recipeID uint, links []model.RecipeIngredient) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("recipe_id = ?", recipeID).Delete(&model.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	rows := make([]model.RecipeIngredient, len(links))
	for i, link := range links {
		rows[i] = model.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: link.IngredientID,
			Amount:       link.Amount,
		}
	}
	return translate(db.Omit("Ingredient").Create(&rows).Error)
}

// ReplaceTags deletes every tag link of the recipe and inserts tagIDs.
func (r *recipeRepository) ReplaceTags(ctx context.Context, recipeID uint, tagIDs []uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Exec("DELETE FROM "+recipeTagsTable+" WHERE recipe_id = ?", recipeID).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, len(tagIDs))
	for i, tagID := range tagIDs {
		rows[i] = map[string]interface{}{"recipe_id": recipeID, "tag_id": tagID}
	}
	return translate(db.Table(recipeTagsTable).Create(rows).Error)
}

// Delete removes the recipe with its links and membership entries.
func (r *recipeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteRecipeTx(tx, id)
	})
}

func deleteRecipeTx(tx *gorm.DB, id uint) error {
	deps := []interface{}{&model.Favorite{}, &model.CartEntry{}, &model.RecipeIngredient{}}
	for _, dep := range deps {
		if err := tx.Where("recipe_id = ?", id).Delete(dep).Error; err != nil {
			return err
		}
	}
	if err := tx.Exec("DELETE FROM "+recipeTagsTable+" WHERE recipe_id = ?", id).Error; err != nil {
		return err
	}
	res := tx.Delete(&model.Recipe{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID loads a recipe with its author, tags and ingredient links.
func (r *recipeRepository) FindByID(ctx context.Context, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := withDetails(r.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Exists reports whether a recipe with id exists.
func (r *recipeRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns a page of recipes matching filter, newest first, plus the total count.
func (r *recipeRepository) List(ctx context.Context, filter RecipeFilter, page Page) ([]model.Recipe, int64, error) {
	db := r.db.WithContext(ctx)
	base := r.filtered(db, filter)

	var total int64
	if err := base.Model(&model.Recipe{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []model.Recipe
	q := withDetails(r.filtered(db, filter)).Order("recipes.pub_date DESC").Order("recipes.id DESC")
	if err := page.apply(q).Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (r *recipeRepository) filtered(db *gorm.DB, filter RecipeFilter) *gorm.DB {
	q := db.Model(&model.Recipe{})
	if filter.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		tagged := db.Table(recipeTagsTable).
			Select(recipeTagsTable+".recipe_id").
			Joins("JOIN tags ON tags.id = "+recipeTagsTable+".tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if filter.FavoritedBy != 0 {
		q = q.Where("recipes.id IN (?)",
			db.Model(&model.Favorite{}).Select("recipe_id").Where("user_id = ?", filter.FavoritedBy))
	}
	if filter.InCartOf != 0 {
		q = q.Where("recipes.id IN (?)",
			db.Model(&model.CartEntry{}).Select("recipe_id").Where("user_id = ?", filter.InCartOf))
	}
	return q
}

// ListByAuthor returns the author's recipes, newest first. limit <= 0 returns all.
func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]model.Recipe, error) {
	q := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recipes []model.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// CountByAuthors returns the number of recipes per author id.
func (r *recipeRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&model.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

// WithTransaction executes a function within a database transaction.
func (r *recipeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo RecipeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &recipeRepository{db: tx}
		return fn(ctx, txRepo)
	})
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Preload("IngredientLinks", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id ASC") }).
		Preload("IngredientLinks.Ingredient")
}
