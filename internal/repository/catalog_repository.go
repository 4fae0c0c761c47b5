package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodgram/internal/model"
)

// IngredientRepository defines ingredient persistence operations.
type IngredientRepository interface {
	List(ctx context.Context) ([]model.Ingredient, error)
	FindByID(ctx context.Context, id uint) (*model.Ingredient, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Ingredient, error)
	// CreateMissing inserts ingredients whose (name, unit) is not stored yet
	// and returns how many rows were added.
	CreateMissing(ctx context.Context, ingredients []model.Ingredient) (int64, error)
}

// TagRepository defines tag persistence operations.
type TagRepository interface {
	List(ctx context.Context) ([]model.Tag, error)
	FindByID(ctx context.Context, id uint) (*model.Tag, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Tag, error)
	CreateMissing(ctx context.Context, tags []model.Tag) (int64, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new ingredient repository.
func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

// List returns all ingredients ordered by name.
func (r *ingredientRepository) List(ctx context.Context) ([]model.Ingredient, error) {
	var ingredients []model.Ingredient
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// FindByID finds an ingredient by ID.
func (r *ingredientRepository) FindByID(ctx context.Context, id uint) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// FindByIDs returns the ingredients that exist among ids.
func (r *ingredientRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ingredients []model.Ingredient
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// CreateMissing bulk-inserts ingredients, skipping (name, unit) pairs that already exist.
func (r *ingredientRepository) CreateMissing(ctx context.Context, ingredients []model.Ingredient) (int64, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}, {Name: "measurement_unit"}}, DoNothing: true}).
		CreateInBatches(ingredients, 500)
	return res.RowsAffected, res.Error
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// List returns every tag ordered by name.
func (r *tagRepository) List(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// FindByID finds a tag by ID.
func (r *tagRepository) FindByID(ctx context.Context, id uint) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindByIDs returns the tags that exist among ids.
func (r *tagRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []model.Tag
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateMissing bulk-inserts tags, skipping any whose name or slug is taken.
func (r *tagRepository) CreateMissing(ctx context.Context, tags []model.Tag) (int64, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&tags)
	return res.RowsAffected, res.Error
}
