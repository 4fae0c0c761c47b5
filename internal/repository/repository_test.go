package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"foodgram/internal/db"
	"foodgram/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	gormDB, err := db.Open("sqlite", dsn)
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

type fixture struct {
	t  *testing.T
	db *gorm.DB
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, db: newTestDB(t)}
}

func (f *fixture) user(username string) *model.User {
	f.t.Helper()
	u := &model.User{
		Email:        username + "@foodgram.test",
		Username:     username,
		FirstName:    strings.ToUpper(username[:1]) + username[1:],
		LastName:     "Tester",
		PasswordHash: "x",
		Role:         model.RoleUser,
	}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

func (f *fixture) ingredient(name, unit string) *model.Ingredient {
	f.t.Helper()
	i := &model.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(f.t, f.db.Create(i).Error)
	return i
}

func (f *fixture) tag(name string) *model.Tag {
	f.t.Helper()
	tag := &model.Tag{Name: name, Slug: strings.ToLower(name)}
	require.NoError(f.t, f.db.Create(tag).Error)
	return tag
}

type amount struct {
	ingredient *model.Ingredient
	amount     int
}

func (f *fixture) recipe(author *model.User, name string, tags []*model.Tag, amounts ...amount) *model.Recipe {
	f.t.Helper()
	repo := NewRecipeRepository(f.db)
	ctx := context.Background()

	r := &model.Recipe{AuthorID: author.ID, Name: name, Text: name + " text", Image: "recipes/images/x.png", CookingTime: 10}
	links := make([]model.RecipeIngredient, 0, len(amounts))
	for _, a := range amounts {
		links = append(links, model.RecipeIngredient{IngredientID: a.ingredient.ID, Amount: a.amount})
	}
	tagIDs := make([]uint, 0, len(tags))
	for _, tag := range tags {
		tagIDs = append(tagIDs, tag.ID)
	}

	err := repo.WithTransaction(ctx, func(ctx context.Context, tx RecipeRepository) error {
		if err := tx.Create(ctx, r); err != nil {
			return err
		}
		if err := tx.ReplaceIngredients(ctx, r.ID, links); err != nil {
			return err
		}
		return tx.ReplaceTags(ctx, r.ID, tagIDs)
	})
	require.NoError(f.t, err)
	return r
}
