package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram/internal/model"
)

func TestIngredientRepository_ListOrderedByName(t *testing.T) {
	f := newFixture(t)
	repo := NewIngredientRepository(f.db)
	f.ingredient("salt", "g")
	f.ingredient("butter", "g")
	f.ingredient("sour cream", "ml")

	got, err := repo.List(context.Background())

	require.NoError(t, err)
	names := make([]string, 0, len(got))
	for _, i := range got {
		names = append(names, i.Name)
	}
	assert.Equal(t, []string{"butter", "salt", "sour cream"}, names)
}

func TestIngredientRepository_CreateMissing(t *testing.T) {
	f := newFixture(t)
	repo := NewIngredientRepository(f.db)
	ctx := context.Background()
	f.ingredient("flour", "g")

	added, err := repo.CreateMissing(ctx, []model.Ingredient{
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "flour", MeasurementUnit: "cup"},
		{Name: "egg", MeasurementUnit: "unit"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), added)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestIngredientRepository_FindByIDs(t *testing.T) {
	f := newFixture(t)
	repo := NewIngredientRepository(f.db)
	flour := f.ingredient("flour", "g")

	got, err := repo.FindByIDs(context.Background(), []uint{flour.ID, 999})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, flour.ID, got[0].ID)

	none, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTagRepository(t *testing.T) {
	f := newFixture(t)
	repo := NewTagRepository(f.db)
	ctx := context.Background()
	f.tag("Lunch")

	added, err := repo.CreateMissing(ctx, []model.Tag{
		{Name: "Lunch", Slug: "lunch"},
		{Name: "Breakfast", Slug: "breakfast"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), added)

	tags, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Breakfast", tags[0].Name)

	got, err := repo.FindByID(ctx, tags[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "lunch", got.Slug)
}
