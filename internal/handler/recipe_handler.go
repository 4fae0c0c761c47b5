package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"foodgram/internal/auth"
	"foodgram/internal/model"
	"foodgram/internal/service"
)

// RecipeHandler serves recipes, favorites, the shopping cart and short links.
type RecipeHandler struct {
	recipes  service.RecipeService
	members  service.MembershipService
	shopping service.ShoppingListService
	pages    Paginator
}

// NewRecipeHandler creates a new recipe handler.
func NewRecipeHandler(
	recipes service.RecipeService,
	members service.MembershipService,
	shopping service.ShoppingListService,
	pages Paginator,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:  recipes,
		members:  members,
		shopping: shopping,
		pages:    pages,
	}
}

// RecipeRequest is the create and update payload. On update an empty image
// keeps the stored one.
type RecipeRequest struct {
	Ingredients []service.IngredientInput `json:"ingredients"`
	Tags        []uint                    `json:"tags"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
}

func (r RecipeRequest) input() service.RecipeInput {
	return service.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		Image:       r.Image,
		CookingTime: r.CookingTime,
		Ingredients: r.Ingredients,
		Tags:        r.Tags,
	}
}

// ShortLinkResponse carries the shareable recipe URL.
type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

// List godoc
// @Summary List recipes
// @Tags recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query int false "Author ID"
// @Param tags query []string false "Tag slugs" collectionFormat(multi)
// @Param is_favorited query int false "Only favorites (1)"
// @Param is_in_shopping_cart query int false "Only cart (1)"
// @Success 200 {object} PageResponse[service.RecipeView]
// @Router /recipes [get]
func (h *RecipeHandler) List(c echo.Context) error {
	page := h.pages.Page(c)
	author := queryInt(c, "author", 0)
	if author < 0 {
		author = 0
	}
	query := service.RecipeQuery{
		AuthorID:  uint(author),
		TagSlugs:  c.QueryParams()["tags"],
		Favorited: queryFlag(c, "is_favorited"),
		InCart:    queryFlag(c, "is_in_shopping_cart"),
		Page:      page,
	}

	recipes, total, err := h.recipes.List(c.Request().Context(), query, auth.ViewerID(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, Envelope(c, page, total, recipes))
}

// Get godoc
// @Summary Get recipe by id
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} service.RecipeView
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id} [get]
func (h *RecipeHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	recipe, err := h.recipes.Get(c.Request().Context(), id, auth.ViewerID(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// Create godoc
// @Summary Create recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecipeRequest true "Recipe"
// @Success 201 {object} service.RecipeView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /recipes [post]
func (h *RecipeHandler) Create(c echo.Context) error {
	var req RecipeRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	recipe, err := h.recipes.Create(c.Request().Context(), auth.ViewerID(c), req.input())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, recipe)
}

// Update godoc
// @Summary Update recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Param request body RecipeRequest true "Recipe"
// @Success 200 {object} service.RecipeView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id} [patch]
func (h *RecipeHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req RecipeRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	recipe, err := h.recipes.Update(c.Request().Context(), auth.ViewerID(c), id, req.input())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// Delete godoc
// @Summary Delete recipe
// @Tags recipes
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id} [delete]
func (h *RecipeHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.recipes.Delete(c.Request().Context(), auth.ViewerID(c), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddFavorite godoc
// @Summary Add recipe to favorites
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 201 {object} service.RecipeShort
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id}/favorite [post]
func (h *RecipeHandler) AddFavorite(c echo.Context) error {
	return h.add(c, model.SetFavorites)
}

// RemoveFavorite godoc
// @Summary Remove recipe from favorites
// @Tags favorites
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id}/favorite [delete]
func (h *RecipeHandler) RemoveFavorite(c echo.Context) error {
	return h.remove(c, model.SetFavorites)
}

// AddToCart godoc
// @Summary Add recipe to shopping cart
// @Tags shopping cart
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 201 {object} service.RecipeShort
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id}/shopping_cart [post]
func (h *RecipeHandler) AddToCart(c echo.Context) error {
	return h.add(c, model.SetCart)
}

// RemoveFromCart godoc
// @Summary Remove recipe from shopping cart
// @Tags shopping cart
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id}/shopping_cart [delete]
func (h *RecipeHandler) RemoveFromCart(c echo.Context) error {
	return h.remove(c, model.SetCart)
}

func (h *RecipeHandler) add(c echo.Context, kind model.SetKind) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	short, err := h.members.Add(c.Request().Context(), kind, auth.ViewerID(c), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, short)
}

func (h *RecipeHandler) remove(c echo.Context, kind model.SetKind) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.members.Remove(c.Request().Context(), kind, auth.ViewerID(c), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DownloadShoppingCart godoc
// @Summary Download the aggregated shopping list
// @Tags shopping cart
// @Produce plain
// @Security BearerAuth
// @Success 200 {string} string
// @Failure 401 {object} errors.ErrorResponse
// @Router /recipes/download_shopping_cart [get]
func (h *RecipeHandler) DownloadShoppingCart(c echo.Context) error {
	data, err := h.shopping.Export(c.Request().Context(), auth.ViewerID(c))
	if err != nil {
		return fail(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%s", service.ShoppingListFilename))
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", data)
}

// GetLink godoc
// @Summary Get a short link to the recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} ShortLinkResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id}/get-link [get]
func (h *RecipeHandler) GetLink(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	link, err := h.recipes.ShortLink(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, ShortLinkResponse{ShortLink: link})
}

// FollowShortLink redirects a short code to the recipe page.
func (h *RecipeHandler) FollowShortLink(c echo.Context) error {
	id, err := h.recipes.ResolveShortLink(c.Request().Context(), c.Param("code"))
	if err != nil {
		return fail(err)
	}
	return c.Redirect(http.StatusFound, fmt.Sprintf("/recipes/%d", id))
}
