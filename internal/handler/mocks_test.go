package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"foodgram/internal/auth"
	"foodgram/internal/errors"
	"foodgram/internal/model"
	"foodgram/internal/repository"
	"foodgram/internal/service"
)

type testValidator struct {
	v *validator.Validate
}

func newTestValidator() *testValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		return name
	})
	return &testValidator{v: v}
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.v.Struct(i)
}

// newContext builds an echo context for a request, optionally authenticated
// as viewerID.
func newContext(t *testing.T, method, target, body string, viewerID uint) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = newTestValidator()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if viewerID != 0 {
		auth.SetClaims(c, &auth.Claims{UserID: viewerID, Kind: auth.KindAccess})
	}
	return c, rec
}

// httpError asserts err is an echo error and returns its status and payload.
func httpError(t *testing.T, err error) (int, errors.ErrorResponse) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	resp, ok := he.Message.(errors.ErrorResponse)
	require.True(t, ok, "expected ErrorResponse message, got %T", he.Message)
	return he.Code, resp
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.TokenPair, *model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*service.TokenPair), args.Get(1).(*model.User), args.Error(2)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error {
	args := m.Called(ctx, claims, refreshToken)
	return args.Error(0)
}

func (m *MockAuthService) SetPassword(ctx context.Context, userID uint, current, next string) error {
	args := m.Called(ctx, userID, current, next)
	return args.Error(0)
}

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Get(ctx context.Context, id, viewerID uint) (*service.UserView, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserView), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, page repository.Page, viewerID uint) ([]service.UserView, int64, error) {
	args := m.Called(ctx, page, viewerID)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]service.UserView), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID uint, in service.ProfileInput) (*service.UserView, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserView), args.Error(1)
}

func (m *MockUserService) SetAvatar(ctx context.Context, userID uint, dataURI string) (string, error) {
	args := m.Called(ctx, userID, dataURI)
	return args.String(0), args.Error(1)
}

func (m *MockUserService) DeleteAvatar(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserService) DeleteAccount(ctx context.Context, userID uint, currentPassword string) error {
	args := m.Called(ctx, userID, currentPassword)
	return args.Error(0)
}

// MockRecipeService is a mock implementation of service.RecipeService.
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) Create(ctx context.Context, authorID uint, in service.RecipeInput) (*service.RecipeView, error) {
	args := m.Called(ctx, authorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipeView), args.Error(1)
}

func (m *MockRecipeService) Update(ctx context.Context, userID, recipeID uint, in service.RecipeInput) (*service.RecipeView, error) {
	args := m.Called(ctx, userID, recipeID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipeView), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, userID, recipeID uint) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

func (m *MockRecipeService) Get(ctx context.Context, recipeID, viewerID uint) (*service.RecipeView, error) {
	args := m.Called(ctx, recipeID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipeView), args.Error(1)
}

func (m *MockRecipeService) List(ctx context.Context, q service.RecipeQuery, viewerID uint) ([]service.RecipeView, int64, error) {
	args := m.Called(ctx, q, viewerID)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]service.RecipeView), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeService) ShortLink(ctx context.Context, recipeID uint) (string, error) {
	args := m.Called(ctx, recipeID)
	return args.String(0), args.Error(1)
}

func (m *MockRecipeService) ResolveShortLink(ctx context.Context, code string) (uint, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(uint), args.Error(1)
}

// MockMembershipService is a mock implementation of service.MembershipService.
type MockMembershipService struct {
	mock.Mock
}

func (m *MockMembershipService) Add(ctx context.Context, kind model.SetKind, userID, recipeID uint) (*service.RecipeShort, error) {
	args := m.Called(ctx, kind, userID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipeShort), args.Error(1)
}

func (m *MockMembershipService) Remove(ctx context.Context, kind model.SetKind, userID, recipeID uint) error {
	args := m.Called(ctx, kind, userID, recipeID)
	return args.Error(0)
}

// MockShoppingListService is a mock implementation of service.ShoppingListService.
type MockShoppingListService struct {
	mock.Mock
}

func (m *MockShoppingListService) Aggregate(ctx context.Context, userID uint) ([]model.ShoppingItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ShoppingItem), args.Error(1)
}

func (m *MockShoppingListService) Export(ctx context.Context, userID uint) ([]byte, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
