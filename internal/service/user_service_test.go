package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "foodgram/internal/errors"
	"foodgram/internal/log"
	"foodgram/internal/model"
	"foodgram/internal/repository"
	"foodgram/internal/storage"
)

func newUserServiceWith(repo *MockUserRepository, subs *MockSubscriptionRepository, store *MockStorage) UserService {
	return NewUserService(repo, subs, store, nil, NewProjector(store), log.NullLogger())
}

func TestUserService_Get(t *testing.T) {
	tests := []struct {
		name           string
		viewerID       uint
		setupMock      func(*MockUserRepository, *MockSubscriptionRepository)
		wantSubscribed bool
		expectedError  error
	}{
		{
			name:     "anonymous viewer",
			viewerID: 0,
			setupMock: func(u *MockUserRepository, _ *MockSubscriptionRepository) {
				u.On("FindByID", mock.Anything, uint(2)).Return(&model.User{ID: 2, Username: "chef"}, nil)
			},
		},
		{
			name:     "follower sees subscription",
			viewerID: 1,
			setupMock: func(u *MockUserRepository, s *MockSubscriptionRepository) {
				u.On("FindByID", mock.Anything, uint(2)).Return(&model.User{ID: 2, Username: "chef"}, nil)
				s.On("FollowedAmong", mock.Anything, uint(1), []uint{2}).Return(map[uint]bool{2: true}, nil)
			},
			wantSubscribed: true,
		},
		{
			name:     "unknown user",
			viewerID: 1,
			setupMock: func(u *MockUserRepository, _ *MockSubscriptionRepository) {
				u.On("FindByID", mock.Anything, uint(2)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			subs := new(MockSubscriptionRepository)
			tt.setupMock(users, subs)

			view, err := newUserServiceWith(users, subs, new(MockStorage)).Get(context.Background(), 2, tt.viewerID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "chef", view.Username)
				assert.Equal(t, tt.wantSubscribed, view.IsSubscribed)
				assert.Nil(t, view.Avatar)
			}
			users.AssertExpectations(t)
			subs.AssertExpectations(t)
		})
	}
}

func TestUserService_List(t *testing.T) {
	users := new(MockUserRepository)
	page := repository.Page{Number: 1, Size: 6}
	users.On("List", mock.Anything, page).Return([]model.User{
		{ID: 1, Username: "anna", Avatar: "users/a.png"},
		{ID: 2, Username: "bob"},
	}, int64(2), nil)

	views, total, err := newUserServiceWith(users, new(MockSubscriptionRepository), new(MockStorage)).List(context.Background(), page, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, views, 2)
	require.NotNil(t, views[0].Avatar)
	assert.Equal(t, "/media/users/a.png", *views[0].Avatar)
	assert.Nil(t, views[1].Avatar)
}

func TestUserService_SetAvatar(t *testing.T) {
	users := new(MockUserRepository)
	store := new(MockStorage)
	users.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Avatar: "users/old.png"}, nil)
	store.On("Save", mock.Anything, storage.AvatarsDir, mock.AnythingOfType("*storage.Image")).Return("users/new.png", nil)
	users.On("UpdateAvatar", mock.Anything, uint(1), "users/new.png").Return(nil)
	store.On("Delete", mock.Anything, "users/old.png").Return(nil)

	url, err := newUserServiceWith(users, new(MockSubscriptionRepository), store).SetAvatar(context.Background(), 1, pixelDataURI)

	require.NoError(t, err)
	assert.Equal(t, "/media/users/new.png", url)
	users.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestUserService_SetAvatar_InvalidImage(t *testing.T) {
	users := new(MockUserRepository)
	users.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)

	_, err := newUserServiceWith(users, new(MockSubscriptionRepository), new(MockStorage)).SetAvatar(context.Background(), 1, "data:text/plain;base64,aGk=")

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("avatar"))
}

func TestUserService_DeleteAvatar(t *testing.T) {
	t.Run("clears stored avatar", func(t *testing.T) {
		users := new(MockUserRepository)
		store := new(MockStorage)
		users.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Avatar: "users/old.png"}, nil)
		users.On("UpdateAvatar", mock.Anything, uint(1), "").Return(nil)
		store.On("Delete", mock.Anything, "users/old.png").Return(nil)

		require.NoError(t, newUserServiceWith(users, new(MockSubscriptionRepository), store).DeleteAvatar(context.Background(), 1))
		users.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("no avatar is a no-op", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)

		require.NoError(t, newUserServiceWith(users, new(MockSubscriptionRepository), new(MockStorage)).DeleteAvatar(context.Background(), 1))
		users.AssertExpectations(t)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	str := func(s string) *string { return &s }
	current := &model.User{ID: 1, Username: "anna", FirstName: "Anna", LastName: "Smith"}

	tests := []struct {
		name          string
		input         ProfileInput
		wantChanges   *repository.ProfileChanges
		updateErr     error
		expectedField string
	}{
		{
			name:        "first name only",
			input:       ProfileInput{FirstName: str("  Ann ")},
			wantChanges: &repository.ProfileChanges{FirstName: str("Ann")},
		},
		{
			name:        "new username",
			input:       ProfileInput{Username: str("anna_k")},
			wantChanges: &repository.ProfileChanges{Username: str("anna_k")},
		},
		{
			name:        "unchanged username is not rewritten",
			input:       ProfileInput{Username: str("anna"), LastName: str("Kay")},
			wantChanges: &repository.ProfileChanges{LastName: str("Kay")},
		},
		{
			name:          "reserved username",
			input:         ProfileInput{Username: str("Me")},
			expectedField: "username",
		},
		{
			name:          "username with forbidden characters",
			input:         ProfileInput{Username: str("an na")},
			expectedField: "username",
		},
		{
			name:          "blank last name",
			input:         ProfileInput{LastName: str("   ")},
			expectedField: "last_name",
		},
		{
			name:          "username taken",
			input:         ProfileInput{Username: str("bob")},
			wantChanges:   &repository.ProfileChanges{Username: str("bob")},
			updateErr:     repository.ErrDuplicate,
			expectedField: "username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			users.On("FindByID", mock.Anything, uint(1)).Return(current, nil)
			if tt.wantChanges != nil {
				users.On("UpdateProfile", mock.Anything, uint(1), *tt.wantChanges).Return(tt.updateErr)
			}

			view, err := newUserServiceWith(users, new(MockSubscriptionRepository), new(MockStorage)).
				UpdateProfile(context.Background(), 1, tt.input)

			if tt.expectedField != "" {
				var verr *apperrors.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.True(t, verr.Has(tt.expectedField))
				assert.Nil(t, view)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(1), view.ID)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestUserService_DeleteAccount(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte(strongPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{ID: 1, Avatar: "users/a.png", PasswordHash: string(hash)}

	t.Run("removes account and stored images", func(t *testing.T) {
		users := new(MockUserRepository)
		store := new(MockStorage)
		users.On("FindByID", mock.Anything, uint(1)).Return(user, nil)
		users.On("Delete", mock.Anything, uint(1)).Return([]string{"recipes/images/soup.png"}, nil)
		store.On("Delete", mock.Anything, "users/a.png").Return(nil)
		store.On("Delete", mock.Anything, "recipes/images/soup.png").Return(nil)

		err := newUserServiceWith(users, new(MockSubscriptionRepository), store).DeleteAccount(context.Background(), 1, strongPassword)

		require.NoError(t, err)
		users.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("wrong password keeps account", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByID", mock.Anything, uint(1)).Return(user, nil)

		err := newUserServiceWith(users, new(MockSubscriptionRepository), new(MockStorage)).DeleteAccount(context.Background(), 1, "nope")

		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Has("current_password"))
		users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)

		err := newUserServiceWith(users, new(MockSubscriptionRepository), new(MockStorage)).DeleteAccount(context.Background(), 1, strongPassword)

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}
