package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"foodgram/internal/cache"
	apperrors "foodgram/internal/errors"
	"foodgram/internal/model"
	"foodgram/internal/repository"
	"foodgram/internal/storage"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes user profile operations.
type UserService interface {
	Get(ctx context.Context, id, viewerID uint) (*UserView, error)
	List(ctx context.Context, page repository.Page, viewerID uint) ([]UserView, int64, error)
	UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*UserView, error)
	SetAvatar(ctx context.Context, userID uint, dataURI string) (string, error)
	DeleteAvatar(ctx context.Context, userID uint) error
	// DeleteAccount removes the user, their recipes and every link to them
	// once currentPassword checks out.
	DeleteAccount(ctx context.Context, userID uint, currentPassword string) error
}

// ProfileInput is a partial profile update. Nil fields are left unchanged.
type ProfileInput struct {
	Username  *string
	FirstName *string
	LastName  *string
}

type userService struct {
	repo      repository.UserRepository
	subs      repository.SubscriptionRepository
	storage   storage.Storage
	cache     *cache.Client
	projector Projector
	logger    *slog.Logger
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(
	repo repository.UserRepository,
	subs repository.SubscriptionRepository,
	store storage.Storage,
	cache *cache.Client,
	projector Projector,
	logger *slog.Logger,
) UserService {
	return &userService{
		repo:      repo,
		subs:      subs,
		storage:   store,
		cache:     cache,
		projector: projector,
		logger:    logger,
	}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) find(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

// Get returns the profile of id as seen by viewerID (0 for anonymous).
func (s *userService) Get(ctx context.Context, id, viewerID uint) (*UserView, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	followed, err := s.followed(ctx, viewerID, []uint{user.ID})
	if err != nil {
		return nil, err
	}
	view := s.projector.User(user, followed[user.ID])
	return &view, nil
}

// List returns a page of users ordered by username.
func (s *userService) List(ctx context.Context, page repository.Page, viewerID uint) ([]UserView, int64, error) {
	users, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	followed, err := s.followed(ctx, viewerID, ids)
	if err != nil {
		return nil, 0, err
	}

	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, s.projector.User(&users[i], followed[users[i].ID]))
	}
	return views, total, nil
}

// UpdateProfile applies a partial update to the user's own profile.
func (s *userService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*UserView, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	verr := apperrors.NewValidationError()
	changes := repository.ProfileChanges{
		FirstName: trimmed(in.FirstName),
		LastName:  trimmed(in.LastName),
	}
	if changes.FirstName != nil && *changes.FirstName == "" {
		verr.Add("first_name", "this field may not be blank")
	}
	if changes.LastName != nil && *changes.LastName == "" {
		verr.Add("last_name", "this field may not be blank")
	}
	if username := trimmed(in.Username); username != nil && *username != user.Username {
		if msg := usernameProblem(*username); msg != "" {
			verr.Add("username", msg)
		}
		changes.Username = username
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProfile(ctx, userID, changes); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.FieldError("username", "a user with this username already exists")
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(userID))

	updated, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := s.projector.User(updated, false)
	return &view, nil
}

// DeleteAccount removes the account and discards the stored images it owned.
func (s *userService) DeleteAccount(ctx context.Context, userID uint, currentPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apperrors.FieldError("current_password", "wrong password")
	}

	images, err := s.repo.Delete(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	s.discard(ctx, user.Avatar)
	for _, ref := range images {
		s.discard(ctx, ref)
	}
	return nil
}

// SetAvatar stores a new avatar image and returns its public URL.
func (s *userService) SetAvatar(ctx context.Context, userID uint, dataURI string) (string, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return "", err
	}
	img, err := storage.DecodeDataURI(dataURI)
	if err != nil {
		return "", apperrors.FieldError("avatar", err.Error())
	}
	ref, err := s.storage.Save(ctx, storage.AvatarsDir, img)
	if err != nil {
		return "", fmt.Errorf("save avatar: %w", err)
	}
	if err := s.repo.UpdateAvatar(ctx, userID, ref); err != nil {
		s.discard(ctx, ref)
		return "", fmt.Errorf("update avatar: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	s.discard(ctx, user.Avatar)
	return s.storage.URL(ref), nil
}

// DeleteAvatar clears the avatar. Clearing an empty avatar is a no-op.
func (s *userService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	if user.Avatar == "" {
		return nil
	}
	if err := s.repo.UpdateAvatar(ctx, userID, ""); err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	s.discard(ctx, user.Avatar)
	return nil
}

func (s *userService) followed(ctx context.Context, viewerID uint, ids []uint) (map[uint]bool, error) {
	if viewerID == 0 || len(ids) == 0 {
		return map[uint]bool{}, nil
	}
	followed, err := s.subs.FollowedAmong(ctx, viewerID, ids)
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	return followed, nil
}

func (s *userService) discard(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.storage.Delete(ctx, ref); err != nil {
		s.logger.WarnContext(ctx, "failed to delete stored image", slog.String("ref", ref), slog.Any("error", err))
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
