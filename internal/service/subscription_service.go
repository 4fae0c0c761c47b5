package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "foodgram/internal/errors"
	"foodgram/internal/model"
	"foodgram/internal/repository"
)

// SubscriptionService manages the follower graph.
type SubscriptionService interface {
	Subscribe(ctx context.Context, followerID, followeeID uint, recipesLimit int) (*SubscriptionView, error)
	Unsubscribe(ctx context.Context, followerID, followeeID uint) error
	// List returns the followees of followerID ordered by username.
	List(ctx context.Context, followerID uint, page repository.Page, recipesLimit int) ([]SubscriptionView, int64, error)
}

type subscriptionService struct {
	subs      repository.SubscriptionRepository
	users     repository.UserRepository
	recipes   repository.RecipeRepository
	projector Projector
}

// NewSubscriptionService creates a new subscription service.
func NewSubscriptionService(
	subs repository.SubscriptionRepository,
	users repository.UserRepository,
	recipes repository.RecipeRepository,
	projector Projector,
) SubscriptionService {
	return &subscriptionService{
		subs:      subs,
		users:     users,
		recipes:   recipes,
		projector: projector,
	}
}

// Subscribe creates the follower -> followee edge.
func (s *subscriptionService) Subscribe(ctx context.Context, followerID, followeeID uint, recipesLimit int) (*SubscriptionView, error) {
	if followerID == followeeID {
		return nil, apperrors.ErrSelfSubscription
	}

	followee, err := s.users.FindByID(ctx, followeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	exists, err := s.subs.Exists(ctx, followerID, followeeID)
	if err != nil {
		return nil, fmt.Errorf("check subscription: %w", err)
	}
	if exists {
		return nil, apperrors.ErrDuplicateSubscription
	}

	if err := s.subs.Create(ctx, followerID, followeeID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrDuplicateSubscription
		}
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	views, err := s.views(ctx, []model.User{*followee}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Unsubscribe removes the edge; ErrSubscriptionNotFound when it does not exist.
func (s *subscriptionService) Unsubscribe(ctx context.Context, followerID, followeeID uint) error {
	if _, err := s.users.FindByID(ctx, followeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	removed, err := s.subs.Delete(ctx, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if !removed {
		return apperrors.ErrSubscriptionNotFound
	}
	return nil
}

// List returns a page of the follower's subscriptions.
func (s *subscriptionService) List(ctx context.Context, followerID uint, page repository.Page, recipesLimit int) ([]SubscriptionView, int64, error) {
	followees, total, err := s.subs.ListFollowees(ctx, followerID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list subscriptions: %w", err)
	}
	views, err := s.views(ctx, followees, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *subscriptionService) views(ctx context.Context, users []model.User, recipesLimit int) ([]SubscriptionView, error) {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	counts, err := s.recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count recipes: %w", err)
	}

	views := make([]SubscriptionView, 0, len(users))
	for i := range users {
		recipes, err := s.recipes.ListByAuthor(ctx, users[i].ID, recipesLimit)
		if err != nil {
			return nil, fmt.Errorf("list recipes of %d: %w", users[i].ID, err)
		}
		views = append(views, s.projector.Subscription(&users[i], recipes, counts[users[i].ID]))
	}
	return views, nil
}
