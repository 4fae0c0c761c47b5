package repository

import (
	"context"

	"gorm.io/gorm"

	"foodgram/internal/model"
)

// SubscriptionRepository stores follower -> followee edges.
type SubscriptionRepository interface {
	// Create inserts the edge; ErrDuplicate when it already exists.
	Create(ctx context.Context, followerID, followeeID uint) error
	// Delete removes the edge and reports whether it existed.
	Delete(ctx context.Context, followerID, followeeID uint) (bool, error)
	Exists(ctx context.Context, followerID, followeeID uint) (bool, error)
	// FollowedAmong returns the subset of userIDs the follower subscribes to.
	FollowedAmong(ctx context.Context, followerID uint, userIDs []uint) (map[uint]bool, error)
	// ListFollowees returns a page of followed users ordered by username.
	ListFollowees(ctx context.Context, followerID uint, page Page) ([]model.User, int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create inserts a follower -> followee edge.
func (r *subscriptionRepository) Create(ctx context.Context, followerID, followeeID uint) error {
	sub := &model.Subscription{FollowerID: followerID, FolloweeID: followeeID}
	return translate(r.db.WithContext(ctx).Omit("Follower", "Followee").Create(sub).Error)
}

// Delete removes a follower -> followee edge.
func (r *subscriptionRepository) Delete(ctx context.Context, followerID, followeeID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Subscription{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Exists reports whether the edge exists.
func (r *subscriptionRepository) Exists(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FollowedAmong returns which of userIDs the follower subscribes to.
func (r *subscriptionRepository) FollowedAmong(ctx context.Context, followerID uint, userIDs []uint) (map[uint]bool, error) {
	found := make(map[uint]bool, len(userIDs))
	if followerID == 0 || len(userIDs) == 0 {
		return found, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("follower_id = ? AND followee_id IN ?", followerID, userIDs).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

// ListFollowees returns the users followed by followerID.
func (r *subscriptionRepository) ListFollowees(ctx context.Context, followerID uint, page Page) ([]model.User, int64, error) {
	db := r.db.WithContext(ctx)
	followees := func() *gorm.DB {
		return db.Model(&model.User{}).
			Joins("JOIN subscriptions ON subscriptions.followee_id = users.id").
			Where("subscriptions.follower_id = ?", followerID)
	}

	var total int64
	if err := followees().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	if err := page.apply(followees().Select("users.*").Order("users.username ASC")).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
