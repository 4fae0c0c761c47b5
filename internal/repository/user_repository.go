package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"foodgram/internal/model"
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (emailTaken, usernameTaken bool, err error)
	List(ctx context.Context, page Page) ([]model.User, int64, error)
	UpdateAvatar(ctx context.Context, id uint, avatar string) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	UpdateProfile(ctx context.Context, id uint, changes ProfileChanges) error
	// Delete removes the user and everything referencing them. It returns the
	// image refs of the recipes removed with the account.
	Delete(ctx context.Context, id uint) ([]string, error)
}

// ProfileChanges lists profile fields to overwrite. Nil fields are kept.
type ProfileChanges struct {
	Username  *string
	FirstName *string
	LastName  *string
}

// Empty reports whether no field is set.
func (c ProfileChanges) Empty() bool {
	return c.Username == nil && c.FirstName == nil && c.LastName == nil
}

func (c ProfileChanges) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if c.Username != nil {
		cols["username"] = *c.Username
	}
	if c.FirstName != nil {
		cols["first_name"] = *c.FirstName
	}
	if c.LastName != nil {
		cols["last_name"] = *c.LastName
	}
	return cols
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// FindByID finds a user by ID.
func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email, case-insensitively.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmailOrUsername reports which of the identifiers are already in use.
func (r *userRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, bool, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Select("email", "username").
		Where("LOWER(email) = ? OR username = ?", strings.ToLower(email), username).
		Find(&users).Error
	if err != nil {
		return false, false, err
	}

	var emailTaken, usernameTaken bool
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			emailTaken = true
		}
		if u.Username == username {
			usernameTaken = true
		}
	}
	return emailTaken, usernameTaken, nil
}

// List returns a page of users ordered by username, plus the total count.
func (r *userRepository) List(ctx context.Context, page Page) ([]model.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := page.apply(r.db.WithContext(ctx).Order("username ASC")).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateAvatar sets or clears the avatar reference.
func (r *userRepository) UpdateAvatar(ctx context.Context, id uint, avatar string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("avatar", avatar).Error
}

// UpdatePassword replaces the stored password hash.
func (r *userRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

// UpdateProfile overwrites the fields set in changes. A taken username
// yields ErrDuplicate.
func (r *userRepository) UpdateProfile(ctx context.Context, id uint, changes ProfileChanges) error {
	if changes.Empty() {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(changes.columns()).Error
	return translate(err)
}

// Delete removes a user together with everything that references them.
func (r *userRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var images []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipes []model.Recipe
		if err := tx.Select("id", "image").Where("author_id = ?", id).Find(&recipes).Error; err != nil {
			return err
		}
		for _, recipe := range recipes {
			if err := deleteRecipeTx(tx, recipe.ID); err != nil {
				return err
			}
			images = append(images, recipe.Image)
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.CartEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR followee_id = ?", id, id).Delete(&model.Subscription{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}
