package repository

import (
	"context" // Request-scoped queries

	"blog_system/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// UserRepository reads and writes users
type UserRepository struct {
	db *gorm.DB // Shared connection pool
}

// NewUserRepository creates a UserRepository backed by db
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A taken username yields ErrDuplicateKey.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if u.Role == "" {
		u.Role = domain.RoleUser // New accounts are plain users
	}
	return classify("create user", r.db.WithContext(ctx).Create(u).Error)
}

// GetByID loads a user by primary key
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User // Destination row
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, classify("get user", err)
	}
	return &u, nil
}

// GetByUsername loads a user by exact username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, classify("get user by username", err)
	}
	return &u, nil
}

// ExistsByUsername reports whether the username is already registered
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var n int64 // Matching rows
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return false, classify("count users", err)
	}
	return n > 0, nil
}

// SetRole changes the role of the named user
func (r *UserRepository) SetRole(ctx context.Context, username, role string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", username).Update("role", role)
	if res.Error != nil {
		return classify("set role", res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL counts changed rows only, so an unchanged role also lands here
		exists, err := r.ExistsByUsername(ctx, username)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}
