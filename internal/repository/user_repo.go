package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mentorlink/mentorlink-api/internal/models"
)

// UserRepository handles persistence for user accounts and profiles.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByIDAndRole(ctx context.Context, id, role string) (models.User, error)
	ListByRole(ctx context.Context, role string) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a repository backed by GORM.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByIDAndRole(ctx context.Context, id, role string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ? AND role = ?", id, role).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}
