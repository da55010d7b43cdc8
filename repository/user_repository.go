package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"wavecut/model"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(user *model.User) error
	GetByID(id int64) (*model.User, error)
	GetByUsername(username string) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a UserRepository backed by GORM.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *gormUserRepository) getOne(query string, arg interface{}) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, query, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (r *gormUserRepository) GetByID(id int64) (*model.User, error) {
	return r.getOne("id = ?", id)
}

func (r *gormUserRepository) GetByUsername(username string) (*model.User, error) {
	return r.getOne("username = ?", username)
}

func (r *gormUserRepository) GetByEmail(email string) (*model.User, error) {
	return r.getOne("email = ?", email)
}
