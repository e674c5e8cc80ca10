package repository

import (
	"github.com/unilinkhq/messaging-backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository is read-only: user rows are written by the host platform's
// account sync, never by this service.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByIDs(ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	err := r.db.Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *UserRepository) SearchUsers(query string, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	var users []models.User
	pattern := "%" + query + "%"
	err := r.db.
		Where("username ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?", pattern, pattern, pattern).
		Limit(limit).
		Find(&users).Error
	return users, err
}
