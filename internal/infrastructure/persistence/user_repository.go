package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/identity"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "User")
	}
	return &user, nil
}

// FindByName finds a user by exact name
func (r *GormUserRepository) FindByName(ctx context.Context, name string) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).First(&user, "name = ?", name).Error; err != nil {
		return nil, translateError(err, "User")
	}
	return &user, nil
}

// FindAll lists users by name
func (r *GormUserRepository) FindAll(ctx context.Context, includeSystem bool) ([]identity.User, error) {
	query := r.db.WithContext(ctx).Model(&identity.User{})
	if !includeSystem {
		query = query.Where("system = ?", false)
	}
	var users []identity.User
	if err := query.Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Save creates or updates a user. A duplicate name is ALREADY_EXISTS.
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return translateError(r.db.WithContext(ctx).Save(user).Error, "User")
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
