package repository

import (
	"context"
	"errors"
	"onboarding-service/internal/model"

	"gorm.io/gorm"
)

var (
	ErrBuyerNotFound  = errors.New("buyer not found")
	ErrAmbiguousBuyer = errors.New("more than one buyer matches email")
)

type UserRepository interface {
	FindBuyerByEmail(ctx context.Context, email string) (*model.User, error)
	FindDependentsByParent(ctx context.Context, parentID string) ([]*model.User, error)
	CreateDependent(ctx context.Context, dependent *model.User) error
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{
		db: db,
	}
}

func (r *userRepoImpl) FindBuyerByEmail(ctx context.Context, email string) (*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Limit(2).
		Find(&users).Error

	if err != nil {
		return nil, err
	}

	switch len(users) {
	case 0:
		return nil, ErrBuyerNotFound
	case 1:
		return users[0], nil
	default:
		// Email is assumed unique upstream; refuse to pick arbitrarily.
		return nil, ErrAmbiguousBuyer
	}
}

func (r *userRepoImpl) FindDependentsByParent(ctx context.Context, parentID string) ([]*model.User, error) {
	var dependents []*model.User
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Find(&dependents).Error

	if err != nil {
		return nil, err
	}

	return dependents, nil
}

// CreateDependent is a plain single-row insert. Seat limits are checked by
// the caller against the last fetched dependent list; the table itself does
// not enforce capacity, so two concurrent sessions can transiently overshoot.
func (r *userRepoImpl) CreateDependent(ctx context.Context, dependent *model.User) error {
	return r.db.WithContext(ctx).Create(dependent).Error
}
