package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// store is the user-scoped lookup shared by every owned record type.
// A record owned by someone else behaves exactly like a missing one.
type store[T any] struct {
	db *gorm.DB
}

func (s store[T]) scoped(ctx context.Context, userID uint) *gorm.DB {
	return s.db.WithContext(ctx).Where("user_id = ?", userID)
}

func (s store[T]) list(ctx context.Context, userID uint, order string) ([]T, error) {
	var out []T
	if err := s.scoped(ctx, userID).Order(order).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s store[T]) get(ctx context.Context, userID, id uint) (*T, error) {
	var rec T
	err := s.scoped(ctx, userID).Where("id = ?", id).First(&rec).Error
	return found(&rec, err)
}

func (s store[T]) delete(ctx context.Context, userID, id uint) error {
	res := s.scoped(ctx, userID).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func found[T any](rec *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}
