// File: internal/company/repository.go
package company

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"propdesk_backend/internal/common"
)

type Repository interface {
	Create(ctx context.Context, c *Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	FindByJoinCode(ctx context.Context, joinCode string) (*Company, error)
	FindBySlug(ctx context.Context, slug string) (*Company, error)
	Update(ctx context.Context, c *Company) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, c *Company) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("A company with this name or join code already exists.")
		}
		return common.ErrInternalServer.WithDetails(err.Error())
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	var c Company
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternalServer.WithDetails(err.Error())
	}
	return &c, nil
}

func (r *gormRepository) FindByJoinCode(ctx context.Context, joinCode string) (*Company, error) {
	var c Company
	err := r.db.WithContext(ctx).First(&c, "join_code = ?", joinCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternalServer.WithDetails(err.Error())
	}
	return &c, nil
}

func (r *gormRepository) FindBySlug(ctx context.Context, slug string) (*Company, error) {
	var c Company
	err := r.db.WithContext(ctx).First(&c, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternalServer.WithDetails(err.Error())
	}
	return &c, nil
}

func (r *gormRepository) Update(ctx context.Context, c *Company) error {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("A company with this name already exists.")
		}
		return common.ErrInternalServer.WithDetails(err.Error())
	}
	return nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "UNIQUE constraint")
}
