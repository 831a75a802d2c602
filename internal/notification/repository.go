// File: internal/notification/repository.go
package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"propdesk_backend/internal/common"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	CreateBatch(ctx context.Context, notifications []Notification) error
	ListForProfile(ctx context.Context, profileID uuid.UUID, unreadOnly bool, page, pageSize int) ([]Notification, *common.Pagination, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, profileID uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, n *Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return common.ErrInternalServer.WithDetails(err.Error())
	}
	return nil
}

func (r *gormRepository) CreateBatch(ctx context.Context, notifications []Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&notifications).Error; err != nil {
		return common.ErrInternalServer.WithDetails(err.Error())
	}
	return nil
}

func (r *gormRepository) ListForProfile(ctx context.Context, profileID uuid.UUID, unreadOnly bool, page, pageSize int) ([]Notification, *common.Pagination, error) {
	db := r.db.WithContext(ctx).Model(&Notification{}).Where("profile_id = ?", profileID)
	if unreadOnly {
		db = db.Where("is_read = ?", false)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, nil, common.ErrInternalServer.WithDetails(err.Error())
	}

	pagination := common.NewPagination(total, page, pageSize)

	var notifications []Notification
	err := db.Order("created_at desc").
		Limit(pagination.PageSize).
		Offset((pagination.CurrentPage - 1) * pagination.PageSize).
		Find(&notifications).Error
	if err != nil {
		return nil, nil, common.ErrInternalServer.WithDetails(err.Error())
	}
	return notifications, pagination, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	var n Notification
	err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternalServer.WithDetails(err.Error())
	}
	return &n, nil
}

func (r *gormRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if result.Error != nil {
		return common.ErrInternalServer.WithDetails(result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *gormRepository) MarkAllRead(ctx context.Context, profileID uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&Notification{}).
		Where("profile_id = ? AND is_read = ?", profileID, false).
		Update("is_read", true).Error
	if err != nil {
		return common.ErrInternalServer.WithDetails(err.Error())
	}
	return nil
}
