// File: internal/property/repository.go
package property

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"propdesk_backend/internal/common"
)

type Repository interface {
	Create(ctx context.Context, p *Property) error
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	Update(ctx context.Context, p *Property) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, companyID uuid.UUID, query SearchQuery) ([]Property, *common.Pagination, error)
	FindBatch(ctx context.Context, limit, offset int) ([]Property, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, p *Property) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return common.ErrInternalServer.WithDetails(err.Error())
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Property, error) {
	var p Property
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternalServer.WithDetails(err.Error())
	}
	return &p, nil
}

func (r *gormRepository) Update(ctx context.Context, p *Property) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return common.ErrInternalServer.WithDetails(err.Error())
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Property{}, "id = ?", id)
	if result.Error != nil {
		return common.ErrInternalServer.WithDetails(result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Search filters the company's properties in the database. The term matches
// name, address and city with a case-insensitive contains.
func (r *gormRepository) Search(ctx context.Context, companyID uuid.UUID, query SearchQuery) ([]Property, *common.Pagination, error) {
	db := r.db.WithContext(ctx).Model(&Property{}).Where("company_id = ?", companyID)

	if term := strings.TrimSpace(query.Term); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(address_line) LIKE ? OR LOWER(city) LIKE ?", like, like, like)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.City != "" {
		db = db.Where("LOWER(city) = ?", strings.ToLower(query.City))
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, nil, common.ErrInternalServer.WithDetails(err.Error())
	}

	pagination := common.NewPagination(total, query.Page, query.PageSize)

	var properties []Property
	err := db.Order("name asc").
		Limit(pagination.PageSize).
		Offset((pagination.CurrentPage - 1) * pagination.PageSize).
		Find(&properties).Error
	if err != nil {
		return nil, nil, common.ErrInternalServer.WithDetails(err.Error())
	}
	return properties, pagination, nil
}

// FindBatch pages through all properties regardless of company, used by the
// search index sync command.
func (r *gormRepository) FindBatch(ctx context.Context, limit, offset int) ([]Property, error) {
	var properties []Property
	err := r.db.WithContext(ctx).
		Order("created_at asc").
		Limit(limit).
		Offset(offset).
		Find(&properties).Error
	if err != nil {
		return nil, common.ErrInternalServer.WithDetails(err.Error())
	}
	return properties, nil
}
