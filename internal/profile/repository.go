// File: internal/profile/repository.go
package profile

import (
	"context"
	"errors"
	"strings"

	"propdesk_backend/internal/common"
	"propdesk_backend/internal/shared"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for profile data operations.
type Repository interface {
	Create(ctx context.Context, p *Profile) error
	FindByIdentityUID(ctx context.Context, identityUID string) (*Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	FindByEmailAndCompany(ctx context.Context, email string, companyID uuid.UUID) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]Profile, *common.Pagination, error)
	ListActiveStaffIDs(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM profile repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, p *Profile) error {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	err := r.db.WithContext(ctx).Create(p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(err.Error(), "unique constraint") ||
			strings.Contains(err.Error(), "UNIQUE constraint") {
			return common.ErrConflict.WithDetails("A profile for this identity already exists.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) FindByIdentityUID(ctx context.Context, identityUID string) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).Where("identity_uid = ?", identityUID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Profile not found for this identity.")
		}
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Profile not found with this ID.")
		}
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) FindByEmailAndCompany(ctx context.Context, email string, companyID uuid.UUID) (*Profile, error) {
	var p Profile
	normalizedEmail := strings.ToLower(strings.TrimSpace(email))
	err := r.db.WithContext(ctx).
		Where("email = ? AND company_id = ?", normalizedEmail, companyID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Profile not found for this email and company.")
		}
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) Update(ctx context.Context, p *Profile) error {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	err := r.db.WithContext(ctx).Save(p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("Update failed due to a conflict.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]Profile, *common.Pagination, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var total int64
	query := r.db.WithContext(ctx).Model(&Profile{}).Where("company_id = ?", companyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var profiles []Profile
	err := query.
		Order("created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&profiles).Error
	if err != nil {
		return nil, nil, err
	}
	return profiles, common.NewPagination(total, page, pageSize), nil
}

func (r *gormRepository) ListActiveStaffIDs(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&Profile{}).
		Where("company_id = ? AND is_admin = ? AND user_status = ?", companyID, false, shared.StatusActive).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
