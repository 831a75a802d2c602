// File: internal/task/repository.go
package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"propdesk_backend/internal/common"
)

type Repository interface {
	Create(ctx context.Context, t *Task, assigneeIDs []uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	ReplaceAssignments(ctx context.Context, taskID uuid.UUID, assigneeIDs []uuid.UUID) error
	ListForCompany(ctx context.Context, companyID uuid.UUID, status TaskStatus, page, pageSize int) ([]Task, *common.Pagination, error)
	ListForAssignee(ctx context.Context, profileID uuid.UUID, page, pageSize int) ([]Task, *common.Pagination, error)
	UpdateStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus) error
	FindOverdue(ctx context.Context, now time.Time, limit int) ([]Task, error)
	MarkOverdueNotified(ctx context.Context, taskID uuid.UUID, at time.Time) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts the task and its assignments in one transaction so a task
// can never exist half-assigned.
func (r *gormRepository) Create(ctx context.Context, t *Task, assigneeIDs []uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		return createAssignments(tx, t.ID, assigneeIDs)
	})
	if err != nil {
		return common.ErrInternalServer.WithDetails(err.Error())
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	var t Task
	err := r.db.WithContext(ctx).Preload("Assignments").First(&t, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternalServer.WithDetails(err.Error())
	}
	return &t, nil
}

// ReplaceAssignments swaps the full assignee set atomically.
func (r *gormRepository) ReplaceAssignments(ctx context.Context, taskID uuid.UUID, assigneeIDs []uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&TaskAssignment{}, "task_id = ?", taskID).Error; err != nil {
			return err
		}
		return createAssignments(tx, taskID, assigneeIDs)
	})
	if err != nil {
		return common.ErrInternalServer.WithDetails(err.Error())
	}
	return nil
}

func createAssignments(tx *gorm.DB, taskID uuid.UUID, assigneeIDs []uuid.UUID) error {
	if len(assigneeIDs) == 0 {
		return nil
	}
	assignments := make([]TaskAssignment, 0, len(assigneeIDs))
	for _, profileID := range assigneeIDs {
		assignments = append(assignments, TaskAssignment{TaskID: taskID, ProfileID: profileID})
	}
	return tx.Create(&assignments).Error
}

func (r *gormRepository) ListForCompany(ctx context.Context, companyID uuid.UUID, status TaskStatus, page, pageSize int) ([]Task, *common.Pagination, error) {
	db := r.db.WithContext(ctx).Model(&Task{}).Where("company_id = ?", companyID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, nil, common.ErrInternalServer.WithDetails(err.Error())
	}

	pagination := common.NewPagination(total, page, pageSize)

	var tasks []Task
	err := db.Preload("Assignments").
		Order("created_at desc").
		Limit(pagination.PageSize).
		Offset((pagination.CurrentPage - 1) * pagination.PageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, nil, common.ErrInternalServer.WithDetails(err.Error())
	}
	return tasks, pagination, nil
}

func (r *gormRepository) ListForAssignee(ctx context.Context, profileID uuid.UUID, page, pageSize int) ([]Task, *common.Pagination, error) {
	base := r.db.WithContext(ctx).Model(&Task{}).
		Joins("JOIN task_assignments ON task_assignments.task_id = tasks.id").
		Where("task_assignments.profile_id = ?", profileID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, nil, common.ErrInternalServer.WithDetails(err.Error())
	}

	pagination := common.NewPagination(total, page, pageSize)

	var tasks []Task
	err := base.Preload("Assignments").
		Order("tasks.created_at desc").
		Limit(pagination.PageSize).
		Offset((pagination.CurrentPage - 1) * pagination.PageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, nil, common.ErrInternalServer.WithDetails(err.Error())
	}
	return tasks, pagination, nil
}

func (r *gormRepository) UpdateStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus) error {
	result := r.db.WithContext(ctx).Model(&Task{}).
		Where("id = ?", taskID).
		Update("status", status)
	if result.Error != nil {
		return common.ErrInternalServer.WithDetails(result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// FindOverdue returns open tasks past their due date that have not yet been
// flagged by the overdue job.
func (r *gormRepository) FindOverdue(ctx context.Context, now time.Time, limit int) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("due_date IS NOT NULL AND due_date < ?", now).
		Where("status IN ?", []TaskStatus{StatusOpen, StatusInProgress}).
		Where("overdue_notified_at IS NULL").
		Order("due_date asc").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, common.ErrInternalServer.WithDetails(err.Error())
	}
	return tasks, nil
}

func (r *gormRepository) MarkOverdueNotified(ctx context.Context, taskID uuid.UUID, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&Task{}).
		Where("id = ?", taskID).
		Update("overdue_notified_at", at).Error
	if err != nil {
		return common.ErrInternalServer.WithDetails(err.Error())
	}
	return nil
}
