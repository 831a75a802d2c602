// File: internal/task/model.go
package task

import (
	"time"

	"github.com/google/uuid"

	"propdesk_backend/internal/common"
)

type TaskStatus string

const (
	StatusOpen       TaskStatus = "open"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// Task is a unit of work inside a company, optionally tied to a property and
// assigned to any number of staff profiles.
type Task struct {
	common.BaseModel
	CompanyID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	PropertyID        *uuid.UUID `gorm:"type:uuid;index"`
	CreatedByID       uuid.UUID  `gorm:"type:uuid;not null"`
	Title             string     `gorm:"type:varchar(255);not null"`
	Description       *string    `gorm:"type:text"`
	Status            TaskStatus `gorm:"type:varchar(50);not null;default:'open'"`
	DueDate           *time.Time
	OverdueNotifiedAt *time.Time

	Assignments []TaskAssignment `gorm:"foreignKey:TaskID"`
}

func (Task) TableName() string {
	return "tasks"
}

// TaskAssignment links a task to one assignee profile.
type TaskAssignment struct {
	TaskID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProfileID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time
}

func (TaskAssignment) TableName() string {
	return "task_assignments"
}

type CreateRequest struct {
	Title       string      `json:"title" binding:"required,min=2,max=255"`
	Description *string     `json:"description" binding:"omitempty,max=5000"`
	PropertyID  *uuid.UUID  `json:"property_id" binding:"omitempty"`
	DueDate     *time.Time  `json:"due_date" binding:"omitempty"`
	AssigneeIDs []uuid.UUID `json:"assignee_ids" binding:"omitempty,max=50"`
}

type UpdateStatusRequest struct {
	Status TaskStatus `json:"status" binding:"required,oneof=open in_progress completed cancelled"`
}

type ReassignRequest struct {
	AssigneeIDs []uuid.UUID `json:"assignee_ids" binding:"required,max=50"`
}

// TaskEvent is the payload published to the task topic.
type TaskEvent struct {
	Event       string      `json:"event"`
	TaskID      uuid.UUID   `json:"task_id"`
	CompanyID   uuid.UUID   `json:"company_id"`
	Title       string      `json:"title"`
	Status      TaskStatus  `json:"status"`
	AssigneeIDs []uuid.UUID `json:"assignee_ids,omitempty"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

type Response struct {
	ID          uuid.UUID   `json:"id"`
	CompanyID   uuid.UUID   `json:"company_id"`
	PropertyID  *uuid.UUID  `json:"property_id,omitempty"`
	CreatedByID uuid.UUID   `json:"created_by_id"`
	Title       string      `json:"title"`
	Description *string     `json:"description,omitempty"`
	Status      TaskStatus  `json:"status"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	AssigneeIDs []uuid.UUID `json:"assignee_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func ToResponse(t *Task) Response {
	assigneeIDs := make([]uuid.UUID, 0, len(t.Assignments))
	for _, a := range t.Assignments {
		assigneeIDs = append(assigneeIDs, a.ProfileID)
	}
	return Response{
		ID:          t.ID,
		CompanyID:   t.CompanyID,
		PropertyID:  t.PropertyID,
		CreatedByID: t.CreatedByID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
		AssigneeIDs: assigneeIDs,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
