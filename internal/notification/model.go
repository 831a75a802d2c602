// File: internal/notification/model.go
package notification

import (
	"time"

	"github.com/google/uuid"

	"propdesk_backend/internal/common"
)

type NotificationType string

const (
	TypeTaskAssigned NotificationType = "task_assigned"
	TypeTaskOverdue  NotificationType = "task_overdue"
)

// Notification is one in-app message for one profile.
type Notification struct {
	common.BaseModel
	ProfileID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Type      NotificationType `gorm:"type:varchar(50);not null"`
	Message   string           `gorm:"type:text;not null"`
	TaskID    *uuid.UUID       `gorm:"type:uuid;index"`
	IsRead    bool             `gorm:"not null;default:false"`
}

func (Notification) TableName() string {
	return "notifications"
}

type Response struct {
	ID        uuid.UUID        `json:"id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	TaskID    *uuid.UUID       `json:"task_id,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

func ToResponse(n *Notification) Response {
	return Response{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		TaskID:    n.TaskID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
