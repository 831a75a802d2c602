// File: internal/notification/service.go
package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"propdesk_backend/internal/common"
)

type Service interface {
	NotifyTaskAssigned(ctx context.Context, taskID uuid.UUID, taskTitle string, assigneeIDs []uuid.UUID) error
	NotifyTaskOverdue(ctx context.Context, taskID uuid.UUID, taskTitle string, assigneeIDs []uuid.UUID) error
	List(ctx context.Context, profileID uuid.UUID, unreadOnly bool, page, pageSize int) ([]Notification, *common.Pagination, error)
	MarkRead(ctx context.Context, profileID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, profileID uuid.UUID) error
}

type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		logger: logger.Named("NotificationService"),
	}
}

func (s *ServiceImplementation) NotifyTaskAssigned(ctx context.Context, taskID uuid.UUID, taskTitle string, assigneeIDs []uuid.UUID) error {
	return s.fanOut(ctx, TypeTaskAssigned,
		fmt.Sprintf("You have been assigned a new task: %s", taskTitle),
		taskID, assigneeIDs)
}

func (s *ServiceImplementation) NotifyTaskOverdue(ctx context.Context, taskID uuid.UUID, taskTitle string, assigneeIDs []uuid.UUID) error {
	return s.fanOut(ctx, TypeTaskOverdue,
		fmt.Sprintf("A task assigned to you is overdue: %s", taskTitle),
		taskID, assigneeIDs)
}

func (s *ServiceImplementation) fanOut(ctx context.Context, typ NotificationType, message string, taskID uuid.UUID, assigneeIDs []uuid.UUID) error {
	if len(assigneeIDs) == 0 {
		return nil
	}

	notifications := make([]Notification, 0, len(assigneeIDs))
	for _, profileID := range assigneeIDs {
		tid := taskID
		notifications = append(notifications, Notification{
			ProfileID: profileID,
			Type:      typ,
			Message:   message,
			TaskID:    &tid,
		})
	}

	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		s.logger.Error("Failed to create notifications",
			zap.String("taskID", taskID.String()),
			zap.Int("count", len(notifications)),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *ServiceImplementation) List(ctx context.Context, profileID uuid.UUID, unreadOnly bool, page, pageSize int) ([]Notification, *common.Pagination, error) {
	return s.repo.ListForProfile(ctx, profileID, unreadOnly, page, pageSize)
}

// MarkRead only touches notifications owned by the calling profile.
func (s *ServiceImplementation) MarkRead(ctx context.Context, profileID, notificationID uuid.UUID) error {
	n, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.ProfileID != profileID {
		return common.ErrNotFound
	}
	return s.repo.MarkRead(ctx, notificationID)
}

func (s *ServiceImplementation) MarkAllRead(ctx context.Context, profileID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, profileID)
}
