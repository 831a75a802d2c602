// File: internal/task/service.go
package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"propdesk_backend/internal/common"
	"propdesk_backend/internal/notification"
	"propdesk_backend/internal/platform/events"
	"propdesk_backend/internal/profile"
	"propdesk_backend/internal/shared"
)

const overdueBatchSize = 200

type Service interface {
	Create(ctx context.Context, actor *shared.Profile, req CreateRequest) (*Task, error)
	GetByID(ctx context.Context, actor *shared.Profile, id uuid.UUID) (*Task, error)
	ListForCompany(ctx context.Context, actor *shared.Profile, status TaskStatus, page, pageSize int) ([]Task, *common.Pagination, error)
	ListMine(ctx context.Context, actor *shared.Profile, page, pageSize int) ([]Task, *common.Pagination, error)
	UpdateStatus(ctx context.Context, actor *shared.Profile, id uuid.UUID, status TaskStatus) (*Task, error)
	Reassign(ctx context.Context, actor *shared.Profile, id uuid.UUID, assigneeIDs []uuid.UUID) (*Task, error)
	SweepOverdue(ctx context.Context, now time.Time) (int, error)
}

type ServiceImplementation struct {
	repo          Repository
	profiles      profile.Service
	notifications notification.Service
	publisher     events.Publisher
	logger        *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(repo Repository, profiles profile.Service, notifications notification.Service, publisher events.Publisher, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:          repo,
		profiles:      profiles,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger.Named("TaskService"),
	}
}

// Create stores the task with its assignments, notifies every assignee in
// the app, and publishes a task event. Notification or publish failures do
// not fail the creation.
func (s *ServiceImplementation) Create(ctx context.Context, actor *shared.Profile, req CreateRequest) (*Task, error) {
	assigneeIDs, err := s.validateAssignees(ctx, *actor.CompanyID, req.AssigneeIDs)
	if err != nil {
		return nil, err
	}

	t := &Task{
		CompanyID:   *actor.CompanyID,
		PropertyID:  req.PropertyID,
		CreatedByID: actor.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      StatusOpen,
		DueDate:     req.DueDate,
	}

	if err := s.repo.Create(ctx, t, assigneeIDs); err != nil {
		return nil, err
	}
	for _, id := range assigneeIDs {
		t.Assignments = append(t.Assignments, TaskAssignment{TaskID: t.ID, ProfileID: id})
	}

	if err := s.notifications.NotifyTaskAssigned(ctx, t.ID, t.Title, assigneeIDs); err != nil {
		s.logger.Warn("Task created but assignee notification failed",
			zap.String("taskID", t.ID.String()), zap.Error(err))
	}
	s.publishEvent(ctx, "task.created", t, assigneeIDs)

	s.logger.Info("Task created",
		zap.String("taskID", t.ID.String()),
		zap.Int("assignees", len(assigneeIDs)))
	return t, nil
}

// validateAssignees keeps only active staff of the actor's company; an
// assignee outside the company is a hard error, not a silent drop.
func (s *ServiceImplementation) validateAssignees(ctx context.Context, companyID uuid.UUID, assigneeIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(assigneeIDs) == 0 {
		return nil, nil
	}

	valid, err := s.profiles.ListActiveStaffIDs(ctx, companyID)
	if err != nil {
		return nil, err
	}
	validSet := make(map[uuid.UUID]struct{}, len(valid))
	for _, id := range valid {
		validSet[id] = struct{}{}
	}

	seen := make(map[uuid.UUID]struct{}, len(assigneeIDs))
	result := make([]uuid.UUID, 0, len(assigneeIDs))
	for _, id := range assigneeIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := validSet[id]; !ok {
			return nil, common.ErrUnprocessableEntity.WithDetails("One or more assignees are not active members of your company.")
		}
		result = append(result, id)
	}
	return result, nil
}

func (s *ServiceImplementation) GetByID(ctx context.Context, actor *shared.Profile, id uuid.UUID) (*Task, error) {
	return s.loadOwned(ctx, actor, id)
}

func (s *ServiceImplementation) ListForCompany(ctx context.Context, actor *shared.Profile, status TaskStatus, page, pageSize int) ([]Task, *common.Pagination, error) {
	return s.repo.ListForCompany(ctx, *actor.CompanyID, status, page, pageSize)
}

func (s *ServiceImplementation) ListMine(ctx context.Context, actor *shared.Profile, page, pageSize int) ([]Task, *common.Pagination, error) {
	return s.repo.ListForAssignee(ctx, actor.ID, page, pageSize)
}

// UpdateStatus lets admins move any company task and staff move tasks they
// are assigned to.
func (s *ServiceImplementation) UpdateStatus(ctx context.Context, actor *shared.Profile, id uuid.UUID, status TaskStatus) (*Task, error) {
	t, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin && !isAssignee(t, actor.ID) {
		return nil, common.ErrForbidden.WithDetails("You can only update tasks assigned to you.")
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	t.Status = status

	s.publishEvent(ctx, "task.status_changed", t, nil)
	return t, nil
}

func (s *ServiceImplementation) Reassign(ctx context.Context, actor *shared.Profile, id uuid.UUID, assigneeIDs []uuid.UUID) (*Task, error) {
	t, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	validated, err := s.validateAssignees(ctx, *actor.CompanyID, assigneeIDs)
	if err != nil {
		return nil, err
	}

	previous := make(map[uuid.UUID]struct{}, len(t.Assignments))
	for _, a := range t.Assignments {
		previous[a.ProfileID] = struct{}{}
	}

	if err := s.repo.ReplaceAssignments(ctx, id, validated); err != nil {
		return nil, err
	}
	t.Assignments = t.Assignments[:0]
	for _, pid := range validated {
		t.Assignments = append(t.Assignments, TaskAssignment{TaskID: id, ProfileID: pid})
	}

	newcomers := make([]uuid.UUID, 0, len(validated))
	for _, pid := range validated {
		if _, was := previous[pid]; !was {
			newcomers = append(newcomers, pid)
		}
	}
	if err := s.notifications.NotifyTaskAssigned(ctx, t.ID, t.Title, newcomers); err != nil {
		s.logger.Warn("Reassignment notification failed", zap.String("taskID", id.String()), zap.Error(err))
	}
	s.publishEvent(ctx, "task.reassigned", t, validated)

	return t, nil
}

// SweepOverdue flags open tasks past their due date, notifies their
// assignees once, and reports how many tasks were flagged.
func (s *ServiceImplementation) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	tasks, err := s.repo.FindOverdue(ctx, now, overdueBatchSize)
	if err != nil {
		return 0, err
	}

	flagged := 0
	for i := range tasks {
		t := &tasks[i]
		assigneeIDs := make([]uuid.UUID, 0, len(t.Assignments))
		for _, a := range t.Assignments {
			assigneeIDs = append(assigneeIDs, a.ProfileID)
		}

		if err := s.notifications.NotifyTaskOverdue(ctx, t.ID, t.Title, assigneeIDs); err != nil {
			s.logger.Error("Overdue notification failed", zap.String("taskID", t.ID.String()), zap.Error(err))
			continue
		}
		if err := s.repo.MarkOverdueNotified(ctx, t.ID, now); err != nil {
			s.logger.Error("Failed to mark task overdue-notified", zap.String("taskID", t.ID.String()), zap.Error(err))
			continue
		}
		s.publishEvent(ctx, "task.overdue", t, assigneeIDs)
		flagged++
	}
	return flagged, nil
}

func (s *ServiceImplementation) loadOwned(ctx context.Context, actor *shared.Profile, id uuid.UUID) (*Task, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.CompanyID == nil || t.CompanyID != *actor.CompanyID {
		return nil, common.ErrNotFound
	}
	return t, nil
}

func isAssignee(t *Task, profileID uuid.UUID) bool {
	for _, a := range t.Assignments {
		if a.ProfileID == profileID {
			return true
		}
	}
	return false
}

// publishEvent sends the task event when a broker is configured. A nil
// publisher means event publishing is disabled.
func (s *ServiceImplementation) publishEvent(ctx context.Context, event string, t *Task, assigneeIDs []uuid.UUID) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, t.ID.String(), TaskEvent{
		Event:       event,
		TaskID:      t.ID,
		CompanyID:   t.CompanyID,
		Title:       t.Title,
		Status:      t.Status,
		AssigneeIDs: assigneeIDs,
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("Task event publish failed",
			zap.String("event", event),
			zap.String("taskID", t.ID.String()),
			zap.Error(err))
	}
}
