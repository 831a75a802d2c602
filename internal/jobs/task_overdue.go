// File: internal/jobs/task_overdue.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"propdesk_backend/internal/config"
	"propdesk_backend/internal/task"
)

// TaskOverdueJob periodically flags tasks past their due date and notifies
// their assignees.
type TaskOverdueJob struct {
	taskService   task.Service
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

func NewTaskOverdueJob(
	taskService task.Service,
	logger *zap.Logger,
	cfg *config.Config,
) *TaskOverdueJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &TaskOverdueJob{
		taskService:   taskService,
		logger:        logger.Named("TaskOverdueJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the job. An empty schedule disables it.
func (j *TaskOverdueJob) SetupAndStart() error {
	jobSpec := j.cfg.TaskOverdueJobSchedule
	if jobSpec == "" {
		j.logger.Warn("Task overdue job schedule not defined (TASK_OVERDUE_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule task overdue job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Task overdue job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *TaskOverdueJob) runJob() {
	j.logger.Info("Starting task overdue sweep...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	flagged, err := j.taskService.SweepOverdue(ctx, time.Now().UTC())
	if err != nil {
		j.logger.Error("Task overdue sweep failed", zap.Error(err))
		return
	}
	j.logger.Info("Task overdue sweep completed", zap.Int("tasks_flagged", flagged))
}

// Stop gracefully stops the cron scheduler.
func (j *TaskOverdueJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping task overdue job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Task overdue job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Task overdue job scheduler stop timed out.")
		}
	}
}

// cronLogger adapts zap.Logger to the cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Info(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
