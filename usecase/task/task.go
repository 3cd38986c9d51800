package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/pkg/logger"
	"github.com/fastygo/taskview/repository"
	"github.com/fastygo/taskview/usecase"
)

// CreateInput carries the fields accepted when a creator adds a task.
type CreateInput struct {
	CreatorID   string
	InviteID    string
	Title       string
	Description *string
}

// UpdateInput is a partial update; nil fields are left unchanged. An empty
// ExecutorID unassigns the task.
type UpdateInput struct {
	Title             *string
	Description       *string
	Status            *domain.TaskStatus
	ExecutorID        *string
	CompletionDetails *string
}

// UseCase is the task store. Role checks run only when actorID is non-empty,
// i.e. when the transport attached an authenticated identity.
type UseCase struct {
	tasks    repository.TaskRepository
	invites  repository.InviteRepository
	recorder usecase.ActivityRecorder
	logger   *zap.Logger
	now      func() time.Time
}

func New(tasks repository.TaskRepository, invites repository.InviteRepository, recorder usecase.ActivityRecorder, log *zap.Logger) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	if recorder == nil {
		recorder = usecase.NopRecorder{}
	}
	return &UseCase{
		tasks:    tasks,
		invites:  invites,
		recorder: recorder,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *UseCase) ListByInvite(ctx context.Context, inviteID string) ([]domain.Task, error) {
	return uc.tasks.List(ctx, repository.TaskFilter{InviteID: inviteID})
}

// Board returns the invite's tasks bucketed by status.
func (uc *UseCase) Board(ctx context.Context, inviteID string) (domain.Board, error) {
	tasks, err := uc.ListByInvite(ctx, inviteID)
	if err != nil {
		return domain.Board{}, err
	}
	return domain.NewBoard(tasks), nil
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

// CreateTask adds a todo task to an invite owned by in.CreatorID. The task
// inherits the invite's bound executor when there is one.
func (uc *UseCase) CreateTask(ctx context.Context, actorID string, in CreateInput) (*domain.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.ErrEmptyTitle
	}
	if in.CreatorID == "" || in.InviteID == "" {
		return nil, domain.Validation("creator_id and invite_id are required")
	}
	if actorID != "" && actorID != in.CreatorID {
		return nil, domain.ErrForbidden
	}

	invite, err := uc.invites.GetByID(ctx, in.InviteID)
	if err != nil {
		if errors.Is(err, domain.ErrInviteNotFound) {
			return nil, domain.Validation("invite %s does not exist", in.InviteID)
		}
		return nil, err
	}
	if invite.CreatorID != in.CreatorID {
		return nil, domain.Validation("invite %s does not belong to creator %s", in.InviteID, in.CreatorID)
	}

	task := &domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.TaskStatusTodo,
		CreatorID:   in.CreatorID,
		InviteID:    invite.ID,
	}
	if bound := invite.BoundExecutor(); bound != "" {
		task.ExecutorID = &bound
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	logger.WithRequestID(ctx, uc.logger).Info("task created",
		zap.String("task_id", created.ID),
		zap.String("invite_id", created.InviteID))
	uc.record(ctx, domain.ActivityTaskCreated, in.CreatorID, created, map[string]string{"title": created.Title})
	return created, nil
}

// UpdateStatus moves the task to status. The creator and the invite's bound
// executor may both do this.
func (uc *UseCase) UpdateStatus(ctx context.Context, actorID, taskID string, status domain.TaskStatus, details *string) (*domain.Task, error) {
	if !status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}
	task, invite, err := uc.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !canChangeStatus(actorID, task, invite) {
		return nil, domain.ErrForbidden
	}

	from := task.Status
	if err := task.Transition(status, details, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	logger.WithRequestID(ctx, uc.logger).Info("task status changed",
		zap.String("task_id", task.ID),
		zap.String("from", string(from)),
		zap.String("to", string(status)))
	uc.record(ctx, domain.ActivityTaskStatusChanged, actorID, task, map[string]string{
		"from": string(from),
		"to":   string(status),
	})
	return task, nil
}

// AssignExecutor sets the task's executor to the invite's bound executor, or
// clears it when executorID is nil.
func (uc *UseCase) AssignExecutor(ctx context.Context, actorID, taskID string, executorID *string) (*domain.Task, error) {
	task, invite, err := uc.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !isCreator(actorID, task) {
		return nil, domain.ErrForbidden
	}
	if err := task.Assign(executorID, invite); err != nil {
		return nil, err
	}
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	assigned := ""
	if task.ExecutorID != nil {
		assigned = *task.ExecutorID
	}
	uc.record(ctx, domain.ActivityTaskAssigned, actorID, task, map[string]string{"executor_id": assigned})
	return task, nil
}

// UpdateTask applies a partial update. Status and executor changes follow the
// same rules as UpdateStatus and AssignExecutor.
func (uc *UseCase) UpdateTask(ctx context.Context, actorID, taskID string, in UpdateInput) (*domain.Task, error) {
	task, invite, err := uc.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !isCreator(actorID, task) {
		return nil, domain.ErrForbidden
	}

	if in.Title != nil {
		if err := task.SetTitle(*in.Title); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		description := *in.Description
		task.Description = &description
	}
	if in.ExecutorID != nil {
		if err := task.Assign(in.ExecutorID, invite); err != nil {
			return nil, err
		}
	}
	if in.Status != nil {
		if err := task.Transition(*in.Status, in.CompletionDetails, uc.now()); err != nil {
			return nil, err
		}
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	uc.record(ctx, domain.ActivityTaskUpdated, actorID, task, nil)
	return task, nil
}

// DeleteTask removes the task permanently. Only the creator may delete.
func (uc *UseCase) DeleteTask(ctx context.Context, actorID, taskID string) error {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if !isCreator(actorID, task) {
		return domain.ErrForbidden
	}
	if err := uc.tasks.Delete(ctx, taskID); err != nil {
		return err
	}

	logger.WithRequestID(ctx, uc.logger).Info("task deleted", zap.String("task_id", taskID))
	uc.record(ctx, domain.ActivityTaskDeleted, actorID, task, map[string]string{"title": task.Title})
	return nil
}

func (uc *UseCase) load(ctx context.Context, taskID string) (*domain.Task, *domain.Invite, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	invite, err := uc.invites.GetByID(ctx, task.InviteID)
	if err != nil {
		return nil, nil, err
	}
	return task, invite, nil
}

func (uc *UseCase) record(ctx context.Context, kind domain.ActivityKind, actorID string, task *domain.Task, payload interface{}) {
	entry := usecase.ActivityEntry{
		Kind:      kind,
		InviteID:  task.InviteID,
		ActorID:   actorID,
		SubjectID: task.ID,
		Payload:   payload,
	}
	if err := uc.recorder.Record(ctx, entry); err != nil {
		uc.logger.Warn("failed to record task activity",
			zap.String("kind", string(kind)),
			zap.String("task_id", task.ID),
			zap.Error(err))
	}
}
