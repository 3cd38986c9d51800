package repository

import (
	"context"

	"github.com/fastygo/taskview/domain"
)

type TaskFilter struct {
	InviteID string
	Status   domain.TaskStatus
	Limit    int
	Offset   int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// List returns matching tasks, oldest first.
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}
