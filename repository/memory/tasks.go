package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/repository"
)

type taskRepository struct{ s *Store }

func (r *taskRepository) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	task, ok := r.s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return copyTask(task), nil
}

func (r *taskRepository) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tasks := make([]domain.Task, 0)
	for _, task := range r.s.tasks {
		if filter.InviteID != "" && task.InviteID != filter.InviteID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		tasks = append(tasks, *copyTask(task))
	}
	sort.Slice(tasks, func(i, j int) bool {
		return r.s.order[tasks[i].ID] < r.s.order[tasks[j].ID]
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(tasks) {
			return []domain.Task{}, nil
		}
		tasks = tasks[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(tasks) {
		tasks = tasks[:filter.Limit]
	}
	return tasks, nil
}

func (r *taskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.s.tasks[task.ID] = *copyTask(*task)
	r.s.next(task.ID)
	return task, nil
}

func (r *taskRepository) Update(_ context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = time.Now().UTC()
	r.s.tasks[task.ID] = *copyTask(*task)
	return nil
}

func (r *taskRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	delete(r.s.order, id)
	return nil
}

func copyTask(in domain.Task) *domain.Task {
	out := in
	out.Description = cloneString(in.Description)
	out.ExecutorID = cloneString(in.ExecutorID)
	out.CompletionDetails = cloneString(in.CompletionDetails)
	if in.CompletedAt != nil {
		t := *in.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}
