package bolt

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/repository"
)

type taskRepository struct {
	db *bolt.DB
}

func (r *taskRepository) GetByID(_ context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		found, err := get(tx.Bucket(bucketTasks), id, &task)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrTaskNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	tasks := make([]domain.Task, 0)
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTasks).ForEach(func(_, v []byte) error {
			var task domain.Task
			if err := unmarshal(v, &task); err != nil {
				return err
			}
			if filter.InviteID != "" && task.InviteID != filter.InviteID {
				return nil
			}
			if filter.Status != "" && task.Status != filter.Status {
				return nil
			}
			tasks = append(tasks, task)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
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
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	err := r.db.Update(func(tx *bolt.Tx) error {
		return put(tx.Bucket(bucketTasks), task.ID, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(_ context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		var existing domain.Task
		found, err := get(b, task.ID, &existing)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrTaskNotFound
		}
		task.CreatedAt = existing.CreatedAt
		task.UpdatedAt = time.Now().UTC()
		return put(b, task.ID, task)
	})
}

func (r *taskRepository) Delete(_ context.Context, id string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		if b.Get([]byte(id)) == nil {
			return domain.ErrTaskNotFound
		}
		return b.Delete([]byte(id))
	})
}
