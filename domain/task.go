package domain

import (
	"strings"
	"time"
)

// TaskStatus is a board column.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskStatuses lists the board columns in display order.
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// Task is a unit of work scoped to one invite, i.e. one creator/executor pairing.
type Task struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       *string    `json:"description"`
	Status            TaskStatus `json:"status"`
	CreatorID         string     `json:"creator_id"`
	ExecutorID        *string    `json:"executor_id"`
	InviteID          string     `json:"invite_id"`
	CompletionDetails *string    `json:"completion_details"`
	CompletedAt       *time.Time `json:"completed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == TaskStatusDone
}

// SetTitle rejects blank titles.
func (t *Task) SetTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	t.Title = title
	return nil
}

// Transition moves the task to status. Any column may move to any other column.
// Entering done requires non-blank details and stamps completed_at. A done task
// moved to done without details keeps its completion; leaving done keeps the
// completion fields as they were.
func (t *Task) Transition(status TaskStatus, details *string, at time.Time) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	blank := details == nil || strings.TrimSpace(*details) == ""
	if status == TaskStatusDone && t.IsCompleted() && blank {
		return nil
	}
	if status == TaskStatusDone {
		if blank {
			return ErrCompletionNeeded
		}
		d := *details
		completed := at
		t.CompletionDetails = &d
		t.CompletedAt = &completed
	}
	t.Status = status
	return nil
}

// Assign sets or clears the executor. A non-nil executor must be the invite's
// bound executor.
func (t *Task) Assign(executorID *string, invite *Invite) error {
	if executorID == nil || *executorID == "" {
		t.ExecutorID = nil
		return nil
	}
	bound := invite.BoundExecutor()
	if bound == "" || bound != *executorID {
		return Validation("executor %s is not bound to invite %s", *executorID, t.InviteID)
	}
	id := *executorID
	t.ExecutorID = &id
	return nil
}

// Board groups tasks by status for display.
type Board struct {
	Todo       []Task `json:"todo"`
	InProgress []Task `json:"in_progress"`
	Done       []Task `json:"done"`
}

// NewBoard buckets tasks keeping their relative order.
func NewBoard(tasks []Task) Board {
	board := Board{Todo: []Task{}, InProgress: []Task{}, Done: []Task{}}
	for _, task := range tasks {
		switch task.Status {
		case TaskStatusInProgress:
			board.InProgress = append(board.InProgress, task)
		case TaskStatusDone:
			board.Done = append(board.Done, task)
		default:
			board.Todo = append(board.Todo, task)
		}
	}
	return board
}
