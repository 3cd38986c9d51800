// Package memory keeps repository state in process memory. It backs
// STORAGE_DRIVER=memory and the use case tests.
package memory

import (
	"sync"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/repository"
)

// Store holds every entity behind one lock so invite redemption is a plain
// compare-and-swap under the write lock.
type Store struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	invites    map[string]domain.Invite
	codes      map[string]string
	tasks      map[string]domain.Task
	activities []domain.Activity
	sessions   map[string]domain.Session
	seq        int64
	order      map[string]int64
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		invites:  make(map[string]domain.Invite),
		codes:    make(map[string]string),
		tasks:    make(map[string]domain.Task),
		sessions: make(map[string]domain.Session),
		order:    make(map[string]int64),
	}
}

func (s *Store) Users() repository.UserRepository          { return &userRepository{s} }
func (s *Store) Invites() repository.InviteRepository      { return &inviteRepository{s} }
func (s *Store) Tasks() repository.TaskRepository          { return &taskRepository{s} }
func (s *Store) Activities() repository.ActivityRepository { return &activityRepository{s} }
func (s *Store) Sessions() repository.SessionRepository    { return &sessionRepository{s} }

// next stamps insertion order so listings stay stable when timestamps tie.
// Callers hold the write lock.
func (s *Store) next(id string) {
	s.seq++
	s.order[id] = s.seq
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
