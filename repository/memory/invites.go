package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/repository"
)

type inviteRepository struct{ s *Store }

func (r *inviteRepository) GetByID(_ context.Context, id string) (*domain.Invite, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	invite, ok := r.s.invites[id]
	if !ok {
		return nil, domain.ErrInviteNotFound
	}
	return copyInvite(invite), nil
}

func (r *inviteRepository) GetByCode(_ context.Context, code string) (*domain.Invite, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.codes[code]
	if !ok {
		return nil, domain.ErrInviteNotFound
	}
	return copyInvite(r.s.invites[id]), nil
}

func (r *inviteRepository) Create(_ context.Context, invite *domain.Invite) error {
	if invite == nil || invite.Code == "" {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.codes[invite.Code]; taken {
		return domain.ErrDuplicateCode
	}
	if invite.ID == "" {
		invite.ID = uuid.NewString()
	}
	if invite.CreatedAt.IsZero() {
		invite.CreatedAt = time.Now().UTC()
	}
	r.s.invites[invite.ID] = *copyInvite(*invite)
	r.s.codes[invite.Code] = invite.ID
	r.s.next(invite.ID)
	return nil
}

func (r *inviteRepository) Redeem(_ context.Context, code, executorID string, at time.Time) (*domain.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.codes[code]
	if !ok {
		return nil, domain.ErrInviteNotFound
	}
	invite := r.s.invites[id]
	if err := invite.Redeem(executorID, at); err != nil {
		return nil, err
	}
	r.s.invites[id] = invite
	return copyInvite(invite), nil
}

func (r *inviteRepository) List(_ context.Context, filter repository.InviteFilter) ([]domain.Invite, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	invites := make([]domain.Invite, 0)
	for _, invite := range r.s.invites {
		if filter.CreatorID != "" && invite.CreatorID != filter.CreatorID {
			continue
		}
		if filter.ExecutorID != "" && invite.BoundExecutor() != filter.ExecutorID {
			continue
		}
		invites = append(invites, *copyInvite(invite))
	}
	sort.Slice(invites, func(i, j int) bool {
		return r.s.order[invites[i].ID] > r.s.order[invites[j].ID]
	})
	return invites, nil
}

func copyInvite(in domain.Invite) *domain.Invite {
	out := in
	out.ExecutorID = cloneString(in.ExecutorID)
	if in.UsedAt != nil {
		t := *in.UsedAt
		out.UsedAt = &t
	}
	return &out
}
