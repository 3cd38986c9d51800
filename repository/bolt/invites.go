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

type inviteRepository struct {
	db *bolt.DB
}

func (r *inviteRepository) GetByID(_ context.Context, id string) (*domain.Invite, error) {
	var invite *domain.Invite
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		invite, err = loadInvite(tx, id)
		return err
	})
	return invite, err
}

func (r *inviteRepository) GetByCode(_ context.Context, code string) (*domain.Invite, error) {
	var invite *domain.Invite
	err := r.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketInviteCodes).Get([]byte(code))
		if id == nil {
			return domain.ErrInviteNotFound
		}
		var err error
		invite, err = loadInvite(tx, string(id))
		return err
	})
	return invite, err
}

func (r *inviteRepository) Create(_ context.Context, invite *domain.Invite) error {
	if invite == nil || invite.Code == "" {
		return domain.ErrInvalidPayload
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		codes := tx.Bucket(bucketInviteCodes)
		if codes.Get([]byte(invite.Code)) != nil {
			return domain.ErrDuplicateCode
		}
		if invite.ID == "" {
			invite.ID = uuid.NewString()
		}
		if invite.CreatedAt.IsZero() {
			invite.CreatedAt = time.Now().UTC()
		}
		if err := put(tx.Bucket(bucketInvites), invite.ID, invite); err != nil {
			return err
		}
		return codes.Put([]byte(invite.Code), []byte(invite.ID))
	})
}

func (r *inviteRepository) Redeem(_ context.Context, code, executorID string, at time.Time) (*domain.Invite, error) {
	var invite *domain.Invite
	err := r.db.Update(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketInviteCodes).Get([]byte(code))
		if id == nil {
			return domain.ErrInviteNotFound
		}
		loaded, err := loadInvite(tx, string(id))
		if err != nil {
			return err
		}
		if err := loaded.Redeem(executorID, at); err != nil {
			return err
		}
		invite = loaded
		return put(tx.Bucket(bucketInvites), loaded.ID, loaded)
	})
	if err != nil {
		return nil, err
	}
	return invite, nil
}

func (r *inviteRepository) List(_ context.Context, filter repository.InviteFilter) ([]domain.Invite, error) {
	invites := make([]domain.Invite, 0)
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketInvites).ForEach(func(_, v []byte) error {
			var invite domain.Invite
			if err := unmarshal(v, &invite); err != nil {
				return err
			}
			if filter.CreatorID != "" && invite.CreatorID != filter.CreatorID {
				return nil
			}
			if filter.ExecutorID != "" && invite.BoundExecutor() != filter.ExecutorID {
				return nil
			}
			invites = append(invites, invite)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(invites, func(i, j int) bool {
		a, b := invites[i], invites[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return invites, nil
}

func loadInvite(tx *bolt.Tx, id string) (*domain.Invite, error) {
	var invite domain.Invite
	found, err := get(tx.Bucket(bucketInvites), id, &invite)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrInviteNotFound
	}
	return &invite, nil
}
