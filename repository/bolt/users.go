package bolt

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskview/domain"
)

// storedUser keeps the password hash, which domain.User hides from JSON.
type storedUser struct {
	domain.User
	PasswordHash string `json:"password_hash"`
}

type userRepository struct {
	db *bolt.DB
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	var user *domain.User
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		user, err = loadUser(tx, id)
		return err
	})
	return user, err
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := r.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketUserEmails).Get([]byte(emailKey(email)))
		if id == nil {
			return domain.ErrUserNotFound
		}
		var err error
		user, err = loadUser(tx, string(id))
		return err
	})
	return user, err
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		emails := tx.Bucket(bucketUserEmails)
		key := []byte(emailKey(user.Email))
		if emails.Get(key) != nil {
			return domain.ErrEmailTaken
		}
		if user.ID == "" {
			user.ID = uuid.NewString()
		}
		now := time.Now().UTC()
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
		user.UpdatedAt = now
		if err := put(tx.Bucket(bucketUsers), user.ID, storedUser{User: *user, PasswordHash: user.PasswordHash}); err != nil {
			return err
		}
		return emails.Put(key, []byte(user.ID))
	})
}

func (r *userRepository) Update(_ context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		existing, err := loadUser(tx, user.ID)
		if err != nil {
			return err
		}
		existing.Username = user.Username
		existing.UpdatedAt = time.Now().UTC()
		if err := put(tx.Bucket(bucketUsers), existing.ID, storedUser{User: *existing, PasswordHash: existing.PasswordHash}); err != nil {
			return err
		}
		*user = *existing
		return nil
	})
}

func loadUser(tx *bolt.Tx, id string) (*domain.User, error) {
	var stored storedUser
	found, err := get(tx.Bucket(bucketUsers), id, &stored)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrUserNotFound
	}
	user := stored.User
	user.PasswordHash = stored.PasswordHash
	return &user, nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
