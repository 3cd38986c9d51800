// Package bolt persists the board in a single bbolt file (STORAGE_DRIVER=bolt).
// bbolt runs one write transaction at a time, which gives invite redemption its
// check-and-set guarantee.
package bolt

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskview/repository"
)

var (
	bucketUsers       = []byte("users")
	bucketUserEmails  = []byte("user_emails")
	bucketInvites     = []byte("invites")
	bucketInviteCodes = []byte("invite_codes")
	bucketTasks       = []byte("tasks")
	bucketActivities  = []byte("activities")

	allBuckets = [][]byte{bucketUsers, bucketUserEmails, bucketInvites, bucketInviteCodes, bucketTasks, bucketActivities}
)

// Store wraps the bbolt database shared by the repositories of this package.
type Store struct {
	db *bolt.DB
}

// Open initializes the bbolt file and ensures every bucket exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Users() repository.UserRepository          { return &userRepository{db: s.db} }
func (s *Store) Invites() repository.InviteRepository      { return &inviteRepository{db: s.db} }
func (s *Store) Tasks() repository.TaskRepository          { return &taskRepository{db: s.db} }
func (s *Store) Activities() repository.ActivityRepository { return &activityRepository{db: s.db} }

// Ping reports whether the database is still open.
func (s *Store) Ping() error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error { return nil })
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func get(b *bolt.Bucket, key string, out interface{}) (bool, error) {
	raw := b.Get([]byte(key))
	if raw == nil {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func put(b *bolt.Bucket, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), payload)
}

func unmarshal(raw []byte, out interface{}) error {
	return json.Unmarshal(raw, out)
}
