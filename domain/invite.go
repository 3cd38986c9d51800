package domain

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// InviteStatus is the lifecycle state of an invite. Used is terminal.
type InviteStatus string

const (
	InviteStatusPending InviteStatus = "pending"
	InviteStatusUsed    InviteStatus = "used"
)

func (s InviteStatus) IsValid() bool {
	return s == InviteStatusPending || s == InviteStatusUsed
}

const (
	// InviteCodeLength is the number of characters in a generated code.
	InviteCodeLength = 8
	// InviteCodeAlphabet omits 0/O and 1/I so codes survive being read aloud.
	InviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Invite binds one executor to a creator through a single-use code.
type Invite struct {
	ID         string       `json:"id"`
	Code       string       `json:"code"`
	CreatorID  string       `json:"creator_id"`
	ExecutorID *string      `json:"executor_id"`
	Status     InviteStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UsedAt     *time.Time   `json:"used_at"`
}

func (i *Invite) IsUsed() bool {
	return i != nil && i.Status == InviteStatusUsed
}

// BoundExecutor returns the executor bound on redemption, or "" while pending.
func (i *Invite) BoundExecutor() string {
	if i == nil || i.ExecutorID == nil {
		return ""
	}
	return *i.ExecutorID
}

// Redeem binds executorID to a pending invite. It is the single place the
// pending -> used transition happens; stores call it inside their atomic section.
func (i *Invite) Redeem(executorID string, at time.Time) error {
	if i == nil {
		return ErrInviteNotFound
	}
	if i.Status != InviteStatusPending {
		return ErrInviteUsed
	}
	id := executorID
	used := at
	i.ExecutorID = &id
	i.UsedAt = &used
	i.Status = InviteStatusUsed
	return nil
}

// CheckConsistency verifies that status, executor and used_at agree.
func (i *Invite) CheckConsistency() error {
	if i == nil {
		return ErrInvalidPayload
	}
	switch i.Status {
	case InviteStatusPending:
		if i.ExecutorID != nil || i.UsedAt != nil {
			return fmt.Errorf("pending invite %s carries redemption data", i.ID)
		}
	case InviteStatusUsed:
		if i.ExecutorID == nil || i.UsedAt == nil {
			return fmt.Errorf("used invite %s is missing redemption data", i.ID)
		}
	default:
		return fmt.Errorf("invite %s has unknown status %q", i.ID, i.Status)
	}
	return nil
}

// NewInviteCode draws a code from crypto/rand over InviteCodeAlphabet.
func NewInviteCode() (string, error) {
	buf := make([]byte, InviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random code: %w", err)
	}
	// 256 is a multiple of len(alphabet), so the modulo is unbiased.
	for i, b := range buf {
		buf[i] = InviteCodeAlphabet[int(b)%len(InviteCodeAlphabet)]
	}
	return string(buf), nil
}

// NormalizeInviteCode trims and upper-cases user input.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
