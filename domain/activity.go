package domain

import (
	"encoding/json"
	"time"
)

// ActivityKind names a mutation recorded on an invite's activity log.
type ActivityKind string

const (
	ActivityInviteCreated     ActivityKind = "invite.created"
	ActivityInviteRedeemed    ActivityKind = "invite.redeemed"
	ActivityTaskCreated       ActivityKind = "task.created"
	ActivityTaskUpdated       ActivityKind = "task.updated"
	ActivityTaskStatusChanged ActivityKind = "task.status_changed"
	ActivityTaskAssigned      ActivityKind = "task.assigned"
	ActivityTaskDeleted       ActivityKind = "task.deleted"
)

// Activity is an append-only entry describing a change on an invite or one of its tasks.
type Activity struct {
	ID        string          `json:"id"`
	InviteID  string          `json:"invite_id"`
	ActorID   string          `json:"actor_id,omitempty"`
	Kind      ActivityKind    `json:"kind"`
	SubjectID string          `json:"subject_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (a *Activity) Touch() {
	if a == nil {
		return
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
}
