package task

import "github.com/fastygo/taskview/domain"

// An empty actor means no identity was attached to the request; the transport
// decides whether that is allowed.

func isCreator(actorID string, task *domain.Task) bool {
	return actorID == "" || actorID == task.CreatorID
}

func canChangeStatus(actorID string, task *domain.Task, invite *domain.Invite) bool {
	if isCreator(actorID, task) {
		return true
	}
	return actorID == invite.BoundExecutor()
}
