package repository

import (
	"context"

	"github.com/fastygo/taskview/domain"
)

type ActivityFilter struct {
	InviteID string
	Limit    int
}

type ActivityRepository interface {
	Append(ctx context.Context, activity *domain.Activity) error
	// List returns entries for an invite, newest first.
	List(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error)
}
