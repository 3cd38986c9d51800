package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/repository"
)

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.users.GetByID(ctx, userID)
}

// UpdateProfile changes the display name. Email and role stay as registered.
func (uc *UseCase) UpdateProfile(ctx context.Context, userID, username string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.Validation("username is required")
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Username = username
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Debug("profile updated", zap.String("user_id", userID))
	return user, nil
}
