package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/pkg/logger"
	"github.com/fastygo/taskview/repository"
	"github.com/fastygo/taskview/usecase"
)

const minPasswordLength = 6

// RegisterInput is the identity a new user signs up with.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// LoginResult bundles everything a client needs after signing in.
type LoginResult struct {
	User    *domain.User
	Session *domain.Session
	Token   string
}

type UseCase struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	tokens     usecase.TokenIssuer
	sessionTTL time.Duration
	cost       int
	logger     *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, tokens usecase.TokenIssuer, sessionTTL time.Duration, log *zap.Logger) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &UseCase{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		cost:       bcrypt.DefaultCost,
		logger:     log,
	}
}

// WithHashCost lowers the bcrypt cost; tests use bcrypt.MinCost.
func (uc *UseCase) WithHashCost(cost int) *UseCase {
	uc.cost = cost
	return uc
}

// Register creates a user with a bcrypt password hash. The role cannot be
// changed afterwards.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Username == "" {
		return nil, domain.Validation("username is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, domain.Validation("invalid email address")
	}
	if len(in.Password) < minPasswordLength {
		return nil, domain.Validation("password must be at least %d characters", minPasswordLength)
	}
	if !in.Role.IsValid() {
		return nil, domain.Validation("role must be %q or %q", domain.RoleCreator, domain.RoleExecutor)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "hash password", err)
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.WithRequestID(ctx, uc.logger).Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))
	return user, nil
}

// Login checks the password, opens a session and signs a token for it.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.Validation("email and password are required")
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.WithRequestID(ctx, uc.logger).Warn("login rejected", zap.String("user_id", user.ID))
		return nil, domain.ErrBadCredentials
	}

	session, err := uc.CreateSession(ctx, user, uc.sessionTTL)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{User: user, Session: session}
	if uc.tokens != nil {
		token, err := uc.tokens.Issue(user, session.ID)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "issue token", err)
		}
		result.Token = token
	}
	return result, nil
}

func (uc *UseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return uc.users.GetByID(ctx, id)
}

func (uc *UseCase) CreateSession(ctx context.Context, user *domain.User, ttl time.Duration) (*domain.Session, error) {
	now := time.Now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// RefreshSession pushes the expiry out by ttl, or by the configured session
// TTL when ttl is not positive. Only the session's owner may refresh it.
func (uc *UseCase) RefreshSession(ctx context.Context, actorID, sessionID string, ttl time.Duration) (*domain.Session, error) {
	if ttl <= 0 {
		ttl = uc.sessionTTL
	}
	session, err := uc.ownedSession(ctx, actorID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, err
	}
	session.ExpiresAt = time.Now().UTC().Add(ttl)
	return session, nil
}

// RevokeSession ends one of the actor's sessions. Revoking a session that is
// already gone succeeds.
func (uc *UseCase) RevokeSession(ctx context.Context, actorID, sessionID string) error {
	if _, err := uc.ownedSession(ctx, actorID, sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	if err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	logger.WithRequestID(ctx, uc.logger).Info("session revoked",
		zap.String("session_id", sessionID),
		zap.String("user_id", actorID))
	return nil
}

func (uc *UseCase) ownedSession(ctx context.Context, actorID, sessionID string) (*domain.Session, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthorized
	}
	if sessionID == "" {
		return nil, domain.Validation("session_id is required")
	}
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != actorID {
		return nil, domain.ErrForbidden
	}
	return session, nil
}
