package transport

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=creator executor"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest and LogoutRequest default to the session of the caller's token.
type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds" validate:"gte=0"`
}

type LogoutRequest struct {
	SessionID string `json:"session_id"`
}

type ProfileUpdateRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

type CreateInviteRequest struct {
	CreatorID string `json:"creator_id" validate:"required"`
}

type RedeemInviteRequest struct {
	Code       string `json:"code" validate:"required"`
	ExecutorID string `json:"executor_id" validate:"required"`
}

type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=256"`
	Description *string `json:"description"`
	CreatorID   string  `json:"creator_id" validate:"required"`
	InviteID    string  `json:"invite_id" validate:"required"`
}

// UpdateTaskRequest is a partial update; absent fields are left alone.
type UpdateTaskRequest struct {
	Title             *string        `json:"title" validate:"omitempty,max=256"`
	Description       *string        `json:"description"`
	Status            *string        `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	ExecutorID        NullableString `json:"executor_id"`
	CompletionDetails *string        `json:"completion_details"`
}

type UpdateStatusRequest struct {
	Status            string  `json:"status" validate:"required,oneof=todo in_progress done"`
	CompletionDetails *string `json:"completion_details"`
}

// AssignRequest unassigns when executor_id is null or missing.
type AssignRequest struct {
	ExecutorID *string `json:"executor_id"`
}
