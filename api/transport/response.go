package transport

import "github.com/fastygo/taskview/domain"

// ErrorBody is returned for every failed request. Clients show Message as is.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewError(code domain.ErrorCode, message string) ErrorBody {
	return ErrorBody{Code: string(code), Message: message}
}

type LoginResponse struct {
	User    *domain.User    `json:"user"`
	Message string          `json:"message"`
	Token   string          `json:"token,omitempty"`
	Session *domain.Session `json:"session"`
}

type RedeemResponse struct {
	Message string         `json:"message"`
	Invite  *domain.Invite `json:"invite"`
}

type InviteList struct {
	Invites []domain.Invite `json:"invites"`
}

type TaskList struct {
	Tasks []domain.Task `json:"tasks"`
}

type ActivityList struct {
	Activities []domain.Activity `json:"activities"`
}

type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  interface{} `json:"timestamp"`
	Components interface{} `json:"components"`
}
